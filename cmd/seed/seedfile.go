package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/truckmitra/backend/domain"
)

type seedUser struct {
	Email    string `json:"email"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// readSeedFile parses a JSON array of users. Entries without a password get defaultPassword.
func readSeedFile(path string, defaultPassword string) ([]domain.Registration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var users []seedUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	regs := make([]domain.Registration, 0, len(users))
	for i, u := range users {
		password := u.Password
		if password == "" {
			password = defaultPassword
		}
		reg := domain.Registration{
			Email:    u.Email,
			Password: password,
			Role:     domain.Role(u.Role),
			UserName: u.UserName,
		}
		if err := reg.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}
