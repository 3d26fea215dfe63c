package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadSeedFile(t *testing.T) {
	path := writeSeed(t, `[
		{"email": "a@example.com", "user_name": "A", "role": "shipper"},
		{"email": "b@example.com", "user_name": "B", "role": "loader", "password": "own-secret"}
	]`)

	regs, err := readSeedFile(path, "changeme123")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "changeme123", regs[0].Password)
	assert.Equal(t, domain.RoleShipper, regs[0].Role)
	assert.Equal(t, "own-secret", regs[1].Password)
}

func TestReadSeedFileRejectsBadEntries(t *testing.T) {
	path := writeSeed(t, `[{"email": "a@example.com", "user_name": "A", "role": "admin"}]`)
	_, err := readSeedFile(path, "changeme123")
	require.Error(t, err)
	assert.Equal(t, "role", domain.FieldOf(err))

	_, err = readSeedFile(writeSeed(t, `{not json`), "changeme123")
	assert.Error(t, err)

	_, err = readSeedFile(filepath.Join(t.TempDir(), "missing.json"), "changeme123")
	assert.Error(t, err)
}

func TestBundledSeedFile(t *testing.T) {
	regs, err := readSeedFile(filepath.Join("..", "..", "assets", "seed", "users.json"), "changeme123")
	require.NoError(t, err)
	assert.NotEmpty(t, regs)
}
