// Package auth is the identity provider: registration, password login,
// token resolution and session revocation.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/internal/token"
	"github.com/truckmitra/backend/repository"
)

// Token is the result of a successful login.
type Token struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        domain.Role `json:"role"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

type Option func(*UseCase)

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(uc *UseCase) {
		uc.hashCost = cost
	}
}

// UseCase is the identity provider backing the bearer middleware.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *token.Issuer
	hashCost int
	logger   *zap.Logger
}

// New wires the identity provider; passwords are hashed at bcrypt.DefaultCost
// unless WithHashCost says otherwise.
func New(users repository.UserRepository, sessions repository.SessionRepository, tokens *token.Issuer, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Register creates a user after validating the registration and hashing the password.
func (uc *UseCase) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Email = domain.NormalizeEmail(reg.Email)
	reg.UserName = strings.TrimSpace(reg.UserName)
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), uc.hashCost)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.Create(ctx, &domain.User{
		Email:        reg.Email,
		UserName:     reg.UserName,
		Role:         reg.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login checks the credentials, opens a session and signs a token for it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.tokens.TTL()),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	raw, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: raw,
		TokenType:   "bearer",
		Role:        user.Role,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// Resolve maps a bearer token to the caller it was issued to. A revoked or
// expired session makes the token unusable even if the signature is valid.
func (uc *UseCase) Resolve(ctx context.Context, raw string) (domain.Caller, error) {
	claims, err := uc.tokens.Parse(raw)
	if err != nil {
		return domain.Caller{}, err
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Caller{}, domain.NewError(domain.ErrCodeUnauthorized, "session expired or revoked")
		}
		return domain.Caller{}, err
	}
	if session.UserID != claims.Subject {
		return domain.Caller{}, domain.ErrUnauthorized
	}

	return domain.Caller{
		UserID:    session.UserID,
		Role:      session.Role,
		SessionID: session.ID,
	}, nil
}

// Logout revokes the caller's session.
func (uc *UseCase) Logout(ctx context.Context, caller domain.Caller) error {
	if caller.SessionID == "" {
		return domain.ErrUnauthorized
	}
	return uc.sessions.Delete(ctx, caller.SessionID)
}

// Me returns the caller's user record.
func (uc *UseCase) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, caller.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return user, err
}

// Seed registers users that do not exist yet and reports how many were created.
func (uc *UseCase) Seed(ctx context.Context, regs []domain.Registration) (int, error) {
	created := 0
	for _, reg := range regs {
		if _, err := uc.Register(ctx, reg); err != nil {
			if errors.Is(err, domain.ErrEmailTaken) {
				uc.logger.Debug("seed user exists", zap.String("email", reg.Email))
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
