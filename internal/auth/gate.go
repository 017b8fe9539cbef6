package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gocatalog/internal/common"
	"gocatalog/internal/config"
)

// Owner is the only principal the password gate knows about.
const Owner = "owner"

// LoginResult is handed back to the client after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate is the single-owner password check in front of the catalog.
type Gate struct {
	passwordHash string
	tokens       *TokenIssuer
}

// NewGate prefers a configured bcrypt hash. A plain password is hashed once
// here so it is never compared directly.
func NewGate(cfg config.AuthConfig) (*Gate, error) {
	tokens, err := NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	hash := cfg.PasswordHash
	if hash == "" {
		if cfg.Password == "" {
			return nil, errors.New("no password configured: set APP_PASSWORD_HASH or APP_PASSWORD")
		}
		logrus.Warn("APP_PASSWORD is set in plain text, prefer APP_PASSWORD_HASH")
		hash, err = common.HashPassword(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	return &Gate{passwordHash: hash, tokens: tokens}, nil
}

func (g *Gate) Login(ctx context.Context, password string) (*LoginResult, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrInvalidInput)
	}
	if err := common.CheckPassword(password, g.passwordHash); err != nil {
		logrus.WithField("principal", Owner).Warn("login rejected")
		return nil, fmt.Errorf("%w: invalid password", common.ErrUnauthenticated)
	}

	token, expiresAt, err := g.tokens.Issue(Owner)
	if err != nil {
		return nil, err
	}
	logrus.WithField("expires_at", expiresAt).Info("session issued")
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Tokens exposes the issuer for tooling that mints tokens without a login.
func (g *Gate) Tokens() *TokenIssuer {
	return g.tokens
}
