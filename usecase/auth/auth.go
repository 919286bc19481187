package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskhub/domain"
	appLogger "github.com/fastygo/taskhub/pkg/logger"
	"github.com/fastygo/taskhub/pkg/password"
	"github.com/fastygo/taskhub/repository"
)

// PasswordHasher is a salted one-way function with verification.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type UseCase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens *Tokens
	logger *zap.Logger
}

func New(users repository.UserRepository, hasher PasswordHasher, tokens *Tokens, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates the account and returns a token for it.
func (uc *UseCase) Register(ctx context.Context, username, plain string) (string, error) {
	if strings.TrimSpace(username) == "" || plain == "" {
		return "", domain.ErrValidation
	}

	hashed, err := uc.hasher.Hash(plain)
	if err != nil {
		return "", err
	}

	user := &domain.User{Username: username, PasswordHash: hashed}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			appLogger.WithRequestID(ctx, uc.logger).Info("username already registered", zap.String("username", username))
		}
		return "", err
	}

	appLogger.WithRequestID(ctx, uc.logger).Info("user registered", zap.Int64("id", user.ID))
	return uc.tokens.Issue(user.ID)
}

// Login checks the credentials and returns a fresh token.
func (uc *UseCase) Login(ctx context.Context, username, plain string) (string, error) {
	log := appLogger.WithRequestID(ctx, uc.logger)

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Info("login failed", zap.String("reason", "unknown user"))
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := uc.hasher.Compare(user.PasswordHash, plain); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			log.Error("stored password hash unusable", zap.Int64("id", user.ID), zap.Error(err))
		} else {
			log.Info("login failed", zap.String("reason", "password mismatch"), zap.Int64("id", user.ID))
		}
		return "", domain.ErrInvalidCredentials
	}

	return uc.tokens.Issue(user.ID)
}

// Validate resolves a bearer token to the user id it was issued for.
func (uc *UseCase) Validate(_ context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrMissingToken
	}
	userID, err := uc.tokens.Parse(token)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeUnauthorized, domain.ErrInvalidToken.Message, err)
	}
	return userID, nil
}
