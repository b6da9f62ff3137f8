// Package auth turns a presented bearer credential into a caller identity.
// It validates credentials only; issuing session tokens is the login
// surface's job.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/logger"
	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/TharinduNimesh/apiforge/internal/repository"
	"github.com/TharinduNimesh/apiforge/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrMissingCredential = errors.New("no credential provided")
	ErrInvalidCredential = errors.New("invalid or expired credential")
)

// Identity is the resolved caller.
type Identity struct {
	UserID  string
	IsAdmin bool
	Method  model.RequestMethod // API for key credentials, WEB for sessions
}

type Resolver struct {
	keys   repository.APIKeysRepository
	users  repository.UsersRepository
	secret []byte
	now    func() time.Time
}

func NewResolver(keys repository.APIKeysRepository, users repository.UsersRepository, jwtSecret string) *Resolver {
	return &Resolver{
		keys:   keys,
		users:  users,
		secret: []byte(jwtSecret),
		now:    time.Now,
	}
}

// Resolve authenticates a bearer credential. API keys are matched by their
// literal value; anything else is treated as a session JWT.
func (r *Resolver) Resolve(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrMissingCredential
	}

	if util.IsAPIKey(credential) {
		return r.resolveAPIKey(ctx, credential)
	}
	return r.resolveSession(ctx, credential)
}

func (r *Resolver) resolveAPIKey(ctx context.Context, credential string) (Identity, error) {
	key, err := r.keys.GetActiveByKey(ctx, credential, r.now())
	if err != nil {
		return Identity{}, fmt.Errorf("api key lookup: %w", err)
	}
	if key == nil || key.UserID == "" {
		return Identity{}, ErrInvalidCredential
	}

	// best-effort; a failed touch never fails the request
	if err := r.keys.TouchLastUsed(ctx, key.ID, r.now()); err != nil {
		logger.Log.Warn("api key last_used update failed",
			zap.String("key_id", key.ID), zap.Error(err))
	}

	user, err := r.users.GetByID(ctx, key.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("api key user lookup: %w", err)
	}
	if user == nil {
		return Identity{}, ErrInvalidCredential
	}

	return Identity{
		UserID:  user.ID,
		IsAdmin: user.Role == model.RoleAdmin,
		Method:  model.RequestMethodAPI,
	}, nil
}

func (r *Resolver) resolveSession(ctx context.Context, token string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithTimeFunc(r.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidCredential
	}

	// always re-read the user so role changes take effect immediately
	user, err := r.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("session user lookup: %w", err)
	}
	if user == nil {
		return Identity{}, ErrInvalidCredential
	}

	return Identity{
		UserID:  user.ID,
		IsAdmin: user.Role == model.RoleAdmin,
		Method:  model.RequestMethodWeb,
	}, nil
}
