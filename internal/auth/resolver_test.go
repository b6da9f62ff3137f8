package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeKeys struct {
	keys     map[string]*model.APIKey
	touched  []string
	touchErr error
}

func (f *fakeKeys) GetActiveByKey(_ context.Context, key string, now time.Time) (*model.APIKey, error) {
	k, ok := f.keys[key]
	if !ok || !k.ExpiresAt.After(now) {
		return nil, nil
	}
	return k, nil
}

func (f *fakeKeys) TouchLastUsed(_ context.Context, id string, _ time.Time) error {
	f.touched = append(f.touched, id)
	return f.touchErr
}

func (f *fakeKeys) Insert(context.Context, model.APIKey) error { return nil }

type fakeUsers struct {
	users map[string]*model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

func sessionToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newTestResolver(keys *fakeKeys, users *fakeUsers) *Resolver {
	if keys == nil {
		keys = &fakeKeys{}
	}
	if users == nil {
		users = &fakeUsers{}
	}
	return NewResolver(keys, users, testSecret)
}

func TestResolveMissingCredential(t *testing.T) {
	r := newTestResolver(nil, nil)
	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestResolveAPIKey(t *testing.T) {
	keys := &fakeKeys{keys: map[string]*model.APIKey{
		"apf_valid": {ID: "k1", Key: "apf_valid", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	users := &fakeUsers{users: map[string]*model.User{
		"u1": {ID: "u1", Role: model.RoleUser},
	}}
	r := newTestResolver(keys, users)

	id, err := r.Resolve(context.Background(), "apf_valid")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.False(t, id.IsAdmin)
	assert.Equal(t, model.RequestMethodAPI, id.Method)
	assert.Equal(t, []string{"k1"}, keys.touched, "last_used is updated on use")
}

func TestResolveAPIKeyUnknown(t *testing.T) {
	r := newTestResolver(&fakeKeys{}, nil)
	_, err := r.Resolve(context.Background(), "apf_nope")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestResolveAPIKeyExpired(t *testing.T) {
	keys := &fakeKeys{keys: map[string]*model.APIKey{
		"apf_old": {ID: "k1", Key: "apf_old", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)},
	}}
	r := newTestResolver(keys, nil)

	_, err := r.Resolve(context.Background(), "apf_old")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestResolveAPIKeyTouchFailureIsSwallowed(t *testing.T) {
	keys := &fakeKeys{
		keys: map[string]*model.APIKey{
			"apf_valid": {ID: "k1", Key: "apf_valid", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		},
		touchErr: errors.New("db down"),
	}
	users := &fakeUsers{users: map[string]*model.User{
		"u1": {ID: "u1", Role: model.RoleAdmin},
	}}
	r := newTestResolver(keys, users)

	id, err := r.Resolve(context.Background(), "apf_valid")
	require.NoError(t, err, "a failed last_used update must not fail the request")
	assert.True(t, id.IsAdmin)
}

func TestResolveSession(t *testing.T) {
	users := &fakeUsers{users: map[string]*model.User{
		"u2": {ID: "u2", Role: model.RoleAdmin},
	}}
	r := newTestResolver(nil, users)

	id, err := r.Resolve(context.Background(), sessionToken(t, testSecret, "u2", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "u2", id.UserID)
	assert.True(t, id.IsAdmin)
	assert.Equal(t, model.RequestMethodWeb, id.Method)
}

func TestResolveSessionRejections(t *testing.T) {
	users := &fakeUsers{users: map[string]*model.User{
		"u2": {ID: "u2", Role: model.RoleUser},
	}}
	r := newTestResolver(nil, users)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sessionToken(t, testSecret, "u2", -time.Minute)},
		{"wrong secret", sessionToken(t, "other-secret", "u2", time.Hour)},
		{"unknown user", sessionToken(t, testSecret, "ghost", time.Hour)},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}
