package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

type APIKeysRepository interface {
	GetActiveByKey(ctx context.Context, key string, now time.Time) (*model.APIKey, error)
	TouchLastUsed(ctx context.Context, id string, now time.Time) error
	Insert(ctx context.Context, k model.APIKey) error
}

type APIKeysRepositoryImpl struct {
	db *sqlx.DB
}

func NewAPIKeysRepository(db *sqlx.DB) *APIKeysRepositoryImpl {
	return &APIKeysRepositoryImpl{db: db}
}

var _ APIKeysRepository = (*APIKeysRepositoryImpl)(nil)

// GetActiveByKey matches the literal key value and excludes expired keys.
func (r *APIKeysRepositoryImpl) GetActiveByKey(ctx context.Context, key string, now time.Time) (*model.APIKey, error) {
	var k model.APIKey
	err := r.db.GetContext(ctx, &k, `
		SELECT id, name, `+"`key`"+`, user_id, expires_at, last_used_at, created_at
		  FROM api_keys
		 WHERE `+"`key`"+` = ? AND expires_at > ? LIMIT 1
	`, key, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *APIKeysRepositoryImpl) TouchLastUsed(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE api_keys SET last_used_at = ? WHERE id = ?
	`, now, id)
	return err
}

func (r *APIKeysRepositoryImpl) Insert(ctx context.Context, k model.APIKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys
		    (id, name, `+"`key`"+`, user_id, expires_at, last_used_at, created_at)
		VALUES
		    (?,  ?,    ?,   ?,       ?,          ?,            NOW())
	`, k.ID, k.Name, k.Key, k.UserID, k.ExpiresAt, k.LastUsedAt)
	return err
}
