package repository

import (
	"context"
	"database/sql"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

type ApisRepository interface {
	GetByID(ctx context.Context, id string) (*model.Api, error)
	ListAll(ctx context.Context) ([]model.Api, error)
	ListActiveByIDs(ctx context.Context, ids []string) ([]model.Api, error)
}

type ApisRepositoryImpl struct {
	db *sqlx.DB
}

func NewApisRepository(db *sqlx.DB) *ApisRepositoryImpl {
	return &ApisRepositoryImpl{db: db}
}

var _ ApisRepository = (*ApisRepositoryImpl)(nil)

func (r *ApisRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Api, error) {
	var a model.Api
	err := r.db.GetContext(ctx, &a, `
		SELECT id, name, base_url, is_active, type, created_by, created_at, updated_at
		  FROM apis
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApisRepositoryImpl) ListAll(ctx context.Context) ([]model.Api, error) {
	var rows []model.Api
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, base_url, is_active, type, created_by, created_at, updated_at
		  FROM apis
		 ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ApisRepositoryImpl) ListActiveByIDs(ctx context.Context, ids []string) ([]model.Api, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT id, name, base_url, is_active, type, created_by, created_at, updated_at
		  FROM apis
		 WHERE id IN (?) AND is_active = 1
		 ORDER BY created_at DESC
	`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var rows []model.Api
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
