package repository

import (
	"context"
	"database/sql"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

type EndpointsRepository interface {
	GetByID(ctx context.Context, id string) (*model.Endpoint, error)
}

type EndpointsRepositoryImpl struct {
	db *sqlx.DB
}

func NewEndpointsRepository(db *sqlx.DB) *EndpointsRepositoryImpl {
	return &EndpointsRepositoryImpl{db: db}
}

var _ EndpointsRepository = (*EndpointsRepositoryImpl)(nil)

func (r *EndpointsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Endpoint, error) {
	var e model.Endpoint
	err := r.db.GetContext(ctx, &e, `
		SELECT id, api_id, path, method, description, created_at, updated_at
		  FROM endpoints
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
