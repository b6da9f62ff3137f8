package repository

import (
	"context"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

type GrantsRepository interface {
	ListForApi(ctx context.Context, departmentIDs []string, apiID string) ([]model.Grant, error)
	ListApiIDs(ctx context.Context, departmentIDs []string) ([]string, error)
}

type GrantsRepositoryImpl struct {
	db *sqlx.DB
}

func NewGrantsRepository(db *sqlx.DB) *GrantsRepositoryImpl {
	return &GrantsRepositoryImpl{db: db}
}

var _ GrantsRepository = (*GrantsRepositoryImpl)(nil)

// ListForApi returns the grants the given departments hold for one Api.
func (r *GrantsRepositoryImpl) ListForApi(ctx context.Context, departmentIDs []string, apiID string) ([]model.Grant, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT department_id, api_id, rate_limit
		  FROM department_apis
		 WHERE department_id IN (?) AND api_id = ?
	`, departmentIDs, apiID)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var rows []model.Grant
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListApiIDs returns the distinct Api ids granted to any of the departments.
func (r *GrantsRepositoryImpl) ListApiIDs(ctx context.Context, departmentIDs []string) ([]string, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT DISTINCT api_id
		  FROM department_apis
		 WHERE department_id IN (?)
	`, departmentIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}
