package repository

import (
	"context"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

type DepartmentsRepository interface {
	ListActive(ctx context.Context) ([]model.Department, error)
	ListUserDepartmentIDs(ctx context.Context, userID string) ([]string, error)
}

type DepartmentsRepositoryImpl struct {
	db *sqlx.DB
}

func NewDepartmentsRepository(db *sqlx.DB) *DepartmentsRepositoryImpl {
	return &DepartmentsRepositoryImpl{db: db}
}

var _ DepartmentsRepository = (*DepartmentsRepositoryImpl)(nil)

func (r *DepartmentsRepositoryImpl) ListActive(ctx context.Context) ([]model.Department, error) {
	var rows []model.Department
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, is_active, created_at, updated_at
		  FROM departments
		 WHERE is_active = 1
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUserDepartmentIDs returns every department the user belongs to,
// active or not.
func (r *DepartmentsRepositoryImpl) ListUserDepartmentIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT department_id
		  FROM department_users
		 WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
