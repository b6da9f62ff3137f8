package repository

import (
	"context"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

type ParametersRepository interface {
	ListByEndpoint(ctx context.Context, endpointID string) ([]model.Parameter, error)
}

type ParametersRepositoryImpl struct {
	db *sqlx.DB
}

func NewParametersRepository(db *sqlx.DB) *ParametersRepositoryImpl {
	return &ParametersRepositoryImpl{db: db}
}

var _ ParametersRepository = (*ParametersRepositoryImpl)(nil)

// ListByEndpoint returns declared parameters in declaration order with
// Location resolved once. Rows with an unrecognized param_in are dropped.
func (r *ParametersRepositoryImpl) ListByEndpoint(ctx context.Context, endpointID string) ([]model.Parameter, error) {
	var rows []model.Parameter
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, endpoint_id, name, param_in, type, required
		  FROM parameters
		 WHERE endpoint_id = ?
		 ORDER BY id
	`, endpointID)
	if err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, p := range rows {
		loc, ok := model.ParseLocation(p.ParamIn, p.Type)
		if !ok {
			continue
		}
		p.Location = loc
		out = append(out, p)
	}
	return out, nil
}
