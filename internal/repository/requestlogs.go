package repository

import (
	"context"

	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/jmoiron/sqlx"
)

// RequestLogFilter narrows List; zero values mean "no filter".
type RequestLogFilter struct {
	UserID  string
	ApiID   string
	Success *bool
	Limit   int
	Offset  int
}

type RequestLogsRepository interface {
	Insert(ctx context.Context, l model.RequestLog) error
	List(ctx context.Context, f RequestLogFilter) ([]model.RequestLog, error)
}

type RequestLogsRepositoryImpl struct {
	db *sqlx.DB
}

func NewRequestLogsRepository(db *sqlx.DB) *RequestLogsRepositoryImpl {
	return &RequestLogsRepositoryImpl{db: db}
}

var _ RequestLogsRepository = (*RequestLogsRepositoryImpl)(nil)

func (r *RequestLogsRepositoryImpl) Insert(ctx context.Context, l model.RequestLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO request_logs
		    (id, api_id, endpoint_id, user_id, response_time_ms, status_code, is_success, method, created_at)
		VALUES
		    (?,  ?,      ?,           ?,       ?,                ?,           ?,          ?,      NOW())
	`, l.ID, l.ApiID, l.EndpointID, l.UserID, l.ResponseTimeMs, l.StatusCode, l.IsSuccess, l.Method.String())
	return err
}

func (r *RequestLogsRepositoryImpl) List(ctx context.Context, f RequestLogFilter) ([]model.RequestLog, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := `
		SELECT id, api_id, endpoint_id, user_id, response_time_ms, status_code, is_success, method, created_at
		FROM request_logs
		WHERE 1 = 1
	`
	args := []any{}

	if f.UserID != "" {
		q += " AND user_id = ?"
		args = append(args, f.UserID)
	}
	if f.ApiID != "" {
		q += " AND api_id = ?"
		args = append(args, f.ApiID)
	}
	if f.Success != nil {
		q += " AND is_success = ?"
		args = append(args, *f.Success)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	var rows []model.RequestLog
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
