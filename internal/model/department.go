package model

import "time"

type Department struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DepartmentMembership links a user to a department.
type DepartmentMembership struct {
	DepartmentID string `db:"department_id"`
	UserID       string `db:"user_id"`
}

// Grant is a department's quota for one Api, in requests per hour.
type Grant struct {
	DepartmentID string `db:"department_id"`
	ApiID        string `db:"api_id"`
	RateLimit    int    `db:"rate_limit"`
}
