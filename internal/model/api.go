package model

import "time"

type ApiType string

const (
	ApiTypeFree ApiType = "FREE"
	ApiTypePaid ApiType = "PAID"
)

func (t ApiType) String() string { return string(t) }

func (t ApiType) Valid() bool {
	return t == ApiTypeFree || t == ApiTypePaid
}

// Api is a registered third-party HTTP API.
type Api struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	BaseURL   string    `db:"base_url"`
	IsActive  bool      `db:"is_active"`
	Type      ApiType   `db:"type"` // FREE|PAID
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
