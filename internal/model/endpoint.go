package model

import "time"

// Endpoint is one invocable route of a registered Api. Path may contain
// {name} placeholders filled from path parameters.
type Endpoint struct {
	ID          string    `db:"id"`
	ApiID       string    `db:"api_id"`
	Path        string    `db:"path"`
	Method      string    `db:"method"` // GET|POST|PUT|DELETE|PATCH
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func ValidMethod(m string) bool {
	switch m {
	case "GET", "POST", "PUT", "DELETE", "PATCH":
		return true
	}
	return false
}
