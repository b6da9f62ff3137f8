package model

import "time"

// APIKey is a long-lived bearer credential ("apf_" prefix) tied to a user.
type APIKey struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Key        string    `db:"key"`
	UserID     string    `db:"user_id"`
	ExpiresAt  time.Time `db:"expires_at"`
	LastUsedAt time.Time `db:"last_used_at"`
	CreatedAt  time.Time `db:"created_at"`
}
