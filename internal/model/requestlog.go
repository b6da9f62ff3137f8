package model

import "time"

// RequestMethod tags a log row with the credential kind used for the call,
// not the HTTP verb.
type RequestMethod string

const (
	RequestMethodAPI RequestMethod = "API" // API-key credential
	RequestMethodWeb RequestMethod = "WEB" // session credential
)

func (m RequestMethod) String() string { return string(m) }

// RequestLog is one append-only record per invocation attempt.
type RequestLog struct {
	ID             string        `db:"id" json:"id"`
	ApiID          string        `db:"api_id" json:"apiId"`
	EndpointID     string        `db:"endpoint_id" json:"endpointId"`
	UserID         string        `db:"user_id" json:"userId"`
	ResponseTimeMs int64         `db:"response_time_ms" json:"responseTimeMs"`
	StatusCode     int           `db:"status_code" json:"statusCode"`
	IsSuccess      bool          `db:"is_success" json:"isSuccess"`
	Method         RequestMethod `db:"method" json:"method"` // API|WEB
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
}
