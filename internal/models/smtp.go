package models

import "time"

// SMTPSettings is the operator-managed mail relay configuration, stored as a
// single record. When unset, notification dispatch falls back to SES.
type SMTPSettings struct {
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	UseTLS    bool      `json:"useTls"`
	FromEmail string    `json:"fromEmail"`
	UpdatedAt time.Time `json:"updatedAt"`
}
