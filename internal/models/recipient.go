package models

import "time"

// EmailRecipient is a staff address that receives new-application
// notifications. No two active recipients may share an email; the store
// helpers enforce that at write time.
type EmailRecipient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
