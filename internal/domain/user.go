package domain

import "time"

// User is keyed by Email; no two users share one.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	ExternalID   *string // nil until linked
	CreatedAt    time.Time
}

// HasExternalID reports whether an external id has been linked.
func (u User) HasExternalID() bool {
	return u.ExternalID != nil
}
