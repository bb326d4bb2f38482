package domain

import "time"

// Post belongs to the user whose email is UserEmail.
// The reference is not enforced on write; posts are created outside this service.
type Post struct {
	ID        string
	Title     string
	Content   string
	UserEmail string
	CreatedAt time.Time
}
