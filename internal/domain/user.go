package domain

import "time"

// User is an account that owns groups, documents and api keys. Usernames are
// unique and case-sensitive.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt encoded
	Slug         string // public path segment for /api/data
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
