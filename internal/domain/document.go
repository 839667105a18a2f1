package domain

import "time"

// Document is a stored JSON payload. Content is kept verbatim as the client
// sent it; it is validated to be well-formed JSON at the service boundary.
type Document struct {
	ID          string
	UserID      string
	GroupID     string
	Name        string
	Slug        string
	Description string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
