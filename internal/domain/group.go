package domain

import "time"

// DefaultGroupSlug names the group auto-created at registration. It cannot
// be deleted.
const DefaultGroupSlug = "default"

// Group is a named bucket of documents. Slugs are unique per user.
type Group struct {
	ID          string
	UserID      string
	Name        string
	Slug        string
	Description string

	// AllowPublicWrite permits api-key authenticated writes through the
	// public data endpoints.
	AllowPublicWrite bool

	// Protected groups require an API key on the public data endpoints and
	// refuse deletion. The default group is protected.
	Protected bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
