package domain

import "time"

// APIKey authorizes writes through the public data endpoints. Keys are
// scoped to their owning user and can be disabled without being deleted.
type APIKey struct {
	ID        string
	UserID    string
	Name      string
	Key       string
	IsActive  bool
	ExpiresAt *time.Time // nil = never expires
	LastUsed  *time.Time
	CreatedAt time.Time
}

// Usable reports whether the key may authorize a request at the given time.
func (k APIKey) Usable(now time.Time) bool {
	if !k.IsActive {
		return false
	}
	if k.ExpiresAt != nil && k.ExpiresAt.Before(now) {
		return false
	}
	return true
}
