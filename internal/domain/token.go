package domain

import "time"

// TokenPair is what the auth endpoints hand out: a short-lived access token
// and a longer-lived single-use refresh token, sharing one token id.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ActiveToken records a refresh token that is currently honorable. The full
// encoded token value is the lookup key; a refresh token rotates only while
// its record exists. Deleting the record is revocation.
type ActiveToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
