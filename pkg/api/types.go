// Package api holds the wire types and error vocabulary shared by the
// stashbin server handlers and the client SDK.
package api

// UserInfo is the public view of a user returned by the auth endpoints.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Slug     string `json:"slug"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by login and refresh: a fresh token pair plus the
// user snapshot the client persists alongside it.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserInfo `json:"user"`
}

// Group is the wire form of a document group.
type Group struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Description      string `json:"description,omitempty"`
	AllowPublicWrite bool   `json:"allowPublicWrite"`
	Protected        bool   `json:"protected"`
	CreatedAt        int64  `json:"createdAt"`
	UpdatedAt        int64  `json:"updatedAt"`
}

// GroupRequest creates or updates a group.
type GroupRequest struct {
	ID               string `json:"id,omitempty"` // required for updates
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	AllowPublicWrite bool   `json:"allowPublicWrite"`
}

// Document is the wire form of a stored JSON document.
type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	GroupID     string `json:"groupId"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// DocumentRequest creates or updates a document.
type DocumentRequest struct {
	ID          string `json:"id,omitempty"` // required for updates
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	GroupID     string `json:"groupId"`
}

// APIKey is the wire form of an API key. The key value itself is returned
// only from the create call.
type APIKey struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key,omitempty"`
	IsActive  bool   `json:"isActive"`
	CreatedAt int64  `json:"createdAt"`
	LastUsed  int64  `json:"lastUsed,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

// APIKeyCreateRequest is the body of POST /api/user/apikey.
type APIKeyCreateRequest struct {
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt,omitempty"` // epoch millis, 0 = never
}

// APIKeyRenameRequest is the body of PUT /api/user/apikey/rename.
type APIKeyRenameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIKeyStatusRequest is the body of PUT /api/user/apikey/status.
type APIKeyStatusRequest struct {
	ID       string `json:"id"`
	IsActive bool   `json:"isActive"`
}

// PasswordUpdateRequest is the body of PUT /api/user/password.
type PasswordUpdateRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileUpdateRequest is the body of PUT /api/user/profile.
type ProfileUpdateRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// MessageResponse is a generic success acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
