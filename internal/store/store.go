package store

import (
	"context"
	"errors"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy and make transaction
// scoping explicit.
type Store interface {
	Users() Users
	Groups() Groups
	Documents() Documents
	APIKeys() APIKeys
	ActiveTokens() ActiveTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit() or Rollback() the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Refresh rotation's delete-old/insert-new
	// runs through this.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store with commit/rollback controls.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is the credential-verification lookup. Matching is
	// exact and case-sensitive.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserBySlug resolves the public namespace segment of data URLs.
	GetUserBySlug(ctx context.Context, slug string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a duplicate username.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateProfile sets username, email and the public slug, bumping
	// updated_at.
	UpdateProfile(ctx context.Context, userID, username, email, slug string) error

	// IsEmpty reports whether any user exists (admin bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Groups interface {
	GetGroupByID(ctx context.Context, id string) (domain.Group, error)

	// GetGroupBySlug resolves a group within one user's namespace.
	GetGroupBySlug(ctx context.Context, userID, slug string) (domain.Group, error)

	ListGroupsByUser(ctx context.Context, userID string) ([]domain.Group, error)

	// CreateGroup inserts a group; slug must be unique per user.
	CreateGroup(ctx context.Context, g domain.Group) error

	UpdateGroup(ctx context.Context, g domain.Group) error

	// DeleteGroup removes a group; documents cascade per schema.
	DeleteGroup(ctx context.Context, id string) error
}

type Documents interface {
	GetDocumentByID(ctx context.Context, id string) (domain.Document, error)

	// GetDocumentBySlug resolves a document within one group.
	GetDocumentBySlug(ctx context.Context, groupID, slug string) (domain.Document, error)

	ListDocumentsByUser(ctx context.Context, userID string) ([]domain.Document, error)
	ListDocumentsByGroup(ctx context.Context, groupID string) ([]domain.Document, error)

	CreateDocument(ctx context.Context, d domain.Document) error
	UpdateDocument(ctx context.Context, d domain.Document) error
	DeleteDocument(ctx context.Context, id string) error
}

type APIKeys interface {
	// GetAPIKey looks up a key by its value, scoped to a user.
	GetAPIKey(ctx context.Context, userID, key string) (domain.APIKey, error)

	ListAPIKeysByUser(ctx context.Context, userID string) ([]domain.APIKey, error)
	CreateAPIKey(ctx context.Context, k domain.APIKey) error
	RenameAPIKey(ctx context.Context, userID, id, name string) error
	SetAPIKeyActive(ctx context.Context, userID, id string, active bool) error
	DeleteAPIKey(ctx context.Context, userID, id string) error

	// TouchAPIKey records a successful use.
	TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error
}

// ActiveTokens is the refresh-token revocation store. A refresh token is
// honorable iff its record is present and unexpired; consuming a token for
// rotation deletes its record.
type ActiveTokens interface {
	// RecordToken inserts an active-token record at issuance.
	RecordToken(ctx context.Context, t domain.ActiveToken) error

	// LookupToken is an exact match on the full encoded token value.
	LookupToken(ctx context.Context, token string) (domain.ActiveToken, error)

	// RevokeToken deletes the record for a token value. Idempotent: absent
	// records are not an error.
	RevokeToken(ctx context.Context, token string) error

	// RevokeUserTokens deletes every record for a user (logout everywhere,
	// password change). Returns the number of revoked records.
	RevokeUserTokens(ctx context.Context, userID string) (int, error)

	// SweepExpired deletes all records expiring before now. Returns the
	// number of swept records.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
