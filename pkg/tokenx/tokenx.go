// Package tokenx signs and verifies the HS256 JWTs used for both access and
// refresh tokens. Verification here is purely cryptographic: revocation of
// refresh tokens is the store's concern, not the codec's.
package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type claim values. A token pair shares one jti but differs in type.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrMalformed reports a token that is not a structurally valid JWT.
	ErrMalformed = errors.New("tokenx: malformed token")
	// ErrInvalidSignature reports a token whose signature does not verify.
	ErrInvalidSignature = errors.New("tokenx: invalid signature")
	// ErrExpired reports a token past its exp claim.
	ErrExpired = errors.New("tokenx: token expired")
)

// Claims carried by every stashbin token. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`

	// TokenType is "access" or "refresh".
	TokenType string `json:"type"`

	// Fingerprint is an opaque client descriptor (user agent), set on
	// refresh tokens only. It is advisory, not an enforced boundary.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Codec issues and verifies tokens with a single shared HS256 secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue signs a token for the given claims expiring ttl from now.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
// It does not consult the revocation store.
func (c *Codec) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}
	return claims, nil
}

// DecodeUnsafe decodes the payload without verifying the signature. Only for
// extracting metadata (e.g. expiry for client-side bookkeeping), never for
// authorization decisions. It needs no secret, so clients can use it too.
func DecodeUnsafe(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}
