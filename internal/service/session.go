package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/slogx"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

// SessionService issues and rotates access/refresh token pairs. Refresh
// tokens are single use: each rotation consumes the presented token and
// records its replacement in the same transaction.
type SessionService struct {
	Codec      *tokenx.Codec
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair mints a fresh access/refresh pair for a verified user and
// records the refresh token as active. Both tokens share a jti so a pair
// can be correlated in logs. The fingerprint (typically the client
// User-Agent) is embedded in the refresh token for anomaly detection.
func (s *SessionService) IssuePair(ctx context.Context, user domain.User, fingerprint string) (domain.TokenPair, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	access, err := s.Codec.Issue(tokenx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID, ID: jti},
		Username:         user.Username,
		TokenType:        tokenx.TypeAccess,
	}, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Codec.Issue(tokenx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID, ID: jti},
		Username:         user.Username,
		TokenType:        tokenx.TypeRefresh,
		Fingerprint:      fingerprint,
	}, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.ActiveTokens().RecordToken(ctx, domain.ActiveToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.sweepExpired(ctx)

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token is
// verified, checked against the active-token store, then consumed and
// replaced atomically. A token that verifies but has no active record was
// either revoked or already rotated; both earn ErrTokenRevoked. The new
// refresh token carries the current fingerprint, not the old one's.
func (s *SessionService) Rotate(ctx context.Context, refreshToken, fingerprint string) (domain.TokenPair, domain.User, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	claims, err := s.Codec.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, tokenx.ErrExpired) {
			return domain.TokenPair{}, domain.User{}, ErrTokenExpired
		}
		return domain.TokenPair{}, domain.User{}, ErrTokenInvalid
	}

	if claims.TokenType != tokenx.TypeRefresh {
		return domain.TokenPair{}, domain.User{}, ErrTokenWrongType
	}

	if _, err := s.Store.ActiveTokens().LookupToken(ctx, refreshToken); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh token replay or revoked", slog.String("user_id", claims.Subject))
			return domain.TokenPair{}, domain.User{}, ErrTokenRevoked
		}
		return domain.TokenPair{}, domain.User{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, domain.User{}, ErrTokenRevoked
		}
		return domain.TokenPair{}, domain.User{}, err
	}

	jti := uuid.NewString()

	access, err := s.Codec.Issue(tokenx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID, ID: jti},
		Username:         user.Username,
		TokenType:        tokenx.TypeAccess,
	}, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	refresh, err := s.Codec.Issue(tokenx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID, ID: jti},
		Username:         user.Username,
		TokenType:        tokenx.TypeRefresh,
		Fingerprint:      fingerprint,
	}, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	// Consume the old token and record the new one atomically so a crash
	// between the two cannot leave both usable.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.ActiveTokens().RevokeToken(ctx, refreshToken); err != nil {
			return err
		}
		return tx.ActiveTokens().RecordToken(ctx, domain.ActiveToken{
			Token:     refresh,
			UserID:    user.ID,
			ExpiresAt: now.Add(s.RefreshTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	s.sweepExpired(ctx)

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Revoke drops the active record for a refresh token. Revoking an unknown
// or already-revoked token is not an error.
func (s *SessionService) Revoke(ctx context.Context, refreshToken string) error {
	return s.Store.ActiveTokens().RevokeToken(ctx, refreshToken)
}

// RevokeAll drops every active refresh token for a user.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) (int, error) {
	return s.Store.ActiveTokens().RevokeUserTokens(ctx, userID)
}

// sweepExpired opportunistically clears expired records so the table does
// not rely solely on the housekeeping interval. Failures are logged, never
// surfaced.
func (s *SessionService) sweepExpired(ctx context.Context) {
	n, err := s.Store.ActiveTokens().SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		slogx.FromContext(ctx).Warn("active token sweep failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		slogx.FromContext(ctx).Debug("swept expired refresh tokens", slog.Int("count", n))
	}
}
