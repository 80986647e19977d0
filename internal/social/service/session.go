package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
	"github.com/aussiebroadwan/circle/internal/social/sessioncache"
	"github.com/aussiebroadwan/circle/internal/social/store"
	"github.com/aussiebroadwan/circle/pkg/cryptox"
	"github.com/aussiebroadwan/circle/pkg/jwtx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
)

// Presence broadcasts online/offline changes on the push channel.
type Presence interface {
	SetPresence(ctx context.Context, userID int64, online bool)
}

// SessionService opens and closes sessions. Every session it opens is
// mirrored into the session cache so the auth gates can check it.
type SessionService struct {
	Store    store.Store
	Cache    sessioncache.Cache
	Codec    *jwtx.Codec
	Presence Presence
	Metrics  *metrics.Collector

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

func (s *SessionService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *SessionService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *SessionService) issue(u domain.User) (TokenPair, error) {
	access, err := s.Codec.Sign(u.ID, u.Email, jwtx.KindAccess, s.accessTTL())
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.Codec.Sign(u.ID, u.Email, jwtx.KindRefresh, s.refreshTTL())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    s.accessTTL(),
		RefreshTTL:   s.refreshTTL(),
	}, nil
}

// Login checks credentials and opens a native session.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, TokenPair, error) {
	email = normalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("load user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, TokenPair{}, fmt.Errorf("verify password: %w", err)
	}

	pair, err := s.issue(u)
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	sess := domain.Session{
		UserID:       strconv.FormatInt(u.ID, 10),
		Email:        u.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.RefreshTTL.Seconds()),
	}
	if err := s.Cache.Set(ctx, sess, pair.RefreshTTL); err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("store session: %w", err)
	}

	s.Metrics.RecordLogin(string(domain.AuthorityLocal))
	s.setPresence(ctx, u.ID, true)
	slogx.FromContext(ctx).Info("user logged in", "user_id", u.ID)
	return u, pair, nil
}

// Refresh mints a new access token for a caller that passed the refresh
// gate. A cached native session is updated to the new token; a session
// mirrored from the external issuer keeps the issuer's token. A deleted
// account gets ErrUserNotFound.
func (s *SessionService) Refresh(ctx context.Context, ident domain.Identity) (string, time.Duration, error) {
	if err := requireActive(ctx, s.Store, ident.UserID, ErrUserNotFound); err != nil {
		return "", 0, err
	}

	access, err := s.Codec.Sign(ident.UserID, ident.Email, jwtx.KindAccess, s.accessTTL())
	if err != nil {
		return "", 0, fmt.Errorf("issue token: %w", err)
	}

	key := strconv.FormatInt(ident.UserID, 10)
	sess, err := s.Cache.Get(ctx, key)
	switch {
	case errors.Is(err, sessioncache.ErrMiss):
		return access, s.accessTTL(), nil
	case err != nil:
		return "", 0, fmt.Errorf("load session: %w", err)
	}

	if !s.isNative(sess.AccessToken) {
		return access, s.accessTTL(), nil
	}

	claims, err := s.Codec.Verify(sess.RefreshToken, jwtx.KindRefresh)
	if err != nil {
		// Expired since the gate ran; the entry lapses on its own.
		return access, s.accessTTL(), nil
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return access, s.accessTTL(), nil
	}

	sess.AccessToken = access
	if err := s.Cache.Set(ctx, sess, remaining); err != nil {
		return "", 0, fmt.Errorf("store session: %w", err)
	}
	return access, s.accessTTL(), nil
}

func (s *SessionService) isNative(token string) bool {
	_, err := s.Codec.Verify(token, jwtx.KindAccess)
	return err == nil || errors.Is(err, jwtx.ErrExpired)
}

// Handoff mirrors a session opened by the external issuer. The cached entry
// holds the issuer's access token next to a native refresh token.
func (s *SessionService) Handoff(ctx context.Context, userID int64, email, externalToken string) (domain.User, TokenPair, error) {
	email = normalizeEmail(email)
	externalToken = strings.TrimSpace(externalToken)
	if userID <= 0 || email == "" || externalToken == "" {
		return domain.User{}, TokenPair{}, validationf("userId, email and token are required")
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, TokenPair{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if u.Email != email {
		return domain.User{}, TokenPair{}, ErrUserNotFound
	}

	pair, err := s.issue(u)
	if err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	sess := domain.Session{
		UserID:       strconv.FormatInt(u.ID, 10),
		Email:        u.Email,
		AccessToken:  externalToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.RefreshTTL.Seconds()),
	}
	if err := s.Cache.Set(ctx, sess, pair.RefreshTTL); err != nil {
		return domain.User{}, TokenPair{}, fmt.Errorf("store session: %w", err)
	}

	s.Metrics.RecordLogin(string(domain.AuthorityExternal))
	s.setPresence(ctx, u.ID, true)
	slogx.FromContext(ctx).Info("external session mirrored",
		"user_id", u.ID,
		"token_fp", cryptox.FingerprintToken(externalToken),
	)
	return u, pair, nil
}

// Logout revokes the cached session.
func (s *SessionService) Logout(ctx context.Context, ident domain.Identity) error {
	if err := revokeSession(ctx, s.Cache, ident.UserID, s.refreshTTL()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.setPresence(ctx, ident.UserID, false)
	return nil
}

// revokeSession replaces the cached session with an empty one. The refresh
// gate only accepts a token equal to the cached one, so every refresh token
// issued so far stops working. ttl must cover the longest refresh lifetime.
func revokeSession(ctx context.Context, cache sessioncache.Cache, userID int64, ttl time.Duration) error {
	return cache.Set(ctx, domain.Session{UserID: strconv.FormatInt(userID, 10)}, ttl)
}

// requireActive fails with notFound unless the user exists and is not
// deleted.
func requireActive(ctx context.Context, st store.Store, userID int64, notFound error) error {
	_, err := st.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return nil
}

func (s *SessionService) setPresence(ctx context.Context, userID int64, online bool) {
	if s.Presence != nil {
		s.Presence.SetPresence(ctx, userID, online)
	}
}
