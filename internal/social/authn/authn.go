// Package authn holds the two request gates. The access gate accepts either a
// session mirrored from the external issuer (bearer token plus identity
// header, matched against the session cache) or a natively issued access
// cookie. The refresh gate accepts a refresh cookie and checks it against any
// cached session for the same user.
package authn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/sessioncache"
	"github.com/aussiebroadwan/circle/pkg/jwtx"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	DefaultExternalHeader = "X-User-Id"
)

var (
	ErrNoToken      = errors.New("authn: no token")
	ErrInvalidToken = errors.New("authn: invalid token")
	ErrExpired      = errors.New("authn: token expired")
)

// IsAuthError reports whether err is one of the three gate failures.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNoToken) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpired)
}

type Gate struct {
	Codec *jwtx.Codec
	Cache sessioncache.Cache

	// ExternalHeader carries the external issuer's user id. Defaults to
	// DefaultExternalHeader.
	ExternalHeader string
}

func (g *Gate) header() string {
	if g.ExternalHeader != "" {
		return g.ExternalHeader
	}
	return DefaultExternalHeader
}

// AuthenticateAccess resolves the caller of a protected endpoint.
func (g *Gate) AuthenticateAccess(r *http.Request) (domain.Identity, error) {
	ctx := r.Context()

	bearer := bearerToken(r)
	externalID := strings.TrimSpace(r.Header.Get(g.header()))

	if bearer != "" && externalID != "" {
		id, err := parseUserID(externalID)
		if err != nil {
			return domain.Identity{}, err
		}

		sess, err := g.Cache.Get(ctx, strconv.FormatInt(id, 10))
		switch {
		case err == nil:
			if sess.AccessToken != bearer {
				return domain.Identity{}, ErrInvalidToken
			}
			return domain.Identity{UserID: id, Email: sess.Email, Authority: domain.AuthorityExternal}, nil
		case errors.Is(err, sessioncache.ErrMiss):
			// No mirrored session; the caller may still hold a native cookie.
		default:
			return domain.Identity{}, fmt.Errorf("authn: session lookup: %w", err)
		}
	}

	raw := cookieValue(r, AccessCookie)
	if raw == "" {
		return domain.Identity{}, ErrNoToken
	}

	claims, err := g.verify(raw, jwtx.KindAccess)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: claims.UserID, Email: claims.Email, Authority: domain.AuthorityLocal}, nil
}

// AuthenticateRefresh resolves the caller of the token renewal endpoint.
func (g *Gate) AuthenticateRefresh(r *http.Request) (domain.Identity, error) {
	ctx := r.Context()

	raw := cookieValue(r, RefreshCookie)
	if raw == "" {
		return domain.Identity{}, ErrNoToken
	}

	claims, err := g.verify(raw, jwtx.KindRefresh)
	if err != nil {
		return domain.Identity{}, err
	}

	ident := domain.Identity{UserID: claims.UserID, Email: claims.Email, Authority: domain.AuthorityLocal}

	sess, err := g.Cache.Get(ctx, strconv.FormatInt(claims.UserID, 10))
	switch {
	case err == nil:
		// A newer login replaced the session this token belonged to.
		if sess.RefreshToken != raw {
			return domain.Identity{}, ErrInvalidToken
		}
		return ident, nil
	case errors.Is(err, sessioncache.ErrMiss):
		return ident, nil
	default:
		return domain.Identity{}, fmt.Errorf("authn: session lookup: %w", err)
	}
}

func (g *Gate) verify(raw string, kind jwtx.Kind) (jwtx.Claims, error) {
	claims, err := g.Codec.Verify(raw, kind)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwtx.ErrExpired):
		return jwtx.Claims{}, ErrExpired
	default:
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

type ctxKey struct{}

// WithIdentity attaches the authenticated caller to ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the caller attached by one of the gates.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return id, ok && id.UserID > 0
}
