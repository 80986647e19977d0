package authn

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
)

// Access returns middleware guarding endpoints with the access gate.
func (g *Gate) Access() httpx.Middleware {
	return g.middleware(g.AuthenticateAccess)
}

// Refresh returns middleware guarding the token renewal endpoint.
func (g *Gate) Refresh() httpx.Middleware {
	return g.middleware(g.AuthenticateRefresh)
}

func (g *Gate) middleware(authenticate func(*http.Request) (domain.Identity, error)) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			ident, err := authenticate(r)
			if err != nil {
				if IsAuthError(err) {
					log.Debug("authentication rejected", "error", err)
					httpx.WriteError(w, http.StatusUnauthorized, Message(err))
					return
				}
				log.Error("authentication failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := WithIdentity(r.Context(), ident)
			ctx = httpx.WithSubject(ctx, strconv.FormatInt(ident.UserID, 10))
			ctx = slogx.WithAttrs(ctx, "user_id", ident.UserID, "authority", string(ident.Authority))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IssuerSecretHeader carries the secret shared with the external issuer.
const IssuerSecretHeader = "X-Issuer-Secret"

// RequireIssuer admits only requests carrying the shared issuer secret. An
// empty secret rejects every request.
func RequireIssuer(secret string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(IssuerSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				slogx.FromContext(r.Context()).Warn("issuer handoff rejected", "secret_present", got != "")
				httpx.WriteError(w, http.StatusUnauthorized, "issuer secret is missing or invalid")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Message is the client-facing text for a gate failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "authentication token is missing"
	case errors.Is(err, ErrExpired):
		return "authentication token has expired"
	default:
		return "authentication token is invalid"
	}
}
