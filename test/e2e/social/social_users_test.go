package social_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
	"github.com/stretchr/testify/require"
)

// TestSignupLoginInfo walks an account from signup to logout.
func TestSignupLoginInfo(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	c, u := newUser(t, baseURL, "alice@example.com")
	require.Equal(t, "alice", u.Nickname)
	require.NotEmpty(t, c.Cookie(authn.AccessCookie))
	require.NotEmpty(t, c.Cookie(authn.RefreshCookie))

	info, err := c.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, u.ID, info.ID)

	require.NoError(t, c.Refresh(ctx))
	_, err = c.Info(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Info(ctx)
	assertStatus(t, err, http.StatusUnauthorized)
}

// TestSignupRejections covers duplicate emails and weak passwords.
func TestSignupRejections(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	c := newClient(t, baseURL)
	_, err := c.Signup(ctx, "bob@example.com", testPassword)
	require.NoError(t, err)

	_, err = c.Signup(ctx, "bob@example.com", testPassword)
	assertStatus(t, err, http.StatusConflict)

	_, err = c.Signup(ctx, "carol@example.com", "short")
	assertStatus(t, err, http.StatusBadRequest)

	_, err = c.Login(ctx, "bob@example.com", "wrong-password")
	assertStatus(t, err, http.StatusBadRequest)
}

// TestEditProfile updates text fields; image uploads need object storage,
// which the test container does not configure.
func TestEditProfile(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	c, _ := newUser(t, baseURL, "dana@example.com")

	nickname, position := "Dana", "frontend"
	u, err := c.EditProfile(ctx, socialsdk.EditProfileRequest{
		Nickname: &nickname,
		Position: &position,
		Skills:   []string{"frontend", "design"},
	})
	require.NoError(t, err)
	require.Equal(t, "Dana", u.Nickname)
	require.Equal(t, "frontend", u.Position)
	require.ElementsMatch(t, []string{"frontend", "design"}, u.Skills)

	_, err = c.EditProfile(ctx, socialsdk.EditProfileRequest{
		ImageName: "me.png",
		Image:     []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
	})
	assertStatus(t, err, http.StatusServiceUnavailable)
}

// TestEmailAuthAndReset checks the mail flows answer for known and unknown
// addresses. Codes are only delivered by mail, so matching is covered by
// the service tests.
func TestEmailAuthAndReset(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	c, _ := newUser(t, baseURL, "erin@example.com")

	require.NoError(t, c.SendEmailAuth(ctx, "erin@example.com"))
	_, err := c.CheckEmailAuth(ctx, "erin@example.com", 1)
	require.NoError(t, err)

	_, err = c.CheckEmailAuth(ctx, "nobody@example.com", 1)
	assertStatus(t, err, http.StatusNotFound)

	assertStatus(t, c.SendEmailAuth(ctx, "nobody@example.com"), http.StatusNotFound)

	require.NoError(t, c.ResetPassword(ctx, "erin@example.com"))
	_, err = c.Login(ctx, "erin@example.com", testPassword)
	assertStatus(t, err, http.StatusBadRequest)
}

// TestDeleteAccount soft deletes and frees the email.
func TestDeleteAccount(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	c, _ := newUser(t, baseURL, "finn@example.com")
	require.NoError(t, c.DeleteAccount(ctx))

	_, err := c.Info(ctx)
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = newClient(t, baseURL).Signup(ctx, "finn@example.com", testPassword)
	require.NoError(t, err)
}

// TestHandoff mirrors an external session.
func TestHandoff(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	c := newClient(t, baseURL)
	u, err := c.Signup(ctx, "gus@example.com", testPassword)
	require.NoError(t, err)

	req := socialsdk.HandoffRequest{UserID: u.ID, Email: "gus@example.com", Token: "external-token"}

	// Without the issuer's secret nobody can claim the account.
	attacker := newClient(t, baseURL)
	_, err = attacker.Handoff(ctx, "", req)
	assertStatus(t, err, http.StatusUnauthorized)
	_, err = attacker.Handoff(ctx, "guess", req)
	assertStatus(t, err, http.StatusUnauthorized)
	_, err = attacker.Info(ctx)
	assertStatus(t, err, http.StatusUnauthorized)

	got, err := c.Handoff(ctx, testIssuerSecret, req)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = c.Handoff(ctx, testIssuerSecret, socialsdk.HandoffRequest{UserID: u.ID, Email: "someone@example.com", Token: "external-token"})
	assertStatus(t, err, http.StatusNotFound)
}
