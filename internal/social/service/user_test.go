package service

import (
	"context"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	u, err := env.users.Signup(ctx, " new@example.com ", "password123")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)
	require.Equal(t, "new", u.Nickname)
	require.NotEqual(t, "password123", u.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.users.Signup(ctx, "new@example.com", "password456")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := env.users.Signup(ctx, "short@example.com", "1234567")
		require.ErrorIs(t, err, ErrPasswordTooShort)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("email without at sign", func(t *testing.T) {
		_, err := env.users.Signup(ctx, "example.com", "password123")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("deleted email can sign up again", func(t *testing.T) {
		require.NoError(t, env.users.SoftDelete(ctx, u.ID))
		again, err := env.users.Signup(ctx, "new@example.com", "password123")
		require.NoError(t, err)
		require.NotEqual(t, u.ID, again.ID)
	})
}

func TestEditProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.signup(t, "e@example.com")

	nick, pos := "  Edsger ", "backend lead"
	u, err := env.users.Edit(ctx, id, EditParams{
		Nickname: &nick,
		Position: &pos,
		Skills:   []string{"backend", "devops", "backend"},
		Image:    &Upload{Filename: "me.png", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
	})
	require.NoError(t, err)
	require.Equal(t, "Edsger", u.Nickname)
	require.Equal(t, "backend lead", u.Position)
	require.Equal(t, []domain.Skill{domain.SkillBackend, domain.SkillDevops}, u.Skills)
	require.NotEmpty(t, u.ProfileImage)

	_, ok := env.media.Get(u.ProfileImage)
	require.True(t, ok)

	_, err = env.users.Edit(ctx, id, EditParams{Skills: []string{"cobol"}})
	require.ErrorIs(t, err, ErrValidation)

	blank := " "
	_, err = env.users.Edit(ctx, id, EditParams{Nickname: &blank})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.users.Edit(ctx, id, EditParams{Image: &Upload{Filename: "x.txt", Data: []byte("plain text")}})
	require.ErrorIs(t, err, ErrInvalidImage)

	// Nothing changed by the failed edits.
	u, err = env.users.Info(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Edsger", u.Nickname)
}

func TestPublicProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")
	_, err := env.follows.CreateFollow(ctx, a, b)
	require.NoError(t, err)

	p, err := env.users.PublicProfile(ctx, a, b)
	require.NoError(t, err)
	require.Equal(t, b, p.ID)
	require.Equal(t, 1, p.Followers)
	require.Equal(t, 0, p.Following)
	require.True(t, p.IsFollowing)
	require.False(t, p.IsFollower)

	_, err = env.users.PublicProfile(ctx, a, 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSoftDeleteRevokesSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.signup(t, "d@example.com")

	_, _, err := env.sessions.Login(ctx, "d@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, env.users.SoftDelete(ctx, id))
	sess, err := env.cache.Get(ctx, strconv.FormatInt(id, 10))
	require.NoError(t, err)
	require.Empty(t, sess.RefreshToken)

	online, _ := env.presence.Online(id)
	require.False(t, online)

	_, err = env.users.Info(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, env.users.SoftDelete(ctx, id), ErrNotFound)
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func TestEmailAuth(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signup(t, "v@example.com")

	_, err := env.users.CheckEmailAuth(ctx, "v@example.com", 123456)
	require.ErrorIs(t, err, ErrEmailAuthNotFound)

	require.NoError(t, env.users.SendEmailAuth(ctx, "v@example.com"))
	msg, ok := env.outbox.Last("v@example.com")
	require.True(t, ok)

	m := codePattern.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2)
	code, err := strconv.Atoi(m[1])
	require.NoError(t, err)

	matched, err := env.users.CheckEmailAuth(ctx, "v@example.com", code+1)
	require.NoError(t, err)
	require.False(t, matched)

	matched, err = env.users.CheckEmailAuth(ctx, "v@example.com", code)
	require.NoError(t, err)
	require.True(t, matched)

	// Consumed.
	_, err = env.users.CheckEmailAuth(ctx, "v@example.com", code)
	require.ErrorIs(t, err, ErrEmailAuthNotFound)

	require.ErrorIs(t, env.users.SendEmailAuth(ctx, "nobody@example.com"), ErrUserNotFound)
}

func TestEmailAuthExpires(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signup(t, "v@example.com")

	now := time.Now()
	env.users.Now = func() time.Time { return now }
	require.NoError(t, env.users.SendEmailAuth(ctx, "v@example.com"))

	msg, _ := env.outbox.Last("v@example.com")
	code, err := strconv.Atoi(codePattern.FindStringSubmatch(msg.Body)[1])
	require.NoError(t, err)

	now = now.Add(EmailAuthTTL)
	_, err = env.users.CheckEmailAuth(ctx, "v@example.com", code)
	require.ErrorIs(t, err, ErrEmailAuthNotFound)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.signup(t, "r@example.com")

	_, pair, err := env.sessions.Login(ctx, "r@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, env.users.ResetPassword(ctx, "r@example.com"))

	sess, err := env.cache.Get(ctx, strconv.FormatInt(id, 10))
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, sess.RefreshToken)

	msg, ok := env.outbox.Last("r@example.com")
	require.True(t, ok)

	temp := regexp.MustCompile(`: ([A-Za-z0-9]{12})$`).FindStringSubmatch(msg.Body)
	require.Len(t, temp, 2)

	_, _, err = env.sessions.Login(ctx, "r@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.sessions.Login(ctx, "r@example.com", temp[1])
	require.NoError(t, err)

	require.ErrorIs(t, env.users.ResetPassword(ctx, "nobody@example.com"), ErrNotFound)
}
