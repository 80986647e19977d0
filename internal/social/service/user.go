package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/mailer"
	"github.com/aussiebroadwan/circle/internal/social/media"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
	"github.com/aussiebroadwan/circle/internal/social/sessioncache"
	"github.com/aussiebroadwan/circle/internal/social/store"
	"github.com/aussiebroadwan/circle/pkg/cryptox"
	"github.com/aussiebroadwan/circle/pkg/jwtx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
)

const (
	MinPasswordLength = 8
	MaxNicknameLength = 30

	EmailAuthDigits = 6
	EmailAuthTTL    = 10 * time.Minute
)

type UserService struct {
	Store    store.Store
	Cache    sessioncache.Cache
	Media    media.Store
	Mailer   mailer.Mailer
	Presence Presence
	Follows  *FollowService
	Metrics  *metrics.Collector

	// RefreshTTL bounds how long a revoked session is remembered. Defaults
	// to jwtx.DefaultRefreshTokenTTL.
	RefreshTTL time.Duration

	// Now defaults to time.Now when nil.
	Now func() time.Time
}

func (s *UserService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// normalizeEmail is the stored and looked-up form of an address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Signup registers a new account. The nickname starts as the local part of
// the email address.
func (s *UserService) Signup(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	nickname, _, _ := strings.Cut(email, "@")
	id, err := s.Store.Users().CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     truncate(nickname, MaxNicknameLength),
		Skills:       []domain.Skill{},
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.Metrics.RecordSignup()
	slogx.FromContext(ctx).Info("user signed up", "user_id", id)
	return s.Info(ctx, id)
}

// Info returns the caller's own account.
func (s *UserService) Info(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

type Profile struct {
	domain.PublicUser
	Followers   int  `json:"followers"`
	Following   int  `json:"following"`
	IsFollowing bool `json:"isFollowing"`
	IsFollower  bool `json:"isFollower"`
}

// PublicProfile returns another user's profile as seen by the viewer.
func (s *UserService) PublicProfile(ctx context.Context, viewerID, id int64) (Profile, error) {
	u, err := s.Info(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{PublicUser: u.Public()}
	if s.Follows == nil {
		return p, nil
	}

	counts, err := s.Follows.Counts(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p.Followers, p.Following = counts.Followers, counts.Following

	if viewerID != id {
		if p.IsFollowing, p.IsFollower, err = s.Follows.Relationship(ctx, viewerID, id); err != nil {
			return Profile{}, fmt.Errorf("load relationship: %w", err)
		}
	}
	return p, nil
}

type Upload struct {
	Filename string
	Data     []byte
}

// EditParams holds optional profile changes; nil fields stay as they are.
type EditParams struct {
	Nickname *string
	Position *string
	Skills   []string
	Image    *Upload
}

func (s *UserService) Edit(ctx context.Context, id int64, p EditParams) (domain.User, error) {
	u, err := s.Info(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if p.Nickname != nil {
		nick := strings.TrimSpace(*p.Nickname)
		if nick == "" || utf8.RuneCountInString(nick) > MaxNicknameLength {
			return domain.User{}, validationf("nickname must be 1 to %d characters", MaxNicknameLength)
		}
		u.Nickname = nick
	}
	if p.Position != nil {
		u.Position = strings.TrimSpace(*p.Position)
	}
	if p.Skills != nil {
		skills, err := domain.ParseSkills(p.Skills)
		if err != nil {
			return domain.User{}, validationf("unknown skill")
		}
		u.Skills = skills
	}
	if p.Image != nil {
		if s.Media == nil {
			return domain.User{}, media.ErrNoStorage
		}
		key, err := s.Media.Upload(ctx, p.Image.Filename, p.Image.Data)
		switch {
		case errors.Is(err, media.ErrEmpty), errors.Is(err, media.ErrTooLarge), errors.Is(err, media.ErrNotImage):
			return domain.User{}, ErrInvalidImage
		case err != nil:
			return domain.User{}, fmt.Errorf("upload image: %w", err)
		}
		u.ProfileImage = key
	}

	if err := s.Store.Users().UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Info(ctx, id)
}

// SoftDelete flags the account as deleted and revokes its session.
func (s *UserService) SoftDelete(ctx context.Context, id int64) error {
	if err := s.Store.Users().SoftDelete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if err := revokeSession(ctx, s.Cache, id, s.refreshTTL()); err != nil {
		slogx.FromContext(ctx).Warn("session revocation failed", "user_id", id, "error", err)
	}
	if s.Presence != nil {
		s.Presence.SetPresence(ctx, id, false)
	}
	slogx.FromContext(ctx).Info("user soft deleted", "user_id", id)
	return nil
}

// SendEmailAuth mails a fresh verification code, replacing any pending one.
func (s *UserService) SendEmailAuth(ctx context.Context, email string) error {
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := cryptox.GenerateNumericCode(EmailAuthDigits)
	if err != nil {
		return err
	}
	if err := s.Store.Users().SetEmailAuthCode(ctx, u.ID, code, s.now().Add(EmailAuthTTL)); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	return s.Mailer.Send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "Your verification code",
		Body:    fmt.Sprintf("Your verification code is %06d. It expires in %d minutes.", code, int(EmailAuthTTL.Minutes())),
	})
}

// CheckEmailAuth reports whether code matches the pending code. A match
// consumes it.
func (s *UserService) CheckEmailAuth(ctx context.Context, email string, code int) (bool, error) {
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if u.EmailAuthCode == nil || u.EmailAuthExpiresAt == nil || !s.now().Before(*u.EmailAuthExpiresAt) {
		return false, ErrEmailAuthNotFound
	}
	if *u.EmailAuthCode != code {
		return false, nil
	}

	if err := s.Store.Users().ClearEmailAuthCode(ctx, u.ID); err != nil {
		return false, fmt.Errorf("clear code: %w", err)
	}
	return true, nil
}

// ResetPassword replaces the password with a random temporary one, mails it
// and revokes the cached session.
func (s *UserService) ResetPassword(ctx context.Context, email string) error {
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return err
	}

	temp, err := cryptox.GeneratePassword()
	if err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(temp)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := revokeSession(ctx, s.Cache, u.ID, s.refreshTTL()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return s.Mailer.Send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "Your temporary password",
		Body:    "Your password was reset. Sign in with this temporary password: " + temp,
	})
}

func (s *UserService) byEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
