package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
)

type usersRepo struct {
	db  dbtx
	now func() time.Time
}

const userColumns = `id, email, password_hash, nickname, profile_image, position, skills,
	email_auth_code, email_auth_expires_at, is_deleted, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND is_deleted = 0`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND is_deleted = 0`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, nickname, profile_image, position, skills, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Nickname, u.ProfileImage, u.Position, joinSkills(u.Skills), now, now,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) UpdateProfile(ctx context.Context, u domain.User) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users
		SET nickname = ?, position = ?, skills = ?, profile_image = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		u.Nickname, u.Position, joinSkills(u.Skills), u.ProfileImage, r.now(), u.ID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		hash, r.now(), userID,
	))
}

func (r *usersRepo) SetEmailAuthCode(ctx context.Context, userID int64, code int, expiresAt time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users SET email_auth_code = ?, email_auth_expires_at = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		code, expiresAt.UTC(), r.now(), userID,
	))
}

func (r *usersRepo) ClearEmailAuthCode(ctx context.Context, userID int64) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE users SET email_auth_code = NULL, email_auth_expires_at = NULL, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		r.now(), userID,
	))
}

func (r *usersRepo) ClearExpiredEmailAuthCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET email_auth_code = NULL, email_auth_expires_at = NULL
		WHERE email_auth_expires_at IS NOT NULL AND email_auth_expires_at <= ?`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) SoftDelete(ctx context.Context, userID int64) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE users SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		r.now(), userID,
	))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		skills    string
		code      sql.NullInt64
		expiresAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &u.ProfileImage, &u.Position, &skills,
		&code, &expiresAt, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Skills = splitSkills(skills)
	u.EmailAuthCode = mapNullIntPtr(code)
	u.EmailAuthExpiresAt = mapNullTimePtr(expiresAt)
	return u, nil
}

func joinSkills(skills []domain.Skill) string {
	parts := make([]string, len(skills))
	for i, s := range skills {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func splitSkills(s string) []domain.Skill {
	out := []domain.Skill{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, domain.Skill(part))
		}
	}
	return out
}
