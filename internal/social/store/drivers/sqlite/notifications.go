package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
)

type notificationsRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *notificationsRepo) CreateNotification(ctx context.Context, userID int64, content string) (domain.Notification, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, content, is_read, created_at) VALUES (?, ?, 0, ?)`,
		userID, content, now,
	)
	if err != nil {
		return domain.Notification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{ID: id, UserID: userID, Content: content, CreatedAt: now}, nil
}

func (r *notificationsRepo) ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, content, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationsRepo) MarkRead(ctx context.Context, userID, id int64) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID))
}

func (r *notificationsRepo) DeleteNotification(ctx context.Context, userID, id int64) error {
	return expectOne(r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID))
}

func (r *notificationsRepo) DeleteAllNotifications(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationsRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID,
	).Scan(&n)
	return n, err
}

func (r *notificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
