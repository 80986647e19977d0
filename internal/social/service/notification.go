package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
	"github.com/aussiebroadwan/circle/internal/social/store"
	"github.com/aussiebroadwan/circle/pkg/slogx"
)

// Notifier pushes a freshly written notification to its recipient.
type Notifier interface {
	Notify(ctx context.Context, userID int64, n domain.Notification) error
}

type NotificationService struct {
	Store    store.Store
	Notifier Notifier
	Metrics  *metrics.Collector
}

type NotificationPage struct {
	Items   []domain.Notification `json:"items"`
	Cursor  *int                  `json:"cursor"`
	HasNext bool                  `json:"hasNext"`
}

// Create writes a notification and pushes it. A failed push is logged and
// does not undo the write.
func (s *NotificationService) Create(ctx context.Context, userID int64, content string) (domain.Notification, error) {
	n, err := s.Store.Notifications().CreateNotification(ctx, userID, content)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	s.Metrics.RecordNotification()

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, userID, n); err != nil {
			slogx.FromContext(ctx).Warn("notification push failed", "user_id", userID, "notification_id", n.ID, "error", err)
		}
	}
	return n, nil
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, userID int64, size, cursor int) (NotificationPage, error) {
	if err := validatePage(size, cursor); err != nil {
		return NotificationPage{}, err
	}

	items, err := s.Store.Notifications().ListNotifications(ctx, userID, size, cursor)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("list notifications: %w", err)
	}

	next, hasNext := nextCursor(cursor, size, len(items))
	return NotificationPage{Items: items, Cursor: next, HasNext: hasNext}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return mapNotification(s.Store.Notifications().MarkRead(ctx, userID, id))
}

func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	return mapNotification(s.Store.Notifications().DeleteNotification(ctx, userID, id))
}

// DeleteAll clears the user's ledger. An empty ledger is not an error.
func (s *NotificationService) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.Store.Notifications().DeleteAllNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	n, err := s.Store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func mapNotification(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotificationNotFound
	default:
		return err
	}
}
