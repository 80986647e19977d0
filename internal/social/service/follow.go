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

// FollowService answers who follows whom. Each listed counterpart is
// annotated with its relationship to the viewer, resolved with two batched
// lookups per page.
type FollowService struct {
	Store         store.Store
	Notifications *NotificationService
	Metrics       *metrics.Collector
}

type FollowItem struct {
	domain.PublicUser
	IsFollower  bool `json:"isFollower"`  // counterpart follows the viewer
	IsFollowing bool `json:"isFollowing"` // viewer follows the counterpart
}

type FollowPage struct {
	Items      []FollowItem `json:"items"`
	Cursor     *int         `json:"cursor"`
	HasNext    bool         `json:"hasNext"`
	TotalCount int          `json:"totalCount"`
}

type ListParams struct {
	ViewerID   int64
	TargetID   int64
	Size       int
	Cursor     int
	NameFilter string
}

// ListFollowers pages the users following the target.
func (s *FollowService) ListFollowers(ctx context.Context, p ListParams) (FollowPage, error) {
	return s.list(ctx, p, s.Store.Follows().CountFollowers, s.Store.Follows().ListFollowers)
}

// ListFollowing pages the users the target follows.
func (s *FollowService) ListFollowing(ctx context.Context, p ListParams) (FollowPage, error) {
	return s.list(ctx, p, s.Store.Follows().CountFollowing, s.Store.Follows().ListFollowing)
}

func (s *FollowService) list(
	ctx context.Context,
	p ListParams,
	count func(context.Context, store.FollowQuery) (int, error),
	page func(context.Context, store.FollowQuery) ([]domain.FollowEntry, error),
) (FollowPage, error) {
	if err := validatePage(p.Size, p.Cursor); err != nil {
		return FollowPage{}, err
	}
	if err := s.requireUser(ctx, p.TargetID); err != nil {
		return FollowPage{}, err
	}

	q := store.FollowQuery{TargetID: p.TargetID, NameFilter: p.NameFilter, Limit: p.Size, Offset: p.Cursor}

	total, err := count(ctx, q)
	if err != nil {
		return FollowPage{}, fmt.Errorf("count follows: %w", err)
	}

	entries, err := page(ctx, q)
	if err != nil {
		return FollowPage{}, fmt.Errorf("list follows: %w", err)
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.Counterpart.ID
	}

	following, err := s.Store.Follows().FollowedBy(ctx, p.ViewerID, ids)
	if err != nil {
		return FollowPage{}, fmt.Errorf("resolve following: %w", err)
	}
	followers, err := s.Store.Follows().FollowersOf(ctx, p.ViewerID, ids)
	if err != nil {
		return FollowPage{}, fmt.Errorf("resolve followers: %w", err)
	}

	items := make([]FollowItem, len(entries))
	for i, e := range entries {
		items[i] = FollowItem{
			PublicUser:  e.Counterpart,
			IsFollower:  followers[e.Counterpart.ID],
			IsFollowing: following[e.Counterpart.ID],
		}
	}

	next, hasNext := nextCursor(p.Cursor, p.Size, len(items))
	return FollowPage{Items: items, Cursor: next, HasNext: hasNext, TotalCount: total}, nil
}

// CreateFollow adds follower -> following and notifies the followed user.
// The existence check is a fast path; the store's unique constraint decides
// concurrent races.
func (s *FollowService) CreateFollow(ctx context.Context, followerID, followingID int64) (domain.Follow, error) {
	if followerID == followingID {
		return domain.Follow{}, ErrSelfFollow
	}
	if err := requireActive(ctx, s.Store, followerID, ErrAccountInactive); err != nil {
		return domain.Follow{}, err
	}
	if err := s.requireUser(ctx, followingID); err != nil {
		return domain.Follow{}, err
	}

	exists, err := s.Store.Follows().Exists(ctx, followerID, followingID)
	if err != nil {
		return domain.Follow{}, fmt.Errorf("check follow: %w", err)
	}
	if exists {
		return domain.Follow{}, ErrAlreadyFollowing
	}

	f, err := s.Store.Follows().CreateFollow(ctx, followerID, followingID)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Follow{}, ErrAlreadyFollowing
	}
	if err != nil {
		return domain.Follow{}, fmt.Errorf("create follow: %w", err)
	}
	s.Metrics.RecordFollow()

	s.notifyFollowed(ctx, followerID, followingID)
	return f, nil
}

func (s *FollowService) notifyFollowed(ctx context.Context, followerID, followingID int64) {
	if s.Notifications == nil {
		return
	}
	log := slogx.FromContext(ctx)

	follower, err := s.Store.Users().GetUserByID(ctx, followerID)
	if err != nil {
		log.Warn("follow notification skipped", "follower_id", followerID, "error", err)
		return
	}
	if _, err := s.Notifications.Create(ctx, followingID, displayName(follower)+" started following you"); err != nil {
		log.Warn("follow notification failed", "user_id", followingID, "error", err)
	}
}

// Unfollow removes me -> target.
func (s *FollowService) Unfollow(ctx context.Context, me, target int64) error {
	return mapFollow(s.Store.Follows().DeleteFollow(ctx, me, target))
}

// RemoveFollower removes follower -> me.
func (s *FollowService) RemoveFollower(ctx context.Context, me, follower int64) error {
	return mapFollow(s.Store.Follows().DeleteFollow(ctx, follower, me))
}

func (s *FollowService) Counts(ctx context.Context, userID int64) (domain.FollowCounts, error) {
	c, err := s.Store.Follows().Counts(ctx, userID)
	if err != nil {
		return domain.FollowCounts{}, fmt.Errorf("follow counts: %w", err)
	}
	return c, nil
}

// Relationship reports viewer -> other and other -> viewer.
func (s *FollowService) Relationship(ctx context.Context, viewerID, otherID int64) (isFollowing, isFollower bool, err error) {
	if isFollowing, err = s.Store.Follows().Exists(ctx, viewerID, otherID); err != nil {
		return false, false, err
	}
	if isFollower, err = s.Store.Follows().Exists(ctx, otherID, viewerID); err != nil {
		return false, false, err
	}
	return isFollowing, isFollower, nil
}

func (s *FollowService) requireUser(ctx context.Context, id int64) error {
	_, err := s.Store.Users().GetUserByID(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("load user: %w", err)
	}
}

func mapFollow(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrFollowNotFound
	default:
		return err
	}
}

func displayName(u domain.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return "Someone"
}
