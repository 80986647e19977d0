package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories so callers cannot nest transactions by accident.
type Store interface {
	Users() Users
	Follows() Follows
	Ratings() Ratings
	Notifications() Notifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Every Users read excludes soft-deleted rows.
type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a user and returns its id. A live user with the same
	// email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdateProfile writes nickname, position, skills and profile image.
	UpdateProfile(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error

	SetEmailAuthCode(ctx context.Context, userID int64, code int, expiresAt time.Time) error
	ClearEmailAuthCode(ctx context.Context, userID int64) error

	// ClearExpiredEmailAuthCodes is housekeeping; it returns the rows touched.
	ClearExpiredEmailAuthCodes(ctx context.Context, now time.Time) (int64, error)

	// SoftDelete flips is_deleted. The row stays for referential history.
	SoftDelete(ctx context.Context, userID int64) error
}

// FollowQuery selects one page of edges around TargetID. NameFilter is a
// case-insensitive substring match on the counterpart nickname.
type FollowQuery struct {
	TargetID   int64
	NameFilter string
	Limit      int
	Offset     int
}

type Follows interface {
	// CreateFollow inserts follower -> following. An existing edge yields
	// ErrAlreadyExists.
	CreateFollow(ctx context.Context, followerID, followingID int64) (domain.Follow, error)

	Exists(ctx context.Context, followerID, followingID int64) (bool, error)

	// DeleteFollow removes exactly follower -> following, ErrNotFound if absent.
	DeleteFollow(ctx context.Context, followerID, followingID int64) error

	// Followers pages edges pointing at the target, ordered by edge id.
	CountFollowers(ctx context.Context, q FollowQuery) (int, error)
	ListFollowers(ctx context.Context, q FollowQuery) ([]domain.FollowEntry, error)

	// Following pages edges leaving the target, ordered by edge id.
	CountFollowing(ctx context.Context, q FollowQuery) (int, error)
	ListFollowing(ctx context.Context, q FollowQuery) ([]domain.FollowEntry, error)

	// FollowedBy returns which of ids the viewer follows (viewer -> id).
	FollowedBy(ctx context.Context, viewerID int64, ids []int64) (map[int64]bool, error)

	// FollowersOf returns which of ids follow the viewer (id -> viewer).
	FollowersOf(ctx context.Context, viewerID int64, ids []int64) (map[int64]bool, error)

	Counts(ctx context.Context, userID int64) (domain.FollowCounts, error)
}

type Ratings interface {
	// CreateRating inserts a rating. An existing (rater, rated) pair yields
	// ErrAlreadyExists.
	CreateRating(ctx context.Context, r domain.Rating) (domain.Rating, error)

	GetRatingByID(ctx context.Context, id int64) (domain.Rating, error)
	Exists(ctx context.Context, raterID, ratedUserID int64) (bool, error)
	UpdateScore(ctx context.Context, id int64, score float64) error

	// ScoresFor returns every score given to the user, oldest first.
	ScoresFor(ctx context.Context, ratedUserID int64) ([]float64, error)

	// DeleteAllFor removes every rating of the user and returns the count.
	DeleteAllFor(ctx context.Context, ratedUserID int64) (int64, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, userID int64, content string) (domain.Notification, error)

	// ListNotifications pages newest first (created_at DESC, id DESC).
	ListNotifications(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)

	// MarkRead and DeleteNotification only touch rows owned by userID and
	// return ErrNotFound otherwise.
	MarkRead(ctx context.Context, userID, id int64) error
	DeleteNotification(ctx context.Context, userID, id int64) error

	DeleteAllNotifications(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)

	// DeleteReadBefore is housekeeping for acknowledged notifications.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
