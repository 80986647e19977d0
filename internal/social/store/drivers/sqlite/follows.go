package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/store"
)

type followsRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *followsRepo) CreateFollow(ctx context.Context, followerID, followingID int64) (domain.Follow, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		followerID, followingID, now,
	)
	if err != nil {
		return domain.Follow{}, mapConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Follow{}, err
	}
	return domain.Follow{ID: id, FollowerID: followerID, FollowingID: followingID, CreatedAt: now}, nil
}

func (r *followsRepo) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	).Scan(&n)
	return n > 0, err
}

func (r *followsRepo) DeleteFollow(ctx context.Context, followerID, followingID int64) error {
	return expectOne(r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	))
}

// edgeSide names the columns for one direction of a listing. anchor is the
// column holding the target, other joins to the counterpart user.
type edgeSide struct {
	anchor string
	other  string
}

var (
	followersSide = edgeSide{anchor: "following_id", other: "follower_id"}
	followingSide = edgeSide{anchor: "follower_id", other: "following_id"}
)

func (s edgeSide) where(q store.FollowQuery) (string, []any) {
	clause := ` FROM follows f JOIN users u ON u.id = f.` + s.other + `
		WHERE f.` + s.anchor + ` = ? AND u.is_deleted = 0`
	args := []any{q.TargetID}
	if q.NameFilter != "" {
		clause += ` AND LOWER(u.nickname) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(q.NameFilter))
	}
	return clause, args
}

func (r *followsRepo) count(ctx context.Context, side edgeSide, q store.FollowQuery) (int, error) {
	clause, args := side.where(q)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+clause, args...).Scan(&n)
	return n, err
}

func (r *followsRepo) list(ctx context.Context, side edgeSide, q store.FollowQuery) ([]domain.FollowEntry, error) {
	clause, args := side.where(q)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, u.id, u.nickname, u.profile_image, u.position, u.skills`+clause+`
		ORDER BY f.id
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.FollowEntry{}
	for rows.Next() {
		var (
			e      domain.FollowEntry
			skills string
		)
		if err := rows.Scan(&e.EdgeID, &e.Counterpart.ID, &e.Counterpart.Nickname,
			&e.Counterpart.ProfileImage, &e.Counterpart.Position, &skills); err != nil {
			return nil, err
		}
		e.Counterpart.Skills = splitSkills(skills)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *followsRepo) CountFollowers(ctx context.Context, q store.FollowQuery) (int, error) {
	return r.count(ctx, followersSide, q)
}

func (r *followsRepo) ListFollowers(ctx context.Context, q store.FollowQuery) ([]domain.FollowEntry, error) {
	return r.list(ctx, followersSide, q)
}

func (r *followsRepo) CountFollowing(ctx context.Context, q store.FollowQuery) (int, error) {
	return r.count(ctx, followingSide, q)
}

func (r *followsRepo) ListFollowing(ctx context.Context, q store.FollowQuery) ([]domain.FollowEntry, error) {
	return r.list(ctx, followingSide, q)
}

func (r *followsRepo) FollowedBy(ctx context.Context, viewerID int64, ids []int64) (map[int64]bool, error) {
	return r.edgeSet(ctx, `SELECT following_id FROM follows WHERE follower_id = ? AND following_id IN (`, viewerID, ids)
}

func (r *followsRepo) FollowersOf(ctx context.Context, viewerID int64, ids []int64) (map[int64]bool, error) {
	return r.edgeSet(ctx, `SELECT follower_id FROM follows WHERE following_id = ? AND follower_id IN (`, viewerID, ids)
}

// edgeSet runs one batched IN query and collects the returned ids.
func (r *followsRepo) edgeSet(ctx context.Context, prefix string, viewerID int64, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, viewerID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, prefix+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *followsRepo) Counts(ctx context.Context, userID int64) (domain.FollowCounts, error) {
	var c domain.FollowCounts
	var err error
	if c.Followers, err = r.CountFollowers(ctx, store.FollowQuery{TargetID: userID}); err != nil {
		return c, err
	}
	if c.Following, err = r.CountFollowing(ctx, store.FollowQuery{TargetID: userID}); err != nil {
		return c, err
	}
	return c, nil
}
