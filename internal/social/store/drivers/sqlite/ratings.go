package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
)

type ratingsRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *ratingsRepo) CreateRating(ctx context.Context, rt domain.Rating) (domain.Rating, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (rater_id, rated_user_id, score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		rt.RaterID, rt.RatedUserID, rt.Score, now, now,
	)
	if err != nil {
		return domain.Rating{}, mapConstraint(err)
	}
	if rt.ID, err = res.LastInsertId(); err != nil {
		return domain.Rating{}, err
	}
	rt.CreatedAt, rt.UpdatedAt = now, now
	return rt, nil
}

func (r *ratingsRepo) GetRatingByID(ctx context.Context, id int64) (domain.Rating, error) {
	var rt domain.Rating
	err := r.db.QueryRowContext(ctx, `
		SELECT id, rater_id, rated_user_id, score, created_at, updated_at
		FROM ratings WHERE id = ?`, id,
	).Scan(&rt.ID, &rt.RaterID, &rt.RatedUserID, &rt.Score, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return domain.Rating{}, mapNotFound(err)
	}
	return rt, nil
}

func (r *ratingsRepo) Exists(ctx context.Context, raterID, ratedUserID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE rater_id = ? AND rated_user_id = ?`,
		raterID, ratedUserID,
	).Scan(&n)
	return n > 0, err
}

func (r *ratingsRepo) UpdateScore(ctx context.Context, id int64, score float64) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE ratings SET score = ?, updated_at = ? WHERE id = ?`,
		score, r.now(), id,
	))
}

func (r *ratingsRepo) ScoresFor(ctx context.Context, ratedUserID int64) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT score FROM ratings WHERE rated_user_id = ? ORDER BY id`, ratedUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []float64{}
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ratingsRepo) DeleteAllFor(ctx context.Context, ratedUserID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE rated_user_id = ?`, ratedUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
