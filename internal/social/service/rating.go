package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
	"github.com/aussiebroadwan/circle/internal/social/store"
	"github.com/aussiebroadwan/circle/pkg/slogx"
)

type RatingService struct {
	Store         store.Store
	Notifications *NotificationService
	Metrics       *metrics.Collector
}

type RatingSummary struct {
	Ratings []float64 `json:"ratings"`
	Average float64   `json:"average"`
}

// RoundScore rounds to one decimal place.
func RoundScore(v float64) float64 {
	return math.Round(v*10) / 10
}

func validateScore(v float64) error {
	if math.IsNaN(v) || v < domain.MinScore || v > domain.MaxScore {
		return ErrScoreOutOfRange
	}
	return nil
}

// Create records raterID's score for ratedUserID. Callers round the score;
// only the range is checked here.
func (s *RatingService) Create(ctx context.Context, ratedUserID int64, score float64, raterID int64) (domain.Rating, error) {
	if err := validateScore(score); err != nil {
		return domain.Rating{}, err
	}
	if err := requireActive(ctx, s.Store, raterID, ErrAccountInactive); err != nil {
		return domain.Rating{}, err
	}

	if _, err := s.Store.Users().GetUserByID(ctx, ratedUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Rating{}, ErrUserNotFound
		}
		return domain.Rating{}, fmt.Errorf("load user: %w", err)
	}

	exists, err := s.Store.Ratings().Exists(ctx, raterID, ratedUserID)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("check rating: %w", err)
	}
	if exists {
		return domain.Rating{}, ErrDuplicateRating
	}

	r, err := s.Store.Ratings().CreateRating(ctx, domain.Rating{RaterID: raterID, RatedUserID: ratedUserID, Score: score})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Rating{}, ErrDuplicateRating
	}
	if err != nil {
		return domain.Rating{}, fmt.Errorf("create rating: %w", err)
	}
	s.Metrics.RecordRating()

	if s.Notifications != nil {
		msg := fmt.Sprintf("You received a new rating of %.1f", score)
		if _, err := s.Notifications.Create(ctx, ratedUserID, msg); err != nil {
			slogx.FromContext(ctx).Warn("rating notification failed", "user_id", ratedUserID, "error", err)
		}
	}
	return r, nil
}

// Edit changes the score of a rating written by raterID.
func (s *RatingService) Edit(ctx context.Context, ratingID int64, score float64, raterID int64) (domain.Rating, error) {
	r, err := s.Store.Ratings().GetRatingByID(ctx, ratingID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Rating{}, ErrRatingNotFound
	}
	if err != nil {
		return domain.Rating{}, fmt.Errorf("load rating: %w", err)
	}
	if r.RaterID != raterID {
		return domain.Rating{}, ErrNotRater
	}
	if err := validateScore(score); err != nil {
		return domain.Rating{}, err
	}

	if err := s.Store.Ratings().UpdateScore(ctx, ratingID, score); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Rating{}, ErrRatingNotFound
		}
		return domain.Rating{}, fmt.Errorf("update rating: %w", err)
	}
	r.Score = score
	return r, nil
}

// Get returns every score given to the user with their rounded mean.
func (s *RatingService) Get(ctx context.Context, ratedUserID int64) (RatingSummary, error) {
	scores, err := s.Store.Ratings().ScoresFor(ctx, ratedUserID)
	if err != nil {
		return RatingSummary{}, fmt.Errorf("load ratings: %w", err)
	}
	return RatingSummary{Ratings: scores, Average: Average(scores)}, nil
}

// Average is the mean rounded to one decimal, or 0 for no scores.
func Average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return RoundScore(sum / float64(len(scores)))
}

// Delete removes every rating of the user.
func (s *RatingService) Delete(ctx context.Context, ratedUserID int64) error {
	n, err := s.Store.Ratings().DeleteAllFor(ctx, ratedUserID)
	if err != nil {
		return fmt.Errorf("delete ratings: %w", err)
	}
	if n == 0 {
		return ErrRatingNotFound
	}
	return nil
}
