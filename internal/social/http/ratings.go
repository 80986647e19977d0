package http

import (
	"net/http"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
)

// RatingHandler serves /rating.
type RatingHandler struct {
	Ratings *service.RatingService
}

// HandleCreate godoc
//
//	@Summary		Rate a user
//	@Description	One rating per rater and rated user. rate is 0.0 to 5.0, stored at one decimal.
//	@Tags			Ratings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		socialsdk.CreateRatingRequest	true	"Rating"
//	@Success		201		{object}	socialsdk.Envelope[socialsdk.Rating]
//	@Failure		400		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		409		{object}	httpx.Envelope	"already rated"
//	@Router			/rating [post]
func (h *RatingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	var req socialsdk.CreateRatingRequest
	if !decode(w, r, &req) {
		return
	}

	rating, err := h.Ratings.Create(r.Context(), req.RatedUserID, service.RoundScore(*req.Rate), ident.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toRating(rating))
}

// HandleEdit godoc
//
//	@Summary		Change a rating
//	@Description	Only the author of the rating may change it.
//	@Tags			Ratings
//	@Accept			json
//	@Produce		json
//	@Param			ratingId	path		int							true	"Rating ID"
//	@Param			request		body		socialsdk.EditRatingRequest	true	"New score"
//	@Success		200			{object}	socialsdk.Envelope[socialsdk.Rating]
//	@Failure		403			{object}	httpx.Envelope
//	@Failure		404			{object}	httpx.Envelope
//	@Router			/rating/{ratingId} [patch]
func (h *RatingHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	id, ok := pathID(w, r, "ratingId")
	if !ok {
		return
	}
	var req socialsdk.EditRatingRequest
	if !decode(w, r, &req) {
		return
	}

	rating, err := h.Ratings.Edit(r.Context(), id, service.RoundScore(*req.Rate), ident.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toRating(rating))
}

// HandleGet godoc
//
//	@Summary		Ratings of a user
//	@Description	Every score the user received with the mean rounded to one decimal (0 when unrated).
//	@Tags			Ratings
//	@Produce		json
//	@Param			ratedUserId	path		int	true	"User ID"
//	@Success		200			{object}	socialsdk.Envelope[socialsdk.RatingSummary]
//	@Router			/rating/{ratedUserId} [get]
func (h *RatingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ratedUserId")
	if !ok {
		return
	}

	sum, err := h.Ratings.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, socialsdk.RatingSummary{Ratings: sum.Ratings, Average: sum.Average})
}

// HandleDelete godoc
//
//	@Summary		Delete a user's ratings
//	@Description	Removes every rating the user received.
//	@Tags			Ratings
//	@Produce		json
//	@Param			userId	path		int	true	"User ID"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope	"user has no ratings"
//	@Router			/rating/{userId} [delete]
func (h *RatingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.Ratings.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "ratings deleted")
}
