package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
)

// FollowHandler serves the follow graph under /follow.
type FollowHandler struct {
	Follows *service.FollowService
}

func (h *FollowHandler) listParams(w http.ResponseWriter, r *http.Request) (service.ListParams, bool) {
	ident, _ := authn.IdentityFrom(r.Context())
	target, ok := pathID(w, r, "userId")
	if !ok {
		return service.ListParams{}, false
	}
	size, ok := queryInt(w, r, "size", service.DefaultPageSize)
	if !ok {
		return service.ListParams{}, false
	}
	cursor, ok := queryInt(w, r, "nextCursor", 0)
	if !ok {
		return service.ListParams{}, false
	}
	return service.ListParams{
		ViewerID:   ident.UserID,
		TargetID:   target,
		Size:       size,
		Cursor:     cursor,
		NameFilter: strings.TrimSpace(r.URL.Query().Get("name")),
	}, true
}

// HandleFollowers godoc
//
//	@Summary		List followers
//	@Description	Users following userId, each flagged with whether they follow the caller and the caller follows them.
//	@Tags			Follows
//	@Produce		json
//	@Param			userId		path		int		true	"User ID"
//	@Param			size		query		int		false	"Page size (1-100)"	default(10)
//	@Param			nextCursor	query		int		false	"Offset of the page"	default(0)
//	@Param			name		query		string	false	"Case-insensitive nickname filter"
//	@Success		200			{object}	socialsdk.Envelope[socialsdk.FollowPage]
//	@Failure		400			{object}	httpx.Envelope
//	@Failure		404			{object}	httpx.Envelope
//	@Router			/follow/{userId}/followers [get]
func (h *FollowHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.listParams(w, r)
	if !ok {
		return
	}

	page, err := h.Follows.ListFollowers(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toFollowPage(page))
}

// HandleFollowing godoc
//
//	@Summary		List following
//	@Description	Users userId follows, each flagged with whether they follow the caller and the caller follows them.
//	@Tags			Follows
//	@Produce		json
//	@Param			userId		path		int		true	"User ID"
//	@Param			size		query		int		false	"Page size (1-100)"	default(10)
//	@Param			nextCursor	query		int		false	"Offset of the page"	default(0)
//	@Param			name		query		string	false	"Case-insensitive nickname filter"
//	@Success		200			{object}	socialsdk.Envelope[socialsdk.FollowPage]
//	@Failure		400			{object}	httpx.Envelope
//	@Failure		404			{object}	httpx.Envelope
//	@Router			/follow/{userId}/following [get]
func (h *FollowHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	p, ok := h.listParams(w, r)
	if !ok {
		return
	}

	page, err := h.Follows.ListFollowing(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toFollowPage(page))
}

// HandleCreate godoc
//
//	@Summary		Follow a user
//	@Tags			Follows
//	@Produce		json
//	@Param			userId	path		int	true	"User to follow"
//	@Success		201		{object}	socialsdk.Envelope[socialsdk.FollowResponse]
//	@Failure		400		{object}	httpx.Envelope	"self follow"
//	@Failure		404		{object}	httpx.Envelope
//	@Failure		409		{object}	httpx.Envelope	"already following"
//	@Router			/follow/{userId} [post]
func (h *FollowHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	target, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	f, err := h.Follows.CreateFollow(r.Context(), ident.UserID, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, socialsdk.FollowResponse{
		ID:          f.ID,
		FollowerID:  f.FollowerID,
		FollowingID: f.FollowingID,
	})
}

// HandleUnfollow godoc
//
//	@Summary		Unfollow a user
//	@Tags			Follows
//	@Produce		json
//	@Param			userId	path		int	true	"User to stop following"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Router			/follow/{userId}/unfollow [delete]
func (h *FollowHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	target, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.Follows.Unfollow(r.Context(), ident.UserID, target); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "unfollowed")
}

// HandleRemoveFollower godoc
//
//	@Summary		Remove a follower
//	@Tags			Follows
//	@Produce		json
//	@Param			userId	path		int	true	"Follower to remove"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Router			/follow/{userId}/unfollower [delete]
func (h *FollowHandler) HandleRemoveFollower(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	follower, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.Follows.RemoveFollower(r.Context(), ident.UserID, follower); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "follower removed")
}
