package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/internal/social/media"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
)

// maxEditBytes bounds the whole multipart body of a profile edit.
const maxEditBytes = media.MaxImageBytes + 1<<20

// UserHandler serves account and session endpoints under /user.
type UserHandler struct {
	Users    *service.UserService
	Sessions *service.SessionService
	Cookies  Cookies
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Registers an account. The nickname starts as the local part of the email.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		socialsdk.SignupRequest	true	"Credentials"
//	@Success		201		{object}	socialsdk.Envelope[socialsdk.User]
//	@Failure		400		{object}	httpx.Envelope	"invalid email or short password"
//	@Failure		409		{object}	httpx.Envelope	"email already registered"
//	@Router			/user/signup [post]
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req socialsdk.SignupRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.Users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toUser(u))
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Checks credentials and sets the accessToken and refreshToken cookies.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		socialsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	socialsdk.Envelope[socialsdk.User]
//	@Failure		400		{object}	httpx.Envelope	"email or password is incorrect"
//	@Router			/user/login [post]
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req socialsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	u, pair, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.set(w, authn.AccessCookie, pair.AccessToken, pair.AccessTTL, http.SameSiteStrictMode)
	h.Cookies.set(w, authn.RefreshCookie, pair.RefreshToken, pair.RefreshTTL, http.SameSiteStrictMode)
	httpx.WriteData(w, http.StatusOK, toUser(u))
}

// HandleRefresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Trades the refresh cookie for a new accessToken cookie.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		401	{object}	httpx.Envelope	"refresh token missing, expired, revoked or the account is deleted"
//	@Router			/user/refresh [post]
func (h *UserHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	access, ttl, err := h.Sessions.Refresh(r.Context(), ident)
	if errors.Is(err, service.ErrUserNotFound) {
		h.Cookies.clear(w, authn.AccessCookie)
		h.Cookies.clear(w, authn.RefreshCookie)
		httpx.WriteError(w, http.StatusUnauthorized, "account is no longer active")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.set(w, authn.AccessCookie, access, ttl, http.SameSiteStrictMode)
	httpx.WriteMessage(w, http.StatusOK, "access token refreshed")
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Drops the cached session and clears both cookies.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		401	{object}	httpx.Envelope
//	@Router			/user/logout [post]
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	if err := h.Sessions.Logout(r.Context(), ident); err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.clear(w, authn.AccessCookie)
	h.Cookies.clear(w, authn.RefreshCookie)
	httpx.WriteMessage(w, http.StatusOK, "logged out")
}

// HandleInfo godoc
//
//	@Summary		Current account
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	socialsdk.Envelope[socialsdk.User]
//	@Failure		401	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Router			/user/info [get]
func (h *UserHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	u, err := h.Users.Info(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toUser(u))
}

// HandleProfile godoc
//
//	@Summary		Public profile
//	@Description	Another user's profile with follow counts and the caller's relationship to them.
//	@Tags			Users
//	@Produce		json
//	@Param			userId	path		int	true	"User ID"
//	@Success		200		{object}	socialsdk.Envelope[socialsdk.Profile]
//	@Failure		404		{object}	httpx.Envelope
//	@Router			/user/{userId} [get]
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	p, err := h.Users.PublicProfile(r.Context(), ident.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toProfile(p))
}

// HandleEdit godoc
//
//	@Summary		Edit profile
//	@Description	Fields that are absent stay unchanged. skills is comma separated; an empty value clears it.
//	@Tags			Users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			nickname	formData	string	false	"Nickname"
//	@Param			position	formData	string	false	"Position"
//	@Param			skills		formData	string	false	"Comma separated skills"
//	@Param			image		formData	file	false	"Profile image, at most 5MB"
//	@Success		200			{object}	socialsdk.Envelope[socialsdk.User]
//	@Failure		400			{object}	httpx.Envelope
//	@Router			/user/edit [patch]
func (h *UserHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxEditBytes)
	if err := r.ParseMultipartForm(maxEditBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		httpx.WriteError(w, http.StatusBadRequest, "request body must be a form under 6MB")
		return
	}

	var p service.EditParams
	if vals, ok := r.Form["nickname"]; ok && len(vals) > 0 {
		p.Nickname = &vals[0]
	}
	if vals, ok := r.Form["position"]; ok && len(vals) > 0 {
		p.Position = &vals[0]
	}
	if vals, ok := r.Form["skills"]; ok {
		p.Skills = []string{}
		for _, v := range vals {
			p.Skills = append(p.Skills, strings.Split(v, ",")...)
		}
	}

	file, hdr, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, media.MaxImageBytes+1))
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "could not read image")
			return
		}
		p.Image = &service.Upload{Filename: hdr.Filename, Data: data}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		httpx.WriteError(w, http.StatusBadRequest, "could not read image")
		return
	}

	u, err := h.Users.Edit(r.Context(), ident.UserID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toUser(u))
}

// HandleDelete godoc
//
//	@Summary		Delete account
//	@Description	Soft deletes the caller's account and ends the session.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Router			/user/delete [patch]
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	if err := h.Users.SoftDelete(r.Context(), ident.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.clear(w, authn.AccessCookie)
	h.Cookies.clear(w, authn.RefreshCookie)
	httpx.WriteMessage(w, http.StatusOK, "account deleted")
}

// HandleSendEmailAuth godoc
//
//	@Summary		Send verification code
//	@Description	Mails a six digit code valid for ten minutes, replacing any pending code.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		socialsdk.EmailRequest	true	"Email"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Router			/user/email-auth [post]
func (h *UserHandler) HandleSendEmailAuth(w http.ResponseWriter, r *http.Request) {
	var req socialsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Users.SendEmailAuth(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "verification code sent")
}

// HandleCheckEmailAuth godoc
//
//	@Summary		Check verification code
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		socialsdk.EmailCheckRequest	true	"Email and code"
//	@Success		200		{object}	socialsdk.Envelope[socialsdk.EmailCheckResponse]
//	@Failure		404		{object}	httpx.Envelope	"no pending code"
//	@Router			/user/email-auth/check [post]
func (h *UserHandler) HandleCheckEmailAuth(w http.ResponseWriter, r *http.Request) {
	var req socialsdk.EmailCheckRequest
	if !decode(w, r, &req) {
		return
	}

	matched, err := h.Users.CheckEmailAuth(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, socialsdk.EmailCheckResponse{Matched: matched})
}

// HandleResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Replaces the password with a temporary one and mails it.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		socialsdk.EmailRequest	true	"Email"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		404		{object}	httpx.Envelope
//	@Router			/user/password-reset [post]
func (h *UserHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req socialsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Users.ResetPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "temporary password sent")
}

// HandoffHandler serves POST /auth/spring-auth.
type HandoffHandler struct {
	Sessions *service.SessionService
	Cookies  Cookies
}

// ServeHTTP godoc
//
//	@Summary		External session handoff
//	@Description	Mirrors a session opened by the external identity provider into the session cache and sets native cookies with SameSite=None.
//	@Description	Only the issuer may call it; the X-Issuer-Secret header must carry the shared secret.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			X-Issuer-Secret	header		string						true	"Secret shared with the issuer"
//	@Param			request			body		socialsdk.HandoffRequest	true	"External session"
//	@Success		200				{object}	socialsdk.Envelope[socialsdk.User]
//	@Failure		401				{object}	httpx.Envelope	"issuer secret missing or invalid"
//	@Failure		404		{object}	httpx.Envelope	"no such user with that email"
//	@Router			/auth/spring-auth [post]
func (h *HandoffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req socialsdk.HandoffRequest
	if !decode(w, r, &req) {
		return
	}

	u, pair, err := h.Sessions.Handoff(r.Context(), req.UserID, req.Email, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.set(w, authn.AccessCookie, pair.AccessToken, pair.AccessTTL, http.SameSiteNoneMode)
	h.Cookies.set(w, authn.RefreshCookie, pair.RefreshToken, pair.RefreshTTL, http.SameSiteNoneMode)
	httpx.WriteData(w, http.StatusOK, toUser(u))
}
