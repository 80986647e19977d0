package socialsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to one circle deployment. It is safe for concurrent use; the
// session cookies it holds are shared by every call.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with its own cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Cookie returns the value of a session cookie held for the service.
func (c *Client) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and decodes the envelope's data into a T.
func do[T any](c *Client, req *http.Request, want int) (T, error) {
	var zero T

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return zero, parseError(resp.StatusCode, body)
	}

	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Data, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body any, want int) (T, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return do[T](c, req, want)
}

func pageValues(q PageQuery, cursorName string) string {
	v := url.Values{}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Cursor > 0 {
		v.Set(cursorName, strconv.Itoa(q.Cursor))
	}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

// ============================================================================
// Health
// ============================================================================

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var h HealthResponse
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &h, nil
}

// ============================================================================
// Users and sessions
// ============================================================================

func (c *Client) Signup(ctx context.Context, email, password string) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/user/signup", SignupRequest{Email: email, Password: password}, http.StatusCreated)
	return &u, err
}

// Login opens a session; the cookies land in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/user/login", LoginRequest{Email: email, Password: password}, http.StatusOK)
	return &u, err
}

// Refresh trades the refresh cookie for a new access cookie.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPost, "/user/refresh", nil, http.StatusOK)
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPost, "/user/logout", nil, http.StatusOK)
	return err
}

// IssuerSecretHeader carries the secret shared between the service and the
// external issuer.
const IssuerSecretHeader = "X-Issuer-Secret"

// Handoff mirrors an external session and stores the native cookies. Only
// the external issuer holds secret.
func (c *Client) Handoff(ctx context.Context, secret string, req HandoffRequest) (*User, error) {
	r, err := c.newRequest(ctx, http.MethodPost, "/auth/spring-auth", req)
	if err != nil {
		return nil, err
	}
	r.Header.Set(IssuerSecretHeader, secret)

	u, err := do[User](c, r, http.StatusOK)
	return &u, err
}

func (c *Client) Info(ctx context.Context) (*User, error) {
	u, err := call[User](ctx, c, http.MethodGet, "/user/info", nil, http.StatusOK)
	return &u, err
}

func (c *Client) Profile(ctx context.Context, userID int64) (*Profile, error) {
	p, err := call[Profile](ctx, c, http.MethodGet, "/user/"+id(userID), nil, http.StatusOK)
	return &p, err
}

// EditProfile sends the changes as a multipart form.
func (c *Client) EditProfile(ctx context.Context, e EditProfileRequest) (*User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if e.Nickname != nil {
		_ = mw.WriteField("nickname", *e.Nickname)
	}
	if e.Position != nil {
		_ = mw.WriteField("position", *e.Position)
	}
	if e.Skills != nil {
		_ = mw.WriteField("skills", strings.Join(e.Skills, ","))
	}
	if e.Image != nil {
		fw, err := mw.CreateFormFile("image", e.ImageName)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		if _, err := fw.Write(e.Image); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.BaseURL+"/user/edit", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	u, err := do[User](c, req, http.StatusOK)
	return &u, err
}

// DeleteAccount soft deletes the caller's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPatch, "/user/delete", nil, http.StatusOK)
	return err
}

func (c *Client) SendEmailAuth(ctx context.Context, email string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPost, "/user/email-auth", EmailRequest{Email: email}, http.StatusOK)
	return err
}

func (c *Client) CheckEmailAuth(ctx context.Context, email string, code int) (bool, error) {
	r, err := call[EmailCheckResponse](ctx, c, http.MethodPost, "/user/email-auth/check", EmailCheckRequest{Email: email, Code: code}, http.StatusOK)
	return r.Matched, err
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPost, "/user/password-reset", EmailRequest{Email: email}, http.StatusOK)
	return err
}

// ============================================================================
// Follows
// ============================================================================

func (c *Client) Followers(ctx context.Context, userID int64, q PageQuery) (*FollowPage, error) {
	p, err := call[FollowPage](ctx, c, http.MethodGet, "/follow/"+id(userID)+"/followers"+pageValues(q, "nextCursor"), nil, http.StatusOK)
	return &p, err
}

func (c *Client) Following(ctx context.Context, userID int64, q PageQuery) (*FollowPage, error) {
	p, err := call[FollowPage](ctx, c, http.MethodGet, "/follow/"+id(userID)+"/following"+pageValues(q, "nextCursor"), nil, http.StatusOK)
	return &p, err
}

func (c *Client) Follow(ctx context.Context, userID int64) (*FollowResponse, error) {
	f, err := call[FollowResponse](ctx, c, http.MethodPost, "/follow/"+id(userID), nil, http.StatusCreated)
	return &f, err
}

func (c *Client) Unfollow(ctx context.Context, userID int64) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "/follow/"+id(userID)+"/unfollow", nil, http.StatusOK)
	return err
}

// RemoveFollower makes userID stop following the caller.
func (c *Client) RemoveFollower(ctx context.Context, userID int64) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "/follow/"+id(userID)+"/unfollower", nil, http.StatusOK)
	return err
}

// ============================================================================
// Ratings
// ============================================================================

func (c *Client) Rate(ctx context.Context, userID int64, rate float64) (*Rating, error) {
	r, err := call[Rating](ctx, c, http.MethodPost, "/rating", CreateRatingRequest{RatedUserID: userID, Rate: &rate}, http.StatusCreated)
	return &r, err
}

func (c *Client) EditRating(ctx context.Context, ratingID int64, rate float64) (*Rating, error) {
	r, err := call[Rating](ctx, c, http.MethodPatch, "/rating/"+id(ratingID), EditRatingRequest{Rate: &rate}, http.StatusOK)
	return &r, err
}

func (c *Client) Ratings(ctx context.Context, userID int64) (*RatingSummary, error) {
	s, err := call[RatingSummary](ctx, c, http.MethodGet, "/rating/"+id(userID), nil, http.StatusOK)
	return &s, err
}

func (c *Client) DeleteRatings(ctx context.Context, userID int64) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "/rating/"+id(userID), nil, http.StatusOK)
	return err
}

// ============================================================================
// Notifications
// ============================================================================

func (c *Client) Notifications(ctx context.Context, q PageQuery) (*NotificationPage, error) {
	p, err := call[NotificationPage](ctx, c, http.MethodGet, "/notification"+pageValues(q, "cursor"), nil, http.StatusOK)
	return &p, err
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	r, err := call[CountResponse](ctx, c, http.MethodGet, "/notification/unread-count", nil, http.StatusOK)
	return r.Count, err
}

func (c *Client) MarkRead(ctx context.Context, notificationID int64) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPatch, "/notification/"+id(notificationID)+"/read", nil, http.StatusOK)
	return err
}

func (c *Client) DeleteNotification(ctx context.Context, notificationID int64) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "/notification/"+id(notificationID), nil, http.StatusOK)
	return err
}

// DeleteAllNotifications clears the caller's ledger and returns how many
// entries went.
func (c *Client) DeleteAllNotifications(ctx context.Context) (int64, error) {
	r, err := call[CountResponse](ctx, c, http.MethodDelete, "/notification", nil, http.StatusOK)
	return r.Count, err
}
