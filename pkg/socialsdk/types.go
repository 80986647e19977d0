package socialsdk

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the body of every JSON response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Push     string `json:"push"`
}

// ============================================================================
// Users and sessions
// ============================================================================

type SignupRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest starts the email code and password reset flows.
type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type EmailCheckRequest struct {
	Email string `json:"email" validate:"required"`
	Code  int    `json:"code" validate:"min=0,max=999999"`
}

type EmailCheckResponse struct {
	Matched bool `json:"matched"`
}

// HandoffRequest mirrors a session opened by the external issuer.
type HandoffRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Email  string `json:"email" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// User is the caller's own account.
type User struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Nickname     string   `json:"nickname"`
	ProfileImage string   `json:"profileImage"`
	Position     string   `json:"position"`
	Skills       []string `json:"skills"`
}

// Profile is another user's account as seen by the caller.
type Profile struct {
	ID           int64    `json:"id"`
	Nickname     string   `json:"nickname"`
	ProfileImage string   `json:"profileImage"`
	Position     string   `json:"position"`
	Skills       []string `json:"skills"`
	Followers    int      `json:"followers"`
	Following    int      `json:"following"`
	IsFollowing  bool     `json:"isFollowing"`
	IsFollower   bool     `json:"isFollower"`
}

// EditProfileRequest carries optional profile changes. Nil fields are left
// unchanged; a non-nil empty Skills clears them.
type EditProfileRequest struct {
	Nickname *string
	Position *string
	Skills   []string

	ImageName string
	Image     []byte
}

// ============================================================================
// Follows
// ============================================================================

// PageQuery selects a page of an offset-paginated list.
type PageQuery struct {
	Size   int
	Cursor int
	Name   string
}

type FollowEntry struct {
	ID           int64    `json:"id"`
	Nickname     string   `json:"nickname"`
	ProfileImage string   `json:"profileImage"`
	Position     string   `json:"position"`
	Skills       []string `json:"skills"`
	IsFollower   bool     `json:"isFollower"`
	IsFollowing  bool     `json:"isFollowing"`
}

type FollowPage struct {
	Items      []FollowEntry `json:"items"`
	Cursor     *int          `json:"cursor"`
	HasNext    bool          `json:"hasNext"`
	TotalCount int           `json:"totalCount"`
}

type FollowResponse struct {
	ID          int64 `json:"id"`
	FollowerID  int64 `json:"followerId"`
	FollowingID int64 `json:"followingId"`
}

// ============================================================================
// Ratings
// ============================================================================

type CreateRatingRequest struct {
	RatedUserID int64    `json:"ratedUserId" validate:"required,gt=0"`
	Rate        *float64 `json:"rate" validate:"required"`
}

type EditRatingRequest struct {
	Rate *float64 `json:"rate" validate:"required"`
}

type Rating struct {
	ID          int64   `json:"id"`
	RaterID     int64   `json:"raterId"`
	RatedUserID int64   `json:"ratedUserId"`
	Rate        float64 `json:"rate"`
}

type RatingSummary struct {
	Ratings []float64 `json:"ratings"`
	Average float64   `json:"average"`
}

// ============================================================================
// Notifications
// ============================================================================

type Notification struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

type NotificationPage struct {
	Items   []Notification `json:"items"`
	Cursor  *int           `json:"cursor"`
	HasNext bool           `json:"hasNext"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
