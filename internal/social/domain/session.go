package domain

// Session mirrors an active login in the session cache. UserID is kept as a
// string because external issuers key sessions by their own identifier.
type Session struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

// Authority records which issuer authenticated a request.
type Authority string

const (
	AuthorityLocal    Authority = "local"
	AuthorityExternal Authority = "external"
)

// Identity is the caller as seen by every handler behind an auth gate.
type Identity struct {
	UserID    int64
	Email     string
	Authority Authority
}
