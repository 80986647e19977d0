package domain

import "time"

type User struct {
	ID                 int64
	Email              string
	PasswordHash       string // argon2 encoded
	Nickname           string
	ProfileImage       string // object key in the media bucket
	Position           string
	Skills             []Skill
	EmailAuthCode      *int       // pending email verification code (nullable)
	EmailAuthExpiresAt *time.Time // expiry of EmailAuthCode (nullable)
	IsDeleted          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PublicUser is the projection of a user that other users may see.
type PublicUser struct {
	ID           int64   `json:"id"`
	Nickname     string  `json:"nickname"`
	ProfileImage string  `json:"profileImage"`
	Position     string  `json:"position"`
	Skills       []Skill `json:"skills"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Nickname:     u.Nickname,
		ProfileImage: u.ProfileImage,
		Position:     u.Position,
		Skills:       u.Skills,
	}
}
