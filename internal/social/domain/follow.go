package domain

import "time"

// Follow is a directed edge FollowerID -> FollowingID. A mutual follow is two
// edges in opposite directions.
type Follow struct {
	ID          int64
	FollowerID  int64
	FollowingID int64
	CreatedAt   time.Time
}

// FollowEntry is one row of a followers/following page. Counterpart is the
// user on the other side of the edge from the listed target.
type FollowEntry struct {
	EdgeID      int64
	Counterpart PublicUser
}

type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}
