package http

import (
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
)

func skillNames(skills []domain.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = string(s)
	}
	return out
}

func toUser(u domain.User) socialsdk.User {
	return socialsdk.User{
		ID:           u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		ProfileImage: u.ProfileImage,
		Position:     u.Position,
		Skills:       skillNames(u.Skills),
	}
}

func toProfile(p service.Profile) socialsdk.Profile {
	return socialsdk.Profile{
		ID:           p.ID,
		Nickname:     p.Nickname,
		ProfileImage: p.ProfileImage,
		Position:     p.Position,
		Skills:       skillNames(p.Skills),
		Followers:    p.Followers,
		Following:    p.Following,
		IsFollowing:  p.IsFollowing,
		IsFollower:   p.IsFollower,
	}
}

func toFollowPage(p service.FollowPage) socialsdk.FollowPage {
	items := make([]socialsdk.FollowEntry, len(p.Items))
	for i, it := range p.Items {
		items[i] = socialsdk.FollowEntry{
			ID:           it.ID,
			Nickname:     it.Nickname,
			ProfileImage: it.ProfileImage,
			Position:     it.Position,
			Skills:       skillNames(it.Skills),
			IsFollower:   it.IsFollower,
			IsFollowing:  it.IsFollowing,
		}
	}
	return socialsdk.FollowPage{
		Items:      items,
		Cursor:     p.Cursor,
		HasNext:    p.HasNext,
		TotalCount: p.TotalCount,
	}
}

func toRating(r domain.Rating) socialsdk.Rating {
	return socialsdk.Rating{
		ID:          r.ID,
		RaterID:     r.RaterID,
		RatedUserID: r.RatedUserID,
		Rate:        r.Score,
	}
}

func toNotificationPage(p service.NotificationPage) socialsdk.NotificationPage {
	items := make([]socialsdk.Notification, len(p.Items))
	for i, n := range p.Items {
		items[i] = socialsdk.Notification{
			ID:        n.ID,
			UserID:    n.UserID,
			Content:   n.Content,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return socialsdk.NotificationPage{Items: items, Cursor: p.Cursor, HasNext: p.HasNext}
}
