package social_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/circle/pkg/socialsdk"
	"github.com/stretchr/testify/require"
)

// TestFollowLifecycle follows, lists and unfollows across two accounts.
func TestFollowLifecycle(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	alice, a := newUser(t, baseURL, "alice@example.com")
	bob, b := newUser(t, baseURL, "bob@example.com")

	f, err := alice.Follow(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, f.FollowerID)
	require.Equal(t, b.ID, f.FollowingID)

	_, err = alice.Follow(ctx, b.ID)
	assertStatus(t, err, http.StatusConflict)

	_, err = alice.Follow(ctx, a.ID)
	assertStatus(t, err, http.StatusBadRequest)

	_, err = alice.Follow(ctx, 999999)
	assertStatus(t, err, http.StatusNotFound)

	followers, err := bob.Followers(ctx, b.ID, socialsdk.PageQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, followers.TotalCount)
	require.Len(t, followers.Items, 1)
	require.Equal(t, a.ID, followers.Items[0].ID)
	require.True(t, followers.Items[0].IsFollower)
	require.False(t, followers.Items[0].IsFollowing)

	// Following back flips the relationship flags.
	_, err = bob.Follow(ctx, a.ID)
	require.NoError(t, err)
	following, err := alice.Following(ctx, a.ID, socialsdk.PageQuery{})
	require.NoError(t, err)
	require.Len(t, following.Items, 1)
	require.True(t, following.Items[0].IsFollower)
	require.True(t, following.Items[0].IsFollowing)

	profile, err := alice.Profile(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, profile.Followers)
	require.Equal(t, 1, profile.Following)
	require.True(t, profile.IsFollowing)
	require.True(t, profile.IsFollower)

	require.NoError(t, alice.Unfollow(ctx, b.ID))
	assertStatus(t, alice.Unfollow(ctx, b.ID), http.StatusNotFound)

	require.NoError(t, alice.RemoveFollower(ctx, b.ID))
	followers, err = alice.Followers(ctx, a.ID, socialsdk.PageQuery{})
	require.NoError(t, err)
	require.Zero(t, followers.TotalCount)
}

// TestFollowPagination pages through followers with a name filter.
func TestFollowPagination(t *testing.T) {
	baseURL, cleanup := setupSocialContainer(t)
	defer cleanup()
	ctx := t.Context()

	target, star := newUser(t, baseURL, "star@example.com")
	for i := range 5 {
		c, _ := newUser(t, baseURL, fmt.Sprintf("fan%d@example.com", i))
		_, err := c.Follow(ctx, star.ID)
		require.NoError(t, err)
	}

	var seen []int64
	q := socialsdk.PageQuery{Size: 2}
	for {
		page, err := target.Followers(ctx, star.ID, q)
		require.NoError(t, err)
		require.Equal(t, 5, page.TotalCount)
		for _, item := range page.Items {
			seen = append(seen, item.ID)
		}
		if !page.HasNext {
			break
		}
		require.NotNil(t, page.Cursor)
		q.Cursor = *page.Cursor
	}
	require.Len(t, seen, 5)

	filtered, err := target.Followers(ctx, star.ID, socialsdk.PageQuery{Name: "fan3"})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.TotalCount)
	require.Len(t, filtered.Items, 1)
}
