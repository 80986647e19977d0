package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateFollow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")

	_, err := env.follows.CreateFollow(ctx, a, b)
	require.NoError(t, err)

	t.Run("duplicate is a conflict", func(t *testing.T) {
		_, err := env.follows.CreateFollow(ctx, a, b)
		require.ErrorIs(t, err, ErrAlreadyFollowing)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("self follow always fails", func(t *testing.T) {
		_, err := env.follows.CreateFollow(ctx, a, a)
		require.ErrorIs(t, err, ErrSelfFollow)

		// Even for ids that do not exist.
		_, err = env.follows.CreateFollow(ctx, 999, 999)
		require.ErrorIs(t, err, ErrSelfFollow)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := env.follows.CreateFollow(ctx, a, 999)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("notifies the followed user", func(t *testing.T) {
		sent := env.notifier.For(b)
		require.Len(t, sent, 1)
		require.Equal(t, "a started following you", sent[0].Content)
	})
}

func TestConcurrentCreateFollowConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.follows.CreateFollow(ctx, a, b)
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyFollowing):
			conflict++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflict)
}

func TestListFollowingRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")
	c := env.signup(t, "c@example.com")

	_, err := env.follows.CreateFollow(ctx, a, b)
	require.NoError(t, err)
	_, err = env.follows.CreateFollow(ctx, a, c)
	require.NoError(t, err)
	_, err = env.follows.CreateFollow(ctx, b, a)
	require.NoError(t, err)

	page, err := env.follows.ListFollowing(ctx, ListParams{ViewerID: a, TargetID: a, Size: 10})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Items, 2)
	require.False(t, page.HasNext)
	require.Nil(t, page.Cursor)

	require.Equal(t, b, page.Items[0].ID)
	require.True(t, page.Items[0].IsFollowing)
	require.True(t, page.Items[0].IsFollower)

	require.Equal(t, c, page.Items[1].ID)
	require.True(t, page.Items[1].IsFollowing)
	require.False(t, page.Items[1].IsFollower)
}

func TestListFollowersFromAnotherViewer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	target := env.signup(t, "t@example.com")
	viewer := env.signup(t, "v@example.com")
	x := env.signup(t, "x@example.com")
	y := env.signup(t, "y@example.com")

	for _, id := range []int64{x, y} {
		_, err := env.follows.CreateFollow(ctx, id, target)
		require.NoError(t, err)
	}
	_, err := env.follows.CreateFollow(ctx, viewer, y)
	require.NoError(t, err)
	_, err = env.follows.CreateFollow(ctx, x, viewer)
	require.NoError(t, err)

	page, err := env.follows.ListFollowers(ctx, ListParams{ViewerID: viewer, TargetID: target, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	require.Equal(t, x, page.Items[0].ID)
	require.False(t, page.Items[0].IsFollowing)
	require.True(t, page.Items[0].IsFollower)

	require.Equal(t, y, page.Items[1].ID)
	require.True(t, page.Items[1].IsFollowing)
	require.False(t, page.Items[1].IsFollower)
}

func TestFullPageReportsHasNext(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	target := env.signup(t, "t@example.com")
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := env.follows.CreateFollow(ctx, env.signup(t, email), target)
		require.NoError(t, err)
	}

	page, err := env.follows.ListFollowers(ctx, ListParams{ViewerID: target, TargetID: target, Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 2, page.TotalCount)
	require.True(t, page.HasNext)
	require.NotNil(t, page.Cursor)
	require.Equal(t, 2, *page.Cursor)

	page, err = env.follows.ListFollowers(ctx, ListParams{ViewerID: target, TargetID: target, Size: 2, Cursor: 2})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.False(t, page.HasNext)
	require.Nil(t, page.Cursor)
}

func TestListFollowersNameFilter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	target := env.signup(t, "t@example.com")
	alice := env.signup(t, "alice@example.com")
	bob := env.signup(t, "bob@example.com")
	env.rename(t, alice, "Alice Liddell")
	for _, id := range []int64{alice, bob} {
		_, err := env.follows.CreateFollow(ctx, id, target)
		require.NoError(t, err)
	}

	page, err := env.follows.ListFollowers(ctx, ListParams{ViewerID: target, TargetID: target, Size: 10, NameFilter: "liddell"})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Alice Liddell", page.Items[0].Nickname)
}

func TestListValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.signup(t, "a@example.com")

	_, err := env.follows.ListFollowers(ctx, ListParams{ViewerID: a, TargetID: a, Size: 0})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.follows.ListFollowers(ctx, ListParams{ViewerID: a, TargetID: a, Size: MaxPageSize + 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.follows.ListFollowing(ctx, ListParams{ViewerID: a, TargetID: a, Size: 5, Cursor: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.follows.ListFollowing(ctx, ListParams{ViewerID: a, TargetID: 999, Size: 5})
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, env.users.SoftDelete(ctx, a))
	_, err = env.follows.ListFollowers(ctx, ListParams{ViewerID: a, TargetID: a, Size: 5})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnfollowAndRemoveFollower(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")

	_, err := env.follows.CreateFollow(ctx, a, b)
	require.NoError(t, err)
	_, err = env.follows.CreateFollow(ctx, b, a)
	require.NoError(t, err)

	require.NoError(t, env.follows.Unfollow(ctx, a, b))
	require.ErrorIs(t, env.follows.Unfollow(ctx, a, b), ErrFollowNotFound)

	// a removes b from its followers: deletes b -> a.
	require.NoError(t, env.follows.RemoveFollower(ctx, a, b))
	require.ErrorIs(t, env.follows.RemoveFollower(ctx, a, b), ErrNotFound)

	counts, err := env.follows.Counts(ctx, a)
	require.NoError(t, err)
	require.Zero(t, counts.Followers)
	require.Zero(t, counts.Following)
}

func TestCreateFollowRejectsDeletedFollower(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")
	require.NoError(t, env.users.SoftDelete(ctx, a))

	_, err := env.follows.CreateFollow(ctx, a, b)
	require.ErrorIs(t, err, ErrAccountInactive)
	require.ErrorIs(t, err, ErrForbidden)

	counts, err := env.follows.Counts(ctx, b)
	require.NoError(t, err)
	require.Zero(t, counts.Followers)
	require.Empty(t, env.notifier.For(b))
}

func TestFollowNotificationHidesEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// The local part is empty, so no nickname is derived at signup.
	anon := env.signup(t, "@example.com")
	b := env.signup(t, "b@example.com")

	_, err := env.follows.CreateFollow(ctx, anon, b)
	require.NoError(t, err)

	sent := env.notifier.For(b)
	require.Len(t, sent, 1)
	require.Equal(t, "Someone started following you", sent[0].Content)
	require.NotContains(t, sent[0].Content, "@")
}
