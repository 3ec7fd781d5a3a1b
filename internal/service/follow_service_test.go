package service

import (
	"context"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersNamed(names map[string]uint) *userRepoStub {
	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		id, ok := names[username]
		if !ok {
			return nil, models.NewNotFoundError("User", username)
		}
		return &models.User{ID: id, Username: username}, nil
	}
	return users
}

func TestFollowService_Follow(t *testing.T) {
	t.Parallel()

	var edges [][2]uint
	follows := noopFollowRepo()
	follows.createFn = func(_ context.Context, userID, authorID uint) error {
		edges = append(edges, [2]uint{userID, authorID})
		return nil
	}
	svc := NewFollowService(follows, usersNamed(map[string]uint{"leo": 1, "author": 2}))

	author, err := svc.Follow(context.Background(), 1, "author")
	require.NoError(t, err)
	assert.Equal(t, uint(2), author.ID)
	assert.Equal(t, [][2]uint{{1, 2}}, edges)
}

func TestFollowService_FollowSelfIsNoop(t *testing.T) {
	t.Parallel()

	follows := noopFollowRepo()
	follows.createFn = func(context.Context, uint, uint) error {
		t.Fatal("self-follow must not create an edge")
		return nil
	}
	svc := NewFollowService(follows, usersNamed(map[string]uint{"leo": 1}))

	author, err := svc.Follow(context.Background(), 1, "leo")
	require.NoError(t, err)
	assert.Equal(t, "leo", author.Username)
}

func TestFollowService_UnknownAuthor(t *testing.T) {
	t.Parallel()
	svc := NewFollowService(noopFollowRepo(), usersNamed(nil))

	_, err := svc.Follow(context.Background(), 1, "ghost")
	assert.True(t, models.IsNotFound(err))
	_, err = svc.Unfollow(context.Background(), 1, "ghost")
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()

	var deleted [2]uint
	follows := noopFollowRepo()
	follows.deleteFn = func(_ context.Context, userID, authorID uint) error {
		deleted = [2]uint{userID, authorID}
		return nil
	}
	svc := NewFollowService(follows, usersNamed(map[string]uint{"author": 2}))

	_, err := svc.Unfollow(context.Background(), 1, "author")
	require.NoError(t, err)
	assert.Equal(t, [2]uint{1, 2}, deleted)
}

func TestFollowService_Stats(t *testing.T) {
	t.Parallel()

	follows := noopFollowRepo()
	follows.existsFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
	follows.countFollowersFn = func(context.Context, uint) (int64, error) { return 3, nil }
	follows.countFollowingFn = func(context.Context, uint) (int64, error) { return 1, nil }
	svc := NewFollowService(follows, noopUserRepo())

	stats, err := svc.Stats(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, &FollowStats{Following: true, FollowersCount: 3, FollowingCount: 1}, stats)

	guest, err := svc.Stats(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.False(t, guest.Following)
}
