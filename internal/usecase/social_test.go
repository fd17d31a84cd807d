package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/usecase"
)

func newSocial(follows *fakeFollowRepo, cache *fakeFeedCache) *usecase.SocialUsecase {
	var c usecase.FeedCache
	if cache != nil {
		c = cache
	}
	return usecase.NewSocialUsecase(follows, c, testLogger())
}

func TestFollow_Self_Rejected(t *testing.T) {
	follows := &fakeFollowRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) {
			t.Fatal("repository reached for a self-follow")
			return false, nil
		},
	}
	uc := newSocial(follows, nil)

	for _, id := range []int64{1, 7, 42} {
		if _, err := uc.Follow(context.Background(), id, id); !errors.Is(err, domain.ErrSelfFollow) {
			t.Errorf("Follow(%d, %d): want ErrSelfFollow, got %v", id, id, err)
		}
	}
}

func TestFollow_NewEdge(t *testing.T) {
	follows := &fakeFollowRepo{
		create: func(_ context.Context, followerID, followedID int64) (bool, error) {
			if followerID != 1 || followedID != 2 {
				t.Errorf("Create(%d, %d), want (1, 2)", followerID, followedID)
			}
			return true, nil
		},
	}

	already, err := newSocial(follows, nil).Follow(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if already {
		t.Error("new edge reported as already following")
	}
}

func TestFollow_Repeated_IsNoOp(t *testing.T) {
	follows := &fakeFollowRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) {
			return false, nil // edge already present
		},
	}

	already, err := newSocial(follows, nil).Follow(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("repeat follow must not error, got %v", err)
	}
	if !already {
		t.Error("expected already-following report")
	}
}

func TestFollow_UnknownFollowed_Propagates(t *testing.T) {
	follows := &fakeFollowRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) {
			return false, domain.ErrUserNotFound
		},
	}

	_, err := newSocial(follows, nil).Follow(context.Background(), 1, 99)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestFollow_InvalidatesFollowerFeed(t *testing.T) {
	follows := &fakeFollowRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) { return true, nil },
	}
	cache := &fakeFeedCache{}

	if _, err := newSocial(follows, cache).Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cache.invalidated) != 1 || len(cache.invalidated[0]) != 1 || cache.invalidated[0][0] != 1 {
		t.Errorf("invalidated %v, want [[1]]", cache.invalidated)
	}
}

func TestUnfollow_Absent_IsNoOp(t *testing.T) {
	follows := &fakeFollowRepo{
		delete: func(_ context.Context, _, _ int64) (bool, error) {
			return false, nil
		},
	}

	was, err := newSocial(follows, nil).Unfollow(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unfollow of absent edge must not error, got %v", err)
	}
	if was {
		t.Error("absent edge reported as previously following")
	}
}

func TestUnfollow_RemovesEdge(t *testing.T) {
	follows := &fakeFollowRepo{
		delete: func(_ context.Context, followerID, followedID int64) (bool, error) {
			if followerID != 1 || followedID != 2 {
				t.Errorf("Delete(%d, %d), want (1, 2)", followerID, followedID)
			}
			return true, nil
		},
	}
	cache := &fakeFeedCache{}

	was, err := newSocial(follows, cache).Unfollow(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !was {
		t.Error("expected wasFollowing report")
	}
	if len(cache.invalidated) != 1 {
		t.Error("unfollow must invalidate the follower's feed page")
	}
}

func TestIsFollowedBy_FlipsDirection(t *testing.T) {
	var gotFollower, gotFollowed int64
	follows := &fakeFollowRepo{
		exists: func(_ context.Context, followerID, followedID int64) (bool, error) {
			gotFollower, gotFollowed = followerID, followedID
			return true, nil
		},
	}
	uc := newSocial(follows, nil)

	ok, err := uc.IsFollowedBy(context.Background(), 1, 2)
	if err != nil || !ok {
		t.Fatalf("unexpected result: %v, %v", ok, err)
	}
	if gotFollower != 2 || gotFollowed != 1 {
		t.Errorf("Exists(%d, %d), want (2, 1)", gotFollower, gotFollowed)
	}
}
