package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/usecase"
)

func newEngagement(likes *fakeLikeRepo) *usecase.EngagementUsecase {
	return usecase.NewEngagementUsecase(likes, testLogger())
}

func TestLike_OwnMessage_Rejected(t *testing.T) {
	likes := &fakeLikeRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) {
			return false, domain.ErrSelfLike
		},
	}

	_, err := newEngagement(likes).Like(context.Background(), 1, 7)
	if !errors.Is(err, domain.ErrSelfLike) {
		t.Errorf("want ErrSelfLike, got %v", err)
	}
}

func TestLike_MissingMessage_Propagates(t *testing.T) {
	likes := &fakeLikeRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) {
			return false, domain.ErrMessageNotFound
		},
	}

	_, err := newEngagement(likes).Like(context.Background(), 1, 404)
	if !errors.Is(err, domain.ErrMessageNotFound) {
		t.Errorf("want ErrMessageNotFound, got %v", err)
	}
}

func TestLike_NewEdge(t *testing.T) {
	likes := &fakeLikeRepo{
		create: func(_ context.Context, userID, messageID int64) (bool, error) {
			if userID != 1 || messageID != 7 {
				t.Errorf("Create(%d, %d), want (1, 7)", userID, messageID)
			}
			return true, nil
		},
	}

	already, err := newEngagement(likes).Like(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if already {
		t.Error("new edge reported as already liked")
	}
}

func TestLike_Repeated_IsNoOp(t *testing.T) {
	likes := &fakeLikeRepo{
		create: func(_ context.Context, _, _ int64) (bool, error) {
			return false, nil // edge already present, or a lost insert race
		},
	}

	already, err := newEngagement(likes).Like(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("repeat like must not error, got %v", err)
	}
	if !already {
		t.Error("expected already-liked report")
	}
}

func TestUnlike_Absent_IsNoOp(t *testing.T) {
	likes := &fakeLikeRepo{
		delete: func(_ context.Context, _, _ int64) (bool, error) {
			return false, nil
		},
	}

	was, err := newEngagement(likes).Unlike(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unlike of absent edge must not error, got %v", err)
	}
	if was {
		t.Error("absent edge reported as previously liked")
	}
}

func TestLikedMessageIDs(t *testing.T) {
	likes := &fakeLikeRepo{
		messageIDs: func(_ context.Context, userID int64) ([]int64, error) {
			if userID != 1 {
				t.Errorf("MessageIDs(%d), want 1", userID)
			}
			return []int64{9, 4, 2}, nil
		},
	}

	ids, err := newEngagement(likes).LikedMessageIDs(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int64{9, 4, 2}, ids); diff != "" {
		t.Errorf("liked message ids mismatch (-want +got):\n%s", diff)
	}
}
