package service

import (
	"context"
	"errors"
	"testing"

	"example.com/microblog/internal/models"
	"example.com/microblog/internal/store"
)

func newUsers(t *testing.T) (*UserService, *store.MockStore) {
	t.Helper()
	st := store.NewMock()
	return NewUserService(st), st
}

func seed(t *testing.T, st *store.MockStore, username string) models.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), models.User{Username: username})
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return u
}

func TestFollowUser(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	a := seed(t, st, "a")
	b := seed(t, st, "b")

	if err := svc.FollowUser(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}

	ids, _ := st.GetFollowerIDs(ctx, b.ID)
	if len(ids) != 1 || ids[0] != a.ID {
		t.Fatalf("expected follower set {%d}, got %v", a.ID, ids)
	}

	// adding an existing follower is a silent no-op
	if err := svc.FollowUser(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("re-follow must not fail: %v", err)
	}
	ids, _ = st.GetFollowerIDs(ctx, b.ID)
	if len(ids) != 1 {
		t.Fatalf("expected no duplicate edge, got %v", ids)
	}
}

// Self-follow always fails, whether or not the user exists.
func TestFollowUser_Self(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	a := seed(t, st, "a")

	if err := svc.FollowUser(ctx, a.ID, a.ID); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow for existing user, got %v", err)
	}
	if err := svc.FollowUser(ctx, 42, 42); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow for unknown user, got %v", err)
	}
}

func TestFollowUser_UnresolvedParticipant(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	a := seed(t, st, "a")

	if err := svc.FollowUser(ctx, a.ID, 42); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
	if err := svc.FollowUser(ctx, 42, a.ID); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestUnfollowUser(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	a := seed(t, st, "a")
	b := seed(t, st, "b")

	if err := svc.FollowUser(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.UnfollowUser(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("UnfollowUser failed: %v", err)
	}
	ids, _ := st.GetFollowerIDs(ctx, b.ID)
	if len(ids) != 0 {
		t.Fatalf("expected empty follower set, got %v", ids)
	}

	// second unfollow: edge absent, size unchanged
	if err := svc.UnfollowUser(ctx, a.ID, b.ID); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}
}

func TestUnfollowUser_UnresolvedParticipant(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	a := seed(t, st, "a")
	if err := svc.UnfollowUser(ctx, a.ID, 42); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, models.User{Username: "taken"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateUser(ctx, models.User{Username: "taken"})
	if !errors.Is(err, store.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	users, _ := st.GetUsers(ctx)
	if len(users) != 1 {
		t.Fatalf("conflict must not add a row, got %d users", len(users))
	}
}

func TestDeleteUser_ClearsFollowEdges(t *testing.T) {
	svc, st := newUsers(t)
	ctx := context.Background()

	a := seed(t, st, "a")
	b := seed(t, st, "b")
	if err := svc.FollowUser(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteUser(ctx, a.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	ids, _ := st.GetFollowerIDs(ctx, b.ID)
	if len(ids) != 0 {
		t.Fatalf("expected deleted user cleared from follower sets, got %v", ids)
	}
}
