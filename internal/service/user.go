// Package service holds the application logic between the HTTP
// handlers and the store: participant validation, the follow/unfollow
// rules and the follower-reply view assembly.
package service

import (
	"context"
	"errors"

	"example.com/microblog/internal/models"
	"example.com/microblog/internal/store"
)

var (
	// ErrSelfFollow marks the invalid-relationship case; it is a
	// validation failure, not a missing resource.
	ErrSelfFollow = errors.New("user cannot follow themselves")

	// ErrParticipantNotFound is returned when either side of a
	// follow/unfollow does not resolve to an existing user.
	ErrParticipantNotFound = errors.New("follow participant not found")

	// ErrNotFollowing is returned by unfollow when no edge existed.
	ErrNotFollowing = errors.New("follow relation not found")
)

type UserService struct {
	store store.StoreInterface
}

func NewUserService(st store.StoreInterface) *UserService {
	return &UserService{store: st}
}

// CreateUser persists a new user. A duplicate username surfaces as
// store.ErrUsernameTaken.
func (s *UserService) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return s.store.CreateUser(ctx, user)
}

// DeleteUser removes the user and, first, its appearances in other
// users' follower sets; the store runs both steps in one transaction.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	return s.store.DeleteUser(ctx, userID)
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.store.GetUsers(ctx)
}

// FollowUser adds follower to followed's follower set. Self-follow is
// rejected before any lookup; unresolved participants are rejected
// before the edge is written. Re-following is a silent no-op.
func (s *UserService) FollowUser(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	for _, id := range []int64{followerID, followedID} {
		exists, err := s.store.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrParticipantNotFound
		}
	}

	return s.store.AddFollower(ctx, followedID, followerID)
}

// UnfollowUser removes follower from followed's follower set and
// reports ErrNotFollowing when the edge was not there.
func (s *UserService) UnfollowUser(ctx context.Context, followerID, followedID int64) error {
	for _, id := range []int64{followerID, followedID} {
		exists, err := s.store.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrParticipantNotFound
		}
	}

	removed, err := s.store.RemoveFollower(ctx, followedID, followerID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFollowing
	}
	return nil
}

func (s *UserService) GetFollowers(ctx context.Context, userID int64) ([]models.User, error) {
	return s.store.GetFollowers(ctx, userID)
}
