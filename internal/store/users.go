package store

import (
	"context"
	"errors"

	"example.com/microblog/internal/models"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// --- User operations ---

// CreateUser inserts a new user row. A duplicate username surfaces as
// ErrUsernameTaken; the unique index decides, not the application.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `INSERT INTO users (username, first_name, last_name)
		VALUES ($1, $2, $3) RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		user.Username, user.FirstName, user.LastName,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, ErrUsernameTaken
		}
		logg.Error("store", "Failed to create user", err)
		return models.User{}, err
	}

	return user, nil
}

// DeleteUser clears the user's appearances in other users' follower
// sets and removes the row in one transaction. Owned tweets, replies
// and incoming follow edges go with it via FK cascade.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1`, userID); err != nil {
		logg.Error("store", "Failed to clear follow edges", err)
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`, userID); err != nil {
		logg.Error("store", "Failed to delete user row", err)
		return err
	}

	return tx.Commit()
}

func (s *Store) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, first_name, last_name FROM users ORDER BY id`)
	if err != nil {
		logg.Error("store", "Failed to list users", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		logg.Error("store", "Failed to check user existence", err)
		return false, err
	}
	return exists, nil
}

// --- Follow operations ---

// AddFollower records the edge on the followed user. Re-following is
// a silent no-op thanks to ON CONFLICT DO NOTHING.
func (s *Store) AddFollower(ctx context.Context, followedID, followerID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (followed_id, follower_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followedID, followerID,
	)
	if err != nil {
		logg.Error("store", "Failed to add follower", err)
	}
	return err
}

// RemoveFollower deletes the edge and reports whether it was present.
func (s *Store) RemoveFollower(ctx context.Context, followedID, followerID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE followed_id = $1 AND follower_id = $2`,
		followedID, followerID,
	)
	if err != nil {
		logg.Error("store", "Failed to remove follower", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetFollowers(ctx context.Context, userID int64) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY u.id`,
		userID,
	)
	if err != nil {
		logg.Error("store", "Failed to get followers", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT follower_id FROM follows WHERE followed_id = $1`, userID)
	if err != nil {
		logg.Error("store", "Failed to get follower ids", err)
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
