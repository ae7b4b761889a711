package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	config "example.com/microblog/internal/init"
	"example.com/microblog/internal/logger"
	"example.com/microblog/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

var logg = logger.New()

// ErrUsernameTaken is reported when an insert trips the unique index
// on users.username. The constraint is the sole uniqueness check;
// there is no separate count query.
var ErrUsernameTaken = errors.New("username already taken")

// --- Interfaces ---

type StoreInterface interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	GetUsers(ctx context.Context) ([]models.User, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	AddFollower(ctx context.Context, followedID, followerID int64) error
	RemoveFollower(ctx context.Context, followedID, followerID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64) ([]models.User, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	CreateTweet(ctx context.Context, tweet models.Tweet) (models.Tweet, error)
	CreateReply(ctx context.Context, reply models.Reply) (models.Reply, error)
	GetUserTweets(ctx context.Context, userID int64) ([]models.Tweet, error)
	GetTweetReplies(ctx context.Context, tweetID int64) ([]models.Reply, error)
	AddFeedItem(ctx context.Context, userID int64, item models.FeedItem) error
	GetFeed(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error)
	Close()
}

// --- Store Implementation ---

type Store struct {
	db *sql.DB
}

// New opens the Postgres connection using the config package and runs
// pending migrations before handing the store out.
func New() (StoreInterface, error) {
	cfg := config.Get()

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	logg.Info("store", "Connected to Postgres")
	return &Store{db: db}, nil
}

// --- Migration runner ---

func runMigrations(cfg *config.Config) error {
	sourceURL := fmt.Sprintf("file://%s", cfg.MigrationsDir)

	m, err := migrate.New(sourceURL, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if err == migrate.ErrNoChange {
		logg.Info("store", "No new migrations to apply")
	} else {
		logg.Info("store", "Migrations applied successfully")
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
		logg.Info("store", "Postgres connection closed")
	}
}
