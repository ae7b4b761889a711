package store

import (
	"context"

	"example.com/microblog/internal/models"
)

// --- Tweet operations ---

// CreateTweet persists a tweet referencing its owner by id alone. A
// nonexistent owner is rejected by the foreign key.
func (s *Store) CreateTweet(ctx context.Context, tweet models.Tweet) (models.Tweet, error) {
	query := `INSERT INTO tweets (text, attachment, user_id)
		VALUES ($1, $2, $3) RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		tweet.Text, tweet.AttachmentRef, tweet.Owner.ID,
	).Scan(&tweet.ID, &tweet.CreatedAt)
	if err != nil {
		logg.Error("store", "Failed to create tweet", err)
		return models.Tweet{}, err
	}
	return tweet, nil
}

func (s *Store) CreateReply(ctx context.Context, reply models.Reply) (models.Reply, error) {
	query := `INSERT INTO replies (text, attachment, user_id, tweet_id)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		reply.Text, reply.AttachmentRef, reply.Owner.ID, reply.TweetID,
	).Scan(&reply.ID, &reply.CreatedAt)
	if err != nil {
		logg.Error("store", "Failed to create reply", err)
		return models.Reply{}, err
	}
	return reply, nil
}

func (s *Store) GetUserTweets(ctx context.Context, userID int64) ([]models.Tweet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.text, t.attachment, t.created_at,
		       u.id, u.username, u.first_name, u.last_name
		FROM tweets t
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1
		ORDER BY t.id`,
		userID,
	)
	if err != nil {
		logg.Error("store", "Failed to get user tweets", err)
		return nil, err
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		var t models.Tweet
		if err := rows.Scan(
			&t.ID, &t.Text, &t.AttachmentRef, &t.CreatedAt,
			&t.Owner.ID, &t.Owner.Username, &t.Owner.FirstName, &t.Owner.LastName,
		); err != nil {
			return nil, err
		}
		tweets = append(tweets, t)
	}
	return tweets, rows.Err()
}

func (s *Store) GetTweetReplies(ctx context.Context, tweetID int64) ([]models.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.text, r.attachment, r.tweet_id, r.created_at,
		       u.id, u.username, u.first_name, u.last_name
		FROM replies r
		JOIN users u ON u.id = r.user_id
		WHERE r.tweet_id = $1
		ORDER BY r.id`,
		tweetID,
	)
	if err != nil {
		logg.Error("store", "Failed to get tweet replies", err)
		return nil, err
	}
	defer rows.Close()

	var replies []models.Reply
	for rows.Next() {
		var r models.Reply
		if err := rows.Scan(
			&r.ID, &r.Text, &r.AttachmentRef, &r.TweetID, &r.CreatedAt,
			&r.Owner.ID, &r.Owner.Username, &r.Owner.FirstName, &r.Owner.LastName,
		); err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

// --- Feed operations ---

// AddFeedItem writes one home-timeline entry. Duplicate deliveries
// (worker retries) are absorbed by the primary key.
func (s *Store) AddFeedItem(ctx context.Context, userID int64, item models.FeedItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feed_items (user_id, tweet_id, author_id, text, attachment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
		userID, item.TweetID, item.AuthorID, item.Text, item.AttachmentRef, item.CreatedAt,
	)
	if err != nil {
		logg.Error("store", "Failed to add feed item", err)
	}
	return err
}

func (s *Store) GetFeed(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tweet_id, author_id, text, attachment, created_at
		FROM feed_items WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		logg.Error("store", "Failed to get feed", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.FeedItem
	for rows.Next() {
		var it models.FeedItem
		if err := rows.Scan(&it.TweetID, &it.AuthorID, &it.Text, &it.AttachmentRef, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
