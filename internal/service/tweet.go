package service

import (
	"context"

	"example.com/microblog/internal/models"
	"example.com/microblog/internal/store"
)

type TweetService struct {
	store store.StoreInterface
}

func NewTweetService(st store.StoreInterface) *TweetService {
	return &TweetService{store: st}
}

// CreateTweet persists a tweet owned by userID. There is no existence
// check on the owner; a bad id is rejected by the store's foreign key.
func (s *TweetService) CreateTweet(ctx context.Context, tweet models.Tweet, userID int64) (models.Tweet, error) {
	tweet.Owner = models.User{ID: userID}
	return s.store.CreateTweet(ctx, tweet)
}

// AddReply persists a reply referencing a tweet and an author by id
// alone, same shape as CreateTweet.
func (s *TweetService) AddReply(ctx context.Context, reply models.Reply, tweetID, userID int64) (models.Reply, error) {
	reply.Owner = models.User{ID: userID}
	reply.TweetID = tweetID
	return s.store.CreateReply(ctx, reply)
}

func (s *TweetService) GetTweetsForUser(ctx context.Context, userID int64) ([]models.Tweet, error) {
	return s.store.GetUserTweets(ctx, userID)
}

// GetFollowerTweetReplies assembles, for every tweet owned by userID,
// the subset of that tweet's replies authored by followers of the
// owner. Tweets with no qualifying replies still appear with an empty
// replies list.
func (s *TweetService) GetFollowerTweetReplies(ctx context.Context, userID int64) ([]models.TweetWithReplies, error) {
	tweets, err := s.store.GetUserTweets(ctx, userID)
	if err != nil {
		return nil, err
	}

	followerIDs, err := s.store.GetFollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	followerSet := make(map[int64]struct{}, len(followerIDs))
	for _, id := range followerIDs {
		followerSet[id] = struct{}{}
	}

	views := make([]models.TweetWithReplies, 0, len(tweets))
	for _, tweet := range tweets {
		replies, err := s.store.GetTweetReplies(ctx, tweet.ID)
		if err != nil {
			return nil, err
		}

		filtered := make([]models.Reply, 0, len(replies))
		for _, reply := range replies {
			if _, ok := followerSet[reply.Owner.ID]; ok {
				filtered = append(filtered, reply)
			}
		}

		views = append(views, models.TweetWithReplies{
			Tweet:   tweet,
			Replies: filtered,
		})
	}
	return views, nil
}

// GetTimeline reads the denormalized home timeline fanned out by the
// worker.
func (s *TweetService) GetTimeline(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error) {
	return s.store.GetFeed(ctx, userID, limit)
}
