package store

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"example.com/microblog/internal/models"
)

// MockStore simulates Postgres semantics in memory for testing,
// including the username unique constraint, follow-set semantics and
// the delete-user cascade.
type MockStore struct {
	Users      map[int64]models.User
	Followers  map[int64][]int64 // followed id -> follower ids
	Tweets     map[int64]models.Tweet
	Replies    map[int64][]models.Reply // tweet id -> replies
	Feed       map[int64][]models.FeedItem
	ShouldFail bool // flag to simulate failures

	nextUserID  int64
	nextTweetID int64
	nextReplyID int64
}

// NewMock initializes a new mock store
func NewMock() *MockStore {
	return &MockStore{
		Users:     make(map[int64]models.User),
		Followers: make(map[int64][]int64),
		Tweets:    make(map[int64]models.Tweet),
		Replies:   make(map[int64][]models.Reply),
		Feed:      make(map[int64][]models.FeedItem),
	}
}

func (m *MockStore) Close() {}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.ShouldFail {
		return models.User{}, errors.New("mock: create user failed")
	}
	for _, u := range m.Users {
		if u.Username == user.Username {
			return models.User{}, ErrUsernameTaken
		}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockStore) DeleteUser(ctx context.Context, userID int64) error {
	if m.ShouldFail {
		return errors.New("mock: delete user failed")
	}
	delete(m.Users, userID)
	delete(m.Followers, userID)
	for followed, ids := range m.Followers {
		kept := ids[:0]
		for _, id := range ids {
			if id != userID {
				kept = append(kept, id)
			}
		}
		m.Followers[followed] = kept
	}
	for id, t := range m.Tweets {
		if t.Owner.ID == userID {
			delete(m.Tweets, id)
			delete(m.Replies, id)
		}
	}
	return nil
}

func (m *MockStore) GetUsers(ctx context.Context) ([]models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get users failed")
	}
	var users []models.User
	for _, id := range slices.Sorted(maps.Keys(m.Users)) {
		users = append(users, m.Users[id])
	}
	return users, nil
}

func (m *MockStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	if m.ShouldFail {
		return false, errors.New("mock: user exists failed")
	}
	_, ok := m.Users[userID]
	return ok, nil
}

func (m *MockStore) AddFollower(ctx context.Context, followedID, followerID int64) error {
	if m.ShouldFail {
		return errors.New("mock: add follower failed")
	}
	for _, id := range m.Followers[followedID] {
		if id == followerID {
			return nil // set semantics: already present
		}
	}
	m.Followers[followedID] = append(m.Followers[followedID], followerID)
	return nil
}

func (m *MockStore) RemoveFollower(ctx context.Context, followedID, followerID int64) (bool, error) {
	if m.ShouldFail {
		return false, errors.New("mock: remove follower failed")
	}
	ids := m.Followers[followedID]
	for i, id := range ids {
		if id == followerID {
			m.Followers[followedID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) GetFollowers(ctx context.Context, userID int64) ([]models.User, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get followers failed")
	}
	var users []models.User
	for _, id := range m.Followers[userID] {
		if u, ok := m.Users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *MockStore) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get follower ids failed")
	}
	return m.Followers[userID], nil
}

func (m *MockStore) CreateTweet(ctx context.Context, tweet models.Tweet) (models.Tweet, error) {
	if m.ShouldFail {
		return models.Tweet{}, errors.New("mock: create tweet failed")
	}
	if _, ok := m.Users[tweet.Owner.ID]; !ok {
		return models.Tweet{}, errors.New("mock: foreign key violation on tweets.user_id")
	}
	m.nextTweetID++
	tweet.ID = m.nextTweetID
	if tweet.CreatedAt.IsZero() {
		tweet.CreatedAt = time.Now()
	}
	m.Tweets[tweet.ID] = tweet
	return tweet, nil
}

func (m *MockStore) CreateReply(ctx context.Context, reply models.Reply) (models.Reply, error) {
	if m.ShouldFail {
		return models.Reply{}, errors.New("mock: create reply failed")
	}
	if _, ok := m.Users[reply.Owner.ID]; !ok {
		return models.Reply{}, errors.New("mock: foreign key violation on replies.user_id")
	}
	if _, ok := m.Tweets[reply.TweetID]; !ok {
		return models.Reply{}, errors.New("mock: foreign key violation on replies.tweet_id")
	}
	m.nextReplyID++
	reply.ID = m.nextReplyID
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	}
	if u, ok := m.Users[reply.Owner.ID]; ok {
		reply.Owner = u
	}
	m.Replies[reply.TweetID] = append(m.Replies[reply.TweetID], reply)
	return reply, nil
}

func (m *MockStore) GetUserTweets(ctx context.Context, userID int64) ([]models.Tweet, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get user tweets failed")
	}
	var tweets []models.Tweet
	for _, id := range slices.Sorted(maps.Keys(m.Tweets)) {
		t := m.Tweets[id]
		if t.Owner.ID != userID {
			continue
		}
		if u, ok := m.Users[userID]; ok {
			t.Owner = u
		}
		tweets = append(tweets, t)
	}
	return tweets, nil
}

func (m *MockStore) GetTweetReplies(ctx context.Context, tweetID int64) ([]models.Reply, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get tweet replies failed")
	}
	return m.Replies[tweetID], nil
}

func (m *MockStore) AddFeedItem(ctx context.Context, userID int64, item models.FeedItem) error {
	if m.ShouldFail {
		return errors.New("mock: add feed item failed")
	}
	for _, it := range m.Feed[userID] {
		if it.TweetID == item.TweetID {
			return nil
		}
	}
	m.Feed[userID] = append(m.Feed[userID], item)
	return nil
}

func (m *MockStore) GetFeed(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: get feed failed")
	}
	items := m.Feed[userID]
	if len(items) > limit {
		return items[:limit], nil
	}
	return items, nil
}

// ---------------------------------------------
// MockStoreFail always returns errors for negative tests
type MockStoreFail struct{}

func (m *MockStoreFail) Close() {}

func (m *MockStoreFail) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return models.User{}, errors.New("mock store create user failed")
}

func (m *MockStoreFail) DeleteUser(ctx context.Context, userID int64) error {
	return errors.New("mock store delete user failed")
}

func (m *MockStoreFail) GetUsers(ctx context.Context) ([]models.User, error) {
	return nil, errors.New("mock store get users failed")
}

func (m *MockStoreFail) UserExists(ctx context.Context, userID int64) (bool, error) {
	return false, errors.New("mock store user exists failed")
}

func (m *MockStoreFail) AddFollower(ctx context.Context, followedID, followerID int64) error {
	return errors.New("mock store add follower failed")
}

func (m *MockStoreFail) RemoveFollower(ctx context.Context, followedID, followerID int64) (bool, error) {
	return false, errors.New("mock store remove follower failed")
}

func (m *MockStoreFail) GetFollowers(ctx context.Context, userID int64) ([]models.User, error) {
	return nil, errors.New("mock store get followers failed")
}

func (m *MockStoreFail) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return nil, errors.New("mock store get follower ids failed")
}

func (m *MockStoreFail) CreateTweet(ctx context.Context, tweet models.Tweet) (models.Tweet, error) {
	return models.Tweet{}, errors.New("mock store create tweet failed")
}

func (m *MockStoreFail) CreateReply(ctx context.Context, reply models.Reply) (models.Reply, error) {
	return models.Reply{}, errors.New("mock store create reply failed")
}

func (m *MockStoreFail) GetUserTweets(ctx context.Context, userID int64) ([]models.Tweet, error) {
	return nil, errors.New("mock store get user tweets failed")
}

func (m *MockStoreFail) GetTweetReplies(ctx context.Context, tweetID int64) ([]models.Reply, error) {
	return nil, errors.New("mock store get tweet replies failed")
}

func (m *MockStoreFail) AddFeedItem(ctx context.Context, userID int64, item models.FeedItem) error {
	return errors.New("mock store add feed item failed")
}

func (m *MockStoreFail) GetFeed(ctx context.Context, userID int64, limit int) ([]models.FeedItem, error) {
	return nil, errors.New("mock store get feed failed")
}
