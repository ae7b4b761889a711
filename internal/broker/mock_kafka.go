package appkafka

import (
	"context"
	"encoding/json"
	"errors"

	"example.com/microblog/internal/models"
	"example.com/microblog/internal/store"
	"github.com/segmentio/kafka-go"
)

// MockKafka applies tweet events to the store synchronously, standing
// in for the writer-broker-worker round trip in tests.
type MockKafka struct {
	Store           *store.MockStore
	WrittenMessages []kafka.Message // stores messages written via WriteMessages
	ReadMessages    []kafka.Message // queue of messages to be read via ReadMessage
	ShouldFail      bool            // flag to simulate failures
}

// WriteMessages simulates publishing a tweet event, immediately
// fanning the tweet out to the author's followers.
func (m *MockKafka) WriteMessages(ctx context.Context, messages ...kafka.Message) error {
	if m.ShouldFail {
		return errors.New("mock kafka write failed")
	}
	if m.Store == nil {
		return errors.New("store is nil")
	}

	for _, msg := range messages {
		m.WrittenMessages = append(m.WrittenMessages, msg)

		var tweet models.Tweet
		if err := json.Unmarshal(msg.Value, &tweet); err != nil {
			return err
		}

		item := models.FeedItem{
			TweetID:       tweet.ID,
			AuthorID:      tweet.Owner.ID,
			Text:          tweet.Text,
			AttachmentRef: tweet.AttachmentRef,
			CreatedAt:     tweet.CreatedAt,
		}

		followerIDs, _ := m.Store.GetFollowerIDs(ctx, tweet.Owner.ID)
		for _, followerID := range followerIDs {
			_ = m.Store.AddFeedItem(ctx, followerID, item)
		}
	}

	return nil
}

// ReadMessage pops the next queued message.
func (m *MockKafka) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if m.ShouldFail {
		return kafka.Message{}, errors.New("mock kafka read failed")
	}
	if len(m.ReadMessages) == 0 {
		return kafka.Message{}, errors.New("no messages")
	}
	msg := m.ReadMessages[0]
	m.ReadMessages = m.ReadMessages[1:]
	return msg, nil
}

// Close is a no-op.
func (m *MockKafka) Close() error { return nil }

// MockKafkaFail always fails.
type MockKafkaFail struct{}

func (m *MockKafkaFail) WriteMessages(ctx context.Context, messages ...kafka.Message) error {
	return errors.New("mock kafka write failed")
}

func (m *MockKafkaFail) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("mock kafka read failed")
}

func (m *MockKafkaFail) Close() error { return nil }
