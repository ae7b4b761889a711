package models

import "time"

// User is the transfer object for a user account. Follower edges are
// not embedded; they are exposed through the followers endpoint.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Tweet carries its mapped owner so list responses are self-contained.
type Tweet struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	AttachmentRef string    `json:"attachmentRef,omitempty"`
	Owner         User      `json:"owner"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Reply struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	AttachmentRef string    `json:"attachmentRef,omitempty"`
	Owner         User      `json:"owner"`
	TweetID       int64     `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TweetWithReplies pairs a tweet with the subset of its replies that
// were authored by followers of the tweet's owner.
type TweetWithReplies struct {
	Tweet   Tweet   `json:"tweet"`
	Replies []Reply `json:"replies"`
}

// FeedItem is a denormalized home-timeline entry, written by the
// worker when it fans a tweet out to the author's followers.
type FeedItem struct {
	TweetID       int64     `json:"tweetId"`
	AuthorID      int64     `json:"authorId"`
	Text          string    `json:"text"`
	AttachmentRef string    `json:"attachmentRef,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
