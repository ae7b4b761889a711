package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	appkafka "example.com/microblog/internal/broker"
	"example.com/microblog/internal/models"
	"github.com/segmentio/kafka-go"
)

// --- Tweet handlers ---

// createTweetHandler handles POST /tweet/createTweet/{userId}.
// Expects JSON body: {"text": "...", "attachmentRef": "..."}
// The owner is referenced by id alone; a nonexistent owner is only
// caught by the store's foreign key.
func (s *Server) createTweetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		logg.Info("http/tweet", "Bad userId parameter")
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var body models.Tweet
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/tweet", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body.Text) == 0 || len(body.Text) > 1000 {
		logg.Info("http/tweet", "Tweet text length invalid")
		http.Error(w, "tweet text must be 1-1000 characters", http.StatusBadRequest)
		return
	}

	tweet, err := s.tweets.CreateTweet(r.Context(), body, userID)
	if err != nil {
		logg.Error("http/tweet", "Failed to create tweet", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.publishTweetEvent(r, tweet)

	logg.Info("http/tweet", "Tweet created for user id="+strconv.FormatInt(userID, 10))
	writeJSON(w, http.StatusCreated, tweet)
}

// publishTweetEvent emits a tweet_created event for the worker's
// timeline fan-out. Delivery is best effort: the tweet row is already
// committed, so a broker hiccup does not fail the request.
func (s *Server) publishTweetEvent(r *http.Request, tweet models.Tweet) {
	data, err := json.Marshal(tweet)
	if err != nil {
		logg.Error("http/tweet", "Failed to marshal tweet event", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(appkafka.KeyTweetCreated),
		Value: data,
	}
	if err := s.kafkaWriter.WriteMessages(r.Context(), msg); err != nil {
		logg.Error("http/tweet", "Failed to publish tweet event", err)
	}
}

// addReplyHandler handles POST /tweet/addReply/{tweetId}/{userId}.
func (s *Server) addReplyHandler(w http.ResponseWriter, r *http.Request) {
	tweetID, err := parseID(r, "tweetId")
	if err != nil {
		logg.Info("http/tweet", "Bad tweetId parameter")
		http.Error(w, "invalid tweet id", http.StatusBadRequest)
		return
	}
	userID, err := parseID(r, "userId")
	if err != nil {
		logg.Info("http/tweet", "Bad userId parameter")
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var body models.Reply
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/tweet", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body.Text) == 0 || len(body.Text) > 1000 {
		logg.Info("http/tweet", "Reply text length invalid")
		http.Error(w, "reply text must be 1-1000 characters", http.StatusBadRequest)
		return
	}

	reply, err := s.tweets.AddReply(r.Context(), body, tweetID, userID)
	if err != nil {
		logg.Error("http/tweet", "Failed to add reply", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/tweet", "Reply added for tweet id="+strconv.FormatInt(tweetID, 10))
	writeJSON(w, http.StatusCreated, reply)
}

// getTweetsHandler handles GET /tweet/getTweets/{userId}.
func (s *Server) getTweetsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	tweets, err := s.tweets.GetTweetsForUser(r.Context(), userID)
	if err != nil {
		logg.Error("http/tweet", "Failed to get tweets", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	logg.Info("http/tweet", "Listed "+strconv.Itoa(len(tweets))+" tweets")
	writeJSON(w, http.StatusOK, tweets)
}

// getFollowerTweetRepliesHandler handles
// GET /tweet/getFollowerTweetRepliesForUser/{userId}: every tweet of
// the user paired with the replies authored by the user's followers.
func (s *Server) getFollowerTweetRepliesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	views, err := s.tweets.GetFollowerTweetReplies(r.Context(), userID)
	if err != nil {
		logg.Error("http/tweet", "Failed to build follower-reply view", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if views == nil {
		views = []models.TweetWithReplies{}
	}

	writeJSON(w, http.StatusOK, views)
}

// getTimelineHandler handles GET /tweet/timeline/{userId}.
// Query parameters: ?limit=50
func (s *Server) getTimelineHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	items, err := s.tweets.GetTimeline(r.Context(), userID, limit)
	if err != nil {
		logg.Error("http/tweet", "Failed to get timeline", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.FeedItem{}
	}

	writeJSON(w, http.StatusOK, items)
}
