package server

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"example.com/microblog/internal/models"
	"example.com/microblog/internal/store"
)

func seedUser(t *testing.T, st *store.MockStore, username string) models.User {
	t.Helper()
	return mustCreateUser(t, st, username)
}

func seedTweet(t *testing.T, st *store.MockStore, ownerID int64, text string) models.Tweet {
	t.Helper()
	tw, err := st.CreateTweet(context.Background(), models.Tweet{
		Text:  text,
		Owner: models.User{ID: ownerID},
	})
	if err != nil {
		t.Fatalf("CreateTweet failed: %v", err)
	}
	return tw
}

func seedReply(t *testing.T, st *store.MockStore, tweetID, authorID int64, text string) {
	t.Helper()
	_, err := st.CreateReply(context.Background(), models.Reply{
		Text:    text,
		Owner:   models.User{ID: authorID},
		TweetID: tweetID,
	})
	if err != nil {
		t.Fatalf("CreateReply failed: %v", err)
	}
}

func TestCreateTweet(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)

	author := seedUser(t, mockStore, "author")

	url := ts.URL + "/tweet/createTweet/" + strconv.FormatInt(author.ID, 10)
	body := models.Tweet{Text: "hello world", AttachmentRef: "img://1"}
	resp := sendJSONRequest(t, http.MethodPost, url, body, makeTestJWT(author.ID), http.StatusCreated)

	var created models.Tweet
	decodeBody(t, resp, &created)
	if created.ID == 0 || created.Text != "hello world" || created.AttachmentRef != "img://1" {
		t.Fatalf("unexpected created tweet: %+v", created)
	}
	if created.Owner.ID != author.ID {
		t.Fatalf("expected owner %d, got %d", author.ID, created.Owner.ID)
	}
}

func TestCreateTweet_BadID(t *testing.T) {
	_, _, ts := setupTestServer(t)
	sendJSONRequest(t, http.MethodPost, ts.URL+"/tweet/createTweet/abc",
		models.Tweet{Text: "x"}, makeTestJWT(1), http.StatusBadRequest)
}

func TestCreateTweet_UnknownOwner(t *testing.T) {
	_, _, ts := setupTestServer(t)
	// no existence check in the handler: the store's foreign key rejects it
	sendJSONRequest(t, http.MethodPost, ts.URL+"/tweet/createTweet/99",
		models.Tweet{Text: "x"}, makeTestJWT(1), http.StatusInternalServerError)
}

func TestCreateTweet_EmptyText(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)
	author := seedUser(t, mockStore, "author")
	sendJSONRequest(t, http.MethodPost,
		ts.URL+"/tweet/createTweet/"+strconv.FormatInt(author.ID, 10),
		models.Tweet{Text: ""}, makeTestJWT(author.ID), http.StatusBadRequest)
}

func TestAddReply(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)

	author := seedUser(t, mockStore, "author")
	replier := seedUser(t, mockStore, "replier")
	tweet := seedTweet(t, mockStore, author.ID, "first")

	url := ts.URL + "/tweet/addReply/" + strconv.FormatInt(tweet.ID, 10) +
		"/" + strconv.FormatInt(replier.ID, 10)
	resp := sendJSONRequest(t, http.MethodPost, url,
		models.Reply{Text: "nice one"}, makeTestJWT(replier.ID), http.StatusCreated)

	var created models.Reply
	decodeBody(t, resp, &created)
	if created.ID == 0 || created.Text != "nice one" {
		t.Fatalf("unexpected created reply: %+v", created)
	}

	replies, _ := mockStore.GetTweetReplies(context.Background(), tweet.ID)
	if len(replies) != 1 {
		t.Fatalf("expected 1 stored reply, got %d", len(replies))
	}
}

func TestAddReply_BadIDs(t *testing.T) {
	_, _, ts := setupTestServer(t)
	sendJSONRequest(t, http.MethodPost, ts.URL+"/tweet/addReply/x/1",
		models.Reply{Text: "r"}, makeTestJWT(1), http.StatusBadRequest)
	sendJSONRequest(t, http.MethodPost, ts.URL+"/tweet/addReply/1/x",
		models.Reply{Text: "r"}, makeTestJWT(1), http.StatusBadRequest)
}

func TestGetTweets(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)

	author := seedUser(t, mockStore, "author")
	url := ts.URL + "/tweet/getTweets/" + strconv.FormatInt(author.ID, 10)

	// empty: 200 + empty array
	resp := sendJSONRequest(t, http.MethodGet, url, nil, makeTestJWT(author.ID), http.StatusOK)
	var tweets []models.Tweet
	decodeBody(t, resp, &tweets)
	if len(tweets) != 0 {
		t.Fatalf("expected empty list, got %v", tweets)
	}

	seedTweet(t, mockStore, author.ID, "one")
	seedTweet(t, mockStore, author.ID, "two")

	resp = sendJSONRequest(t, http.MethodGet, url, nil, makeTestJWT(author.ID), http.StatusOK)
	decodeBody(t, resp, &tweets)
	if len(tweets) != 2 {
		t.Fatalf("expected 2 tweets, got %d", len(tweets))
	}
	if tweets[0].Owner.Username != "author" {
		t.Fatalf("expected mapped owner on tweets, got %+v", tweets[0].Owner)
	}
}

// Follower-reply view: user 1 has followers {2, 3}; their tweet has
// replies from authors {2, 4}; only the reply by 2 survives the
// filter, and tweets without qualifying replies still appear.
func TestGetFollowerTweetReplies(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)

	owner := seedUser(t, mockStore, "owner")     // id 1
	fan := seedUser(t, mockStore, "fan")         // id 2
	lurker := seedUser(t, mockStore, "lurker")   // id 3
	drifter := seedUser(t, mockStore, "drifter") // id 4

	ctx := context.Background()
	mockStore.AddFollower(ctx, owner.ID, fan.ID)
	mockStore.AddFollower(ctx, owner.ID, lurker.ID)

	tweet := seedTweet(t, mockStore, owner.ID, "big news")
	quiet := seedTweet(t, mockStore, owner.ID, "nothing here")

	seedReply(t, mockStore, tweet.ID, fan.ID, "from a follower")
	seedReply(t, mockStore, tweet.ID, drifter.ID, "from a stranger")

	url := ts.URL + "/tweet/getFollowerTweetRepliesForUser/" + strconv.FormatInt(owner.ID, 10)
	resp := sendJSONRequest(t, http.MethodGet, url, nil, makeTestJWT(owner.ID), http.StatusOK)

	var views []models.TweetWithReplies
	decodeBody(t, resp, &views)

	if len(views) != 2 {
		t.Fatalf("expected 2 tweet views, got %d", len(views))
	}

	byTweet := make(map[int64]models.TweetWithReplies, len(views))
	for _, v := range views {
		byTweet[v.Tweet.ID] = v
	}

	got := byTweet[tweet.ID]
	if len(got.Replies) != 1 {
		t.Fatalf("expected exactly one filtered reply, got %d", len(got.Replies))
	}
	if got.Replies[0].Owner.ID != fan.ID {
		t.Fatalf("expected reply author %d, got %d", fan.ID, got.Replies[0].Owner.ID)
	}

	if len(byTweet[quiet.ID].Replies) != 0 {
		t.Fatalf("tweet without qualifying replies must appear with empty replies list")
	}
}

func TestGetFollowerTweetReplies_NoFollowers(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)

	owner := seedUser(t, mockStore, "owner")
	stranger := seedUser(t, mockStore, "stranger")
	tweet := seedTweet(t, mockStore, owner.ID, "shout")
	seedReply(t, mockStore, tweet.ID, stranger.ID, "echo")

	url := ts.URL + "/tweet/getFollowerTweetRepliesForUser/" + strconv.FormatInt(owner.ID, 10)
	resp := sendJSONRequest(t, http.MethodGet, url, nil, makeTestJWT(owner.ID), http.StatusOK)

	var views []models.TweetWithReplies
	decodeBody(t, resp, &views)
	if len(views) != 1 || len(views[0].Replies) != 0 {
		t.Fatalf("expected the tweet with an empty replies list, got %+v", views)
	}
}

// Creating a tweet through the handler must land on followers'
// timelines via the (mocked) event round trip.
func TestTimelineFanout(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)

	author := seedUser(t, mockStore, "author")
	follower := seedUser(t, mockStore, "follower")
	mockStore.AddFollower(context.Background(), author.ID, follower.ID)

	sendJSONRequest(t, http.MethodPost,
		ts.URL+"/tweet/createTweet/"+strconv.FormatInt(author.ID, 10),
		models.Tweet{Text: "fanned out"}, makeTestJWT(author.ID), http.StatusCreated)

	url := ts.URL + "/tweet/timeline/" + strconv.FormatInt(follower.ID, 10)
	resp := sendJSONRequest(t, http.MethodGet, url, nil, makeTestJWT(follower.ID), http.StatusOK)

	var items []models.FeedItem
	decodeBody(t, resp, &items)
	if len(items) != 1 || items[0].Text != "fanned out" {
		t.Fatalf("expected fanned-out tweet on follower timeline, got %+v", items)
	}
	if items[0].AuthorID != author.ID {
		t.Fatalf("expected author %d on feed item, got %d", author.ID, items[0].AuthorID)
	}
}

func TestTimeline_Empty(t *testing.T) {
	_, mockStore, ts := setupTestServer(t)
	u := seedUser(t, mockStore, "alone")

	url := ts.URL + "/tweet/timeline/" + strconv.FormatInt(u.ID, 10)
	resp := sendJSONRequest(t, http.MethodGet, url, nil, makeTestJWT(u.ID), http.StatusOK)

	var items []models.FeedItem
	decodeBody(t, resp, &items)
	if len(items) != 0 {
		t.Fatalf("expected empty timeline, got %+v", items)
	}
}
