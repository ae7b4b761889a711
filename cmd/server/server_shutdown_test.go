package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appkafka "example.com/microblog/internal/broker"
	"example.com/microblog/internal/service"
	"example.com/microblog/internal/store"
)

// TestServer_GracefulShutdown verifies that the HTTP server shuts down
// gracefully and that associated resources (mock store and Kafka) can
// be closed without errors.
func TestServer_GracefulShutdown(t *testing.T) {
	mockStore := store.NewMock()
	mockKafka := &appkafka.MockKafka{Store: mockStore}

	s := &Server{
		users:       service.NewUserService(mockStore),
		tweets:      service.NewTweetService(mockStore),
		kafkaWriter: mockKafka,
	}

	server := httptest.NewUnstartedServer(s.routes())
	server.Start()
	defer server.Close()

	// Context with a short timeout to simulate a shutdown signal
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		server.Close()
		close(done)
	}()

	// Make a request before shutdown to ensure the server is running
	resp, err := http.Post(server.URL+"/user", "application/json",
		bytes.NewBufferString(`{"username":"almaz"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	select {
	case <-done:
		mockStore.Close()
		if err := mockKafka.Close(); err != nil {
			t.Fatalf("Kafka close error: %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("server did not shutdown gracefully within the expected time")
	}
}
