package server

import (
	"context"
	"net/http"
	"time"

	appkafka "example.com/microblog/internal/broker"
	config "example.com/microblog/internal/init"
	"example.com/microblog/internal/logger"
	"example.com/microblog/internal/middleware"
	"example.com/microblog/internal/service"
	"example.com/microblog/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	users       *service.UserService
	tweets      *service.TweetService
	kafkaWriter appkafka.KafkaWriter
}

var logg = logger.New()

// routes wires every endpoint. Registration is the only public route;
// everything else sits behind the JWT gate. The mux is wrapped with
// request-id and metrics middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.JWTAuth(h)
	}

	mux.Handle("POST /user", http.HandlerFunc(s.createUserHandler))
	mux.Handle("DELETE /user/{userId}", protected(s.deleteUserHandler))
	mux.Handle("GET /user", protected(s.getUsersHandler))
	mux.Handle("POST /user/follow/{followerId}/{followedId}", protected(s.followHandler))
	mux.Handle("POST /user/unfollow/{fromUser}/{toUserId}", protected(s.unfollowHandler))
	mux.Handle("GET /user/followers/{userId}", protected(s.getFollowersHandler))

	mux.Handle("POST /tweet/createTweet/{userId}", protected(s.createTweetHandler))
	mux.Handle("POST /tweet/addReply/{tweetId}/{userId}", protected(s.addReplyHandler))
	mux.Handle("GET /tweet/getTweets/{userId}", protected(s.getTweetsHandler))
	mux.Handle("GET /tweet/getFollowerTweetRepliesForUser/{userId}", protected(s.getFollowerTweetRepliesHandler))
	mux.Handle("GET /tweet/timeline/{userId}", protected(s.getTimelineHandler))

	return middleware.RequestID(middleware.Metrics(mux))
}

// Run starts the HTTP server with graceful shutdown. TLS is used when
// cert and key paths are configured.
func Run(ctx context.Context, st store.StoreInterface, writer appkafka.KafkaWriter, cfg *config.Config) {
	s := &Server{
		users:       service.NewUserService(st),
		tweets:      service.NewTweetService(st),
		kafkaWriter: writer,
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 10 * time.Second,
	}

	startMetricsServer(cfg.MetricsAddr)

	go func() {
		logg.Info("server", "Starting HTTP server on "+cfg.ServerAddr)
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logg.Info("server", "Starting metrics server on "+addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logg.Error("server", "Metrics server stopped", err)
		}
	}()
}
