package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	appkafka "example.com/microblog/internal/broker"
	"example.com/microblog/internal/logger"
	"example.com/microblog/internal/metrics"
	"example.com/microblog/internal/models"
	"example.com/microblog/internal/store"
)

var logg = logger.New()

// Worker consumes tweet events from Kafka and fans each tweet out
// into the home timelines of the author's followers.
type Worker struct {
	store        store.StoreInterface
	reader       appkafka.KafkaReader
	workerCount  int
	jobQueueSize int
	fanoutWidth  int
}

// New creates a new concurrent Worker using pre-initialized dependencies.
func New(store store.StoreInterface, reader appkafka.KafkaReader, workerCount, jobQueueSize, fanoutWidth int) *Worker {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if jobQueueSize <= 0 {
		jobQueueSize = workerCount * 10
	}
	if fanoutWidth <= 0 {
		fanoutWidth = 20
	}
	return &Worker{
		store:        store,
		reader:       reader,
		workerCount:  workerCount,
		jobQueueSize: jobQueueSize,
		fanoutWidth:  fanoutWidth,
	}
}

// Run starts message reading and concurrent processing.
func (w *Worker) Run(ctx context.Context) {
	if w.workerCount <= 0 {
		w.workerCount = 1
	}
	if w.jobQueueSize <= 0 {
		w.jobQueueSize = 10
	}
	if w.fanoutWidth <= 0 {
		w.fanoutWidth = 20
	}

	logg.Info("worker", "Starting "+fmt.Sprint(w.workerCount)+" workers with queue size "+fmt.Sprint(w.jobQueueSize))

	jobs := make(chan []byte, w.jobQueueSize)
	var wg sync.WaitGroup

	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.processLoop(ctx, jobs)
		}()
	}

	w.readLoop(ctx, jobs)

	close(jobs)
	wg.Wait()
	logg.Info("worker", "All workers stopped gracefully")
}

// readLoop reads Kafka messages and pushes them into a job queue.
func (w *Worker) readLoop(ctx context.Context, jobs chan<- []byte) {
	var retry int
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := w.reader.ReadMessage(ctx)
			if err != nil {
				backoff := time.Duration(math.Min(1000, math.Pow(2, float64(retry)))) * time.Millisecond
				logg.Error("worker", "Kafka read error, backing off", err)
				if !waitWithContext(ctx, backoff) {
					return
				}
				retry++
				continue
			}
			retry = 0

			if len(msg.Value) == 0 {
				if !waitWithContext(ctx, 50*time.Millisecond) {
					return
				}
				continue
			}

			select {
			case jobs <- msg.Value:
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
				logg.Info("worker", "Queue full, waiting to enqueue Kafka message")
			}
		}
	}
}

// processLoop decodes tweet events and fans them out concurrently,
// bounded by fanoutWidth in-flight feed writes per event.
func (w *Worker) processLoop(ctx context.Context, jobs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-jobs:
			if !ok {
				return
			}

			var tweet models.Tweet
			if err := json.Unmarshal(data, &tweet); err != nil {
				logg.Error("worker", "Invalid JSON in Kafka message", err)
				metrics.FeedFanoutTotal.WithLabelValues("invalid").Inc()
				continue
			}

			followerIDs, err := w.store.GetFollowerIDs(ctx, tweet.Owner.ID)
			if err != nil {
				logg.Error("worker", "Error fetching followers for tweet author", err)
				metrics.FeedFanoutTotal.WithLabelValues("error").Inc()
				continue
			}

			item := models.FeedItem{
				TweetID:       tweet.ID,
				AuthorID:      tweet.Owner.ID,
				Text:          tweet.Text,
				AttachmentRef: tweet.AttachmentRef,
				CreatedAt:     tweet.CreatedAt,
			}

			var fanoutWG sync.WaitGroup
			semaphore := make(chan struct{}, w.fanoutWidth)

			for _, uid := range followerIDs {
				select {
				case <-ctx.Done():
					return
				default:
					fanoutWG.Add(1)
					semaphore <- struct{}{}

					go func(u int64) {
						defer fanoutWG.Done()
						defer func() { <-semaphore }()
						if err := w.store.AddFeedItem(ctx, u, item); err != nil {
							logg.Error("worker", "Failed to add tweet to follower feed", err)
						}
					}(uid)
				}
			}

			fanoutWG.Wait()
			metrics.FeedFanoutTotal.WithLabelValues("ok").Inc()
			logg.Info("worker", "Tweet delivered to follower feeds")
		}
	}
}

// waitWithContext waits for duration or context cancellation.
func waitWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close shuts down the Kafka reader and the store.
func (w *Worker) Close() error {
	logg.Info("worker", "Closing Kafka reader")
	if err := w.reader.Close(); err != nil {
		logg.Error("worker", "Error closing Kafka reader", err)
		return err
	}

	logg.Info("worker", "Closing store")
	w.store.Close()
	return nil
}
