package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRecordatorio = "jobs:recordatorio"

	jobRecordatorio = "recordatorio"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one job payload. A returned error sends the job to the DLQ.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers maps job types to their handlers; wired in cmd/server.
type WorkerHandlers struct {
	Recordatorio JobHandler
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecordatorio pushes an arrears reminder job to Redis.
func (d *Dispatcher) EnqueueRecordatorio(ctx context.Context, payload RecordatorioPayload) error {
	return d.enqueue(ctx, QueueRecordatorio, jobRecordatorio, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP: zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueRecordatorio}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var handler JobHandler
	switch job.Type {
	case jobRecordatorio:
		handler = handlers.Recordatorio
	}
	if handler == nil {
		EnviarADLQ(ctx, rdb, queue, job, CausaSinHandler, "no handler for job type", 0)
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := handler.Process(ctx, job.Payload); err != nil {
		EnviarADLQ(ctx, rdb, queue, job, CausaDe(err), err.Error(), intentosDe(err))
	}
}

// sinReintento marks an error another attempt cannot fix; withRetry stops on it.
type sinReintento struct{ error }

func (e sinReintento) Unwrap() error { return e.error }

// agotado is withRetry's failure: the last error and how many attempts ran.
type agotado struct {
	error
	intentos int
}

func (e *agotado) Unwrap() error { return e.error }

func intentosDe(err error) int {
	var a *agotado
	if errors.As(err, &a) {
		return a.intentos
	}
	return 1
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; an *agotado wrapping the last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.As(err, new(sinReintento)) {
			return &agotado{error: lastErr, intentos: i + 1}
		}
	}
	return &agotado{error: lastErr, intentos: maxAttempts}
}
