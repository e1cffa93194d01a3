package worker

// dlq.go: reminders that could not be delivered.
// One Redis list per source queue (dlq:{queue}), newest first and capped at
// maxDLQ entries. Each entry keeps the original job envelope, so once the
// cause is fixed (relay back, address corrected) it can be re-enqueued as is.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/textproto"
	"time"

	"admincs/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	maxDLQ    = 1000
)

// Causes recorded on a parked job.
const (
	CausaRelay        = "relay"        // relay unreachable or suspended
	CausaDestinatario = "destinatario" // the server rejected the recipient
	CausaPayload      = "payload"
	CausaSinHandler   = "sin_handler"
	CausaInterna      = "interna"
)

var errPayloadInvalido = errors.New("invalid payload")

// DLQEntry is one parked job.
type DLQEntry struct {
	Queue        string `json:"queue"`
	Job          Job    `json:"job"`
	Codigo       string `json:"codigo,omitempty"`
	Destinatario string `json:"destinatario,omitempty"`
	Causa        string `json:"causa"`
	Motivo       string `json:"motivo"`
	Intentos     int    `json:"intentos"`
	FailedAt     string `json:"failed_at"` // RFC 3339, UTC
}

// CausaDe classifies a handler error for the DLQ.
func CausaDe(err error) string {
	var tpErr *textproto.Error
	switch {
	case errors.Is(err, errPayloadInvalido):
		return CausaPayload
	case errors.As(err, &tpErr) && !infra.FallaDelRelay(err):
		return CausaDestinatario
	case errors.Is(err, infra.ErrSMTPSuspendido), errors.Is(err, errEnvio):
		return CausaRelay
	default:
		return CausaInterna
	}
}

// EnviarADLQ parks job under dlq:{queue}. Failures to park are only logged.
func EnviarADLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, causa, motivo string, intentos int) {
	entry := DLQEntry{
		Queue:    queue,
		Job:      job,
		Causa:    causa,
		Motivo:   motivo,
		Intentos: intentos,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if job.Type == jobRecordatorio {
		var p RecordatorioPayload
		if json.Unmarshal(job.Payload, &p) == nil {
			entry.Codigo, entry.Destinatario = p.Codigo, p.ToEmail
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxDLQ-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to park job")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("codigo", entry.Codigo).
		Str("causa", causa).
		Int("intentos", intentos).
		Msg("dlq: job parked")
}

// ListarDLQ returns up to limite parked jobs, newest first.
func ListarDLQ(ctx context.Context, rdb *redis.Client, queue string, limite int64) ([]DLQEntry, error) {
	if limite <= 0 {
		limite = 50
	}
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limite-1).Result()
	if err != nil {
		return nil, fmt.Errorf("dlq: list %s: %w", queue, err)
	}
	entries := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: skipping unreadable entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReencolarDLQ moves parked jobs back to their queue, oldest first. An empty
// causa moves every entry; otherwise only those with that cause.
func ReencolarDLQ(ctx context.Context, rdb *redis.Client, queue, causa string) (int, error) {
	key := DLQPrefix + queue
	raws, err := rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("dlq: read %s: %w", queue, err)
	}

	movidos := 0
	for i := len(raws) - 1; i >= 0; i-- {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raws[i]), &e); err != nil {
			continue
		}
		if causa != "" && e.Causa != causa {
			continue
		}
		job, err := json.Marshal(e.Job)
		if err != nil {
			continue
		}
		pipe := rdb.TxPipeline()
		pipe.LRem(ctx, key, 1, raws[i])
		pipe.LPush(ctx, queue, job)
		if _, err := pipe.Exec(ctx); err != nil {
			return movidos, fmt.Errorf("dlq: requeue %s: %w", queue, err)
		}
		movidos++
	}
	if movidos > 0 {
		log.Info().Str("queue", queue).Str("causa", causa).Int("movidos", movidos).Msg("dlq: jobs requeued")
	}
	return movidos, nil
}

// DLQLength returns how many jobs are parked for queue. A missing key is an empty queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
