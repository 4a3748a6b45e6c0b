package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const recordTimeout = 5 * time.Second

// Worker decouples interaction logging from the request path. Records
// are handed off through a bounded queue and written by a single
// background goroutine; the enqueue never blocks and write failures
// are logged and counted, never surfaced to the caller.
type Worker struct {
	recorder Recorder
	queue    chan Record
	logger   *slog.Logger

	dropped atomic.Int64
	failed  atomic.Int64
	written atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
}

// NewWorker starts the background writer. queueSize bounds the number
// of records awaiting persistence; further records are dropped.
func NewWorker(recorder Recorder, queueSize int, logger *slog.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	w := &Worker{
		recorder: recorder,
		queue:    make(chan Record, queueSize),
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Log enqueues a record without blocking. When the queue is full the
// record is dropped and counted.
func (w *Worker) Log(rec Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	select {
	case w.queue <- rec:
	default:
		w.dropped.Add(1)
		w.logger.Warn("audit queue full, dropping record", "session_id", rec.SessionID)
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for rec := range w.queue {
		// Writes use their own context: the originating request may
		// already be finished by the time a record is persisted.
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := w.recorder.Record(ctx, rec)
		cancel()
		if err != nil {
			w.failed.Add(1)
			w.logger.Warn("failed to record interaction", "session_id", rec.SessionID, "error", err)
			continue
		}
		w.written.Add(1)
	}
}

// Ping verifies sink connectivity, used by startup checks.
func (w *Worker) Ping(ctx context.Context) error {
	return w.recorder.Ping(ctx)
}

// Close stops accepting records, drains the queue and waits for the
// writer goroutine to finish.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.queue)
	})
	<-w.done
}

// QueueDepth reports how many records are currently waiting to be written.
func (w *Worker) QueueDepth() int { return len(w.queue) }

// Dropped reports how many records were discarded because the queue was full.
func (w *Worker) Dropped() int64 { return w.dropped.Load() }

// Failed reports how many records could not be persisted.
func (w *Worker) Failed() int64 { return w.failed.Load() }

// Written reports how many records were persisted.
func (w *Worker) Written() int64 { return w.written.Load() }
