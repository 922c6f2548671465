package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WriteFunc performs database writes inside a batch transaction. tx is nil
// when the writer has no database.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers write operations and commits them in batches, one
// transaction per batch. A failing WriteFunc rolls back its whole batch.
type BatchWriter struct {
	// OnError is called with every asynchronous failure.
	OnError func(error)
	// Logger receives per-batch debug output. nil means no logging.
	Logger *slog.Logger

	mu     sync.Mutex
	buf    []WriteFunc
	size   int
	ticker *time.Ticker
	closed bool

	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	commitCh chan []WriteFunc
	db       *sql.DB

	errMu    sync.Mutex
	firstErr error
}

// NewBatchWriter creates a writer that commits every bufferSize submissions
// and, when flushInterval > 0, at least that often.
func NewBatchWriter(db *sql.DB, bufferSize int, flushInterval time.Duration) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, bufferSize),
		size:     bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []WriteFunc, 2),
		db:       db,
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.ticker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw
}

// Submit enqueues a write function. It blocks while the committer is behind.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.size {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.size)

	select {
	case bw.commitCh <- batch:
	case <-bw.ctx.Done():
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d items due to context cancellation", len(batch)))
	}
}

func (bw *BatchWriter) fail(err error) {
	bw.errMu.Lock()
	if bw.firstErr == nil {
		bw.firstErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		start := time.Now()
		if err := bw.executeBatch(batch); err != nil {
			bw.fail(err)
			continue
		}
		if bw.Logger != nil {
			bw.Logger.Debug("batch committed", "items", len(batch), "elapsed", time.Since(start))
		}
	}
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	if bw.db == nil {
		for _, w := range batch {
			if err := w(bw.ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	// Commits outlive the writer's own context so Close can drain.
	ctx := context.Background()
	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.ticker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Close stops accepting submissions, commits what is buffered and returns
// the first asynchronous error.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.ticker != nil {
		bw.ticker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()
	close(bw.commitCh)
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.firstErr
}

// ErrBatchWriterClosed is returned by Submit and Close after Close.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

// BatchWriterError is the typed error for writer state failures.
type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
