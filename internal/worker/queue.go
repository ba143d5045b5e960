package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/observability"
)

// ErrQueueClosed is returned for jobs submitted after the consumer stopped.
var ErrQueueClosed = errors.New("command queue closed")

// Job is one unit of state-mutating work.
type Job = func(ctx context.Context) error

type request struct {
	ctx    context.Context
	name   string
	fn     Job
	result chan error
}

// Queue serializes jobs onto a single consumer goroutine so that every
// read-modify-write of the store runs alone.
type Queue struct {
	jobs    chan request
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewQueue creates a queue buffering up to size pending jobs.
func NewQueue(size int, logger *zap.Logger, metrics *observability.Metrics) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		jobs:    make(chan request, size),
		done:    make(chan struct{}),
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes jobs until ctx is canceled. Jobs still buffered at that point
// fail with ErrQueueClosed.
func (q *Queue) Run(ctx context.Context) error {
	defer q.stop()
	for {
		select {
		case <-ctx.Done():
			q.drain()
			return nil
		case req := <-q.jobs:
			req.result <- q.execute(req)
		}
	}
}

// Do submits fn and waits for its result. If ctx ends first the job may
// still run; its result is discarded.
func (q *Queue) Do(ctx context.Context, name string, fn Job) error {
	req := request{ctx: ctx, name: name, fn: fn, result: make(chan error, 1)}

	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.jobs <- req:
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-q.done:
		select {
		case err := <-req.result:
			return err
		default:
			return ErrQueueClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) execute(req request) (err error) {
	if err := req.ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", req.name, r)
			q.logger.Error("job panicked", zap.String("job", req.name), zap.Any("panic", r))
		}
		q.metrics.RecordJob(req.name, time.Since(start))
	}()
	return req.fn(req.ctx)
}

func (q *Queue) stop() {
	q.once.Do(func() { close(q.done) })
}

func (q *Queue) drain() {
	q.stop()
	for {
		select {
		case req := <-q.jobs:
			req.result <- ErrQueueClosed
		default:
			return
		}
	}
}
