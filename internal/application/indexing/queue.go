package indexing

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cloudy/internal/domain/file"
)

const (
	DefaultCapacity = 128
	DefaultWorkers  = 2

	jobTimeout = 2 * time.Minute
)

// Queue is the in-process worker pool in front of the pipeline. Submitting
// never blocks: when the buffer is full the job is dropped and logged.
//
// Jobs are sharded by file id, one buffer per worker, so index and remove
// jobs for the same file run in submission order.
type Queue struct {
	logger   *zap.Logger
	pipeline *Pipeline
	shards   []chan Job
	observe  func(Job, Result)
}

func NewQueue(logger *zap.Logger, pipeline *Pipeline, capacity, workers int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > capacity {
		workers = capacity
	}
	perShard := (capacity + workers - 1) / workers
	shards := make([]chan Job, workers)
	for i := range shards {
		shards[i] = make(chan Job, perShard)
	}
	return &Queue{
		logger:   logger,
		pipeline: pipeline,
		shards:   shards,
	}
}

func (q *Queue) shardOf(id file.ID) chan Job {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return q.shards[h.Sum32()%uint32(len(q.shards))]
}

// Pending reports how many jobs are buffered across all shards.
func (q *Queue) Pending() int {
	n := 0
	for _, ch := range q.shards {
		n += len(ch)
	}
	return n
}

// Observe registers fn to be called after every processed job. Must be
// called before Run.
func (q *Queue) Observe(fn func(Job, Result)) { q.observe = fn }

func (q *Queue) ScheduleIndex(f *file.File) { q.Submit(NewIndexJob(f)) }

func (q *Queue) ScheduleRemove(id file.ID) { q.Submit(NewRemoveJob(id)) }

// Submit enqueues j and reports whether it was accepted.
func (q *Queue) Submit(j Job) bool {
	select {
	case q.shardOf(j.Target.FileID) <- j:
		return true
	default:
		q.logger.Warn("indexing queue full, job dropped",
			zap.Stringer("job_id", j.ID),
			zap.String("kind", string(j.Kind)),
			zap.Stringer("file_id", j.Target.FileID),
		)
		return false
	}
}

// HandleMessage accepts a job delivered by the broker.
func (q *Queue) HandleMessage(routingKey string, body []byte) error {
	kind, err := KindFromRoutingKey(routingKey)
	if err != nil {
		return err
	}
	j, err := DecodeJob(body)
	if err != nil {
		return err
	}
	if j.Kind != kind {
		return fmt.Errorf("job %s: kind %q does not match routing key %q", j.ID, j.Kind, routingKey)
	}
	if !q.Submit(j) {
		return fmt.Errorf("job %s: indexing queue full", j.ID)
	}
	return nil
}

// Run drains the queue with the configured number of workers until ctx is
// done.
func (q *Queue) Run(ctx context.Context) error {
	q.logger.Info("starting indexing workers",
		zap.Int("workers", len(q.shards)),
		zap.Int("capacity", cap(q.shards[0])*len(q.shards)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, jobs := range q.shards {
		jobs := jobs
		g.Go(func() error {
			q.worker(gctx, jobs)
			return nil
		})
	}
	err := g.Wait()

	q.logger.Info("indexing workers gracefully stopped", zap.Int("pending", q.Pending()))

	return err
}

func (q *Queue) worker(ctx context.Context, jobs <-chan Job) {
	for {
		select {
		case j := <-jobs:
			res := q.Process(ctx, j)
			if q.observe != nil {
				q.observe(j, res)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Process runs one job synchronously.
func (q *Queue) Process(ctx context.Context, j Job) Result {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	switch j.Kind {
	case KindRemove:
		q.pipeline.Remove(ctx, j.Target.FileID)
		return Result{}
	default:
		return q.pipeline.Index(ctx, j.Target)
	}
}
