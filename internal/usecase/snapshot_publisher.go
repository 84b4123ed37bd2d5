package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

const DefaultSnapshotQueueSize = 256

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, snapshot entity.RoomSnapshot) error
	DeleteByCode(ctx context.Context, code string) error
	Clear(ctx context.Context) error
}

type snapshotJob struct {
	snapshot entity.RoomSnapshot
	remove   bool
}

// SnapshotPublisher mirrors room snapshots into the room repository from a single
// goroutine, so the rooms never wait on storage and writes keep the order they were
// published in.
//
// Updates are dropped when the queue is full, removals are not: they go to an overflow
// list that is applied once the queue is drained. While the overflow is not empty every
// new job goes after it.
type SnapshotPublisher struct {
	logger *slog.Logger
	repo   roomRepo
	queue  chan snapshotJob

	mu       sync.Mutex
	overflow []snapshotJob
	wake     chan struct{}
}

func NewSnapshotPublisher(logger *slog.Logger, repo roomRepo, queueSize int) *SnapshotPublisher {
	if queueSize <= 0 {
		queueSize = DefaultSnapshotQueueSize
	}

	return &SnapshotPublisher{
		logger: logger.With("component", "snapshot_publisher"),
		repo:   repo,
		queue:  make(chan snapshotJob, queueSize),
		wake:   make(chan struct{}, 1),
	}
}

func (that *SnapshotPublisher) Publish(snapshot entity.RoomSnapshot) {
	that.enqueue(snapshotJob{snapshot: snapshot})
}

func (that *SnapshotPublisher) Remove(code string) {
	that.enqueue(snapshotJob{snapshot: entity.RoomSnapshot{Code: code}, remove: true})
}

// Run clears snapshots left by a previous process and then drains the queue until ctx
// is done.
func (that *SnapshotPublisher) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	if err := that.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear stale rooms: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("snapshot publisher stopped")
			return nil
		case job := <-that.queue:
			that.apply(ctx, job)
		case <-that.wake:
			that.drainOverflow(ctx)
		}
	}
}

func (that *SnapshotPublisher) apply(ctx context.Context, job snapshotJob) {
	log := that.logger.With("method", "apply", "code", job.snapshot.Code)

	if job.remove {
		err := that.repo.DeleteByCode(ctx, job.snapshot.Code)
		if err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
			log.Error("failed to delete room snapshot", "error", err)
		}
		return
	}

	if err := that.repo.CreateOrUpdate(ctx, job.snapshot); err != nil {
		log.Error("failed to save room snapshot", "error", err)
	}
}

// drainOverflow applies what is still queued and then the overflow. Nothing enters the
// queue while the overflow is not empty, so queued jobs are always the older ones.
func (that *SnapshotPublisher) drainOverflow(ctx context.Context) {
	for drained := false; !drained; {
		select {
		case job := <-that.queue:
			that.apply(ctx, job)
		default:
			drained = true
		}
	}

	that.mu.Lock()
	jobs := that.overflow
	that.overflow = nil
	that.mu.Unlock()

	for _, job := range jobs {
		that.apply(ctx, job)
	}
}

func (that *SnapshotPublisher) enqueue(job snapshotJob) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.overflow) == 0 {
		select {
		case that.queue <- job:
			return
		default:
		}
	}

	if !job.remove {
		that.logger.Warn("snapshot queue is full, dropping update", "code", job.snapshot.Code)
		return
	}

	that.overflow = append(that.overflow, job)

	select {
	case that.wake <- struct{}{}:
	default:
	}
}
