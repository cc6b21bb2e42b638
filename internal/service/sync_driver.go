package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/repository"
)

// RunOptions control one call of SyncDriver.Run
type RunOptions struct {
	// Restart discards any saved checkpoint and starts from offset 0
	Restart bool
	// MaxBatches stops after this many batches; 0 runs until done
	MaxBatches int
	// OnBatch is called after every applied batch
	OnBatch func(res *domain.BatchResult)
}

// SyncDriver chains sync batches from a persisted checkpoint until the source table is exhausted
type SyncDriver struct {
	runner BatchRunner
	store  repository.CheckpointStore
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

func NewSyncDriver(runner BatchRunner, store repository.CheckpointStore, limit int, logger *zap.Logger) *SyncDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncDriver{runner: runner, store: store, limit: limit, logger: logger, now: time.Now}
}

// Run resumes the saved run, or starts one, and returns the checkpoint it stopped at.
// A failed batch leaves the checkpoint at the failed offset so the next Run retries it.
func (d *SyncDriver) Run(ctx context.Context, opts RunOptions) (*domain.Checkpoint, error) {
	var cp *domain.Checkpoint
	if !opts.Restart {
		saved, err := d.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		cp = saved
	}
	if cp == nil {
		cp = &domain.Checkpoint{Limit: d.limit, UpdatedAt: d.now()}
		if err := d.store.Save(ctx, cp); err != nil {
			return nil, err
		}
	}
	if cp.Limit <= 0 {
		cp.Limit = d.limit
	}
	if cp.Limit != d.limit {
		d.logger.Warn("Resuming with the checkpoint's batch limit; restart to change it",
			zap.Int("checkpoint_limit", cp.Limit),
			zap.Int("configured_limit", d.limit),
			zap.Int("offset", cp.Offset),
		)
	}
	if cp.Done {
		d.logger.Info("Grade sync already complete", zap.Int("batches", cp.RunTotals.Batches))
		return cp, nil
	}

	for batches := 0; opts.MaxBatches <= 0 || batches < opts.MaxBatches; batches++ {
		if err := ctx.Err(); err != nil {
			return cp, err
		}

		res, err := d.runner.RunBatch(ctx, BatchRequest{Offset: cp.Offset, Limit: cp.Limit, RunTotals: cp.RunTotals})
		if err != nil {
			return cp, fmt.Errorf("batch at offset %d: %w", cp.Offset, err)
		}

		if !cp.Apply(res, d.now()) {
			d.logger.Warn("Dropped re-delivered batch result",
				zap.Int("batch_id", res.BatchID),
				zap.Int("last_batch_id", cp.LastBatchID),
			)
			return cp, nil
		}
		if err := d.store.Save(ctx, cp); err != nil {
			return cp, err
		}
		if opts.OnBatch != nil {
			opts.OnBatch(res)
		}
		if cp.Done {
			d.logger.Info("Grade sync complete",
				zap.Int("batches", cp.RunTotals.Batches),
				zap.Int("unique_handles", cp.RunTotals.UniqueHandles),
				zap.Int("missing", cp.RunTotals.MissingInShopify),
			)
			return cp, nil
		}
	}
	return cp, nil
}

// Checkpoint returns the saved checkpoint, nil when no run exists
func (d *SyncDriver) Checkpoint(ctx context.Context) (*domain.Checkpoint, error) {
	return d.store.Load(ctx)
}

// Reset forgets the saved offset and running totals
func (d *SyncDriver) Reset(ctx context.Context) error {
	return d.store.Reset(ctx)
}
