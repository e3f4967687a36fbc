package workers

import (
	"context"
	"time"

	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/repositories"
	"github.com/lleps/peinbol/pkg/repositories/models"
)

// DefaultKillBatchSize is the number of kills buffered before a flush is forced
const DefaultKillBatchSize = 32

type KillStatsWorker struct {
	repository repositories.Repository
	killChan   <-chan *models.Kill
	interval   time.Duration
	batchSize  int
	pending    []*models.Kill
}

type NewKillStatsWorkerOptions struct {
	Repository repositories.Repository
	KillChan   <-chan *models.Kill
	Interval   time.Duration
	BatchSize  int
}

// NewKillStatsWorker creates a new KillStatsWorker.
// The worker buffers kills reported by the game loop and periodically
// writes them to the repository.
func NewKillStatsWorker(opts NewKillStatsWorkerOptions) *KillStatsWorker {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultKillBatchSize
	}
	return &KillStatsWorker{
		repository: opts.Repository,
		killChan:   opts.KillChan,
		interval:   opts.Interval,
		batchSize:  batchSize,
	}
}

// Start runs the worker until ctx is done. Kills still buffered at that point
// are written before returning.
func (w *KillStatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain()
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flush(flushCtx)
			cancel()
			return
		case kill := <-w.killChan:
			w.pending = append(w.pending, kill)
			if len(w.pending) >= w.batchSize {
				w.flush(ctx)
			}
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// drain moves whatever is already queued on the channel into the buffer.
func (w *KillStatsWorker) drain() {
	for {
		select {
		case kill := <-w.killChan:
			w.pending = append(w.pending, kill)
		default:
			return
		}
	}
}

func (w *KillStatsWorker) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	for _, kill := range w.pending {
		if err := w.repository.RecordKill(ctx, kill); err != nil {
			log.Error("Failed to record kill of %s by %s: %v", kill.Victim, kill.Killer, err)
		}
	}
	log.Debug("Recorded %d kills", len(w.pending))
	w.pending = w.pending[:0]
}
