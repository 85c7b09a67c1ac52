package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/logger"
)

// statusPoller is satisfied by the billpay usecase
type statusPoller interface {
	PollStatus(ctx context.Context, txnID uuid.UUID) error
}

// StatusPollJob periodically re-polls the vendor for transactions stuck in
// pending, so a missed fire-and-forget poll after payment still converges.
type StatusPollJob struct {
	txnRepo  repositories.TransactionRepository
	poller   statusPoller
	interval time.Duration
	minAge   time.Duration
	batch    int
	stop     chan struct{}
	done     chan struct{}
}

// NewStatusPollJob creates a new status poll job
func NewStatusPollJob(txnRepo repositories.TransactionRepository, poller statusPoller, interval, minAge time.Duration, batch int) *StatusPollJob {
	return &StatusPollJob{
		txnRepo:  txnRepo,
		poller:   poller,
		interval: interval,
		minAge:   minAge,
		batch:    batch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the job loop until Stop is called or the context ends
func (j *StatusPollJob) Start(ctx context.Context) {
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-j.stop:
				return
			case <-ticker.C:
				j.runOnce(ctx)
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it
func (j *StatusPollJob) Stop() {
	close(j.stop)
	<-j.done
}

func (j *StatusPollJob) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-j.minAge)
	stale, err := j.txnRepo.ListStalePending(ctx, cutoff, j.batch)
	if err != nil {
		logger.Error(ctx, "status poll: listing stale transactions failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.Info(ctx, "status poll: re-polling stale transactions", zap.Int("count", len(stale)))
	for _, txn := range stale {
		if err := j.poller.PollStatus(ctx, txn.ID); err != nil {
			logger.Warn(ctx, "status poll failed",
				zap.String("transactionId", txn.ID.String()), zap.Error(err))
		}
	}
}
