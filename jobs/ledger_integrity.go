package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lift-alumni/liftfund/internal/ledger"
)

// errStopScan aborts the row stream once a payload limit is reached.
var errStopScan = errors.New("ledger integrity: scan limit reached")

// LedgerIntegrityJob re-verifies the bucket split invariant over stored
// entries: for every split contribution the two shares must add up to
// the total, and the snapshotted percentages must sum to 100.
type LedgerIntegrityJob struct {
	Repo   ledger.Repository
	Logger *slog.Logger

	violations prometheus.Counter
	scanned    prometheus.Counter
}

// NewLedgerIntegrityJob wires dependencies for the integrity handler.
// Passing a nil registerer skips metric registration.
func NewLedgerIntegrityJob(repo ledger.Repository, logger *slog.Logger, reg prometheus.Registerer) *LedgerIntegrityJob {
	j := &LedgerIntegrityJob{
		Repo:   repo,
		Logger: logger,
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liftfund_ledger_integrity_violations_total",
			Help: "Number of ledger entries failing the split invariant.",
		}),
		scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liftfund_ledger_integrity_scanned_total",
			Help: "Number of ledger entries checked by the integrity scan.",
		}),
	}
	if reg != nil {
		reg.MustRegister(j.violations, j.scanned)
	}
	return j
}

// Handle processes integrity scan tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	start := time.Now()
	checked := 0
	bad := 0

	err := j.Repo.Each(ctx, ledger.ListRequest{}, func(e ledger.LedgerEntry) error {
		if payload.Limit > 0 && checked >= payload.Limit {
			return errStopScan
		}
		checked++
		j.scanned.Inc()
		if problem := checkEntry(e); problem != "" {
			bad++
			j.violations.Inc()
			logger.Error("ledger integrity violation",
				slog.String("entry", e.ID.String()),
				slog.String("problem", problem))
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		logger.Error("ledger integrity scan", slog.Any("error", err))
		return err
	}

	logger.Info("ledger integrity scan completed",
		slog.Int("checked", checked),
		slog.Int("violations", bad),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func checkEntry(e ledger.LedgerEntry) string {
	if e.IsSplit() {
		if e.LiftAmount+e.AAAmount != e.Total {
			return "shares do not sum to total"
		}
		if e.LiftPct+e.AAPct != 100 {
			return "snapshot percentages do not sum to 100"
		}
		return ""
	}
	if e.Bucket == nil {
		return "entry missing bucket"
	}
	if !e.Total.IsPositive() {
		return "entry amount not positive"
	}
	return ""
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
