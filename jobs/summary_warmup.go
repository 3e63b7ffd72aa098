package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/lift-alumni/liftfund/internal/ledger"
)

// SummaryCacheTTL bounds staleness of pre-computed summaries between runs.
const SummaryCacheTTL = 10 * time.Minute

func summaryCacheKey(year int) string {
	if year == 0 {
		return "summary:all"
	}
	return fmt.Sprintf("summary:%d", year)
}

type cachedSummary struct {
	Bucket             string `json:"bucket"`
	ContributionsCents int64  `json:"contributions_cents"`
	ExpensesCents      int64  `json:"expenses_cents"`
	BalanceCents       int64  `json:"balance_cents"`
}

// SummaryWarmupJob pre-computes bucket summaries into Redis so dashboard
// reads do not hit the ledger table.
type SummaryWarmupJob struct {
	Ledger *ledger.Service
	Redis  *redis.Client
	Logger *slog.Logger
	clock  func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(ledgerSvc *ledger.Service, client *redis.Client, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Ledger: ledgerSvc,
		Redis:  client,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes summary warmup tasks. A scoped run warms a single
// year; the default run warms the all-time and current-year summaries
// concurrently.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Ledger == nil || j.Redis == nil {
		return errors.New("summary warmup: handler not configured")
	}
	var payload SummaryWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.clock()
	years := []int{payload.Year}
	if payload.Year == 0 {
		years = []int{0, start.Year()}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, year := range years {
		g.Go(func() error {
			return j.warmYear(gctx, year)
		})
	}
	if err := g.Wait(); err != nil {
		j.logger().Error("summary warmup", slog.Any("error", err))
		return err
	}

	j.logger().Info("summary warmup completed",
		slog.Int("scopes", len(years)),
		slog.Duration("duration", j.clock().Sub(start)))
	return nil
}

func (j *SummaryWarmupJob) warmYear(ctx context.Context, year int) error {
	filter := ledger.Filter{}
	if year != 0 {
		filter.From = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		filter.To = time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	}

	summaries, err := j.Ledger.Summary(ctx, filter)
	if err != nil {
		return err
	}

	rows := make([]cachedSummary, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, cachedSummary{
			Bucket:             string(s.Bucket),
			ContributionsCents: s.Contributions.Cents(),
			ExpensesCents:      s.Expenses.Cents(),
			BalanceCents:       s.Balance.Cents(),
		})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return j.Redis.Set(ctx, summaryCacheKey(year), data, SummaryCacheTTL).Err()
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
