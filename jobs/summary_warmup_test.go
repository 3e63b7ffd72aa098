package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lift-alumni/liftfund/internal/ledger"
)

type fixedRatio struct{ pct int }

func (f fixedRatio) CurrentRatio(ctx context.Context) (int, error) { return f.pct, nil }

func TestSummaryWarmupCachesBuckets(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	entry := splitEntry(1000, 600, 60)
	entry.Date = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo := &sliceRepo{entries: []ledger.LedgerEntry{entry}}

	svc := ledger.NewService(repo, fixedRatio{pct: 60}, slog.Default())
	job := NewSummaryWarmupJob(svc, client, slog.Default())

	task, err := NewSummaryWarmupTask(SummaryWarmupPayload{Year: 2024})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	raw, err := client.Get(context.Background(), "summary:2024").Bytes()
	require.NoError(t, err)

	var rows []cachedSummary
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 2)

	byBucket := map[string]cachedSummary{}
	for _, row := range rows {
		byBucket[row.Bucket] = row
	}
	require.Equal(t, int64(600), byBucket["LIFT"].ContributionsCents)
	require.Equal(t, int64(400), byBucket["ALUMNI_ASSOCIATION"].ContributionsCents)
}

func TestSummaryWarmupDefaultWarmsAllTime(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := ledger.NewService(&sliceRepo{}, fixedRatio{pct: 50}, slog.Default())
	job := NewSummaryWarmupJob(svc, client, slog.Default())

	task, err := NewSummaryWarmupTask(SummaryWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.True(t, mr.Exists("summary:all"))
}
