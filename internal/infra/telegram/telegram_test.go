package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"femflow/internal/app"
	"femflow/internal/domain/cycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type stubSeeder struct {
	gotCount int
	err      error
}

func (s *stubSeeder) Seed(_ context.Context, count int) (*app.SeedReport, error) {
	s.gotCount = count
	if s.err != nil {
		return nil, s.err
	}
	return &app.SeedReport{RunID: "run-7", Target: "femflow.menstrual_records", Inserted: count, Total: int64(count)}, nil
}

// countingStore only supports Count, so it is a plain cycle.Repository.
type countingStore struct {
	cycle.Repository
	total int64
	err   error
}

func (s *countingStore) Count(context.Context) (int64, error) { return s.total, s.err }

// statsStore answers the aggregation queries used by /stats.
type statsStore struct {
	cycle.QueryRepository
	total    int64
	stats    *cycle.DurationStats
	flows    []cycle.FlowStat
	statsErr error
}

func (s *statsStore) Count(context.Context) (int64, error) { return s.total, nil }

func (s *statsStore) DurationStats(context.Context) (*cycle.DurationStats, error) {
	return s.stats, s.statsErr
}

func (s *statsStore) FlowBreakdown(context.Context) ([]cycle.FlowStat, error) { return s.flows, nil }

func TestSeedReply(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCount int
		want      string
	}{
		{name: "default count", args: nil, wantCount: 50, want: "inserted 50 records"},
		{name: "explicit count", args: []string{"12"}, wantCount: 12, want: "inserted 12 records"},
		{name: "not a number", args: []string{"many"}, want: "Count must be a number"},
		{name: "zero", args: []string{"0"}, want: "Count must be a number"},
		{name: "too large", args: []string{"10001"}, want: "Count must be a number"},
		{name: "extra args", args: []string{"1", "2"}, want: "Usage: /seed [count]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder := &stubSeeder{}
			bc := NewBotCommands(seeder, &countingStore{}, 1, 50)

			reply := bc.SeedReply(context.Background(), tt.args)
			assert.Contains(t, reply, tt.want)
			assert.Equal(t, tt.wantCount, seeder.gotCount)
		})
	}
}

func TestSeedReply_Failure(t *testing.T) {
	bc := NewBotCommands(&stubSeeder{err: errors.New("mongo down")}, &countingStore{}, 1, 50)
	assert.Equal(t, "Seeding failed: mongo down", bc.SeedReply(context.Background(), nil))
}

func TestStatsReply_PlainRepository(t *testing.T) {
	bc := NewBotCommands(&stubSeeder{}, &countingStore{total: 9}, 1, 50)
	assert.Equal(t, "Stored records: 9", bc.StatsReply(context.Background()))

	bc = NewBotCommands(&stubSeeder{}, &countingStore{err: errors.New("boom")}, 1, 50)
	assert.Equal(t, "Could not count records: boom", bc.StatsReply(context.Background()))
}

func TestStatsReply_WithAggregation(t *testing.T) {
	store := &statsStore{
		total: 50,
		stats: &cycle.DurationStats{Count: 50, AvgDuration: 4.96, MinDuration: 3, MaxDuration: 7},
		flows: []cycle.FlowStat{
			{Flow: cycle.FlowHeavy, Count: 20},
			{Flow: cycle.FlowLight, Count: 16},
		},
	}
	bc := NewBotCommands(&stubSeeder{}, store, 1, 50)

	assert.Equal(t,
		"Stored records: 50\nDuration: avg 4.96, min 3, max 7 days\nheavy: 20\nlight: 16",
		bc.StatsReply(context.Background()))
}

func TestStatsReply_AggregationError(t *testing.T) {
	store := &statsStore{total: 3, statsErr: errors.New("pipeline failed")}
	bc := NewBotCommands(&stubSeeder{}, store, 1, 50)

	assert.Equal(t, "Stored records: 3\nCould not aggregate durations: pipeline failed", bc.StatsReply(context.Background()))
}

func TestStatsReply_EmptyStoreSkipsAggregation(t *testing.T) {
	store := &statsStore{statsErr: errors.New("must not be called")}
	bc := NewBotCommands(&stubSeeder{}, store, 1, 50)

	assert.Equal(t, "Stored records: 0", bc.StatsReply(context.Background()))
}

func TestAuthorized(t *testing.T) {
	bc := NewBotCommands(&stubSeeder{}, &countingStore{}, 42, 50)
	assert.True(t, bc.Authorized(42))
	assert.False(t, bc.Authorized(7))
}

func TestTelebotAdapter_Notify(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":42,"type":"private"},"date":0,"text":"ok"}}`))
	}))
	defer srv.Close()

	b, err := telebot.NewBot(telebot.Settings{URL: srv.URL, Token: "test-token", Offline: true})
	require.NoError(t, err)

	adapter := NewTelebotAdapter(b, 42)
	require.NoError(t, adapter.Notify(context.Background(), "Seed run finished"))

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "Seed run finished", gotBody["text"])
	assert.Equal(t, "42", gotBody["chat_id"])
}

func TestTelebotAdapter_NotifyCanceled(t *testing.T) {
	b, err := telebot.NewBot(telebot.Settings{Token: "test-token", Offline: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewTelebotAdapter(b, 42).Notify(ctx, "ignored"), context.Canceled)
}
