package app

import (
	"context"
	"io"
	"sort"
	"time"

	"femflow/internal/domain/cycle"
	idb "femflow/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func strRef(s string) *string { return &s }

func fixtureRecord(day int, duration, pain int, mood cycle.Mood, flow cycle.Flow, abnormal bool, notes *string) cycle.Record {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	rec := cycle.Record{
		PeriodStart:          start,
		PeriodEnd:            start.AddDate(0, 0, duration-1),
		DurationDays:         duration,
		CycleLengthDays:      28,
		HasAbnormalDischarge: abnormal,
		LastPeriodStart:      start.AddDate(0, 0, -30),
		LastPeriodEnd:        start.AddDate(0, 0, -26),
		LastDurationDays:     5,
		LastCycleLengthDays:  30,
		PainLevel:            pain,
		Mood:                 mood,
		Flow:                 flow,
		Notes:                notes,
		CreatedAt:            created,
		UpdatedAt:            created,
	}
	if abnormal {
		rec.AbnormalDischargeDescription = strRef("abnormal discharge, yellowish color, unusual odor")
	}
	return rec
}

// memoryRepository is an in-memory cycle.QueryRepository.
type memoryRepository struct {
	records []cycle.Record
	indexes []cycle.IndexInfo

	failOn string // operation name that returns errStore
}

var errStore = idb.ErrStoreOperation

func newMemoryRepository(records ...cycle.Record) *memoryRepository {
	return &memoryRepository{
		records: append([]cycle.Record(nil), records...),
		indexes: []cycle.IndexInfo{{Name: "_id_", Keys: []cycle.IndexKey{{Field: "_id", Direction: 1}}}},
	}
}

func (m *memoryRepository) fail(op string) error {
	if m.failOn == op {
		return errStore
	}
	return nil
}

func (m *memoryRepository) filter(keep func(cycle.Record) bool) []cycle.Record {
	out := make([]cycle.Record, 0)
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func limit(records []cycle.Record, n int64) []cycle.Record {
	if int64(len(records)) > n {
		return records[:n]
	}
	return records
}

func (m *memoryRepository) BulkInsert(_ context.Context, records []cycle.Record) (int, error) {
	if err := m.fail("BulkInsert"); err != nil {
		return 0, err
	}
	m.records = append(m.records, records...)
	return len(records), nil
}

func (m *memoryRepository) DeleteAll(_ context.Context) (int64, error) {
	if err := m.fail("DeleteAll"); err != nil {
		return 0, err
	}
	n := int64(len(m.records))
	m.records = nil
	return n, nil
}

func (m *memoryRepository) Count(_ context.Context) (int64, error) {
	if err := m.fail("Count"); err != nil {
		return 0, err
	}
	return int64(len(m.records)), nil
}

func (m *memoryRepository) FindOne(_ context.Context) (*cycle.Record, error) {
	if err := m.fail("FindOne"); err != nil {
		return nil, err
	}
	if len(m.records) == 0 {
		return nil, idb.ErrRecordNotFound
	}
	rec := m.records[0]
	return &rec, nil
}

func (m *memoryRepository) ListAll(_ context.Context) ([]cycle.Record, error) {
	return m.filter(func(cycle.Record) bool { return true }), m.fail("ListAll")
}

func (m *memoryRepository) ListLimited(_ context.Context, n int64) ([]cycle.Record, error) {
	return limit(m.records, n), nil
}

func (m *memoryRepository) ListWithAbnormalDischarge(_ context.Context) ([]cycle.Record, error) {
	return m.filter(func(r cycle.Record) bool { return r.HasAbnormalDischarge }), nil
}

func (m *memoryRepository) ListByMinDuration(_ context.Context, minDays int) ([]cycle.Record, error) {
	return m.filter(func(r cycle.Record) bool { return r.DurationDays >= minDays }), nil
}

func (m *memoryRepository) ListByMinDurationAndPain(_ context.Context, minDays, minPain int) ([]cycle.Record, error) {
	return m.filter(func(r cycle.Record) bool { return r.DurationDays >= minDays && r.PainLevel >= minPain }), nil
}

func (m *memoryRepository) ListByMoods(_ context.Context, moods ...cycle.Mood) ([]cycle.Record, error) {
	return m.filter(func(r cycle.Record) bool {
		for _, mood := range moods {
			if r.Mood == mood {
				return true
			}
		}
		return false
	}), nil
}

func (m *memoryRepository) ListWithNotes(_ context.Context) ([]cycle.Record, error) {
	return m.filter(func(r cycle.Record) bool { return r.Notes != nil }), nil
}

func (m *memoryRepository) CountByAbnormalDischarge(_ context.Context, abnormal bool) (int64, error) {
	return int64(len(m.filter(func(r cycle.Record) bool { return r.HasAbnormalDischarge == abnormal }))), nil
}

func (m *memoryRepository) ListMostRecent(_ context.Context, n int64) ([]cycle.Record, error) {
	out := m.filter(func(cycle.Record) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodStart.After(out[j].PeriodStart) })
	return limit(out, n), nil
}

func (m *memoryRepository) ListLongestAndMostPainful(_ context.Context, n int64) ([]cycle.Record, error) {
	out := m.filter(func(cycle.Record) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DurationDays != out[j].DurationDays {
			return out[i].DurationDays > out[j].DurationDays
		}
		return out[i].PainLevel > out[j].PainLevel
	})
	return limit(out, n), nil
}

func (m *memoryRepository) ListSummaries(_ context.Context, n int64) ([]cycle.Summary, error) {
	out := make([]cycle.Summary, 0)
	for _, r := range limit(m.records, n) {
		out = append(out, cycle.Summary{PeriodStart: r.PeriodStart, DurationDays: r.DurationDays, HasAbnormalDischarge: r.HasAbnormalDischarge})
	}
	return out, nil
}

func (m *memoryRepository) DurationStats(_ context.Context) (*cycle.DurationStats, error) {
	if err := m.fail("DurationStats"); err != nil {
		return nil, err
	}
	stats := &cycle.DurationStats{}
	if len(m.records) == 0 {
		return stats, nil
	}
	stats.MinDuration = m.records[0].DurationDays
	sum := 0
	for _, r := range m.records {
		sum += r.DurationDays
		if r.DurationDays > stats.MaxDuration {
			stats.MaxDuration = r.DurationDays
		}
		if r.DurationDays < stats.MinDuration {
			stats.MinDuration = r.DurationDays
		}
	}
	stats.Count = int64(len(m.records))
	stats.AvgDuration = float64(sum) / float64(len(m.records))
	return stats, nil
}

func (m *memoryRepository) FlowBreakdown(_ context.Context) ([]cycle.FlowStat, error) {
	out := make([]cycle.FlowStat, 0)
	for _, flow := range cycle.Flows {
		group := m.filter(func(r cycle.Record) bool { return r.Flow == flow })
		if len(group) == 0 {
			continue
		}
		sum := 0
		for _, r := range group {
			sum += r.DurationDays
		}
		out = append(out, cycle.FlowStat{Flow: flow, Count: int64(len(group)), AvgDuration: float64(sum) / float64(len(group))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (m *memoryRepository) PainDistribution(_ context.Context) ([]cycle.PainBucket, error) {
	out := make([]cycle.PainBucket, 0)
	for level := cycle.MinPainLevel; level <= cycle.MaxPainLevel; level++ {
		n := len(m.filter(func(r cycle.Record) bool { return r.PainLevel == level }))
		if n > 0 {
			out = append(out, cycle.PainBucket{Level: level, Count: int64(n)})
		}
	}
	return out, nil
}

func (m *memoryRepository) AnnotateFirstAbnormal(_ context.Context, note string) (int64, error) {
	for i := range m.records {
		if m.records[i].HasAbnormalDischarge {
			m.records[i].Notes = &note
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryRepository) FlagNeedsAttention(_ context.Context, minPain int) (int64, error) {
	var n int64
	for i := range m.records {
		if m.records[i].PainLevel >= minPain && !m.records[i].NeedsAttention {
			m.records[i].NeedsAttention = true
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) IncrementViewCount(_ context.Context) (int64, error) {
	for i := range m.records {
		m.records[i].ViewCount++
	}
	return int64(len(m.records)), nil
}

func (m *memoryRepository) EnsureIndexes(_ context.Context) ([]string, error) {
	if err := m.fail("EnsureIndexes"); err != nil {
		return nil, err
	}
	created := []cycle.IndexInfo{
		{Name: "period_start_1", Keys: []cycle.IndexKey{{Field: "period_start", Direction: 1}}},
		{Name: "duration_days_1_pain_level_-1", Keys: []cycle.IndexKey{
			{Field: "duration_days", Direction: 1},
			{Field: "pain_level", Direction: -1},
		}},
	}
	m.indexes = append(m.indexes[:1], created...)
	return []string{created[0].Name, created[1].Name}, nil
}

func (m *memoryRepository) ListIndexes(_ context.Context) ([]cycle.IndexInfo, error) {
	return m.indexes, nil
}

type fakeGenerator struct {
	records []cycle.Record
	err     error

	gotCount, gotWorkers int
}

func (g *fakeGenerator) GenerateParallel(_ context.Context, count, workers int) ([]cycle.Record, error) {
	g.gotCount, g.gotWorkers = count, workers
	if g.err != nil {
		return nil, g.err
	}
	return g.records, nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return n.err
}
