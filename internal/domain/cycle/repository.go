// internal/domain/cycle/repository.go
package cycle

import "context"

// Repository is the subset of store operations needed to seed records.
// Both the document store and the relational mirror implement it.
type Repository interface {
	BulkInsert(ctx context.Context, records []Record) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	FindOne(ctx context.Context) (*Record, error)
}

// QueryRepository adds the filtered, sorted, projected and aggregated reads,
// the updates and the index management shown by the query examples.
type QueryRepository interface {
	Repository

	ListAll(ctx context.Context) ([]Record, error)
	ListLimited(ctx context.Context, limit int64) ([]Record, error)

	ListWithAbnormalDischarge(ctx context.Context) ([]Record, error)
	ListByMinDuration(ctx context.Context, minDays int) ([]Record, error)
	ListByMinDurationAndPain(ctx context.Context, minDays, minPain int) ([]Record, error)
	ListByMoods(ctx context.Context, moods ...Mood) ([]Record, error)
	ListWithNotes(ctx context.Context) ([]Record, error)
	CountByAbnormalDischarge(ctx context.Context, abnormal bool) (int64, error)

	// ListMostRecent sorts by period_start, newest first.
	ListMostRecent(ctx context.Context, limit int64) ([]Record, error)
	// ListLongestAndMostPainful sorts by duration_days then pain_level, both descending.
	ListLongestAndMostPainful(ctx context.Context, limit int64) ([]Record, error)
	ListSummaries(ctx context.Context, limit int64) ([]Summary, error)

	DurationStats(ctx context.Context) (*DurationStats, error)
	FlowBreakdown(ctx context.Context) ([]FlowStat, error)
	PainDistribution(ctx context.Context) ([]PainBucket, error)

	// AnnotateFirstAbnormal sets notes on one record with abnormal discharge.
	AnnotateFirstAbnormal(ctx context.Context, note string) (int64, error)
	FlagNeedsAttention(ctx context.Context, minPain int) (int64, error)
	IncrementViewCount(ctx context.Context) (int64, error)

	EnsureIndexes(ctx context.Context) ([]string, error)
	ListIndexes(ctx context.Context) ([]IndexInfo, error)
}
