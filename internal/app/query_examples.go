package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"femflow/internal/domain/cycle"
	idb "femflow/internal/infra/database"

	"github.com/sirupsen/logrus"
)

const (
	dateLayout = "2006-01-02"
	rule       = "============================================================"

	attentionPainLevel = 4
	doctorNote         = "checked by a doctor"
)

// QueryExamples walks through the common query patterns against the records
// collection and prints what each one returns.
type QueryExamples struct {
	repo   cycle.QueryRepository
	out    io.Writer
	logger *logrus.Entry
}

func NewQueryExamples(repo cycle.QueryRepository, out io.Writer, logger *logrus.Entry) *QueryExamples {
	return &QueryExamples{repo: repo, out: out, logger: logger}
}

type example struct {
	title string
	run   func(ctx context.Context) error
}

// Run executes every example in order and stops at the first failure.
func (q *QueryExamples) Run(ctx context.Context) error {
	count, err := q.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	q.printf("Connected to MongoDB, collection holds %d records\n", count)

	examples := []example{
		{"Basic queries", q.basicFind},
		{"Filtered queries", q.filters},
		{"Sorting and limits", q.sortAndLimit},
		{"Projection", q.projection},
		{"Aggregation", q.aggregation},
		{"Updates", q.updates},
		{"Deletes (dry run, nothing is removed)", q.deletes},
		{"Indexes", q.indexes},
	}

	for i, ex := range examples {
		q.printf("\n%s\nExample %d: %s\n%s\n", rule, i+1, ex.title, rule)
		q.logger.WithField("example", i+1).Debug("Running query example")
		if err := ex.run(ctx); err != nil {
			return fmt.Errorf("example %d (%s): %w", i+1, ex.title, err)
		}
	}

	q.printf("\n%s\nAll examples finished!\n%s\n", rule, rule)
	return nil
}

func (q *QueryExamples) basicFind(ctx context.Context) error {
	all, err := q.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	q.printf("Total records: %d\n", len(all))

	one, err := q.repo.FindOne(ctx)
	switch {
	case errors.Is(err, idb.ErrRecordNotFound):
		q.printf("\nNo single record to show\n")
	case err != nil:
		return err
	default:
		q.printf("\nSingle record:\n")
		q.printf("  Start: %s\n", one.PeriodStart.Format(dateLayout))
		q.printf("  Duration: %d days\n", one.DurationDays)
	}

	limited, err := q.repo.ListLimited(ctx, 5)
	if err != nil {
		return err
	}
	q.printf("\nFirst 5 records: %d returned\n", len(limited))
	return nil
}

func (q *QueryExamples) filters(ctx context.Context) error {
	abnormal, err := q.repo.ListWithAbnormalDischarge(ctx)
	if err != nil {
		return err
	}
	q.printf("Records with abnormal discharge: %d\n", len(abnormal))

	long, err := q.repo.ListByMinDuration(ctx, 6)
	if err != nil {
		return err
	}
	q.printf("Records lasting >= 6 days: %d\n", len(long))

	painful, err := q.repo.ListByMinDurationAndPain(ctx, 5, 3)
	if err != nil {
		return err
	}
	q.printf("Records lasting >= 5 days with pain >= 3: %d\n", len(painful))

	moods, err := q.repo.ListByMoods(ctx, cycle.MoodIrritable, cycle.MoodLow)
	if err != nil {
		return err
	}
	q.printf("Records with an irritable or low mood: %d\n", len(moods))

	withNotes, err := q.repo.ListWithNotes(ctx)
	if err != nil {
		return err
	}
	q.printf("Records with notes: %d\n", len(withNotes))
	return nil
}

func (q *QueryExamples) sortAndLimit(ctx context.Context) error {
	recent, err := q.repo.ListMostRecent(ctx, 5)
	if err != nil {
		return err
	}
	q.printf("5 most recent records (newest first):\n")
	for _, rec := range recent {
		q.printf("  %s - %d days\n", rec.PeriodStart.Format(dateLayout), rec.DurationDays)
	}

	worst, err := q.repo.ListLongestAndMostPainful(ctx, 3)
	if err != nil {
		return err
	}
	q.printf("\n3 longest and most painful records:\n")
	for _, rec := range worst {
		q.printf("  Duration: %d days, pain: %d, start: %s\n",
			rec.DurationDays, rec.PainLevel, rec.PeriodStart.Format(dateLayout))
	}
	return nil
}

func (q *QueryExamples) projection(ctx context.Context) error {
	summaries, err := q.repo.ListSummaries(ctx, 3)
	if err != nil {
		return err
	}
	q.printf("Only the key fields:\n")
	for _, s := range summaries {
		q.printf("  {period_start: %s, duration_days: %d, has_abnormal_discharge: %t}\n",
			s.PeriodStart.Format(dateLayout), s.DurationDays, s.HasAbnormalDischarge)
	}
	return nil
}

func (q *QueryExamples) aggregation(ctx context.Context) error {
	stats, err := q.repo.DurationStats(ctx)
	if err != nil {
		return err
	}
	q.printf("Duration statistics:\n")
	if stats.Count == 0 {
		q.printf("  no records\n")
	} else {
		q.printf("  Average: %.2f days\n", stats.AvgDuration)
		q.printf("  Longest: %d days\n", stats.MaxDuration)
		q.printf("  Shortest: %d days\n", stats.MinDuration)
	}

	flows, err := q.repo.FlowBreakdown(ctx)
	if err != nil {
		return err
	}
	q.printf("\nBy flow:\n")
	for _, f := range flows {
		q.printf("  %s: %d records, average duration %.2f days\n", f.Flow, f.Count, f.AvgDuration)
	}

	pain, err := q.repo.PainDistribution(ctx)
	if err != nil {
		return err
	}
	q.printf("\nPain level distribution:\n")
	for _, b := range pain {
		q.printf("  Level %d: %d records\n", b.Level, b.Count)
	}
	return nil
}

func (q *QueryExamples) updates(ctx context.Context) error {
	n, err := q.repo.AnnotateFirstAbnormal(ctx, doctorNote)
	if err != nil {
		return err
	}
	q.printf("Updated %d record(s)\n", n)

	n, err = q.repo.FlagNeedsAttention(ctx, attentionPainLevel)
	if err != nil {
		return err
	}
	q.printf("Flagged %d record(s) as needing attention\n", n)

	n, err = q.repo.IncrementViewCount(ctx)
	if err != nil {
		return err
	}
	q.printf("Incremented the view count of %d record(s)\n", n)
	return nil
}

func (q *QueryExamples) deletes(ctx context.Context) error {
	one, err := q.repo.FindOne(ctx)
	switch {
	case errors.Is(err, idb.ErrRecordNotFound):
		q.printf("Delete one: nothing to match\n")
	case err != nil:
		return err
	default:
		q.printf("Delete one: delete_one({period_start: %s}) would remove 1 record\n",
			one.PeriodStart.Format(dateLayout))
	}

	normal, err := q.repo.CountByAbnormalDischarge(ctx, false)
	if err != nil {
		return err
	}
	q.printf("Delete many: delete_many({has_abnormal_discharge: false}) would remove %d records\n", normal)

	total, err := q.repo.Count(ctx)
	if err != nil {
		return err
	}
	q.printf("Delete all: delete_many({}) would remove %d records\n", total)
	return nil
}

func (q *QueryExamples) indexes(ctx context.Context) error {
	names, err := q.repo.EnsureIndexes(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		q.printf("Created index %s\n", name)
	}

	indexes, err := q.repo.ListIndexes(ctx)
	if err != nil {
		return err
	}
	q.printf("\nCurrent indexes:\n")
	for _, idx := range indexes {
		keys := make([]string, 0, len(idx.Keys))
		for _, k := range idx.Keys {
			keys = append(keys, fmt.Sprintf("%s: %d", k.Field, k.Direction))
		}
		q.printf("  %s: {%s}\n", idx.Name, strings.Join(keys, ", "))
	}
	return nil
}

func (q *QueryExamples) printf(format string, args ...interface{}) {
	fmt.Fprintf(q.out, format, args...)
}
