package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"femflow/internal/domain/cycle"
	"femflow/internal/domain/notify"
	idb "femflow/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RecordGenerator produces synthetic cycle records.
type RecordGenerator interface {
	GenerateParallel(ctx context.Context, count, workers int) ([]cycle.Record, error)
}

// Seeder replaces the stored records with a fresh synthetic batch.
type Seeder interface {
	Seed(ctx context.Context, count int) (*SeedReport, error)
}

// SeedReport describes one completed seed run.
type SeedReport struct {
	RunID     string
	Target    string // e.g. femflow.menstrual_records
	Generated int
	Deleted   int64
	Inserted  int
	Total     int64
	Sample    *cycle.Record // nil if the store returned nothing
}

// SeedService wipes the target store and fills it with generated records.
// Runs are serialized.
type SeedService struct {
	mu        sync.Mutex
	generator RecordGenerator
	repo      cycle.Repository
	notifier  notify.Notifier // optional
	logger    *logrus.Entry
	target    string
	workers   int
}

func NewSeedService(
	gen RecordGenerator,
	repo cycle.Repository,
	target string,
	workers int,
	notifier notify.Notifier,
	logger *logrus.Entry,
) *SeedService {
	if workers < 1 {
		workers = 1
	}
	return &SeedService{
		generator: gen,
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		target:    target,
		workers:   workers,
	}
}

// Seed generates count records, clears the store and inserts the batch.
func (s *SeedService) Seed(ctx context.Context, count int) (*SeedReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &SeedReport{RunID: uuid.NewString(), Target: s.target}
	log := s.logger.WithFields(logrus.Fields{"run_id": report.RunID, "target": s.target})

	log.WithField("count", count).Info("Generating mock cycle records")
	records, err := s.generator.GenerateParallel(ctx, count, s.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate records: %w", err)
	}
	report.Generated = len(records)

	report.Deleted, err = s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", s.target, err)
	}
	log.WithField("deleted", report.Deleted).Info("Cleared existing records")

	report.Inserted, err = s.repo.BulkInsert(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to insert records into %s: %w", s.target, err)
	}

	report.Total, err = s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records in %s: %w", s.target, err)
	}

	report.Sample, err = s.repo.FindOne(ctx)
	if err != nil && !errors.Is(err, idb.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read sample record: %w", err)
	}

	log.WithFields(logrus.Fields{"inserted": report.Inserted, "total": report.Total}).Info("Seed run finished")

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, report.Summary()); err != nil {
			// a lost report is not worth failing the run
			log.WithError(err).Warn("Could not deliver seed report")
		}
	}

	return report, nil
}

// Summary is a one-line description suitable for chat notifications.
func (r *SeedReport) Summary() string {
	return fmt.Sprintf("Seed run %s: inserted %d records into %s (cleared %d, now %d in total)",
		r.RunID, r.Inserted, r.Target, r.Deleted, r.Total)
}

// Print writes the human readable report, sample record included.
func (r *SeedReport) Print(w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Generated %d mock records\n", r.Generated)
	fmt.Fprintf(&b, "Cleared %d existing records from %s\n", r.Deleted, r.Target)
	fmt.Fprintf(&b, "Inserted %d records into %s\n", r.Inserted, r.Target)
	fmt.Fprintf(&b, "%s now holds %d records\n", r.Target, r.Total)

	if r.Sample != nil {
		out, err := yaml.Marshal(r.Sample)
		if err != nil {
			return fmt.Errorf("render sample record: %w", err)
		}
		b.WriteString("\nSample record:\n")
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	_, err := w.Write(b.Bytes())
	return err
}
