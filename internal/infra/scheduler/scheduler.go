package scheduler

import (
	"context"
	"fmt"
	"time"

	"femflow/internal/app" // For the Seeder interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultJobTimeout = 5 * time.Minute

type ReseedScheduler struct {
	cronEngine *cron.Cron
	seeder     app.Seeder
	logger     *logrus.Entry
	cronSpec   string
	count      int
	jobTimeout time.Duration
}

func NewReseedScheduler(
	seeder app.Seeder,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 3 * * *" (3:00 AM daily)
	count int,
) *ReseedScheduler {
	return &ReseedScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		seeder:     seeder,
		logger:     logger,
		cronSpec:   cronSpec,
		count:      count,
		jobTimeout: defaultJobTimeout,
	}
}

// Start registers the reseed job and starts the cron engine.
func (s *ReseedScheduler) Start() error {
	s.logger.Info("Starting reseed scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runReseed); err != nil {
		return fmt.Errorf("could not add reseed cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Reseed scheduler started.")
	return nil
}

func (s *ReseedScheduler) runReseed() {
	s.logger.Info("Cron job triggered for reseeding.")
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	report, err := s.seeder.Seed(ctx, s.count)
	if err != nil {
		s.logger.WithError(err).Error("Reseed job failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"inserted": report.Inserted,
	}).Info("Reseed job finished")
}

func (s *ReseedScheduler) Stop() {
	s.logger.Info("Stopping reseed scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reseed scheduler gracefully stopped.")
}
