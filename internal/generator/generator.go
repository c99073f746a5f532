// Package generator produces synthetic menstrual cycle records.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"femflow/internal/domain/cycle"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidArgument = fmt.Errorf("invalid argument")

const (
	day = 24 * time.Hour

	abnormalDischargeProbability = 0.1
	maxJitterDays                = 3
)

// painWeights are the relative frequencies of pain levels 0..5; most periods hurt little.
var painWeights = []int{30, 25, 20, 15, 7, 3}

var abnormalDischargeDescription = "abnormal discharge, yellowish color, unusual odor"

// noteChoices includes nil so that some records carry no notes.
var noteChoices = []*string{
	nil,
	strPtr("mild cramps before the period"),
	strPtr("heavy flow on the first day"),
	strPtr("flow eased off in the last few days"),
	strPtr("this cycle was fairly regular"),
}

// Config is the configuration for the record generator.
type Config struct {
	// Seed is the random number generator seed. Use `0` for
	// a seed based on current time and non-reproducible output.
	Seed int64

	// Window is how far before now the first cycle starts.
	Window time.Duration
}

// DefaultConfig returns a copy of the default config: a time based
// seed and a one year window.
func DefaultConfig() Config {
	return Config{
		Seed:   0,
		Window: 365 * day,
	}
}

// Generator creates ordered sequences of cycle records.
// A Generator is not safe for concurrent use.
type Generator struct {
	config Config
	rnd    *rand.Rand
	pain   weightedChoice
	now    func() time.Time
}

// New creates a generator. Zero config fields fall back to DefaultConfig.
func New(config Config) *Generator {
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		config: config,
		rnd:    rand.New(rand.NewSource(seed)),
		pain:   newWeightedChoice(painWeights),
		now:    time.Now,
	}
}

// Generate returns exactly count records in generation order.
func (g *Generator) Generate(count int) ([]cycle.Record, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: record count must be positive, got %d", ErrInvalidArgument, count)
	}

	now := g.timestamp()
	records, _ := g.generateChunk(g.rnd, count, now.Add(-g.config.Window), now)
	return records, nil
}

// GenerateParallel splits the sequence into one contiguous chunk per worker.
// Every worker draws from its own random stream; chunks are shifted by the
// cycle days of the chunks before them so the result reads as one sequence.
func (g *Generator) GenerateParallel(ctx context.Context, count, workers int) ([]cycle.Record, error) {
	if workers <= 1 {
		return g.Generate(count)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: record count must be positive, got %d", ErrInvalidArgument, count)
	}
	if workers > count {
		workers = count
	}

	now := g.timestamp()
	base := now.Add(-g.config.Window)

	// seeds are drawn up front so the master stream is never shared
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = g.rnd.Int63()
	}

	chunks := make([][]cycle.Record, workers)
	elapsed := make([]int, workers)
	chunkSize := count / workers
	remainder := count % workers

	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		n := chunkSize
		if w < remainder {
			n++
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewSource(seeds[w]))
			chunks[w], elapsed[w] = g.generateChunk(r, n, base, now)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("parallel generation: %w", err)
	}

	records := make([]cycle.Record, 0, count)
	offset := 0
	for w, chunk := range chunks {
		for _, rec := range chunk {
			records = append(records, shift(rec, offset))
		}
		offset += elapsed[w]
	}
	return records, nil
}

// generateChunk produces n records anchored at base and returns them with the
// total number of cycle days they span.
func (g *Generator) generateChunk(r *rand.Rand, n int, base, now time.Time) ([]cycle.Record, int) {
	records := make([]cycle.Record, 0, n)
	elapsed := 0
	for i := 0; i < n; i++ {
		cycleLength := between(r, cycle.MinCycleLengthDays, cycle.MaxCycleLengthDays)
		duration := between(r, cycle.MinDurationDays, cycle.MaxDurationDays)

		periodStart := addDays(base, elapsed+between(r, -maxJitterDays, maxJitterDays))
		periodEnd := addDays(periodStart, duration-1)
		elapsed += cycleLength

		lastCycleLength := between(r, cycle.MinCycleLengthDays, cycle.MaxCycleLengthDays)
		lastDuration := between(r, cycle.MinDurationDays, cycle.MaxDurationDays)
		lastPeriodStart := addDays(periodStart, -lastCycleLength)
		lastPeriodEnd := addDays(lastPeriodStart, lastDuration-1)

		hasAbnormal := r.Float64() < abnormalDischargeProbability
		var description *string
		if hasAbnormal {
			description = strPtr(abnormalDischargeDescription)
		}

		records = append(records, cycle.Record{
			PeriodStart:                  periodStart,
			PeriodEnd:                    periodEnd,
			DurationDays:                 duration,
			CycleLengthDays:              cycleLength,
			HasAbnormalDischarge:         hasAbnormal,
			AbnormalDischargeDescription: description,
			LastPeriodStart:              lastPeriodStart,
			LastPeriodEnd:                lastPeriodEnd,
			LastDurationDays:             lastDuration,
			LastCycleLengthDays:          lastCycleLength,
			PainLevel:                    g.pain.pick(r),
			Mood:                         cycle.Moods[r.Intn(len(cycle.Moods))],
			Flow:                         cycle.Flows[r.Intn(len(cycle.Flows))],
			Notes:                        pickNote(r),
			CreatedAt:                    now,
			UpdatedAt:                    now,
		})
	}
	return records, elapsed
}

// timestamp is truncated to what the stores keep so values round-trip unchanged.
func (g *Generator) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Millisecond)
}

func shift(rec cycle.Record, days int) cycle.Record {
	if days == 0 {
		return rec
	}
	rec.PeriodStart = addDays(rec.PeriodStart, days)
	rec.PeriodEnd = addDays(rec.PeriodEnd, days)
	rec.LastPeriodStart = addDays(rec.LastPeriodStart, days)
	rec.LastPeriodEnd = addDays(rec.LastPeriodEnd, days)
	return rec
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

func addDays(t time.Time, days int) time.Time {
	return t.Add(time.Duration(days) * day)
}

// pickNote copies the chosen note so records never share a pointer.
func pickNote(r *rand.Rand) *string {
	note := noteChoices[r.Intn(len(noteChoices))]
	if note == nil {
		return nil
	}
	return strPtr(*note)
}

func strPtr(s string) *string {
	return &s
}
