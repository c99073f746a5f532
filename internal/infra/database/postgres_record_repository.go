package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"femflow/internal/domain/cycle"

	"github.com/lib/pq"
)

const recordColumns = `period_start, period_end, duration_days, cycle_length_days,
               has_abnormal_discharge, abnormal_discharge_description,
               last_period_start, last_period_end, last_duration_days, last_cycle_length_days,
               pain_level, mood, flow, notes, needs_attention, view_count, created_at, updated_at`

// PostgresRecordRepository mirrors seeded records into a relational table.
type PostgresRecordRepository struct {
	db    *sql.DB
	table string // already quoted
}

func NewPostgresRecordRepository(db *sql.DB, cfg PostgresConfig) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db, table: pq.QuoteIdentifier(cfg.Table)}
}

// EnsureSchema creates the records table when it does not exist yet.
func (r *PostgresRecordRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
               id BIGSERIAL PRIMARY KEY,
               period_start TIMESTAMPTZ NOT NULL,
               period_end TIMESTAMPTZ NOT NULL,
               duration_days SMALLINT NOT NULL,
               cycle_length_days SMALLINT NOT NULL,
               has_abnormal_discharge BOOLEAN NOT NULL,
               abnormal_discharge_description TEXT,
               last_period_start TIMESTAMPTZ NOT NULL,
               last_period_end TIMESTAMPTZ NOT NULL,
               last_duration_days SMALLINT NOT NULL,
               last_cycle_length_days SMALLINT NOT NULL,
               pain_level SMALLINT NOT NULL,
               mood TEXT NOT NULL,
               flow TEXT NOT NULL,
               notes TEXT,
               needs_attention BOOLEAN NOT NULL DEFAULT FALSE,
               view_count INTEGER NOT NULL DEFAULT 0,
               created_at TIMESTAMPTZ NOT NULL,
               updated_at TIMESTAMPTZ NOT NULL
               )`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return storeErr("create records table", err)
	}
	return nil
}

func (r *PostgresRecordRepository) BulkInsert(ctx context.Context, records []cycle.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin bulk insert", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		r.table, recordColumns))
	if err != nil {
		return 0, storeErr("prepare bulk insert", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.PeriodStart, rec.PeriodEnd, rec.DurationDays, rec.CycleLengthDays,
			rec.HasAbnormalDischarge, rec.AbnormalDischargeDescription,
			rec.LastPeriodStart, rec.LastPeriodEnd, rec.LastDurationDays, rec.LastCycleLengthDays,
			rec.PainLevel, string(rec.Mood), string(rec.Flow), rec.Notes,
			rec.NeedsAttention, rec.ViewCount, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return 0, storeErr(fmt.Sprintf("insert record %d", i), err)
		}
	}

	if err := txn.Commit(); err != nil {
		return 0, storeErr("commit bulk insert", err)
	}
	return len(records), nil
}

func (r *PostgresRecordRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, r.table))
	if err != nil {
		return 0, storeErr("delete all records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete all records: rows affected", err)
	}
	return n, nil
}

func (r *PostgresRecordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)).Scan(&n); err != nil {
		return 0, storeErr("count records", err)
	}
	return n, nil
}

func (r *PostgresRecordRepository) FindOne(ctx context.Context) (*cycle.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id LIMIT 1`, recordColumns, r.table)

	rec := cycle.Record{}
	var description, notes sql.NullString
	var mood, flow string
	err := r.db.QueryRowContext(ctx, query).Scan(
		&rec.PeriodStart, &rec.PeriodEnd, &rec.DurationDays, &rec.CycleLengthDays,
		&rec.HasAbnormalDischarge, &description,
		&rec.LastPeriodStart, &rec.LastPeriodEnd, &rec.LastDurationDays, &rec.LastCycleLengthDays,
		&rec.PainLevel, &mood, &flow, &notes,
		&rec.NeedsAttention, &rec.ViewCount, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, storeErr("find one record", err)
	}

	rec.Mood = cycle.Mood(mood)
	rec.Flow = cycle.Flow(flow)
	rec.AbnormalDischargeDescription = nullableString(description)
	rec.Notes = nullableString(notes)
	return &rec, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
