package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/internaltypes"
)

const runColumns = `id, status, started_at, finished_at, target_date, failed_step, step_name, reason, artifact`

// RunRepo stores one row per booking attempt.
type RunRepo struct{ pool *pgxpool.Pool }

func NewRunRepo(pool *pgxpool.Pool) *RunRepo { return &RunRepo{pool: pool} }

func (r *RunRepo) Record(ctx context.Context, run booking.Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			status=EXCLUDED.status, finished_at=EXCLUDED.finished_at, failed_step=EXCLUDED.failed_step,
			step_name=EXCLUDED.step_name, reason=EXCLUDED.reason, artifact=EXCLUDED.artifact
	`, run.ID, string(run.Status), run.StartedAt.UTC(), run.FinishedAt.UTC(), dateOnly(run.TargetDate),
		run.FailedStep, run.StepName, run.Reason, run.Artifact)
	return err
}

func (r *RunRepo) Recent(ctx context.Context, limit int) ([]booking.Run, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *RunRepo) Get(ctx context.Context, id string) (booking.Run, error) {
	run, err := scanRun(r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Run{}, internaltypes.ErrNotFound
	}
	return run, err
}

func scanRun(row pgx.Row) (booking.Run, error) {
	var (
		run    booking.Run
		status string
		target *time.Time
	)
	if err := row.Scan(&run.ID, &status, &run.StartedAt, &run.FinishedAt, &target,
		&run.FailedStep, &run.StepName, &run.Reason, &run.Artifact); err != nil {
		return booking.Run{}, err
	}
	run.Status = booking.Status(status)
	run.TargetDate = target
	return run, nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
