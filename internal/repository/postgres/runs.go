package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/pkg/errors"
)

type runRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunRepository creates a new import run repository
func NewRunRepository(db *sql.DB, logger *zap.Logger) *runRepository {
	return &runRepository{
		db:     db,
		logger: logger,
	}
}

func (r *runRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	query := `
		INSERT INTO import_runs (id, source, status, dry_run, total, created, failed, skipped, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Source,
		run.Status,
		run.DryRun,
		run.Total,
		run.Created,
		run.Failed,
		run.Skipped,
		run.StartedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create import run", zap.Error(err))
		return err
	}

	return nil
}

func (r *runRepository) Finish(ctx context.Context, run *domain.ImportRun) error {
	query := `
		UPDATE import_runs
		SET status = $2, total = $3, created = $4, failed = $5, skipped = $6, finished_at = $7
		WHERE id = $1
	`

	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.Total,
		run.Created,
		run.Failed,
		run.Skipped,
		run.FinishedAt,
	)

	if err != nil {
		r.logger.Error("Failed to finish import run", zap.Error(err))
		return err
	}

	return nil
}

func (r *runRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportRun, error) {
	query := `
		SELECT id, source, status, dry_run, total, created, failed, skipped, started_at, finished_at
		FROM import_runs
		WHERE id = $1
	`

	var run domain.ImportRun
	var finishedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Source,
		&run.Status,
		&run.DryRun,
		&run.Total,
		&run.Created,
		&run.Failed,
		&run.Skipped,
		&run.StartedAt,
		&finishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "import run", Key: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get import run", zap.Error(err))
		return nil, err
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}

func (r *runRepository) List(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, source, status, dry_run, total, created, failed, skipped, started_at, finished_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list import runs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	runs := make([]domain.ImportRun, 0, limit)
	for rows.Next() {
		var run domain.ImportRun
		var finishedAt sql.NullTime

		err := rows.Scan(
			&run.ID,
			&run.Source,
			&run.Status,
			&run.DryRun,
			&run.Total,
			&run.Created,
			&run.Failed,
			&run.Skipped,
			&run.StartedAt,
			&finishedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan import run", zap.Error(err))
			return nil, err
		}

		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
