package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/denkido/catalogimport/internal/domain"
)

// RunRepository persists import runs
type RunRepository interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	Finish(ctx context.Context, run *domain.ImportRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportRun, error)
	List(ctx context.Context, limit int) ([]domain.ImportRun, error)
}

// ResultRepository persists per-product import results
type ResultRepository interface {
	Create(ctx context.Context, result *domain.ImportResult) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]domain.ImportResult, error)
}

// Repositories aggregates the journal repositories
type Repositories struct {
	Run    RunRepository
	Result ResultRepository
}
