package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/pkg/errors"
)

// NewNoopRepositories returns journal repositories that drop every write.
// The importer works without Postgres; the journal is opt-in.
func NewNoopRepositories() *Repositories {
	return &Repositories{
		Run:    &noopRunRepository{},
		Result: &noopResultRepository{},
	}
}

type noopRunRepository struct{}

func (r *noopRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	return nil
}

func (r *noopRunRepository) Finish(ctx context.Context, run *domain.ImportRun) error {
	return nil
}

func (r *noopRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportRun, error) {
	return nil, &errors.ErrNotFound{Resource: "import run", Key: id.String()}
}

func (r *noopRunRepository) List(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	return []domain.ImportRun{}, nil
}

type noopResultRepository struct{}

func (r *noopResultRepository) Create(ctx context.Context, result *domain.ImportResult) error {
	return nil
}

func (r *noopResultRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]domain.ImportResult, error) {
	return []domain.ImportResult{}, nil
}
