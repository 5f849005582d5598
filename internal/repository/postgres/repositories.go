package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/repository"
)

// NewRepositories wires the postgres-backed journal repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Run:    NewRunRepository(db, logger),
		Result: NewResultRepository(db, logger),
	}
}
