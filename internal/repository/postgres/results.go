package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/domain"
)

type resultRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewResultRepository creates a new import result repository
func NewResultRepository(db *sql.DB, logger *zap.Logger) *resultRepository {
	return &resultRepository{
		db:     db,
		logger: logger,
	}
}

func (r *resultRepository) Create(ctx context.Context, result *domain.ImportResult) error {
	query := `
		INSERT INTO import_results (id, run_id, brand, model_name, sku, title, status, shopify_product_id, unresolved, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	var unresolved []byte
	if len(result.Unresolved) > 0 {
		var err error
		unresolved, err = json.Marshal(result.Unresolved)
		if err != nil {
			r.logger.Error("Failed to encode unresolved list", zap.Error(err))
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.RunID,
		result.Brand,
		result.ModelName,
		result.SKU,
		result.Title,
		result.Status,
		result.ShopifyProductID,
		unresolved,
		result.ErrorMessage,
		result.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create import result", zap.Error(err))
		return err
	}

	return nil
}

func (r *resultRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]domain.ImportResult, error) {
	query := `
		SELECT id, run_id, brand, model_name, sku, title, status, shopify_product_id, unresolved, error_message, created_at
		FROM import_results
		WHERE run_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		r.logger.Error("Failed to query import results", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var results []domain.ImportResult
	for rows.Next() {
		var result domain.ImportResult
		var productID sql.NullInt64
		var unresolved []byte
		var errorMessage sql.NullString

		err := rows.Scan(
			&result.ID,
			&result.RunID,
			&result.Brand,
			&result.ModelName,
			&result.SKU,
			&result.Title,
			&result.Status,
			&productID,
			&unresolved,
			&errorMessage,
			&result.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan import result", zap.Error(err))
			return nil, err
		}

		if productID.Valid {
			result.ShopifyProductID = &productID.Int64
		}
		if len(unresolved) > 0 {
			if err := json.Unmarshal(unresolved, &result.Unresolved); err != nil {
				r.logger.Error("Failed to decode unresolved list", zap.Error(err))
				return nil, err
			}
		}
		if errorMessage.Valid {
			result.ErrorMessage = &errorMessage.String
		}

		results = append(results, result)
	}

	return results, rows.Err()
}
