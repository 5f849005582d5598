package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/internal/repository"
	"github.com/denkido/catalogimport/internal/shopify"
	"github.com/denkido/catalogimport/pkg/errors"
)

// ProductAPI is the slice of the Shopify client the importer needs
type ProductAPI interface {
	CreateProduct(ctx context.Context, payload domain.ProductPayload) (*shopify.Product, error)
}

// ImportService drives the pipeline: select, resolve, build, create.
// Shopify calls are strictly sequential with a fixed pause between
// products; one failed product never aborts the rest of the batch.
type ImportService struct {
	catalog *catalog.Catalog
	builder *PayloadBuilder
	api     ProductAPI
	repos   *repository.Repositories
	sleep   time.Duration
	logger  *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(
	cat *catalog.Catalog,
	builder *PayloadBuilder,
	api ProductAPI,
	repos *repository.Repositories,
	cfg config.ImportConfig,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		catalog: cat,
		builder: builder,
		api:     api,
		repos:   repos,
		sleep:   time.Duration(cfg.SleepMS) * time.Millisecond,
		logger:  logger,
	}
}

type importItem struct {
	model  domain.ProductModel
	config domain.Configuration
}

// selectConfigurations expands a selection into concrete model/configuration
// pairs. SKUs that match nothing in scope are an error: a typo must not
// silently shrink the batch.
func (s *ImportService) selectConfigurations(sel ImportSelection) ([]importItem, error) {
	var models []domain.ProductModel
	switch {
	case sel.All:
		models = s.catalog.All()
	case sel.Brand != "" && sel.ModelName != "":
		model, err := s.catalog.Model(sel.Brand, sel.ModelName)
		if err != nil {
			return nil, err
		}
		models = []domain.ProductModel{*model}
	case sel.Brand != "":
		brandModels, err := s.catalog.Models(sel.Brand)
		if err != nil {
			return nil, err
		}
		models = brandModels
	default:
		return nil, &errors.ErrValidation{
			Field:   "selection",
			Message: "set all, or brand (optionally with model_name)",
		}
	}

	wanted := make(map[string]bool, len(sel.SKUs))
	for _, sku := range sel.SKUs {
		if sku = strings.TrimSpace(sku); sku != "" {
			wanted[sku] = true
		}
	}
	filtered := len(wanted) > 0

	var items []importItem
	for i := range models {
		for _, cfg := range models[i].Configurations {
			if filtered && !wanted[cfg.SKU] {
				continue
			}
			delete(wanted, cfg.SKU)
			items = append(items, importItem{model: models[i], config: cfg})
		}
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for sku := range wanted {
			missing = append(missing, sku)
		}
		return nil, &errors.ErrNotFound{Resource: "configuration", Key: strings.Join(missing, ", ")}
	}

	return items, nil
}

// ImportBatch runs one import over the selection and reports per-product
// outcomes. A cancelled context stops the batch and marks the run failed;
// journal write failures are logged but never block the import.
func (s *ImportService) ImportBatch(ctx context.Context, sel ImportSelection) (*ImportReport, error) {
	items, err := s.selectConfigurations(sel)
	if err != nil {
		return nil, err
	}

	run := domain.ImportRun{
		ID:        uuid.New(),
		Source:    sel.Source,
		Status:    domain.RunStatusRunning,
		DryRun:    sel.DryRun,
		Total:     len(items),
		StartedAt: time.Now().UTC(),
	}
	if run.Source == "" {
		run.Source = "api"
	}
	if err := s.repos.Run.Create(ctx, &run); err != nil {
		s.logger.Warn("failed to journal import run", zap.Error(err))
	}

	s.logger.Info("import run started",
		zap.String("run_id", run.ID.String()),
		zap.String("source", run.Source),
		zap.Int("total", run.Total),
		zap.Bool("dry_run", run.DryRun))

	results := make([]domain.ImportResult, 0, len(items))
	var runErr error
	for i := range items {
		if i > 0 && s.sleep > 0 {
			if err := sleepContext(ctx, s.sleep); err != nil {
				runErr = err
				break
			}
		}
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}

		result := s.importOne(ctx, run.ID, &items[i].model, items[i].config, sel.DryRun)
		results = append(results, result)
		if err := s.repos.Result.Create(ctx, &result); err != nil {
			s.logger.Warn("failed to journal import result", zap.Error(err))
		}

		switch result.Status {
		case domain.ResultStatusCreated:
			run.Created++
		case domain.ResultStatusFailed:
			run.Failed++
		case domain.ResultStatusSkipped:
			run.Skipped++
		}
	}

	switch {
	case runErr != nil:
		run.Status = domain.RunStatusFailed
	case run.Failed > 0:
		run.Status = domain.RunStatusCompletedWithErrors
	default:
		run.Status = domain.RunStatusCompleted
	}
	now := time.Now().UTC()
	run.FinishedAt = &now

	if err := s.repos.Run.Finish(ctx, &run); err != nil {
		s.logger.Warn("failed to journal run completion", zap.Error(err))
	}

	s.logger.Info("import run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("created", run.Created),
		zap.Int("failed", run.Failed),
		zap.Int("skipped", run.Skipped))

	report := &ImportReport{Run: run, Results: results}
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// ImportOne imports a single configuration
func (s *ImportService) ImportOne(ctx context.Context, brand, modelName, sku string, dryRun bool) (*ImportReport, error) {
	return s.ImportBatch(ctx, ImportSelection{
		Brand:     brand,
		ModelName: modelName,
		SKUs:      []string{sku},
		DryRun:    dryRun,
		Source:    "api",
	})
}

// Preview assembles payloads for one model without touching Shopify
func (s *ImportService) Preview(brand, modelName, sku string) (*PreviewReport, error) {
	model, err := s.catalog.Model(brand, modelName)
	if err != nil {
		return nil, err
	}

	report := &PreviewReport{Brand: model.Brand, ModelName: model.ModelName}
	for _, cfg := range model.Configurations {
		if sku != "" && cfg.SKU != sku {
			continue
		}
		preview := ConfigPreview{SKU: cfg.SKU}
		payload, unresolved, err := s.builder.BuildPayload(model, cfg)
		if err != nil {
			preview.Error = err.Error()
		} else {
			preview.Payload = payload
			preview.Unresolved = unresolved
		}
		report.Previews = append(report.Previews, preview)
	}

	if len(report.Previews) == 0 {
		return nil, &errors.ErrNotFound{Resource: "configuration", Key: sku}
	}
	return report, nil
}

// importOne builds and creates one product. Every failure is captured in
// the result; the caller decides nothing beyond counting.
func (s *ImportService) importOne(ctx context.Context, runID uuid.UUID, model *domain.ProductModel, config domain.Configuration, dryRun bool) domain.ImportResult {
	result := domain.ImportResult{
		ID:        uuid.New(),
		RunID:     runID,
		Brand:     model.Brand,
		ModelName: model.ModelName,
		SKU:       config.SKU,
		CreatedAt: time.Now().UTC(),
	}

	payload, unresolved, err := s.builder.BuildPayload(model, config)
	if err != nil {
		msg := err.Error()
		result.Status = domain.ResultStatusFailed
		result.ErrorMessage = &msg
		s.logger.Error("failed to build product payload",
			zap.String("brand", model.Brand),
			zap.String("model", model.ModelName),
			zap.String("sku", config.SKU),
			zap.Error(err))
		return result
	}

	result.Title = payload.Title
	result.Unresolved = unresolved

	if dryRun {
		result.Status = domain.ResultStatusSkipped
		s.logger.Info("dry run, product not created",
			zap.String("title", payload.Title),
			zap.String("sku", config.SKU))
		return result
	}

	product, err := s.api.CreateProduct(ctx, *payload)
	if err != nil {
		msg := err.Error()
		result.Status = domain.ResultStatusFailed
		result.ErrorMessage = &msg
		s.logger.Error("failed to create product",
			zap.String("title", payload.Title),
			zap.String("sku", config.SKU),
			zap.Error(err))
		return result
	}

	result.Status = domain.ResultStatusCreated
	result.ShopifyProductID = &product.ID
	s.logger.Info("product created",
		zap.Int64("shopify_product_id", product.ID),
		zap.String("title", payload.Title),
		zap.String("sku", config.SKU))

	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
