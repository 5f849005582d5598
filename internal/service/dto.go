package service

import (
	"github.com/denkido/catalogimport/internal/domain"
)

// ImportSelection picks which catalog rows a run covers. Brand alone selects
// every model of the brand; ModelName narrows to one model; SKUs narrow to
// specific configurations; All selects the whole catalog.
type ImportSelection struct {
	Brand     string   `json:"brand"`
	ModelName string   `json:"model_name"`
	SKUs      []string `json:"skus"`
	All       bool     `json:"all"`
	DryRun    bool     `json:"dry_run"`
	Source    string   `json:"-"`
}

// ImportReport is the outcome of one run with per-product results
type ImportReport struct {
	Run     domain.ImportRun      `json:"run"`
	Results []domain.ImportResult `json:"results"`
}

// PreviewRequest asks for assembled payloads without side effects
type PreviewRequest struct {
	Brand     string `json:"brand" binding:"required"`
	ModelName string `json:"model_name" binding:"required"`
	SKU       string `json:"sku"`
}

// ConfigPreview is the dry payload for one configuration
type ConfigPreview struct {
	SKU        string                 `json:"sku"`
	Payload    *domain.ProductPayload `json:"payload,omitempty"`
	Unresolved []domain.Unresolved    `json:"unresolved,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// PreviewReport groups the previews of one model
type PreviewReport struct {
	Brand     string          `json:"brand"`
	ModelName string          `json:"model_name"`
	Previews  []ConfigPreview `json:"previews"`
}
