package domain

import (
	"time"

	"github.com/google/uuid"
)

// ComponentMapping maps a component display name to a Shopify metaobject GID
type ComponentMapping struct {
	DisplayName string `json:"display_name"`
	GID         string `json:"gid"`
	Handle      string `json:"handle,omitempty"`
}

// MappingTable is one on-disk GID table, one file per component category
type MappingTable struct {
	Category       Category           `json:"category"`
	DefinitionType string             `json:"definition_type"`
	UpdatedAt      *time.Time         `json:"updated_at,omitempty"`
	Mappings       []ComponentMapping `json:"mappings"`
}

// ProductModel is one model row from a brand catalog file
type ProductModel struct {
	Brand          string          `json:"brand"`
	ModelName      string          `json:"model_name"`
	Series         string          `json:"series,omitempty"`
	ProductType    string          `json:"product_type"`
	Tags           []string        `json:"tags,omitempty"`
	Configurations []Configuration `json:"configurations"`
}

// Configuration is one sellable hardware configuration of a model.
// Component fields hold display names; empty means the model has no such
// component (phones have no discrete GPU entry, for example).
type Configuration struct {
	SKU     string `json:"sku"`
	Price   string `json:"price"` // JPY, no decimals
	CPU     string `json:"cpu,omitempty"`
	GPU     string `json:"gpu,omitempty"`
	RAM     string `json:"ram,omitempty"`
	Storage string `json:"storage,omitempty"`
	Display string `json:"display,omitempty"`
	Color   string `json:"color,omitempty"`
}

// Component returns the display name for a category, empty when absent
func (c Configuration) Component(cat Category) string {
	switch cat {
	case CategoryCPU:
		return c.CPU
	case CategoryGPU:
		return c.GPU
	case CategoryRAM:
		return c.RAM
	case CategoryStorage:
		return c.Storage
	case CategoryDisplay:
		return c.Display
	case CategoryColor:
		return c.Color
	default:
		return ""
	}
}

// Metafield is one metafield entry on a product payload
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// Variant is one product variant (price in JPY, no decimals)
type Variant struct {
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

// Unresolved records a component display name that had no GID mapping.
// The metafield is skipped; the product still imports.
type Unresolved struct {
	Category    Category `json:"category"`
	DisplayName string   `json:"display_name"`
}

// ProductPayload is the assembled product ready for the Shopify API
type ProductPayload struct {
	Title       string      `json:"title"`
	Vendor      string      `json:"vendor"`
	ProductType string      `json:"product_type"`
	Tags        []string    `json:"tags,omitempty"`
	Variants    []Variant   `json:"variants"`
	Metafields  []Metafield `json:"metafields,omitempty"`
}

// ImportRun is one import invocation (CLI or API)
type ImportRun struct {
	ID         uuid.UUID  `json:"id"`
	Source     string     `json:"source"`
	Status     RunStatus  `json:"status"`
	DryRun     bool       `json:"dry_run"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ImportResult is the per-product outcome within a run
type ImportResult struct {
	ID               uuid.UUID    `json:"id"`
	RunID            uuid.UUID    `json:"run_id"`
	Brand            string       `json:"brand"`
	ModelName        string       `json:"model_name"`
	SKU              string       `json:"sku"`
	Title            string       `json:"title"`
	Status           ResultStatus `json:"status"`
	ShopifyProductID *int64       `json:"shopify_product_id,omitempty"`
	Unresolved       []Unresolved `json:"unresolved,omitempty"`
	ErrorMessage     *string      `json:"error,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
