package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/pkg/errors"
)

// Component metafields reference metaobject entries
const metafieldTypeReference = "metaobject_reference"

// PayloadBuilder resolves component display names to metaobject GIDs and
// assembles product payloads
type PayloadBuilder struct {
	gids      *catalog.GIDRepository
	namespace string
	logger    *zap.Logger
}

// NewPayloadBuilder creates a new payload builder
func NewPayloadBuilder(gids *catalog.GIDRepository, namespace string, logger *zap.Logger) *PayloadBuilder {
	return &PayloadBuilder{
		gids:      gids,
		namespace: namespace,
		logger:    logger,
	}
}

// ResolveMetafields maps each component of a configuration to a metafield.
// A missing mapping skips that metafield only: the miss is logged and
// reported back so the operator can extend the table. Categories are walked
// in a fixed order, one metafield per category, so a payload can never carry
// duplicate namespace/key pairs.
func (b *PayloadBuilder) ResolveMetafields(model *domain.ProductModel, config domain.Configuration) ([]domain.Metafield, []domain.Unresolved) {
	var metafields []domain.Metafield
	var unresolved []domain.Unresolved

	for _, cat := range domain.ComponentCategories {
		name := config.Component(cat)
		if name == "" {
			continue
		}

		gid, err := b.gids.Resolve(cat, name)
		if err != nil {
			b.logger.Warn("component has no gid mapping, skipping metafield",
				zap.String("brand", model.Brand),
				zap.String("model", model.ModelName),
				zap.String("sku", config.SKU),
				zap.String("category", string(cat)),
				zap.String("display_name", name))
			unresolved = append(unresolved, domain.Unresolved{Category: cat, DisplayName: name})
			continue
		}

		metafields = append(metafields, domain.Metafield{
			Namespace: b.namespace,
			Key:       string(cat),
			Type:      metafieldTypeReference,
			Value:     gid,
		})
	}

	return metafields, unresolved
}

// BuildPayload assembles the product payload for one configuration
func (b *PayloadBuilder) BuildPayload(model *domain.ProductModel, config domain.Configuration) (*domain.ProductPayload, []domain.Unresolved, error) {
	if strings.TrimSpace(config.SKU) == "" {
		return nil, nil, &errors.ErrValidation{Field: "sku", Message: "must not be empty"}
	}

	price, err := normalizePrice(config.Price)
	if err != nil {
		return nil, nil, err
	}

	metafields, unresolved := b.ResolveMetafields(model, config)

	payload := &domain.ProductPayload{
		Title:       buildTitle(model, config),
		Vendor:      model.Brand,
		ProductType: model.ProductType,
		Tags:        model.Tags,
		Variants: []domain.Variant{
			{Price: price, SKU: config.SKU},
		},
		Metafields: metafields,
	}

	return payload, unresolved, nil
}

// buildTitle composes "Brand ModelName (CPU/RAM/Storage/Color)", dropping
// absent components
func buildTitle(model *domain.ProductModel, config domain.Configuration) string {
	title := model.Brand + " " + model.ModelName

	parts := make([]string, 0, 4)
	for _, part := range []string{config.CPU, config.RAM, config.Storage, config.Color} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		title = fmt.Sprintf("%s (%s)", title, strings.Join(parts, "/"))
	}

	return title
}

// normalizePrice turns a JPY price string into the form Shopify expects:
// digits only, no decimal places. Separators and a leading yen sign are
// tolerated, fractional yen is a data error.
func normalizePrice(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "¥")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return "", &errors.ErrValidation{Field: "price", Message: fmt.Sprintf("not a number: %q", raw)}
	}
	if !d.IsPositive() {
		return "", &errors.ErrValidation{Field: "price", Message: "must be positive"}
	}

	truncated := d.Truncate(0)
	if !truncated.Equal(d) {
		return "", &errors.ErrValidation{Field: "price", Message: fmt.Sprintf("fractional yen: %q", raw)}
	}

	return truncated.String(), nil
}
