package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/denkido/catalogimport/internal/domain"
	apperrors "github.com/denkido/catalogimport/pkg/errors"
)

// metafieldsSet accepts at most 25 entries per call
const metafieldsSetBatchSize = 25

// Metafield is the REST metafield resource
type Metafield struct {
	ID        int64  `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	OwnerID   int64  `json:"owner_id"`
}

// ListMetafields fetches the metafields attached to one product
func (c *Client) ListMetafields(ctx context.Context, productID int64) ([]Metafield, error) {
	var out struct {
		Metafields []Metafield `json:"metafields"`
	}
	path := fmt.Sprintf("products/%d/metafields.json", productID)
	if err := c.restJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Metafields, nil
}

// SetMetafields writes metafields onto an existing owner via metafieldsSet,
// batching to the mutation's input limit
func (c *Client) SetMetafields(ctx context.Context, ownerGID string, metafields []domain.Metafield) error {
	for start := 0; start < len(metafields); start += metafieldsSetBatchSize {
		end := start + metafieldsSetBatchSize
		if end > len(metafields) {
			end = len(metafields)
		}

		inputs := make([]MetafieldsSetInput, 0, end-start)
		for _, m := range metafields[start:end] {
			inputs = append(inputs, MetafieldsSetInput{
				OwnerID:   ownerGID,
				Namespace: m.Namespace,
				Key:       m.Key,
				Type:      m.Type,
				Value:     m.Value,
			})
		}

		resp, err := c.Execute(ctx, MetafieldsSetMutation, map[string]interface{}{
			"metafields": inputs,
		})
		if err != nil {
			return err
		}

		var result struct {
			MetafieldsSet struct {
				Metafields []struct {
					ID        string `json:"id"`
					Namespace string `json:"namespace"`
					Key       string `json:"key"`
				} `json:"metafields"`
				UserErrors []apperrors.UserError `json:"userErrors"`
			} `json:"metafieldsSet"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return fmt.Errorf("failed to parse metafieldsSet response: %w", err)
		}
		if len(result.MetafieldsSet.UserErrors) > 0 {
			return &apperrors.ErrUserErrors{
				Operation: "metafieldsSet",
				Errors:    result.MetafieldsSet.UserErrors,
			}
		}
	}
	return nil
}
