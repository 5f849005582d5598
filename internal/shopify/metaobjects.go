package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/denkido/catalogimport/pkg/errors"
)

const metaobjectsPageSize = 250

// Metaobject is one metaobject entry
type Metaobject struct {
	GID         string            `json:"id"`
	Handle      string            `json:"handle"`
	DisplayName string            `json:"displayName"`
	Fields      []MetaobjectField `json:"fields,omitempty"`
}

// MetaobjectField is one key/value field on a metaobject entry
type MetaobjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// metaobjectResult is the shared mutation result envelope
type metaobjectResult struct {
	Metaobject *Metaobject           `json:"metaobject"`
	UserErrors []apperrors.UserError `json:"userErrors"`
}

func (r *metaobjectResult) unwrap(operation string) (*Metaobject, error) {
	if len(r.UserErrors) > 0 {
		return nil, &apperrors.ErrUserErrors{Operation: operation, Errors: r.UserErrors}
	}
	if r.Metaobject == nil {
		return nil, fmt.Errorf("%s returned no metaobject", operation)
	}
	return r.Metaobject, nil
}

// ListMetaobjects fetches every entry of one metaobject definition type,
// following the cursor until the last page
func (c *Client) ListMetaobjects(ctx context.Context, definitionType string) ([]Metaobject, error) {
	var (
		metaobjects []Metaobject
		after       *string
	)
	for {
		variables := map[string]interface{}{
			"type":  definitionType,
			"first": metaobjectsPageSize,
		}
		if after != nil {
			variables["after"] = *after
		}

		resp, err := c.Execute(ctx, MetaobjectsQuery, variables)
		if err != nil {
			return nil, err
		}

		var result struct {
			Metaobjects struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node Metaobject `json:"node"`
				} `json:"edges"`
			} `json:"metaobjects"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse metaobjects response: %w", err)
		}

		for _, edge := range result.Metaobjects.Edges {
			metaobjects = append(metaobjects, edge.Node)
		}

		if !result.Metaobjects.PageInfo.HasNextPage {
			return metaobjects, nil
		}
		cursor := result.Metaobjects.PageInfo.EndCursor
		after = &cursor
	}
}

// CreateMetaobject creates one metaobject entry
func (c *Client) CreateMetaobject(ctx context.Context, input MetaobjectCreateInput) (*Metaobject, error) {
	resp, err := c.Execute(ctx, MetaobjectCreateMutation, map[string]interface{}{
		"metaobject": input,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		MetaobjectCreate metaobjectResult `json:"metaobjectCreate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse metaobjectCreate response: %w", err)
	}
	return result.MetaobjectCreate.unwrap("metaobjectCreate")
}

// UpdateMetaobject updates one metaobject entry by GID
func (c *Client) UpdateMetaobject(ctx context.Context, gid string, input MetaobjectUpdateInput) (*Metaobject, error) {
	resp, err := c.Execute(ctx, MetaobjectUpdateMutation, map[string]interface{}{
		"id":         gid,
		"metaobject": input,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		MetaobjectUpdate metaobjectResult `json:"metaobjectUpdate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse metaobjectUpdate response: %w", err)
	}
	return result.MetaobjectUpdate.unwrap("metaobjectUpdate")
}

// UpsertMetaobject creates or updates a metaobject entry addressed by
// definition type and handle
func (c *Client) UpsertMetaobject(ctx context.Context, handle MetaobjectHandleInput, input MetaobjectUpsertInput) (*Metaobject, error) {
	resp, err := c.Execute(ctx, MetaobjectUpsertMutation, map[string]interface{}{
		"handle":     handle,
		"metaobject": input,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		MetaobjectUpsert metaobjectResult `json:"metaobjectUpsert"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse metaobjectUpsert response: %w", err)
	}
	return result.MetaobjectUpsert.unwrap("metaobjectUpsert")
}
