package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/denkido/catalogimport/internal/domain"
)

// Product is the REST product resource, narrowed to the fields this tool reads
type Product struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Handle      string           `json:"handle"`
	Status      string           `json:"status"`
	Tags        string           `json:"tags"`
	Variants    []ProductVariant `json:"variants"`
}

// ProductVariant is the REST variant resource
type ProductVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	SKU   string `json:"sku"`
	Price string `json:"price"`
}

type restVariant struct {
	Price string `json:"price"`
	SKU   string `json:"sku,omitempty"`
}

type restMetafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

type restProduct struct {
	Title       string          `json:"title"`
	Vendor      string          `json:"vendor,omitempty"`
	ProductType string          `json:"product_type,omitempty"`
	Tags        string          `json:"tags,omitempty"`
	Variants    []restVariant   `json:"variants,omitempty"`
	Metafields  []restMetafield `json:"metafields,omitempty"`
}

type productRequest struct {
	Product restProduct `json:"product"`
}

func newProductRequest(payload domain.ProductPayload) productRequest {
	p := restProduct{
		Title:       payload.Title,
		Vendor:      payload.Vendor,
		ProductType: payload.ProductType,
		Tags:        strings.Join(payload.Tags, ", "),
	}
	for _, v := range payload.Variants {
		p.Variants = append(p.Variants, restVariant{Price: v.Price, SKU: v.SKU})
	}
	for _, m := range payload.Metafields {
		p.Metafields = append(p.Metafields, restMetafield{
			Namespace: m.Namespace,
			Key:       m.Key,
			Type:      m.Type,
			Value:     m.Value,
		})
	}
	return productRequest{Product: p}
}

// CreateProduct registers one product with its variants and metafields.
// A 422 answer (duplicate handle, bad metafield value) comes back as
// *errors.ErrUserErrors.
func (c *Client) CreateProduct(ctx context.Context, payload domain.ProductPayload) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	if err := c.restJSON(ctx, http.MethodPost, "products.json", nil, newProductRequest(payload), &out); err != nil {
		return nil, err
	}

	return &out.Product, nil
}

// GetProduct fetches one product by numeric ID
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	path := fmt.Sprintf("products/%d.json", id)
	if err := c.restJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// DeleteProduct removes one product. Used by test cleanup only; the
// importer never rolls back on its own.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	path := fmt.Sprintf("products/%d.json", id)
	return c.restJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ListProductsOptions narrows a product listing
type ListProductsOptions struct {
	Limit    int    `url:"limit,omitempty"`
	Vendor   string `url:"vendor,omitempty"`
	Fields   string `url:"fields,omitempty"`
	PageInfo string `url:"page_info,omitempty"`
}

var nextPageInfoRe = regexp.MustCompile(`page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// ListProducts fetches products page by page until the Link header stops
// advertising a next page. Shopify only allows the limit filter alongside
// page_info, so follow-up pages drop the other options.
func (c *Client) ListProducts(ctx context.Context, opts ListProductsOptions) ([]Product, error) {
	if opts.Limit == 0 {
		opts.Limit = 250
	}

	var products []Product
	for {
		values, err := query.Values(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list options: %w", err)
		}

		var out struct {
			Products []Product `json:"products"`
		}
		header, err := c.restJSONHeader(ctx, http.MethodGet, "products.json", values, nil, &out)
		if err != nil {
			return nil, err
		}
		products = append(products, out.Products...)

		pageInfo := nextPageInfo(header)
		if pageInfo == "" {
			return products, nil
		}
		opts = ListProductsOptions{Limit: opts.Limit, PageInfo: pageInfo}
	}
}

// nextPageInfo extracts the next-page cursor from the Link header
func nextPageInfo(header http.Header) string {
	link := header.Get("Link")
	if link == "" || !strings.Contains(link, `rel="next"`) {
		return ""
	}
	m := nextPageInfoRe.FindStringSubmatch(link)
	if len(m) < 2 {
		return ""
	}
	cursor, err := url.QueryUnescape(m[1])
	if err != nil {
		return m[1]
	}
	return cursor
}

// ProductGID builds the GraphQL GID for a numeric product ID
func ProductGID(id int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", id)
}
