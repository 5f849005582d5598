package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/config"
	"github.com/denkido/catalogimport/internal/domain"
	apperrors "github.com/denkido/catalogimport/pkg/errors"
)

func newTestClient(srv *httptest.Server, maxRetries int) *Client {
	return &Client{
		baseURL:     srv.URL + "/admin/api/2026-01",
		accessToken: "testtoken",
		maxRetries:  maxRetries,
		retryDelay:  time.Millisecond,
		httpClient:  srv.Client(),
		logger:      zap.NewNop(),
	}
}

func testPayload() domain.ProductPayload {
	return domain.ProductPayload{
		Title:       "ASUS TUF Gaming A15 (AMD Ryzen 7 7735HS/16GB/512GB SSD/Graphite Black)",
		Vendor:      "ASUS",
		ProductType: "Gaming Laptop",
		Tags:        []string{"gaming", "laptop"},
		Variants:    []domain.Variant{{Price: "159800", SKU: "FA507NV-R77161T"}},
		Metafields: []domain.Metafield{
			{Namespace: "specs", Key: "cpu", Type: "metaobject_reference", Value: "gid://shopify/Metaobject/101"},
		},
	}
}

func TestNewClient(t *testing.T) {
	t.Run("NormalizesShopDomain", func(t *testing.T) {
		c := NewClient(config.ShopifyConfig{
			ShopDomain: "https://denkido.myshopify.com/",
			APIVersion: "2026-01",
		}, zap.NewNop())
		assert.Equal(t, "https://denkido.myshopify.com/admin/api/2026-01", c.baseURL)
	})
}

func TestCreateProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/admin/api/2026-01/products.json", r.URL.Path)
			assert.Equal(t, "testtoken", r.Header.Get("X-Shopify-Access-Token"))

			var req productRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gaming, laptop", req.Product.Tags)
			require.Len(t, req.Product.Variants, 1)
			assert.Equal(t, "159800", req.Product.Variants[0].Price)
			require.Len(t, req.Product.Metafields, 1)
			assert.Equal(t, "metaobject_reference", req.Product.Metafields[0].Type)

			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"product": {"id": 7001, "title": "ASUS TUF Gaming A15", "vendor": "ASUS"}}`)
		}))
		defer srv.Close()

		product, err := newTestClient(srv, 3).CreateProduct(context.Background(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, int64(7001), product.ID)
		assert.Equal(t, "ASUS", product.Vendor)
	})

	t.Run("RejectedPayloadIsUserErrors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"errors": {"handle": ["has already been taken"]}}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 3).CreateProduct(context.Background(), testPayload())
		var userErrs *apperrors.ErrUserErrors
		require.True(t, errors.As(err, &userErrs))
		require.Len(t, userErrs.Errors, 1)
		assert.Equal(t, []string{"handle"}, userErrs.Errors[0].Field)
		assert.Contains(t, err.Error(), "handle: has already been taken")
	})

	t.Run("RejectedTokenIsUnauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors": "[API] Invalid API key or access token"}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 3).CreateProduct(context.Background(), testPayload())
		var unauthorized *apperrors.ErrUnauthorized
		require.True(t, errors.As(err, &unauthorized))
	})
}

func TestRetryOn429(t *testing.T) {
	t.Run("ExactlyOneRetryAfterSingle429", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			if requests == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"product": {"id": 42}}`)
		}))
		defer srv.Close()

		product, err := newTestClient(srv, 3).CreateProduct(context.Background(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, int64(42), product.ID)
		assert.Equal(t, 2, requests)
	})

	t.Run("ExhaustedBudgetIsRateLimited", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 2).CreateProduct(context.Background(), testPayload())
		var rateLimited *apperrors.ErrRateLimited
		require.True(t, errors.As(err, &rateLimited))
		assert.Equal(t, 3, requests)
	})

	t.Run("ServerErrorsRetried", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			if requests == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"product": {"id": 43}}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 3).CreateProduct(context.Background(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, 2, requests)
	})
}

func TestRetryAfterHeader(t *testing.T) {
	fallback := 42 * time.Millisecond

	header := http.Header{}
	header.Set("Retry-After", "1.5")
	assert.Equal(t, 2*time.Second, retryAfter(header, fallback))

	assert.Equal(t, fallback, retryAfter(http.Header{}, fallback))

	header.Set("Retry-After", "soon")
	assert.Equal(t, fallback, retryAfter(header, fallback))

	header.Set("Retry-After", "-3")
	assert.Equal(t, fallback, retryAfter(header, fallback))
}

func TestGetProduct(t *testing.T) {
	t.Run("MissingProductIsNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors": "Not Found"}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 3).GetProduct(context.Background(), 12345)
		var notFound *apperrors.ErrNotFound
		require.True(t, errors.As(err, &notFound))
	})
}

func TestDeleteProduct(t *testing.T) {
	t.Run("IssuesDelete", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/admin/api/2026-01/products/7001.json", r.URL.Path)
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()

		require.NoError(t, newTestClient(srv, 3).DeleteProduct(context.Background(), 7001))
	})

	t.Run("MissingProductIsNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors": "Not Found"}`)
		}))
		defer srv.Close()

		err := newTestClient(srv, 3).DeleteProduct(context.Background(), 12345)
		var notFound *apperrors.ErrNotFound
		require.True(t, errors.As(err, &notFound))
	})
}

func TestListProducts(t *testing.T) {
	t.Run("FollowsLinkHeaderAcrossPages", func(t *testing.T) {
		requests := 0
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			q := r.URL.Query()
			if q.Get("page_info") == "" {
				assert.Equal(t, "ASUS", q.Get("vendor"))
				assert.Equal(t, "2", q.Get("limit"))
				w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2026-01/products.json?limit=2&page_info=tok123>; rel="next"`, srv.URL))
				fmt.Fprint(w, `{"products": [{"id": 1}, {"id": 2}]}`)
				return
			}
			assert.Equal(t, "tok123", q.Get("page_info"))
			assert.Empty(t, q.Get("vendor"), "page_info pages must drop the other filters")
			fmt.Fprint(w, `{"products": [{"id": 3}]}`)
		}))
		defer srv.Close()

		products, err := newTestClient(srv, 3).ListProducts(context.Background(), ListProductsOptions{Limit: 2, Vendor: "ASUS"})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, int64(3), products[2].ID)
		assert.Equal(t, 2, requests)
	})

	t.Run("StopsWithoutNextRel", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("Link", `<https://x.myshopify.com/admin/api/2026-01/products.json?page_info=prevtok>; rel="previous"`)
			fmt.Fprint(w, `{"products": [{"id": 9}]}`)
		}))
		defer srv.Close()

		products, err := newTestClient(srv, 3).ListProducts(context.Background(), ListProductsOptions{})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Equal(t, 1, requests)
	})
}

func TestNextPageInfo(t *testing.T) {
	header := http.Header{}
	header.Set("Link", `<https://x.myshopify.com/admin/api/2026-01/products.json?page_info=prevtok&limit=2>; rel="previous", <https://x.myshopify.com/admin/api/2026-01/products.json?page_info=nexttok&limit=2>; rel="next"`)
	assert.Equal(t, "nexttok", nextPageInfo(header))

	header.Set("Link", `<https://x.myshopify.com/admin/api/2026-01/products.json?page_info=prevtok>; rel="previous"`)
	assert.Empty(t, nextPageInfo(header))

	assert.Empty(t, nextPageInfo(http.Header{}))
}

func TestExecute(t *testing.T) {
	t.Run("ThrottledQueryRetries", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Equal(t, "/admin/api/2026-01/graphql.json", r.URL.Path)
			if requests == 1 {
				fmt.Fprint(w, `{"errors": [{"message": "Throttled", "extensions": {"code": "THROTTLED"}}]}`)
				return
			}
			fmt.Fprint(w, `{"data": {"shop": {"name": "denkido"}}}`)
		}))
		defer srv.Close()

		resp, err := newTestClient(srv, 3).Execute(context.Background(), "query { shop { name } }", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, requests)
		assert.Contains(t, string(resp.Data), "denkido")
	})

	t.Run("ThrottleBudgetExhausted", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, `{"errors": [{"message": "Throttled", "extensions": {"code": "THROTTLED"}}]}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 1).Execute(context.Background(), "query { shop { name } }", nil)
		var rateLimited *apperrors.ErrRateLimited
		require.True(t, errors.As(err, &rateLimited))
		assert.Equal(t, 2, requests)
	})

	t.Run("OtherErrorsAreNotRetried", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, `{"errors": [{"message": "Field 'foo' doesn't exist on type 'QueryRoot'"}]}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 3).Execute(context.Background(), "query { foo }", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Field 'foo' doesn't exist")
		assert.Equal(t, 1, requests)
	})
}

func TestThrottleWait(t *testing.T) {
	fallback := 42 * time.Millisecond

	t.Run("UsesCostData", func(t *testing.T) {
		resp := &GraphQLResponse{Extensions: &Extensions{Cost: &QueryCost{
			RequestedQueryCost: 100,
			ThrottleStatus:     ThrottleStatus{CurrentlyAvailable: 50, RestoreRate: 25},
		}}}
		assert.Equal(t, 2500*time.Millisecond, throttleWait(resp, fallback))
	})

	t.Run("FallsBackWithoutCostData", func(t *testing.T) {
		assert.Equal(t, fallback, throttleWait(&GraphQLResponse{}, fallback))
	})

	t.Run("FallsBackWhenBudgetSuffices", func(t *testing.T) {
		resp := &GraphQLResponse{Extensions: &Extensions{Cost: &QueryCost{
			RequestedQueryCost: 100,
			ThrottleStatus:     ThrottleStatus{CurrentlyAvailable: 400, RestoreRate: 50},
		}}}
		assert.Equal(t, fallback, throttleWait(resp, fallback))
	})
}

func TestSetMetafields(t *testing.T) {
	t.Run("BatchesAtInputLimit", func(t *testing.T) {
		var batchSizes []int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Variables struct {
					Metafields []json.RawMessage `json:"metafields"`
				} `json:"variables"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			batchSizes = append(batchSizes, len(req.Variables.Metafields))
			fmt.Fprint(w, `{"data": {"metafieldsSet": {"metafields": [], "userErrors": []}}}`)
		}))
		defer srv.Close()

		metafields := make([]domain.Metafield, 30)
		for i := range metafields {
			metafields[i] = domain.Metafield{
				Namespace: "specs",
				Key:       fmt.Sprintf("k%d", i),
				Type:      "single_line_text_field",
				Value:     "v",
			}
		}

		err := newTestClient(srv, 3).SetMetafields(context.Background(), ProductGID(1), metafields)
		require.NoError(t, err)
		assert.Equal(t, []int{25, 5}, batchSizes)
	})

	t.Run("UserErrorsSurface", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data": {"metafieldsSet": {"metafields": [], "userErrors": [{"field": ["metafields", "0", "value"], "message": "invalid metaobject id"}]}}}`)
		}))
		defer srv.Close()

		err := newTestClient(srv, 3).SetMetafields(context.Background(), ProductGID(1), []domain.Metafield{
			{Namespace: "specs", Key: "cpu", Type: "metaobject_reference", Value: "gid://bad"},
		})
		var userErrs *apperrors.ErrUserErrors
		require.True(t, errors.As(err, &userErrs))
		assert.Equal(t, "metafieldsSet", userErrs.Operation)
		assert.Contains(t, err.Error(), "metafields.0.value: invalid metaobject id")
	})
}

func TestListMetafields(t *testing.T) {
	t.Run("DecodesProductMetafields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/admin/api/2026-01/products/7001/metafields.json", r.URL.Path)
			fmt.Fprint(w, `{"metafields": [
				{"id": 1, "namespace": "specs", "key": "cpu", "type": "metaobject_reference", "value": "gid://shopify/Metaobject/101", "owner_id": 7001},
				{"id": 2, "namespace": "specs", "key": "ram", "type": "metaobject_reference", "value": "gid://shopify/Metaobject/103", "owner_id": 7001}
			]}`)
		}))
		defer srv.Close()

		metafields, err := newTestClient(srv, 3).ListMetafields(context.Background(), 7001)
		require.NoError(t, err)
		require.Len(t, metafields, 2)
		assert.Equal(t, "cpu", metafields[0].Key)
		assert.Equal(t, "gid://shopify/Metaobject/103", metafields[1].Value)
	})
}

func TestListMetaobjects(t *testing.T) {
	t.Run("FollowsCursor", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			var req GraphQLRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "laptop_cpu", req.Variables["type"])

			if requests == 1 {
				assert.NotContains(t, req.Variables, "after")
				fmt.Fprint(w, `{"data": {"metaobjects": {
					"pageInfo": {"hasNextPage": true, "endCursor": "cur1"},
					"edges": [
						{"node": {"id": "gid://shopify/Metaobject/1", "handle": "amd-ryzen-7-7735hs", "displayName": "AMD Ryzen 7 7735HS"}},
						{"node": {"id": "gid://shopify/Metaobject/2", "handle": "intel-core-i7-13700h", "displayName": "Intel Core i7-13700H"}}
					]}}}`)
				return
			}
			assert.Equal(t, "cur1", req.Variables["after"])
			fmt.Fprint(w, `{"data": {"metaobjects": {
				"pageInfo": {"hasNextPage": false, "endCursor": ""},
				"edges": [{"node": {"id": "gid://shopify/Metaobject/3", "handle": "amd-ryzen-9-8945hs", "displayName": "AMD Ryzen 9 8945HS"}}]}}}`)
		}))
		defer srv.Close()

		entries, err := newTestClient(srv, 3).ListMetaobjects(context.Background(), "laptop_cpu")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "AMD Ryzen 7 7735HS", entries[0].DisplayName)
		assert.Equal(t, "gid://shopify/Metaobject/3", entries[2].GID)
		assert.Equal(t, 2, requests)
	})
}

func TestMetaobjectMutations(t *testing.T) {
	t.Run("CreateReturnsEntry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req GraphQLRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Query, "metaobjectCreate")
			fmt.Fprint(w, `{"data": {"metaobjectCreate": {"metaobject": {"id": "gid://shopify/Metaobject/10", "handle": "ram-24gb", "displayName": "24GB"}, "userErrors": []}}}`)
		}))
		defer srv.Close()

		obj, err := newTestClient(srv, 3).CreateMetaobject(context.Background(), MetaobjectCreateInput{
			Type:   "laptop_ram",
			Fields: []MetaobjectFieldInput{{Key: "name", Value: "24GB"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "gid://shopify/Metaobject/10", obj.GID)
	})

	t.Run("UpdateUserErrorsSurface", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data": {"metaobjectUpdate": {"metaobject": null, "userErrors": [{"field": ["fields"], "message": "Key must be defined"}]}}}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv, 3).UpdateMetaobject(context.Background(), "gid://shopify/Metaobject/10", MetaobjectUpdateInput{
			Fields: []MetaobjectFieldInput{{Key: "", Value: "x"}},
		})
		var userErrs *apperrors.ErrUserErrors
		require.True(t, errors.As(err, &userErrs))
		assert.Equal(t, "metaobjectUpdate", userErrs.Operation)
	})

	t.Run("UpsertAddressesByHandle", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req GraphQLRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			handle, ok := req.Variables["handle"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "laptop_cpu", handle["type"])
			assert.Equal(t, "amd-ryzen-7-7735hs", handle["handle"])
			fmt.Fprint(w, `{"data": {"metaobjectUpsert": {"metaobject": {"id": "gid://shopify/Metaobject/11", "handle": "amd-ryzen-7-7735hs", "displayName": "AMD Ryzen 7 7735HS"}, "userErrors": []}}}`)
		}))
		defer srv.Close()

		obj, err := newTestClient(srv, 3).UpsertMetaobject(context.Background(),
			MetaobjectHandleInput{Type: "laptop_cpu", Handle: "amd-ryzen-7-7735hs"},
			MetaobjectUpsertInput{Fields: []MetaobjectFieldInput{{Key: "name", Value: "AMD Ryzen 7 7735HS"}}})
		require.NoError(t, err)
		assert.Equal(t, "gid://shopify/Metaobject/11", obj.GID)
	})
}

func TestParseRESTErrors(t *testing.T) {
	t.Run("FieldMapShape", func(t *testing.T) {
		out := parseRESTErrors([]byte(`{"errors": {"title": ["can't be blank", "is too long"]}}`))
		require.Len(t, out, 2)
		assert.Equal(t, []string{"title"}, out[0].Field)
	})

	t.Run("StringShape", func(t *testing.T) {
		out := parseRESTErrors([]byte(`{"errors": "Not Found"}`))
		require.Len(t, out, 1)
		assert.Empty(t, out[0].Field)
		assert.Equal(t, "Not Found", out[0].Message)
	})

	t.Run("UnknownShapeKeepsBody", func(t *testing.T) {
		out := parseRESTErrors([]byte(`oops`))
		require.Len(t, out, 1)
		assert.Equal(t, "oops", out[0].Message)
	})
}
