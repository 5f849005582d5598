package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/catalog"
	"github.com/denkido/catalogimport/internal/domain"
	apperrors "github.com/denkido/catalogimport/pkg/errors"
)

func newTestGIDs(t *testing.T) *catalog.GIDRepository {
	t.Helper()
	dir := t.TempDir()

	tables := map[string]string{
		"cpu.json":     `{"category": "cpu", "definition_type": "laptop_cpu", "mappings": [{"display_name": "AMD Ryzen 7 7735HS", "gid": "gid://shopify/Metaobject/101"}]}`,
		"gpu.json":     `{"category": "gpu", "definition_type": "laptop_gpu", "mappings": [{"display_name": "NVIDIA GeForce RTX 4060 Laptop GPU", "gid": "gid://shopify/Metaobject/102"}]}`,
		"ram.json":     `{"category": "ram", "definition_type": "laptop_ram", "mappings": [{"display_name": "16GB", "gid": "gid://shopify/Metaobject/103"}]}`,
		"storage.json": `{"category": "storage", "definition_type": "laptop_storage", "mappings": [{"display_name": "512GB SSD", "gid": "gid://shopify/Metaobject/104"}]}`,
		"color.json":   `{"category": "color", "definition_type": "laptop_color", "mappings": [{"display_name": "Graphite Black", "gid": "gid://shopify/Metaobject/106"}]}`,
	}
	for name, content := range tables {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	gids, err := catalog.LoadGIDTables(dir, zap.NewNop())
	require.NoError(t, err)
	return gids
}

func testModel() *domain.ProductModel {
	return &domain.ProductModel{
		Brand:       "ASUS",
		ModelName:   "TUF Gaming A15",
		Series:      "TUF Gaming",
		ProductType: "Gaming Laptop",
		Tags:        []string{"gaming", "laptop"},
	}
}

func testConfig() domain.Configuration {
	return domain.Configuration{
		SKU:     "FA507NV-R77161T",
		Price:   "159800",
		CPU:     "AMD Ryzen 7 7735HS",
		GPU:     "NVIDIA GeForce RTX 4060 Laptop GPU",
		RAM:     "16GB",
		Storage: "512GB SSD",
		Color:   "Graphite Black",
	}
}

func TestBuildPayload(t *testing.T) {
	builder := NewPayloadBuilder(newTestGIDs(t), "specs", zap.NewNop())

	t.Run("AssemblesProduct", func(t *testing.T) {
		payload, unresolved, err := builder.BuildPayload(testModel(), testConfig())
		require.NoError(t, err)
		require.Empty(t, unresolved)

		assert.Equal(t, "ASUS TUF Gaming A15 (AMD Ryzen 7 7735HS/16GB/512GB SSD/Graphite Black)", payload.Title)
		assert.Equal(t, "ASUS", payload.Vendor)
		assert.Equal(t, "Gaming Laptop", payload.ProductType)
		assert.Equal(t, []string{"gaming", "laptop"}, payload.Tags)

		require.Len(t, payload.Variants, 1)
		assert.Equal(t, "159800", payload.Variants[0].Price)
		assert.Equal(t, "FA507NV-R77161T", payload.Variants[0].SKU)

		require.Len(t, payload.Metafields, 5)
		assert.Equal(t, "cpu", payload.Metafields[0].Key)
		assert.Equal(t, "specs", payload.Metafields[0].Namespace)
		assert.Equal(t, "metaobject_reference", payload.Metafields[0].Type)
		assert.Equal(t, "gid://shopify/Metaobject/101", payload.Metafields[0].Value)
	})

	t.Run("NoDuplicateNamespaceKeyPairs", func(t *testing.T) {
		payload, _, err := builder.BuildPayload(testModel(), testConfig())
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, m := range payload.Metafields {
			pair := m.Namespace + "/" + m.Key
			assert.Falsef(t, seen[pair], "duplicate metafield %s", pair)
			seen[pair] = true
		}
	})

	t.Run("UnresolvedComponentSkipsMetafieldOnly", func(t *testing.T) {
		config := testConfig()
		config.GPU = "NVIDIA GeForce RTX 5090 Laptop GPU"

		payload, unresolved, err := builder.BuildPayload(testModel(), config)
		require.NoError(t, err)

		require.Len(t, unresolved, 1)
		assert.Equal(t, domain.CategoryGPU, unresolved[0].Category)
		assert.Equal(t, "NVIDIA GeForce RTX 5090 Laptop GPU", unresolved[0].DisplayName)

		require.Len(t, payload.Metafields, 4)
		for _, m := range payload.Metafields {
			assert.NotEqual(t, "gpu", m.Key)
		}
	})

	t.Run("AbsentComponentIsNotReported", func(t *testing.T) {
		config := testConfig()
		config.GPU = ""
		config.Display = ""

		payload, unresolved, err := builder.BuildPayload(testModel(), config)
		require.NoError(t, err)
		assert.Empty(t, unresolved)
		assert.Len(t, payload.Metafields, 4)
	})

	t.Run("EmptySKUFails", func(t *testing.T) {
		config := testConfig()
		config.SKU = "  "

		_, _, err := builder.BuildPayload(testModel(), config)
		var vErr *apperrors.ErrValidation
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "sku", vErr.Field)
	})

	t.Run("BadPriceFails", func(t *testing.T) {
		config := testConfig()
		config.Price = "about 160k"

		_, _, err := builder.BuildPayload(testModel(), config)
		var vErr *apperrors.ErrValidation
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "price", vErr.Field)
	})
}

func TestBuildTitle(t *testing.T) {
	t.Run("DropsAbsentComponents", func(t *testing.T) {
		config := domain.Configuration{SKU: "X", CPU: "AMD Ryzen 7 7735HS", Color: "Graphite Black"}
		assert.Equal(t, "ASUS TUF Gaming A15 (AMD Ryzen 7 7735HS/Graphite Black)", buildTitle(testModel(), config))
	})

	t.Run("BareTitleWithoutComponents", func(t *testing.T) {
		assert.Equal(t, "ASUS TUF Gaming A15", buildTitle(testModel(), domain.Configuration{SKU: "X"}))
	})
}

func TestNormalizePrice(t *testing.T) {
	valid := []struct {
		in   string
		want string
	}{
		{"159800", "159800"},
		{"159800.00", "159800"},
		{"159,800", "159800"},
		{"¥159,800", "159800"},
		{" 89800 ", "89800"},
	}
	for _, tc := range valid {
		t.Run(fmt.Sprintf("Accepts %s", tc.in), func(t *testing.T) {
			got, err := normalizePrice(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	invalid := []string{"159800.50", "abc", "", "0", "-500", "¥"}
	for _, in := range invalid {
		t.Run(fmt.Sprintf("Rejects %q", in), func(t *testing.T) {
			_, err := normalizePrice(in)
			var vErr *apperrors.ErrValidation
			require.True(t, errors.As(err, &vErr))
		})
	}
}

func TestResolveMetafields(t *testing.T) {
	builder := NewPayloadBuilder(newTestGIDs(t), "specs", zap.NewNop())

	t.Run("WalksCategoriesInOrder", func(t *testing.T) {
		metafields, unresolved := builder.ResolveMetafields(testModel(), testConfig())
		require.Empty(t, unresolved)

		keys := make([]string, 0, len(metafields))
		for _, m := range metafields {
			keys = append(keys, m.Key)
		}
		assert.Equal(t, []string{"cpu", "gpu", "ram", "storage", "color"}, keys)
	})

	t.Run("EveryMissIsReported", func(t *testing.T) {
		config := testConfig()
		config.RAM = "24GB"
		config.Color = "Off White"

		metafields, unresolved := builder.ResolveMetafields(testModel(), config)
		assert.Len(t, metafields, 3)
		require.Len(t, unresolved, 2)
		assert.Equal(t, domain.CategoryRAM, unresolved[0].Category)
		assert.Equal(t, domain.CategoryColor, unresolved[1].Category)
	})
}
