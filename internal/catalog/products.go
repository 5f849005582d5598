package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/pkg/errors"
)

// brandFile is the on-disk shape of one brand catalog file
type brandFile struct {
	Brand  string               `json:"brand"`
	Models []domain.ProductModel `json:"models"`
}

// SearchHit is one search-as-you-type result
type SearchHit struct {
	Brand     string `json:"brand"`
	ModelName string `json:"model_name"`
	Label     string `json:"label"`
}

// Catalog holds the product model tables, one file per brand, loaded once
// at startup and indexed for lookup and fuzzy search.
type Catalog struct {
	brands map[string][]domain.ProductModel
	models map[string]map[string]*domain.ProductModel
	labels []string
	hits   []SearchHit
	logger *zap.Logger
}

// LoadCatalog reads every *.json brand file under dir. Malformed files
// and duplicate model names are fatal at load time.
func LoadCatalog(dir string, logger *zap.Logger) (*Catalog, error) {
	models, err := readBrandFiles(dir)
	if err != nil {
		return nil, err
	}
	return newCatalog(models, dir, logger)
}

func readBrandFiles(dir string) ([]domain.ProductModel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir %s: %w", dir, err)
	}

	var models []domain.ProductModel
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read brand file %s: %w", path, err)
		}

		var file brandFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("malformed brand file %s: %w", path, err)
		}
		if strings.TrimSpace(file.Brand) == "" {
			return nil, fmt.Errorf("brand file %s: missing brand name", path)
		}

		for _, m := range file.Models {
			m.Brand = file.Brand
			if strings.TrimSpace(m.ModelName) == "" {
				return nil, fmt.Errorf("brand file %s: model with empty model_name", path)
			}
			if len(m.Configurations) == 0 {
				return nil, fmt.Errorf("brand file %s: model %q has no configurations", path, m.ModelName)
			}
			models = append(models, m)
		}
	}

	if len(models) == 0 {
		return nil, fmt.Errorf("no brand files found in %s", dir)
	}
	return models, nil
}

func newCatalog(models []domain.ProductModel, dir string, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{
		brands: make(map[string][]domain.ProductModel),
		models: make(map[string]map[string]*domain.ProductModel),
		logger: logger,
	}

	for i := range models {
		m := models[i]
		if c.models[m.Brand] == nil {
			c.models[m.Brand] = make(map[string]*domain.ProductModel)
		}
		if _, dup := c.models[m.Brand][m.ModelName]; dup {
			return nil, fmt.Errorf("catalog: duplicate model %q for brand %q", m.ModelName, m.Brand)
		}
		c.models[m.Brand][m.ModelName] = &models[i]
		c.brands[m.Brand] = append(c.brands[m.Brand], m)

		label := m.Brand + " " + m.ModelName
		c.labels = append(c.labels, label)
		c.hits = append(c.hits, SearchHit{Brand: m.Brand, ModelName: m.ModelName, Label: label})
	}

	logger.Info("loaded product catalog",
		zap.String("dir", dir),
		zap.Int("brands", len(c.brands)),
		zap.Int("models", len(models)))

	return c, nil
}

// Brands returns the loaded brand names, sorted
func (c *Catalog) Brands() []string {
	brands := make([]string, 0, len(c.brands))
	for b := range c.brands {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands
}

// Models returns every model of one brand
func (c *Catalog) Models(brand string) ([]domain.ProductModel, error) {
	models, ok := c.brands[brand]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "brand", Key: brand}
	}
	return models, nil
}

// Model returns one model by brand and model name
func (c *Catalog) Model(brand, modelName string) (*domain.ProductModel, error) {
	byName, ok := c.models[brand]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "brand", Key: brand}
	}
	m, ok := byName[strings.TrimSpace(modelName)]
	if !ok {
		return nil, &errors.ErrNotFound{
			Resource: "model",
			Key:      fmt.Sprintf("%s/%s", brand, modelName),
		}
	}
	return m, nil
}

// All returns every loaded model
func (c *Catalog) All() []domain.ProductModel {
	var all []domain.ProductModel
	for _, brand := range c.Brands() {
		all = append(all, c.brands[brand]...)
	}
	return all
}

// Search ranks models against a partial query for search-as-you-type.
// An empty query lists models in brand order.
func (c *Catalog) Search(query string, limit int) []SearchHit {
	if limit <= 0 || limit > len(c.hits) {
		limit = len(c.hits)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]SearchHit, limit)
		copy(out, c.hits)
		return out
	}

	ranks := fuzzy.RankFindNormalizedFold(query, c.labels)
	sort.Sort(ranks)

	hits := make([]SearchHit, 0, limit)
	for _, rank := range ranks {
		hits = append(hits, c.hits[rank.OriginalIndex])
		if len(hits) == limit {
			break
		}
	}
	return hits
}
