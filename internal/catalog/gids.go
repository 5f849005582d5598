package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/denkido/catalogimport/internal/domain"
	"github.com/denkido/catalogimport/pkg/errors"
)

// GIDRepository holds the component GID mapping tables, one table per
// category, loaded once at startup. Lookups are exact-match only: a miss
// is reported, never guessed.
type GIDRepository struct {
	tables map[domain.Category]*domain.MappingTable
	index  map[domain.Category]map[string]string
	logger *zap.Logger
}

// LoadGIDTables reads every *.json mapping table under dir. A missing
// directory, unreadable file, malformed table or duplicate display name
// is fatal: importing against a broken table would mislabel products.
func LoadGIDTables(dir string, logger *zap.Logger) (*GIDRepository, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read gid table dir %s: %w", dir, err)
	}

	repo := &GIDRepository{
		tables: make(map[domain.Category]*domain.MappingTable),
		index:  make(map[domain.Category]map[string]string),
		logger: logger,
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read gid table %s: %w", path, err)
		}

		var table domain.MappingTable
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("malformed gid table %s: %w", path, err)
		}
		if !table.Category.IsValid() {
			return nil, fmt.Errorf("gid table %s: unknown category %q", path, table.Category)
		}
		if _, exists := repo.tables[table.Category]; exists {
			return nil, fmt.Errorf("gid table %s: duplicate table for category %q", path, table.Category)
		}

		names := make(map[string]string, len(table.Mappings))
		for _, m := range table.Mappings {
			name := strings.TrimSpace(m.DisplayName)
			if name == "" {
				return nil, fmt.Errorf("gid table %s: empty display_name", path)
			}
			if m.GID == "" {
				return nil, fmt.Errorf("gid table %s: missing gid for %q", path, name)
			}
			if _, dup := names[name]; dup {
				return nil, fmt.Errorf("gid table %s: duplicate display_name %q", path, name)
			}
			names[name] = m.GID
		}

		repo.tables[table.Category] = &table
		repo.index[table.Category] = names
	}

	if len(repo.tables) == 0 {
		return nil, fmt.Errorf("no gid tables found in %s", dir)
	}

	total := 0
	for _, names := range repo.index {
		total += len(names)
	}
	logger.Info("loaded gid mapping tables",
		zap.String("dir", dir),
		zap.Int("tables", len(repo.tables)),
		zap.Int("mappings", total))

	return repo, nil
}

// Resolve returns the metaobject GID for a component display name.
// Matching is exact after trimming surrounding whitespace.
func (r *GIDRepository) Resolve(category domain.Category, displayName string) (string, error) {
	names, ok := r.index[category]
	if !ok {
		return "", &errors.ErrNotFound{Resource: "gid table", Key: string(category)}
	}
	gid, ok := names[strings.TrimSpace(displayName)]
	if !ok {
		return "", &errors.ErrNotFound{
			Resource: "gid mapping",
			Key:      fmt.Sprintf("%s/%s", category, displayName),
		}
	}
	return gid, nil
}

// Categories returns the loaded categories in metafield emission order
func (r *GIDRepository) Categories() []domain.Category {
	cats := make([]domain.Category, 0, len(r.tables))
	for _, cat := range domain.ComponentCategories {
		if _, ok := r.tables[cat]; ok {
			cats = append(cats, cat)
		}
	}
	return cats
}

// Mappings returns the raw mapping rows of one table
func (r *GIDRepository) Mappings(category domain.Category) ([]domain.ComponentMapping, error) {
	table, ok := r.tables[category]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "gid table", Key: string(category)}
	}
	return table.Mappings, nil
}

// Table returns one full mapping table, used by the metaobject sync tooling
func (r *GIDRepository) Table(category domain.Category) (*domain.MappingTable, error) {
	table, ok := r.tables[category]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "gid table", Key: string(category)}
	}
	return table, nil
}
