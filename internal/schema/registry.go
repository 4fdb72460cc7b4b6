// Package schema maps visualization ids to their required column contracts.
package schema

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Built-in contracts for the seeded visualizations. Header order matters:
// uploads are matched element-for-element against these lists.
var (
	RequiredSalesHeaders = []string{
		"ReceiptDateTime", "ArticleId", "NetAmountExcl",
		"Quantity", "Article", "SubgroupId", "MaingroupId", "StoreId",
	}

	RequiredVisitorHeaders = []string{
		"AccessGroupId", "Date", "Time", "NumberOfUsedEntrances",
	}
)

// Registry resolves a visualization id to its ordered required header list.
// It is loaded once at startup and read-only afterwards; lookups never
// mutate state.
type Registry struct {
	mu        sync.RWMutex
	contracts map[int64][]string
}

// NewRegistry returns a registry populated with the built-in contracts.
func NewRegistry() *Registry {
	return &Registry{
		contracts: map[int64][]string{
			1: RequiredSalesHeaders,
			2: RequiredVisitorHeaders,
		},
	}
}

// Headers returns the required header list for a visualization id. The
// second return value is false for ids without a contract; callers must
// treat that as a hard rejection, never as a default.
func (r *Registry) Headers(visualizationID int64) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	headers, ok := r.contracts[visualizationID]
	return headers, ok
}

// Register sets the contract for a visualization id, replacing any existing
// one. There is exactly one contract per id.
func (r *Registry) Register(visualizationID int64, headers []string) error {
	if len(headers) == 0 {
		return fmt.Errorf("contract for visualization %d has no headers", visualizationID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[visualizationID] = headers
	return nil
}

// Len returns the number of registered contracts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contracts)
}

// schemaFile is the on-disk YAML shape for additional contracts.
type schemaFile struct {
	Schemas []struct {
		VisualizationID int64    `yaml:"visualization_id"`
		Headers         []string `yaml:"headers"`
	} `yaml:"schemas"`
}

// LoadFile merges contracts from a YAML file into the registry. A file entry
// for an already-registered id replaces the built-in contract. A missing
// file is not an error; the built-ins stay in effect.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse schema file: %w", err)
	}

	for _, s := range file.Schemas {
		if err := r.Register(s.VisualizationID, s.Headers); err != nil {
			return err
		}
	}
	return nil
}
