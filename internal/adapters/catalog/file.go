package catalog

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// fileDoc is the on-disk shape of a catalog file:
//
//	items:
//	  - id: "1"
//	    name: Smart Watch
//	    description: ...
//	    category: Electronics
//	    price: 199.99
//	    rating: 4.8
//	    in_stock: true
type fileDoc struct {
	Items []domain.Item `yaml:"items"`
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) ([]domain.Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	items, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return items, nil
}

// Parse decodes a YAML catalog document and validates every item.
func Parse(raw []byte) ([]domain.Item, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if err := Validate(doc.Items); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Validate checks identity uniqueness and the value ranges of every item.
func Validate(items []domain.Item) error {
	seen := make(map[domain.ItemID]struct{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			return fmt.Errorf("item %d: id is required", i)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = struct{}{}

		if it.Name == "" {
			return fmt.Errorf("item %q: name is required", it.ID)
		}
		if math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
			return fmt.Errorf("item %q: price %v is not a finite number", it.ID, it.Price)
		}
		if it.Price < 0 {
			return fmt.Errorf("item %q: price %.2f is negative", it.ID, it.Price)
		}
		if math.IsNaN(it.Rating) || it.Rating < 0 || it.Rating > 5 {
			return fmt.Errorf("item %q: rating %.1f outside [0,5]", it.ID, it.Rating)
		}
	}
	return nil
}
