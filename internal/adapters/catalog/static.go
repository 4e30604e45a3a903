// Package catalog provides the catalog providers: the built-in sample set,
// YAML files, and a file-backed provider that reloads on change.
package catalog

import "github.com/PabloGalante/shopassist/internal/domain"

// Static serves a fixed item list.
type Static struct {
	items []domain.Item
}

func NewStatic(items []domain.Item) *Static {
	return &Static{items: domain.CloneItems(items)}
}

func (s *Static) Items() []domain.Item {
	return s.items
}

// DefaultItems is the sample catalog used when no catalog file is configured.
func DefaultItems() []domain.Item {
	return []domain.Item{
		{
			ID:          "1",
			Name:        "Wireless Bluetooth Headphones",
			Description: "High-quality wireless headphones with noise cancellation",
			Category:    "Electronics",
			Price:       79.99,
			Rating:      4.5,
			InStock:     true,
		},
		{
			ID:          "2",
			Name:        "Smart Watch",
			Description: "Feature-rich smartwatch with health monitoring",
			Category:    "Electronics",
			Price:       199.99,
			Rating:      4.8,
			InStock:     true,
		},
		{
			ID:          "3",
			Name:        "USB-C Cable",
			Description: "Durable USB-C charging cable",
			Category:    "Accessories",
			Price:       12.99,
			Rating:      4.2,
			InStock:     false,
		},
		{
			ID:          "4",
			Name:        "Laptop Stand",
			Description: "Adjustable aluminum laptop stand",
			Category:    "Accessories",
			Price:       45.99,
			Rating:      4.6,
			InStock:     true,
		},
	}
}
