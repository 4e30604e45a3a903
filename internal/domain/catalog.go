package domain

// Item is a purchasable product known to the assistant.
type Item struct {
	ID          ItemID  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category" yaml:"category"`
	Price       float64 `json:"price" yaml:"price"`
	Rating      float64 `json:"rating" yaml:"rating"`
	InStock     bool    `json:"in_stock" yaml:"in_stock"`
}

// CategoryAll is the wildcard category value.
const CategoryAll = "all"

// CategoryOptions are the categories offered by the filter panel, wildcard first.
var CategoryOptions = []string{CategoryAll, "Electronics", "Accessories", "Clothing", "Home & Garden"}

// CloneItems copies items so the result shares no backing array with the input.
func CloneItems(items []Item) []Item {
	if len(items) == 0 {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
