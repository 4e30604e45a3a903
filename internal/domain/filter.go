package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// FilterCriteria narrows which catalog items may appear in search results.
// A MinPrice above MaxPrice is accepted and simply matches nothing.
type FilterCriteria struct {
	Category    string
	MinPrice    *float64 // nil means unset
	MaxPrice    *float64 // nil means unset
	InStockOnly bool
}

// DefaultFilters returns the criteria that let every item through.
func DefaultFilters() FilterCriteria {
	return FilterCriteria{Category: CategoryAll}
}

func (f *FilterCriteria) SetCategory(category string) {
	f.Category = category
}

// SetMinPrice parses raw the way the price inputs are read: anything that
// does not start with a number leaves the bound unset.
func (f *FilterCriteria) SetMinPrice(raw string) {
	f.MinPrice = ParsePriceBound(raw)
}

func (f *FilterCriteria) SetMaxPrice(raw string) {
	f.MaxPrice = ParsePriceBound(raw)
}

func (f *FilterCriteria) SetInStockOnly(on bool) {
	f.InStockOnly = on
}

// Clear resets to the wildcard category, no price bounds and the stock filter off.
func (f *FilterCriteria) Clear() {
	*f = DefaultFilters()
}

// Clone returns a copy that shares no bound pointers with f.
func (f FilterCriteria) Clone() FilterCriteria {
	out := f
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	return out
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParsePriceBound reads the longest leading decimal number of raw.
// It returns nil when raw has no leading number. Bounds are always finite:
// "Infinity", "inf" and "NaN" spellings count as no number.
func ParsePriceBound(raw string) *float64 {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// exponent overflow, e.g. "1e999"
		return nil
	}
	return &v
}

// FormatPriceBound renders a bound back into the text form accepted by ParsePriceBound.
func FormatPriceBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FilterReadMode selects when a pending reply reads the session filters.
type FilterReadMode string

const (
	// FilterReadLive reads the filters when the reply delay elapses.
	FilterReadLive FilterReadMode = "live"
	// FilterReadSnapshot reads the filters when the utterance is submitted.
	FilterReadSnapshot FilterReadMode = "snapshot"
)

// Valid reports whether m is one of the known modes.
func (m FilterReadMode) Valid() bool {
	return m == FilterReadLive || m == FilterReadSnapshot
}
