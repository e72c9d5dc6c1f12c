// Package pricebook holds the reference prices used during bid pricing:
// per-SKU unit prices and per-test charges. A PriceBook is plain data owned
// by its caller; workers receive one explicitly instead of sharing globals.
package pricebook

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// PriceBook resolves SKUs and test requirements to prices, falling back to
// configured defaults for anything unlisted.
type PriceBook struct {
	productPrices map[string]float64
	testPrices    map[string]float64

	defaultProductPrice float64
	defaultTestPrice    float64
}

// bookFile is the on-disk JSON layout for a price book.
type bookFile struct {
	Products map[string]float64 `json:"products"`
	Tests    map[string]float64 `json:"tests"`
}

// New creates an empty price book with the given fallback prices.
func New(defaultProductPrice, defaultTestPrice float64) *PriceBook {
	return &PriceBook{
		productPrices:       map[string]float64{},
		testPrices:          map[string]float64{},
		defaultProductPrice: defaultProductPrice,
		defaultTestPrice:    defaultTestPrice,
	}
}

// NewStandard creates a price book seeded with the standing test charges the
// bid desk quotes for cable acceptance testing.
func NewStandard(defaultProductPrice, defaultTestPrice float64) *PriceBook {
	b := New(defaultProductPrice, defaultTestPrice)
	for name, price := range standardTestPrices {
		b.SetTestPrice(name, price)
	}
	return b
}

var standardTestPrices = map[string]float64{
	"routine_test_lv":      5000.00,
	"routine_test_mv":      8000.00,
	"routine_test_hv":      12000.00,
	"type_test":            25000.00,
	"acceptance_test":      6000.00,
	"fire_resistance_test": 15000.00,
}

// Load reads a price book from a JSON file and merges it over b. File entries
// win over anything already present.
func (b *PriceBook) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read price book %s: %w", path, err)
	}

	var file bookFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse price book %s: %w", path, err)
	}

	for sku, price := range file.Products {
		b.SetProductPrice(sku, price)
	}
	for name, price := range file.Tests {
		b.SetTestPrice(name, price)
	}
	return nil
}

// SetProductPrice registers a unit price for a SKU.
func (b *PriceBook) SetProductPrice(sku string, price float64) {
	b.productPrices[sku] = price
}

// SetTestPrice registers a per-test charge. Names are stored lowercased.
func (b *PriceBook) SetTestPrice(name string, price float64) {
	b.testPrices[strings.ToLower(strings.TrimSpace(name))] = price
}

// ProductPrice returns the unit price for a SKU, or the default when the SKU
// is not listed.
func (b *PriceBook) ProductPrice(sku string) float64 {
	if price, ok := b.productPrices[sku]; ok {
		return price
	}
	return b.defaultProductPrice
}

// TestPrice resolves a free-form test requirement to a known test and its
// per-test charge. Resolution is exact match first, then substring either way
// over known names in sorted order so repeated runs resolve identically.
// Unresolvable requirements get the default charge under their own name.
func (b *PriceBook) TestPrice(requirement string) (string, float64) {
	key := strings.ToLower(strings.TrimSpace(requirement))

	if price, ok := b.testPrices[key]; ok {
		return key, price
	}

	names := make([]string, 0, len(b.testPrices))
	for name := range b.testPrices {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.Contains(key, name) || strings.Contains(name, key) {
			return name, b.testPrices[name]
		}
	}

	return key, b.defaultTestPrice
}

// DefaultProductPrice returns the fallback unit price.
func (b *PriceBook) DefaultProductPrice() float64 {
	return b.defaultProductPrice
}

// DefaultTestPrice returns the fallback per-test charge.
func (b *PriceBook) DefaultTestPrice() float64 {
	return b.defaultTestPrice
}
