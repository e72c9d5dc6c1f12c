package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfp-workers/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want Value
	}{
		{"nil is absent", nil, Value{Kind: KindAbsent}},
		{"float passes through", 95.0, Value{Kind: KindNumber, Num: 95}},
		{"int passes through", 1000, Value{Kind: KindNumber, Num: 1000}},
		{"number with unit suffix", "95sqmm", Value{Kind: KindNumber, Num: 95}},
		{"decimal with unit suffix", "1.1kV", Value{Kind: KindNumber, Num: 1.1}},
		{"number with spaces", " 33 kV ", Value{Kind: KindNumber, Num: 33}},
		{"plain text lowercased", " Copper ", Value{Kind: KindText, Text: "copper"}},
		{"range falls back to text", "0-10", Value{Kind: KindText, Text: "0-10"}},
		{"digit-free text", "XLPE", Value{Kind: KindText, Text: "xlpe"}},
		{"empty string", "", Value{Kind: KindText, Text: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestMatchesNumeric(t *testing.T) {
	tests := []struct {
		name string
		req  float64
		cand float64
		want bool
	}{
		{"exact", 100, 100, true},
		{"inside tolerance above", 100, 105, true},
		{"inside tolerance below", 100, 95, true},
		{"boundary above is inclusive", 100, 110, true},
		{"boundary below is inclusive", 100, 90, true},
		{"just outside above", 100, 110.001, false},
		{"just outside below", 100, 89.999, false},
		{"negative requirement", -100, -105, true},
		{"zero req zero cand", 0, 0, true},
		{"zero req near-zero cand", 0, 1e-7, true},
		{"zero req nonzero cand", 0, 0.001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Matches(
				Value{Kind: KindNumber, Num: tt.req},
				Value{Kind: KindNumber, Num: tt.cand},
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesText(t *testing.T) {
	tests := []struct {
		name string
		req  string
		cand string
		want bool
	}{
		{"equal", "copper", "copper", true},
		{"candidate contains requirement", "copper", "tinned copper", true},
		{"requirement contains candidate", "tinned copper", "copper", true},
		{"disjoint", "copper", "aluminium", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Matches(
				Value{Kind: KindText, Text: tt.req},
				Value{Kind: KindText, Text: tt.cand},
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesMixedAndAbsent(t *testing.T) {
	num := Value{Kind: KindNumber, Num: 95}
	text := Value{Kind: KindText, Text: "95 approx"}
	absent := Value{Kind: KindAbsent}

	assert.False(t, Matches(num, text))
	assert.False(t, Matches(text, num))
	assert.False(t, Matches(absent, num))
	assert.False(t, Matches(num, absent))
	assert.False(t, Matches(absent, absent))
}

func TestScore(t *testing.T) {
	req := models.Specifications{
		"size":    "95sqmm",
		"voltage": "1.1kV",
	}

	t.Run("full match across unit formats", func(t *testing.T) {
		cand := models.Specifications{
			"size":    95.0,
			"voltage": "1.1kV",
		}
		pct, details, order := Score(req, cand)

		assert.Equal(t, 100.0, pct)
		assert.Equal(t, []string{"size", "voltage"}, order)
		require.Len(t, details, 2)
		assert.True(t, details["size"].Matched)
		assert.True(t, details["voltage"].Matched)
	})

	t.Run("no attribute matches", func(t *testing.T) {
		cand := models.Specifications{
			"size":    300.0,
			"voltage": "33kV",
		}
		pct, details, _ := Score(req, cand)

		assert.Equal(t, 0.0, pct)
		assert.False(t, details["size"].Matched)
		assert.False(t, details["voltage"].Matched)
	})

	t.Run("missing candidate attribute counts as mismatch", func(t *testing.T) {
		cand := models.Specifications{"size": 95.0}
		pct, details, _ := Score(req, cand)

		assert.Equal(t, 50.0, pct)
		assert.Nil(t, details["voltage"].CandidateValue)
		assert.False(t, details["voltage"].Matched)
	})

	t.Run("extra candidate attributes are ignored", func(t *testing.T) {
		cand := models.Specifications{
			"size":       95.0,
			"voltage":    "1.1kV",
			"insulation": "XLPE",
		}
		pct, details, _ := Score(req, cand)

		assert.Equal(t, 100.0, pct)
		assert.Len(t, details, 2)
	})

	t.Run("empty requirement specs", func(t *testing.T) {
		pct, details, order := Score(models.Specifications{}, models.Specifications{"size": 95.0})

		assert.Equal(t, 0.0, pct)
		assert.Empty(t, details)
		assert.Nil(t, order)
	})

	t.Run("percentage rounds to two decimals", func(t *testing.T) {
		threeAttr := models.Specifications{"a": 1.0, "b": 2.0, "c": 3.0}
		cand := models.Specifications{"a": 1.0}
		pct, _, _ := Score(threeAttr, cand)

		assert.Equal(t, 33.33, pct)
	})
}

func TestRank(t *testing.T) {
	req := models.Requirement{
		ProductName: "LT Power Cable",
		Category:    "power_cable",
		Specs: models.Specifications{
			"size":    "95sqmm",
			"voltage": "1.1kV",
		},
	}

	t.Run("orders by percentage and keeps top three", func(t *testing.T) {
		catalog := []models.CatalogEntry{
			entry("SKU-90A", "power_cable", models.Specifications{"size": 95.0, "voltage": "1.1kV"}),
			entry("SKU-90B", "power_cable", models.Specifications{"size": "95sqmm", "voltage": 1.1}),
			entry("SKU-50", "power_cable", models.Specifications{"size": 95.0, "voltage": "33kV"}),
			entry("SKU-0", "power_cable", models.Specifications{"size": 400.0, "voltage": "66kV"}),
		}

		recs := Rank(req, catalog)

		require.Len(t, recs, 3)
		assert.Equal(t, "SKU-90A", recs[0].SKU)
		assert.Equal(t, "SKU-90B", recs[1].SKU)
		assert.Equal(t, "SKU-50", recs[2].SKU)
		assert.Equal(t, 100.0, recs[0].MatchPercentage)
		assert.Equal(t, 100.0, recs[1].MatchPercentage)
		assert.Equal(t, 50.0, recs[2].MatchPercentage)
	})

	t.Run("ties keep catalog order", func(t *testing.T) {
		catalog := []models.CatalogEntry{
			entry("FIRST", "power_cable", models.Specifications{"size": 95.0, "voltage": "1.1kV"}),
			entry("SECOND", "power_cable", models.Specifications{"size": "95sqmm", "voltage": "1.1kV"}),
		}

		recs := Rank(req, catalog)

		require.Len(t, recs, 2)
		assert.Equal(t, "FIRST", recs[0].SKU)
		assert.Equal(t, "SECOND", recs[1].SKU)
	})

	t.Run("filters by category with wildcard", func(t *testing.T) {
		catalog := []models.CatalogEntry{
			entry("OTHER-CAT", "control_cable", models.Specifications{"size": 95.0, "voltage": "1.1kV"}),
			entry("WILDCARD", "", models.Specifications{"size": 95.0, "voltage": "1.1kV"}),
			entry("SAME-CAT", "power_cable", models.Specifications{"size": 95.0, "voltage": "1.1kV"}),
		}

		recs := Rank(req, catalog)

		require.Len(t, recs, 2)
		assert.Equal(t, "WILDCARD", recs[0].SKU)
		assert.Equal(t, "SAME-CAT", recs[1].SKU)
	})

	t.Run("empty catalog", func(t *testing.T) {
		assert.Empty(t, Rank(req, nil))
	})
}

func entry(sku, category string, specs models.Specifications) models.CatalogEntry {
	return models.CatalogEntry{
		OEMName:     "OEM Cables Ltd",
		ProductName: "Cable " + sku,
		SKU:         sku,
		Category:    category,
		UnitPrice:   100.0,
		Specs:       specs,
	}
}
