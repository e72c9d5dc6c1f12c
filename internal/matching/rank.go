package matching

import (
	"sort"

	"rfp-workers/internal/models"
)

// topN is how many scored candidates survive ranking per requirement.
const topN = 3

// Rank scores every eligible catalog entry against the requirement and
// returns at most the top three recommendations, best first. Eligibility is
// category equality, with an empty catalog category acting as a wildcard.
// The sort is stable, so equal percentages keep catalog order and repeated
// runs over the same catalog produce identical rankings.
func Rank(req models.Requirement, catalog []models.CatalogEntry) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(catalog))
	for _, entry := range catalog {
		if !eligible(req.Category, entry.Category) {
			continue
		}

		pct, details, order := Score(req.Specs, entry.Specs)
		recs = append(recs, models.Recommendation{
			OEMProductID:    entry.OEMProductID,
			OEMName:         entry.OEMName,
			ProductName:     entry.ProductName,
			SKU:             entry.SKU,
			MatchPercentage: pct,
			Comparison:      details,
			ComparisonOrder: order,
			UnitPrice:       entry.UnitPrice,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchPercentage > recs[j].MatchPercentage
	})

	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}

func eligible(reqCategory, entryCategory string) bool {
	return entryCategory == "" || entryCategory == reqCategory
}
