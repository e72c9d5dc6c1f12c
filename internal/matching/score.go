package matching

import (
	"math"
	"sort"

	"rfp-workers/internal/models"
)

// Score compares a candidate's specifications against a requirement's and
// returns the match percentage plus a per-attribute breakdown. The
// requirement's key set drives the comparison: candidate attributes the
// requirement never asked about are ignored, and a requirement with no
// specifications at all scores 0 with an empty breakdown.
//
// Attributes are walked in sorted key order so the returned order slice,
// and therefore serialized breakdowns, are deterministic. The percentage
// itself does not depend on ordering.
func Score(req, cand models.Specifications) (float64, map[string]models.ComparisonDetail, []string) {
	if len(req) == 0 {
		return 0.0, map[string]models.ComparisonDetail{}, nil
	}

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make(map[string]models.ComparisonDetail, len(req))
	matched := 0
	for _, k := range keys {
		reqVal := req[k]
		candVal, present := cand[k]
		if !present {
			candVal = nil
		}

		ok := Matches(Normalize(reqVal), Normalize(candVal))
		if ok {
			matched++
		}
		details[k] = models.ComparisonDetail{
			RequirementValue: reqVal,
			CandidateValue:   candVal,
			Matched:          ok,
		}
	}

	pct := round2(float64(matched) / float64(len(req)) * 100)
	return pct, details, keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
