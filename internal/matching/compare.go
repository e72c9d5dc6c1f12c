package matching

import (
	"math"
	"strings"
)

const (
	// relativeTolerance is the fraction by which a candidate number may
	// deviate from the requirement number and still match. The boundary is
	// inclusive: exactly 10% off matches.
	relativeTolerance = 0.10

	// zeroEpsilon bounds what counts as "also zero" when the requirement
	// value is exactly 0, where relative deviation is undefined.
	zeroEpsilon = 1e-6
)

// Matches reports whether a candidate value satisfies a requirement value.
// Absent on either side never matches, numbers match within relative
// tolerance, text matches on equality or substring containment either way,
// and mixed kinds never match.
func Matches(req, cand Value) bool {
	if req.Kind == KindAbsent || cand.Kind == KindAbsent {
		return false
	}
	if req.Kind != cand.Kind {
		return false
	}

	if req.Kind == KindNumber {
		if req.Num == 0 {
			return math.Abs(cand.Num) < zeroEpsilon
		}
		return math.Abs(cand.Num-req.Num)/math.Abs(req.Num) <= relativeTolerance
	}

	return req.Text == cand.Text ||
		strings.Contains(req.Text, cand.Text) ||
		strings.Contains(cand.Text, req.Text)
}
