// Package badges evaluates a fixed catalog of achievement rules over one
// wallet's aggregated activity.
package badges

import "github.com/walletstory/walletstory/internal/domain"

// Evaluate returns every badge whose predicate holds, in catalog order, with
// no duplicates. A wallet with no transactions earns nothing, first_steps
// included. Evaluate is a pure function of its input: all address comparisons
// are lower-cased and day/hour bucketing is done in UTC, so the same
// aggregate always yields the same badge sequence.
func Evaluate(in domain.ActivityAggregate) []domain.Badge {
	if len(in.Transactions) == 0 {
		return nil
	}

	var awarded []domain.Badge
	for _, r := range catalog {
		if r.holds(in) {
			awarded = append(awarded, r.badge)
		}
	}
	return awarded
}
