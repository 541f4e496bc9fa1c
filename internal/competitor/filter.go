// Package competitor selects the comparison set a business is benchmarked against.
package competitor

import (
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
)

const (
	// DefaultWant is the default size of the comparison set.
	DefaultWant = 5

	capMultiplier = 25
	capFloor      = 300
	minLocal      = 2
)

// Cap returns the review-count ceiling above which a candidate is treated as
// an oversized chain for a business with ownReviewCount reviews.
func Cap(ownReviewCount int) int {
	own := max(ownReviewCount, 1)
	return max(own*capMultiplier, capFloor)
}

// Filter removes oversized chains from candidates and returns at most want
// profiles, most-reviewed first. Candidates with equal review counts keep
// their input order, which upstream is proximity order.
//
// When fewer than two candidates fall under the cap, Filter falls back to the
// candidates closest in size to the subject so that any non-empty input
// yields a non-empty comparison set. candidates is never modified.
func Filter(candidates []model.BusinessProfile, ownReviewCount, want int) []model.BusinessProfile {
	own := max(ownReviewCount, 1)
	limit := Cap(ownReviewCount)

	local := make([]model.BusinessProfile, 0, len(candidates))
	for _, c := range candidates {
		if c.ReviewCount <= limit {
			local = append(local, c)
		}
	}
	slices.SortStableFunc(local, func(a, b model.BusinessProfile) int {
		return b.ReviewCount - a.ReviewCount
	})

	if len(local) >= minLocal {
		zap.L().Debug("competitor: filtered candidates",
			zap.Int("kept", len(local)),
			zap.Int("total", len(candidates)),
			zap.Int("cap", limit),
		)
		return head(local, want)
	}

	if len(candidates) > 0 {
		zap.L().Warn("competitor: fewer than 2 local candidates, using closest by size",
			zap.Int("local", len(local)),
			zap.Int("total", len(candidates)),
			zap.Int("cap", limit),
		)
	}

	closest := slices.Clone(candidates)
	slices.SortStableFunc(closest, func(a, b model.BusinessProfile) int {
		return distance(a.ReviewCount, own) - distance(b.ReviewCount, own)
	})
	return head(closest, want)
}

func head(profiles []model.BusinessProfile, n int) []model.BusinessProfile {
	if n < len(profiles) {
		return profiles[:max(n, 0)]
	}
	return profiles
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
