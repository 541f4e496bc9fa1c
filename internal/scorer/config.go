// Package scorer computes the local visibility score of a business profile.
//
// Scoring is a pure function of its inputs: no clock, randomness or I/O is
// involved, so identical inputs always produce identical results.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Per-metric ceilings. They add up to 101, one point over MaxTotal, so a
// perfect profile is clamped by Total.
const (
	MaxRating       = 35.0
	MaxReviews      = 30.0
	MaxPhotos       = 10.0
	MaxCompleteness = 16.0
	MaxDescription  = 4.0
	MaxResponse     = 6.0

	// completenessPoints is awarded per populated completeness field.
	completenessPoints = MaxCompleteness / 4

	// MaxTotal caps the total score.
	MaxTotal = 100
)

// MaxScores returns the per-metric ceilings keyed by metric name. A fresh map
// is returned on every call.
func MaxScores() map[string]float64 {
	return map[string]float64{
		model.MetricRating:       MaxRating,
		model.MetricReviews:      MaxReviews,
		model.MetricPhotos:       MaxPhotos,
		model.MetricCompleteness: MaxCompleteness,
		model.MetricDescription:  MaxDescription,
		model.MetricResponse:     MaxResponse,
	}
}

// WeightSum returns the sum of all metric ceilings.
func WeightSum(maxScores map[string]float64) float64 {
	var sum float64
	for _, w := range maxScores {
		sum += w
	}
	return sum
}

// ValidateMaxScores checks that a set of ceilings is internally consistent:
// every metric present, none negative, summing to 100 within one point.
func ValidateMaxScores(maxScores map[string]float64) error {
	var errs []string

	for _, metric := range model.Metrics {
		w, ok := maxScores[metric]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s missing", metric))
			continue
		}
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", metric))
		}
	}

	if sum := WeightSum(maxScores); math.Abs(sum-MaxTotal) > 1 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.1f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: max score validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
