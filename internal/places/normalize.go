package places

import (
	"slices"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/pkg/google"
)

// fallbackType is the primary type of a place that reports no types.
const fallbackType = "establishment"

// genericTypes are place types too broad to identify an industry.
var genericTypes = map[string]bool{
	"establishment":           true,
	"point_of_interest":       true,
	"food":                    true,
	"store":                   true,
	"health":                  true,
	"finance":                 true,
	"local_government_office": true,
}

// IsGenericType reports whether t is too broad to identify an industry.
func IsGenericType(t string) bool {
	return genericTypes[t]
}

// SpecificTypes returns the non-generic types in order.
func SpecificTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if !genericTypes[t] {
			out = append(out, t)
		}
	}
	return out
}

// PrimaryType returns the first non-generic type, else the first type, else
// "establishment".
func PrimaryType(types []string) string {
	if specific := SpecificTypes(types); len(specific) > 0 {
		return specific[0]
	}
	if len(types) > 0 {
		return types[0]
	}
	return fallbackType
}

// SameIndustry reports whether two type lists share a non-generic type.
func SameIndustry(a, b []string) bool {
	for _, t := range SpecificTypes(a) {
		if slices.Contains(b, t) {
			return true
		}
	}
	return false
}

// Normalize converts a Place Details result into a sanitized BusinessProfile.
func Normalize(placeID string, d *google.PlaceDetails) model.BusinessProfile {
	if d == nil {
		return model.BusinessProfile{PlaceID: placeID, PrimaryType: fallbackType}
	}

	responded := 0
	for _, r := range d.Reviews {
		if r.OwnerResponse != nil && r.OwnerResponse.Text != "" {
			responded++
		}
	}

	var description string
	if d.EditorialSummary != nil {
		description = d.EditorialSummary.Overview
	}

	p := model.BusinessProfile{
		PlaceID:     placeID,
		Name:        d.Name,
		Address:     d.FormattedAddress,
		Location:    model.Location{Lat: d.Geometry.Location.Lat, Lng: d.Geometry.Location.Lng},
		PrimaryType: PrimaryType(d.Types),
		Description: description,

		Rating:      d.Rating,
		ReviewCount: d.UserRatingsTotal,
		PhotoCount:  len(d.Photos),
		Types:       slices.Clone(d.Types),

		HasWebsite:            d.Website != "",
		HasPhone:              d.FormattedPhoneNumber != "",
		HasHours:              d.OpeningHours != nil && len(d.OpeningHours.WeekdayText) > 0,
		HasSpecificCategories: len(SpecificTypes(d.Types)) > 0,
		HasDescription:        description != "",

		ReviewsReturned:  len(d.Reviews),
		ReviewsResponded: responded,
	}
	return p.Sanitize()
}
