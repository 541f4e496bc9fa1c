package model

// MaxPhotoCount is the number of photos the places API returns at most.
const MaxPhotoCount = 10

// MaxRating is the top of the star-rating scale.
const MaxRating = 5.0

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

// BusinessProfile is the normalized public directory listing of one business.
// Every field is optional; zero values mean "absent" and only lower the score.
type BusinessProfile struct {
	PlaceID     string   `json:"place_id,omitempty"`
	Name        string   `json:"name"`
	Address     string   `json:"formatted_address,omitempty"`
	Location    Location `json:"location,omitempty"`
	PrimaryType string   `json:"primary_type,omitempty"`
	Description string   `json:"description,omitempty"`

	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	PhotoCount  int      `json:"photo_count"`
	Types       []string `json:"types,omitempty"`

	// PhotoCountCapped is true when the upstream returned the maximum number
	// of photos, i.e. the business has at least that many.
	PhotoCountCapped bool `json:"photo_count_capped,omitempty"`

	HasWebsite            bool `json:"has_website"`
	HasPhone              bool `json:"has_phone"`
	HasHours              bool `json:"has_hours"`
	HasSpecificCategories bool `json:"has_specific_categories"`
	HasDescription        bool `json:"has_description"`

	ReviewsReturned  int `json:"reviews_returned"`
	ReviewsResponded int `json:"reviews_responded"`
}

// Sanitize returns a copy of p with every numeric field clamped into its
// documented range. It never fails.
func (p BusinessProfile) Sanitize() BusinessProfile {
	if p.Rating < 0 {
		p.Rating = 0
	}
	if p.Rating > MaxRating {
		p.Rating = MaxRating
	}
	if p.ReviewCount < 0 {
		p.ReviewCount = 0
	}
	if p.PhotoCount < 0 {
		p.PhotoCount = 0
	}
	if p.PhotoCount >= MaxPhotoCount {
		p.PhotoCount = MaxPhotoCount
		p.PhotoCountCapped = true
	}
	if p.ReviewsReturned < 0 {
		p.ReviewsReturned = 0
	}
	if p.ReviewsResponded < 0 {
		p.ReviewsResponded = 0
	}
	if p.ReviewsResponded > p.ReviewsReturned {
		p.ReviewsResponded = p.ReviewsReturned
	}
	if len(p.Types) > 0 {
		p.Types = append([]string(nil), p.Types...)
	}
	return p
}

// ReviewCounts returns the review counts of profiles in order.
func ReviewCounts(profiles []BusinessProfile) []int {
	out := make([]int, len(profiles))
	for i, p := range profiles {
		out[i] = p.ReviewCount
	}
	return out
}
