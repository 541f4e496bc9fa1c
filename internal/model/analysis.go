package model

import (
	"time"
)

// Lead is the contact who requested an analysis.
type Lead struct {
	FirstName    string `json:"first_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	BusinessName string `json:"business_name"`
	City         string `json:"city"`
}

// MissingFields returns the names of required lead fields that are blank.
// Phone is optional.
func (l Lead) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"first_name", l.FirstName},
		{"email", l.Email},
		{"business_name", l.BusinessName},
		{"city", l.City},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Report holds a rendered document and its content type.
type Report struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Analysis is one completed visibility analysis, addressable by token.
type Analysis struct {
	Token string `json:"token"`
	Lead  Lead   `json:"lead"`

	Business         BusinessProfile   `json:"business"`
	Competitors      []BusinessProfile `json:"competitors"`
	CompetitorScores []int             `json:"competitor_scores"`
	Scores           ScoreResult       `json:"scores"`

	TopCompetitorName  string `json:"top_competitor_name,omitempty"`
	CompetitorsBeating int    `json:"competitors_beating"`
	ReviewRatioText    string `json:"review_ratio_text"`

	// Reports are keyed by format ("html", "xlsx"). A format is absent when
	// rendering failed.
	Reports map[string]Report `json:"reports,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasReport reports whether a rendered document exists for format.
func (a *Analysis) HasReport(format string) bool {
	r, ok := a.Reports[format]
	return ok && len(r.Data) > 0
}

// Expired reports whether the analysis has passed its expiry at now.
func (a *Analysis) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}

// NotificationPayload is the summary delivered to notification sinks. It
// deliberately excludes the score breakdown.
type NotificationPayload struct {
	FirstName    string `json:"first_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessName string `json:"business_name"`
	City         string `json:"city"`
	Score        int    `json:"score"`
	Grade        Grade  `json:"grade"`
}

// Payload builds the notification summary for a.
func (a *Analysis) Payload() NotificationPayload {
	return NotificationPayload{
		FirstName:    a.Lead.FirstName,
		Email:        a.Lead.Email,
		Phone:        a.Lead.Phone,
		BusinessName: a.Lead.BusinessName,
		City:         a.Lead.City,
		Score:        a.Scores.Total,
		Grade:        a.Scores.Grade,
	}
}
