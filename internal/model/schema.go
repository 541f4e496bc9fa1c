package model

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

// profileSchema constrains the JSON shape of a BusinessProfile. Fields stay
// optional; only types and ranges are enforced.
const profileSchema = `{
	"type": "object",
	"properties": {
		"place_id":           {"type": "string"},
		"name":               {"type": "string"},
		"rating":             {"type": "number", "minimum": 0, "maximum": 5},
		"review_count":       {"type": "integer", "minimum": 0},
		"photo_count":        {"type": "integer", "minimum": 0},
		"types":              {"type": "array", "items": {"type": "string"}},
		"has_website":        {"type": "boolean"},
		"has_phone":          {"type": "boolean"},
		"has_hours":          {"type": "boolean"},
		"has_specific_categories": {"type": "boolean"},
		"has_description":    {"type": "boolean"},
		"reviews_returned":   {"type": "integer", "minimum": 0},
		"reviews_responded":  {"type": "integer", "minimum": 0}
	}
}`

// scoreRequestSchema wraps profileSchema for offline scoring requests.
var scoreRequestSchema = `{
	"type": "object",
	"required": ["business"],
	"properties": {
		"business": ` + profileSchema + `,
		"competitors": {"type": "array", "items": ` + profileSchema + `},
		"top_competitor_name": {"type": "string"}
	}
}`

var (
	profileLoader      = gojsonschema.NewStringLoader(profileSchema)
	scoreRequestLoader = gojsonschema.NewStringLoader(scoreRequestSchema)
)

// ScoreRequest is an offline scoring request: a profile plus its
// already-fetched competitor candidates.
type ScoreRequest struct {
	Business          BusinessProfile   `json:"business"`
	Competitors       []BusinessProfile `json:"competitors,omitempty"`
	TopCompetitorName string            `json:"top_competitor_name,omitempty"`
}

// SchemaError lists the violations found while validating a document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema: " + strings.Join(e.Violations, "; ")
}

// DecodeProfile validates data against the profile schema and decodes it.
func DecodeProfile(data []byte) (BusinessProfile, error) {
	var p BusinessProfile
	if err := validate(profileLoader, data); err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, eris.Wrap(err, "schema: decode profile")
	}
	return p.Sanitize(), nil
}

// DecodeScoreRequest validates data against the score request schema and
// decodes it.
func DecodeScoreRequest(data []byte) (ScoreRequest, error) {
	var req ScoreRequest
	if err := validate(scoreRequestLoader, data); err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, eris.Wrap(err, "schema: decode score request")
	}
	req.Business = req.Business.Sanitize()
	for i := range req.Competitors {
		req.Competitors[i] = req.Competitors[i].Sanitize()
	}
	return req, nil
}

func validate(schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return eris.Wrap(err, "schema: validate")
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return &SchemaError{Violations: violations}
}
