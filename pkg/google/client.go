// Package google wraps the legacy Google Places web service used to look up
// a business and its nearby competitors.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/visibility-cli/internal/resilience"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// DetailFields is the field list requested from Place Details.
const DetailFields = "name,rating,user_ratings_total,photos,types,editorial_summary," +
	"reviews,formatted_address,geometry,business_status,website,formatted_phone_number,opening_hours"

// API status values.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// Client performs Google Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*SearchResponse, error)
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
	NearbySearch(ctx context.Context, req NearbyRequest) (*SearchResponse, error)
}

// LatLng is a coordinate pair as returned by the API.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry holds a place's location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// SearchResult is one place returned by Text Search or Nearby Search.
type SearchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Vicinity         string   `json:"vicinity,omitempty"`
	Geometry         Geometry `json:"geometry"`
	Types            []string `json:"types,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
}

// SearchResponse is the envelope of Text Search and Nearby Search.
type SearchResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Results      []SearchResult `json:"results"`
}

// NearbyRequest parameterizes Nearby Search.
type NearbyRequest struct {
	Location LatLng
	RadiusM  int
	Type     string
}

// Photo is a photo reference. Only the count is used.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
}

// OwnerResponse is the business owner's reply to a review.
type OwnerResponse struct {
	Text string `json:"text"`
}

// Review is one of the (at most five) reviews returned by Place Details.
type Review struct {
	AuthorName    string         `json:"author_name"`
	Rating        int            `json:"rating"`
	Text          string         `json:"text"`
	Time          int64          `json:"time"`
	OwnerResponse *OwnerResponse `json:"owner_response,omitempty"`
}

// EditorialSummary is Google's own summary of a place.
type EditorialSummary struct {
	Overview string `json:"overview"`
}

// OpeningHours holds the published opening hours.
type OpeningHours struct {
	WeekdayText []string `json:"weekday_text"`
}

// PlaceDetails is the result of Place Details for DetailFields.
type PlaceDetails struct {
	Name                 string            `json:"name"`
	Rating               float64           `json:"rating"`
	UserRatingsTotal     int               `json:"user_ratings_total"`
	Photos               []Photo           `json:"photos,omitempty"`
	Types                []string          `json:"types,omitempty"`
	EditorialSummary     *EditorialSummary `json:"editorial_summary,omitempty"`
	Reviews              []Review          `json:"reviews,omitempty"`
	FormattedAddress     string            `json:"formatted_address,omitempty"`
	Geometry             Geometry          `json:"geometry"`
	BusinessStatus       string            `json:"business_status,omitempty"`
	Website              string            `json:"website,omitempty"`
	FormattedPhoneNumber string            `json:"formatted_phone_number,omitempty"`
	OpeningHours         *OpeningHours     `json:"opening_hours,omitempty"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       PlaceDetails `json:"result"`
}

// APIError is a non-OK status reported inside a 200 response.
type APIError struct {
	Operation string
	Status    string
	Message   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("google: %s: status %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("google: %s: status %s: %s", e.Operation, e.Status, e.Message)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles outgoing requests to rps per second. Zero disables
// throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithGuard routes every request through a retry policy and circuit breaker.
func WithGuard(g *resilience.Guard) Option {
	return func(c *httpClient) {
		c.guard = g
	}
}

// WithLanguage sets the language of returned names and summaries.
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	limiter  *rate.Limiter
	guard    *resilience.Guard
}

// NewClient creates a Google Places API client. Requests are throttled to
// 10 req/s by default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{"query": {query}}

	var resp SearchResponse
	if err := c.get(ctx, "text search", "/textsearch/json", params, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {DetailFields},
	}

	var resp detailsResponse
	if err := c.get(ctx, "details", "/details/json", params, &resp, false); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbyRequest) (*SearchResponse, error) {
	params := url.Values{
		"location": {strconv.FormatFloat(req.Location.Lat, 'f', -1, 64) + "," +
			strconv.FormatFloat(req.Location.Lng, 'f', -1, 64)},
		"radius": {strconv.Itoa(req.RadiusM)},
	}
	if req.Type != "" {
		params.Set("type", req.Type)
	}

	var resp SearchResponse
	if err := c.get(ctx, "nearby search", "/nearbysearch/json", params, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// checkStatus turns a non-OK API status into an error. Quota and unknown
// errors are retryable.
func checkStatus(op, status, message string, zeroOK bool) error {
	if status == StatusOK || (zeroOK && status == StatusZeroResults) {
		return nil
	}
	apiErr := &APIError{Operation: op, Status: status, Message: message}
	if status == StatusOverQueryLimit || status == StatusUnknownError {
		return resilience.NewTransientError(apiErr, 0)
	}
	return apiErr
}

// envelope is implemented by every response type carrying an API status.
type envelope interface {
	apiStatus() (status, message string)
}

func (r *SearchResponse) apiStatus() (string, string)  { return r.Status, r.ErrorMessage }
func (r *detailsResponse) apiStatus() (string, string) { return r.Status, r.ErrorMessage }

// get performs one guarded API call and decodes it into out. The status
// check runs inside the guard so quota errors are retried too.
func (c *httpClient) get(ctx context.Context, op, path string, params url.Values, out envelope, zeroOK bool) error {
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint := c.baseURL + path + "?" + params.Encode()

	_, err := resilience.Call(ctx, c.guard, op, func(ctx context.Context) (struct{}, error) {
		body, err := c.do(ctx, op, endpoint)
		if err != nil {
			return struct{}{}, err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return struct{}{}, eris.Wrapf(err, "google: %s: unmarshal response", op)
		}
		status, message := out.apiStatus()
		return struct{}{}, checkStatus(op, status, message, zeroOK)
	})
	return err
}

func (c *httpClient) do(ctx context.Context, op, endpoint string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "google: rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "google: %s: create request", op)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "google: %s: send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "google: %s: read response", op)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("google: %s: unexpected status %d: %s", op, resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}
	return body, nil
}
