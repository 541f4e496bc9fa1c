// Package notion wraps the Notion API for recording leads in a database.
package notion

import (
	"context"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Notion API operations used by this application.
type Client interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// ClientOption configures the Notion client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	limiter    *rate.Limiter
	httpClient *http.Client
}

// WithRateLimit overrides the default Notion rate limit (3 req/s). Zero
// disables throttling.
func WithRateLimit(rps float64) ClientOption {
	return func(o *clientOptions) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			o.limiter = nil
		}
	}
}

// WithHTTPClient overrides the http.Client used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// notionClient implements Client by wrapping a *notionapi.Client.
type notionClient struct {
	inner   *notionapi.Client
	limiter *rate.Limiter
}

// NewClient creates a new Notion client with the given integration token.
// By default, API calls are throttled to 3 req/s (Notion's rate limit).
func NewClient(token string, opts ...ClientOption) Client {
	o := clientOptions{limiter: rate.NewLimiter(3, 1)}
	for _, opt := range opts {
		opt(&o)
	}

	var apiOpts []notionapi.ClientOption
	if o.httpClient != nil {
		apiOpts = append(apiOpts, notionapi.WithHTTPClient(o.httpClient))
	}
	return &notionClient{
		inner:   notionapi.NewClient(notionapi.Token(token), apiOpts...),
		limiter: o.limiter,
	}
}

func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return eris.Wrap(c.limiter.Wait(ctx), "notion: rate limit")
}

func (c *notionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.inner.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: query database %s", dbID)
	}
	return resp, nil
}

func (c *notionClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	page, err := c.inner.Page.Create(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "notion: create page")
	}
	return page, nil
}

func (c *notionClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	page, err := c.inner.Page.Update(ctx, notionapi.PageID(pageID), req)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: update page %s", pageID)
	}
	return page, nil
}
