package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	commonhttp "hubspot-proxy/internal/common/http"
	"hubspot-proxy/internal/metrics"
)

// DefaultBaseURL is the HubSpot API host
const DefaultBaseURL = "https://api.hubapi.com"

// ListResponse is the shape shared by the list and search endpoints
type ListResponse struct {
	Results []Record `json:"results"`
	Total   *int     `json:"total,omitempty"`
	Paging  *Paging  `json:"paging,omitempty"`
}

// Paging carries the next-page cursor
type Paging struct {
	Next *struct {
		After string `json:"after"`
	} `json:"next,omitempty"`
}

// NextAfter returns the next-page cursor, or "" on the last page
func (r *ListResponse) NextAfter() string {
	if r.Paging == nil || r.Paging.Next == nil {
		return ""
	}
	return r.Paging.Next.After
}

// TotalOrCount returns total, falling back to the number of results
func (r *ListResponse) TotalOrCount() int {
	if r.Total != nil {
		return *r.Total
	}
	return len(r.Results)
}

type associationsResponse struct {
	Results []struct {
		ToObjectID json.Number `json:"toObjectId"`
	} `json:"results"`
}

// Client calls the HubSpot CRM objects API
type Client struct {
	baseURL      string
	http         *commonhttp.HTTPClientWrapper
	associations *commonhttp.HTTPClientWrapper
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithAssociationsHTTPClient sends association lookups through their own
// wrapper so their failures never trip the breaker guarding record reads.
func WithAssociationsHTTPClient(httpClient *commonhttp.HTTPClientWrapper) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.associations = httpClient
		}
	}
}

// NewClient creates a CRM client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, httpClient *commonhttp.HTTPClientWrapper, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         httpClient,
		associations: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List performs GET /crm/v3/objects/{type}
func (c *Client) List(ctx context.Context, token, objectType string, properties []string, limit int, after string) (*ListResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("properties", strings.Join(properties, ","))
	if after != "" {
		query.Set("after", after)
	}

	resp, err := c.call(ctx, c.http, "list", &commonhttp.RequestOptions{
		Method:      http.MethodGet,
		URL:         fmt.Sprintf("%s/crm/v3/objects/%s", c.baseURL, objectType),
		Query:       query,
		BearerToken: token,
	})
	if err != nil {
		return nil, err
	}

	var list ListResponse
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Search performs POST /crm/v3/objects/{type}/search
func (c *Client) Search(ctx context.Context, token, objectType string, request *SearchRequest) (*ListResponse, error) {
	resp, err := c.call(ctx, c.http, "search", &commonhttp.RequestOptions{
		Method:      http.MethodPost,
		URL:         fmt.Sprintf("%s/crm/v3/objects/%s/search", c.baseURL, objectType),
		JSONBody:    request,
		BearerToken: token,
	})
	if err != nil {
		return nil, err
	}

	var list ListResponse
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Get performs GET /crm/v3/objects/{type}/{id}
func (c *Client) Get(ctx context.Context, token, objectType, id string, properties []string) (Record, error) {
	query := url.Values{}
	query.Set("properties", strings.Join(properties, ","))

	resp, err := c.call(ctx, c.http, "get", &commonhttp.RequestOptions{
		Method:      http.MethodGet,
		URL:         fmt.Sprintf("%s/crm/v3/objects/%s/%s", c.baseURL, objectType, url.PathEscape(id)),
		Query:       query,
		BearerToken: token,
	})
	if err != nil {
		return nil, err
	}

	var record Record
	if err := resp.Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}

// AssociationsURL is the v4 associations endpoint for one record
func (c *Client) AssociationsURL(objectType, id, associationType string) string {
	return fmt.Sprintf("%s/crm/v4/objects/%s/%s/associations/%s",
		c.baseURL, objectType, url.PathEscape(id), associationType)
}

// Associations returns the IDs of the objects of associationType linked to a record
func (c *Client) Associations(ctx context.Context, token, objectType, id, associationType string) ([]string, error) {
	resp, err := c.call(ctx, c.associations, "associations", &commonhttp.RequestOptions{
		Method:      http.MethodGet,
		URL:         c.AssociationsURL(objectType, id, associationType),
		BearerToken: token,
	})
	if err != nil {
		return nil, err
	}

	var body associationsResponse
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(body.Results))
	for _, result := range body.Results {
		ids = append(ids, result.ToObjectID.String())
	}
	return ids, nil
}

func (c *Client) call(ctx context.Context, httpClient *commonhttp.HTTPClientWrapper, operation string, opts *commonhttp.RequestOptions) (*commonhttp.Response, error) {
	start := time.Now()
	resp, err := httpClient.Request(ctx, opts)
	metrics.UpstreamDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(operation, metrics.Outcome(err)).Inc()
	return resp, err
}
