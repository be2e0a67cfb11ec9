// Package searchapi provides a bizsearch.Client implementation backed by a
// REST business-search API.
package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"leadscout/pkg/bizsearch"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the business-search REST API and fulfills the
// bizsearch.Client interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the search API
	baseURL    string       // baseURL is the API root, without a trailing slash
	token      string       // token is the API key for the search provider
}

// ParseRateLimit extracts rate‑limit information from the HTTP response
// headers and converts it into a bizsearch.RateLimitStatus.
func ParseRateLimit(h http.Header) (bizsearch.RateLimitStatus, error) {
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}

		return 0
	}
	limit := atoi(h.Get("X-Rate-Limit-Limit"))
	remaining := atoi(h.Get("X-Rate-Limit-Remaining"))

	resetStr := h.Get("X-Rate-Limit-Reset")
	resetAt, err := time.Parse(time.RFC3339Nano, resetStr)
	if err != nil {
		return bizsearch.RateLimitStatus{}, fmt.Errorf("could not parse reset at: %w", err)
	}

	return bizsearch.RateLimitStatus{Limit: limit, Remaining: remaining, ResetAt: resetAt}, nil
}

// searchResult mirrors one business entry in the provider's response.
type searchResult struct {
	Domain        string   `json:"domain"`
	DisplayName   string   `json:"displayName"`
	ContactName   string   `json:"contactName"`
	ContactEmail  string   `json:"contactEmail"`
	ContactPhone  string   `json:"contactPhone"`
	WebsiteURL    string   `json:"websiteUrl"`
	WebsiteScore  *int     `json:"websiteScore"`
	WebsiteIssues []string `json:"websiteIssues"`
	SocialMedia   []string `json:"socialMedia"`
}

// Search queries the provider for businesses matching query and location.
// It returns the raw candidates, the parsed rate‑limit status from the
// response headers, and an error if the request failed.
func (c *Client) Search(ctx context.Context,
	query, location string,
	limit int) ([]domain.DiscoveryCandidate, bizsearch.RateLimitStatus, error) {
	q := url.Values{}
	q.Set("query", query)
	if location != "" {
		q.Set("location", location)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet,
		c.baseURL+"/v1/businesses/search?"+q.Encode(),
		nil)
	if err != nil {
		return nil, bizsearch.RateLimitStatus{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Api-Key", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, bizsearch.RateLimitStatus{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rl, err := ParseRateLimit(resp.Header)
	if err != nil {
		return nil, rl, fmt.Errorf("could not parse rate limit: %w", err)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rl, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, rl, serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, rl, fmt.Errorf("search failed: %s", strings.TrimSpace(string(b)))
	}

	// successful
	var searchResp struct {
		Results []searchResult `json:"results"`
	}
	if err := json.Unmarshal(b, &searchResp); err != nil {
		return nil, rl, fmt.Errorf("could not decode response: %w", err)
	}

	out := make([]domain.DiscoveryCandidate, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		out = append(out, domain.DiscoveryCandidate{
			Domain:        r.Domain,
			DisplayName:   r.DisplayName,
			ContactName:   r.ContactName,
			ContactEmail:  r.ContactEmail,
			ContactPhone:  r.ContactPhone,
			WebsiteURL:    r.WebsiteURL,
			WebsiteScore:  r.WebsiteScore,
			WebsiteIssues: r.WebsiteIssues,
			SocialMedia:   r.SocialMedia,
			SourceQuery:   query,
		})
	}

	return out, rl, nil
}

// Ensure Client conforms to the bizsearch.Client interface at compile time.
var _ bizsearch.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client, API base URL and
// token to interact with the business-search API.
func New(httpClient *http.Client, baseURL, token string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}
