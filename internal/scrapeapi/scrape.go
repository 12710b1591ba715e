package scrapeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/henrybloomingdale/litscrape/internal/gateway"
)

// Run validates q and posts it to its endpoint.
func (c *Client) Run(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	body, err := c.Send(ctx, q.Endpoint(), http.MethodPost, q.Values())
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", q.Schema(), err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing %s response: %v", gateway.ErrTransport, q.Schema(), err)
	}
	return &resp, nil
}

// Scrap runs a general keyword search.
func (c *Client) Scrap(ctx context.Context, keyword string) (*Response, error) {
	return c.Run(ctx, GeneralQuery{Keyword: keyword})
}

// ClinicalScrap runs a clinical-trials search.
func (c *Client) ClinicalScrap(ctx context.Context, conditions, otherTerms string) (*Response, error) {
	return c.Run(ctx, ClinicalQuery{ConditionsDisease: conditions, OtherTerms: otherTerms})
}

// Suggestions fetches autocomplete suggestions for a partial keyword.
func (c *Client) Suggestions(ctx context.Context, term string) ([]string, error) {
	body, err := c.Send(ctx, EndpointSuggestions, http.MethodGet, url.Values{"term": {term}})
	if err != nil {
		return nil, fmt.Errorf("suggestions request failed: %w", err)
	}

	var resp suggestionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing suggestions: %v", gateway.ErrTransport, err)
	}
	return resp.Suggestions, nil
}

// DownloadPDF asks the server to download the PDFs of the current result set.
// The response body carries nothing of interest.
func (c *Client) DownloadPDF(ctx context.Context) error {
	if _, err := c.Send(ctx, EndpointDownloadPDF, http.MethodGet, nil); err != nil {
		return fmt.Errorf("download pdf request failed: %w", err)
	}
	return nil
}

// ExtractTexts asks the server to extract texts from the downloaded PDFs.
func (c *Client) ExtractTexts(ctx context.Context) error {
	if _, err := c.Send(ctx, EndpointExtractTexts, http.MethodGet, nil); err != nil {
		return fmt.Errorf("extract texts request failed: %w", err)
	}
	return nil
}

// FetchArtifact downloads an exported file by its server-relative path.
func (c *Client) FetchArtifact(ctx context.Context, artifact string) ([]byte, error) {
	if artifact == "" {
		return nil, fmt.Errorf("no export artifact")
	}
	body, err := c.Send(ctx, artifact, http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", artifact, err)
	}
	return body, nil
}
