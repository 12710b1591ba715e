package scrapeapi

import (
	"github.com/henrybloomingdale/litscrape/internal/gateway"
)

// Server endpoints.
const (
	EndpointScrap         = "/scrap"
	EndpointClinicalScrap = "/clinical_scrap"
	EndpointSuggestions   = "/suggestions"
	EndpointDownloadPDF   = "/download_pdf"
	EndpointExtractTexts  = "/extract_texts"
)

// Client is a typed client for the scraping server.
// It embeds gateway.Client for the shared request pattern, rate limiting,
// and response size guards.
type Client struct {
	*gateway.Client
}

// Option configures a Client (alias for gateway.Option).
type Option = gateway.Option

// Re-export gateway options so callers only import this package.
var (
	WithBaseURL          = gateway.WithBaseURL
	WithUserAgent        = gateway.WithUserAgent
	WithHTTPClient       = gateway.WithHTTPClient
	WithTimeout          = gateway.WithTimeout
	WithRateLimit        = gateway.WithRateLimit
	WithMaxResponseBytes = gateway.WithMaxResponseBytes
	WithMetrics          = gateway.WithMetrics
	WithLogger           = gateway.WithLogger
)

// NewClient creates a new scrape API client with the given options.
func NewClient(opts ...Option) *Client {
	return &Client{Client: gateway.NewClient(opts...)}
}

// NewClientWithGateway wraps an existing gateway client.
func NewClientWithGateway(g *gateway.Client) *Client {
	return &Client{Client: g}
}
