package coingecko

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	publicBaseURL = "https://api.coingecko.com/api/v3"
	proBaseURL    = "https://pro-api.coingecko.com/api/v3"

	// Demo keys travel in the query string, pro keys in a header.
	// https://docs.coingecko.com/reference/authentication
	demoKeyParam = "x_cg_demo_api_key"
	proKeyHeader = "x-cg-pro-api-key"
)

// HTTPClient is the subset of *http.Client the CoinGecko client needs.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the CoinGecko v3 REST API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	// header and query are merged into every request; they carry the
	// API key and anything set through WithHeader.
	header http.Header
	query  url.Values
	pro    bool
}

// ClientOption customises a Client built by NewClient.
type ClientOption func(*Client)

// WithBaseURL points the client at another deployment, e.g. a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds headers to every request.
func WithHeader(h http.Header) ClientOption {
	return func(c *Client) {
		for k, vs := range h {
			for _, v := range vs {
				c.header.Add(k, v)
			}
		}
	}
}

// WithPro treats the key as a paid-plan key: it is sent as a header and the
// default host becomes pro-api.coingecko.com.
func WithPro() ClientOption {
	return func(c *Client) { c.pro = true }
}

// NewClient returns a client for the public API. key is optional; without
// it requests run on the keyless public tier.
func NewClient(key string, options ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	for _, opt := range options {
		opt(c)
	}

	if c.baseURL == "" {
		c.baseURL = publicBaseURL
		if c.pro {
			c.baseURL = proBaseURL
		}
	}
	if u, err := url.Parse(c.baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", c.baseURL)
	}

	switch {
	case key == "":
	case c.pro:
		c.header.Set(proKeyHeader, key)
	default:
		c.query.Set(demoKeyParam, key)
	}
	return c, nil
}
