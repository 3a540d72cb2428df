// Package catalog reads product records from the bookstore backend. It is
// only used to backfill shipping dimensions missing from cart lines.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/models"
)

// maxResponseSize is the maximum allowed response body size (2MB)
const maxResponseSize = 2 * 1024 * 1024

// ErrNotFound is returned when the backend has no record for the id.
var ErrNotFound = errors.New("catalog record not found")

// Credentials authorise catalog requests on behalf of a storefront user.
// The zero value sends anonymous requests.
type Credentials struct {
	AccessToken string
}

// CredentialsFromHeader extracts a bearer token from an Authorization header.
func CredentialsFromHeader(header string) Credentials {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Credentials{}
	}
	return Credentials{AccessToken: strings.TrimSpace(token)}
}

// Config holds catalog backend configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is an immutable catalog client. WithCredentials returns a copy bound
// to a caller's token; the original is never mutated.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	credentials Credentials
}

// NewClient creates an anonymous catalog client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// WithCredentials returns a client that authenticates as creds.
func (c *Client) WithCredentials(creds Credentials) *Client {
	cp := *c
	cp.credentials = creds
	return &cp
}

// Product is the part of a book or stationery record relevant to shipping.
type Product struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Weight      models.Measure `json:"weight"`
	WeightGrams models.Measure `json:"weight_grams"`
	Length      models.Measure `json:"length"`
	LengthCM    models.Measure `json:"length_cm"`
	Width       models.Measure `json:"width"`
	WidthCM     models.Measure `json:"width_cm"`
	Height      models.Measure `json:"height"`
	HeightCM    models.Measure `json:"height_cm"`
}

// Dimensions merges the plain and unit-suffixed spellings.
func (p *Product) Dimensions() models.Dimensions {
	return models.Dimensions{
		Weight: p.Weight.Or(p.WeightGrams),
		Length: p.Length.Or(p.LengthCM),
		Width:  p.Width.Or(p.WidthCM),
		Height: p.Height.Or(p.HeightCM),
	}
}

// GetBook fetches /books/{id}.
func (c *Client) GetBook(ctx context.Context, id int) (*Product, error) {
	return c.getProduct(ctx, fmt.Sprintf("/books/%d", id))
}

// GetStationery fetches /stationery/{id}.
func (c *Client) GetStationery(ctx context.Context, id int) (*Product, error) {
	return c.getProduct(ctx, fmt.Sprintf("/stationery/%d", id))
}

func (c *Client) getProduct(ctx context.Context, path string) (*Product, error) {
	if c.baseURL == "" {
		return nil, errors.New("catalog base URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.credentials.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.credentials.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	log.Debug().Str("path", path).Int("status_code", resp.StatusCode).Msg("[CATALOG] Product fetched")

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrNotFound
	}

	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &product, nil
}
