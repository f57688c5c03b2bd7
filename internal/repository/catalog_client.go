package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog-annotations/internal/domain"

	"golang.org/x/time/rate"
)

// CatalogClient implements domain.CatalogSource against the Digimon API.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     domain.Logger
}

type catalogEntry struct {
	Name  string `json:"name"`
	Img   string `json:"img"`
	Level string `json:"level"`
}

// NewCatalogClient creates a catalog client. requestsPerSecond bounds outbound calls.
func NewCatalogClient(baseURL string, timeout time.Duration, requestsPerSecond float64, logger domain.Logger) *CatalogClient {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:     logger,
	}
}

// FetchAll returns the complete catalog.
func (c *CatalogClient) FetchAll(ctx context.Context) ([]domain.CatalogItem, error) {
	entries, err := c.get(ctx, "/api/digimon")
	if err != nil {
		return nil, err
	}

	items := make([]domain.CatalogItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.toItem())
	}
	c.logger.Debug("Catalog fetched", "count", len(items))
	return items, nil
}

// FetchByName returns the first catalog entry matching name.
func (c *CatalogClient) FetchByName(ctx context.Context, name string) (*domain.CatalogItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "is required"}
	}

	entries, err := c.get(ctx, "/api/digimon/name/"+url.PathEscape(name))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogItemNotFound, name)
	}

	item := entries[0].toItem()
	return &item, nil
}

func (c *CatalogClient) get(ctx context.Context, path string) ([]catalogEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: catalog rate limit: %v", domain.ErrRemoteUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog request failed: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		// The by-name route answers unknown names with 400/404 and an error body.
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogItemNotFound, path)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: catalog returned status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}

	var entries []catalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode catalog response: %v", domain.ErrRemoteUnavailable, err)
	}
	return entries, nil
}

func (e catalogEntry) toItem() domain.CatalogItem {
	return domain.CatalogItem{Name: e.Name, ImageURL: e.Img, Level: e.Level}
}
