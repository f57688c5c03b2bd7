package domain

import "context"

// CatalogItem is an entry of the remote catalog. Name is unique within a session.
type CatalogItem struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Level    string `json:"level"`
}

// CatalogSource supplies the base catalog.
type CatalogSource interface {
	FetchAll(ctx context.Context) ([]CatalogItem, error)
	FetchByName(ctx context.Context, name string) (*CatalogItem, error)
}
