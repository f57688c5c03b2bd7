package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalog-annotations/internal/config"
	"catalog-annotations/internal/domain"
	"catalog-annotations/internal/repository"
	"catalog-annotations/internal/service"
)

type stubCatalog struct {
	items []domain.CatalogItem
	err   error
}

func (c *stubCatalog) FetchAll(ctx context.Context) ([]domain.CatalogItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

func (c *stubCatalog) FetchByName(ctx context.Context, name string) (*domain.CatalogItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, item := range c.items {
		if item.Name == name {
			item := item
			return &item, nil
		}
	}
	return nil, domain.ErrCatalogItemNotFound
}

func newTestContainer(t *testing.T, catalog domain.CatalogSource) *config.Container {
	t.Helper()

	logger := NewMockHandlerLogger()
	store := repository.NewMemoryAnnotationStore()
	annotations := service.NewAnnotationService(store, 20*time.Millisecond, logger)

	return &config.Container{
		Config: &config.AppConfig{
			StoreDriver:            config.StoreDriverMemory,
			SnapshotPollInterval:   20 * time.Millisecond,
			ProjectionReadyTimeout: 2 * time.Second,
		},
		Logger:            logger,
		AuthService:       service.NewDevAuthService(logger),
		AnnotationStore:   store,
		CatalogSource:     catalog,
		AnnotationService: annotations,
		ToggleController:  service.NewToggleController(annotations, logger),
	}
}

func sampleItems() []domain.CatalogItem {
	return []domain.CatalogItem{
		{Name: "Koromon", ImageURL: "https://example.test/koromon.jpg", Level: "In Training"},
		{Name: "Agumon", ImageURL: "https://example.test/agumon.jpg", Level: "Rookie"},
		{Name: "Gabumon", ImageURL: "https://example.test/gabumon.jpg", Level: "Rookie"},
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
