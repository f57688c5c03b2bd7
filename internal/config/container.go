package config

import (
	"fmt"

	"catalog-annotations/internal/domain"
	"catalog-annotations/internal/infra/supabase"
	"catalog-annotations/internal/repository"
	"catalog-annotations/internal/service"
	"catalog-annotations/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	SupabaseClient    domain.SupabaseClient
	AuthService       domain.AuthService
	AnnotationStore   domain.AnnotationStore
	CatalogSource     domain.CatalogSource
	AnnotationService domain.AnnotationService
	ToggleController  domain.AnnotationToggler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	c := &Container{
		Config: config,
		Logger: appLogger,
	}

	supabaseConfigured := config.GetSupabaseURL() != "" && config.GetSupabaseKey() != ""
	if supabaseConfigured {
		client := supabase.NewSupabaseClient(config, appLogger)
		if err := client.Initialize(); err != nil {
			return nil, err
		}
		c.SupabaseClient = client
		c.AuthService = service.NewAuthService(client, appLogger)
	}

	switch config.GetStoreDriver() {
	case StoreDriverMemory:
		c.AnnotationStore = repository.NewMemoryAnnotationStore()
		if c.AuthService == nil {
			c.AuthService = service.NewDevAuthService(appLogger)
		}
	case StoreDriverSupabase:
		if c.SupabaseClient == nil {
			return nil, fmt.Errorf("store driver %q requires SUPABASE_URL and SUPABASE_ANON_KEY", StoreDriverSupabase)
		}
		c.AnnotationStore = repository.NewSupabaseAnnotationRepository(
			c.SupabaseClient,
			config.GetFavoritesTable(),
			config.GetDislikesTable(),
			appLogger,
		)
	default:
		return nil, fmt.Errorf("unknown store driver %q", config.GetStoreDriver())
	}

	c.CatalogSource = repository.NewCatalogClient(
		config.GetCatalogAPIURL(),
		config.GetCatalogTimeout(),
		config.GetCatalogRateLimit(),
		appLogger,
	)
	c.AnnotationService = service.NewAnnotationService(c.AnnotationStore, config.GetSnapshotPollInterval(), appLogger)
	c.ToggleController = service.NewToggleController(c.AnnotationService, appLogger)

	appLogger.Info("Container initialized",
		"store_driver", config.GetStoreDriver(),
		"catalog_url", config.GetCatalogAPIURL(),
	)
	return c, nil
}
