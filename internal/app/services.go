package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/costbook/internal/alerts"
	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/costing"
	"github.com/odyssey-erp/costbook/internal/inventory"
	"github.com/odyssey-erp/costbook/internal/platform/docstore"
	"github.com/odyssey-erp/costbook/internal/shared"
)

// Services holds the domain services shared by the API server and worker.
type Services struct {
	Catalog   *catalog.Service
	Costing   *costing.Service
	Inventory *inventory.Service
	Alerts    *alerts.Service
	Prices    *inventory.CatalogPrices
}

// NewServices wires repositories, the catalog cache and the alert store.
// A nil redis client disables catalog caching.
func NewServices(cfg *Config, pool *pgxpool.Pool, redisClient *redis.Client, docs *docstore.Store, logger *slog.Logger) *Services {
	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(catalogRepo, redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, catalogCache, logger.With(slog.String("component", "catalog")))

	costingService := costing.NewService(costing.NewRepository(pool), catalogService.Lookup(), logger.With(slog.String("component", "costing")))

	inventoryRepo := inventory.NewRepository(pool)
	alertService := alerts.NewService(alerts.NewStore(docs), inventoryRepo, costingService, logger.With(slog.String("component", "alerts")))
	inventoryService := inventory.NewService(
		inventoryRepo,
		shared.NewAuditLogger(pool),
		inventory.ServiceConfig{CapacityMultiplier: cfg.Multiplier(), HistoryPageSize: cfg.HistoryPageSize},
		alertService,
		logger.With(slog.String("component", "inventory")),
	)

	return &Services{
		Catalog:   catalogService,
		Costing:   costingService,
		Inventory: inventoryService,
		Alerts:    alertService,
		Prices:    inventory.NewCatalogPrices(catalogService.Lookup()),
	}
}
