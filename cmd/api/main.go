package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/docs"
	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	infracache "github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	infraevents "github.com/jhoicas/stock-ledger/internal/infrastructure/events"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	inframetrics "github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// repos repositorios del almacén elegido en LEDGER_STORAGE.
type repos struct {
	tx         inventory.TxRunner
	items      repository.ItemRepository
	warehouses repository.WarehouseRepository
	suppliers  repository.SupplierRepository
	stock      repository.StockRecordRepository
	transfers  repository.TransferRepository
	ledger     repository.LedgerRepository
	orders     repository.PurchaseOrderRepository
	shipments  repository.ShipmentRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Bool("enforce_capacity", cfg.Ledger.EnforceCapacity).
		Msg("iniciando aplicación")

	ctx := context.Background()
	r := openRepos(ctx, cfg, log)
	defer r.close()

	// Métricas: registro propio para no mezclar con el global en pruebas.
	var (
		ledgerMetrics ports.LedgerMetrics = ports.NoopMetrics{}
		httpMetrics   *inframetrics.LedgerMetrics
		registry      *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		httpMetrics = inframetrics.New(registry)
		ledgerMetrics = httpMetrics
	}

	// Caché del resumen (Redis) y publicación de eventos (Kafka); ambas opcionales.
	var summaryCache ports.SummaryCache = ports.NoopCache{}
	if cfg.Redis.Enabled() {
		rdb, err := infracache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, resumen sin caché")
		} else {
			defer rdb.Close()
			summaryCache = infracache.NewRedisSummaryCache(rdb, cfg.Redis.SummaryTTL)
		}
	}
	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := infraevents.NewKafkaPublisher(cfg.Kafka)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar publisher de kafka")
			}
		}()
		publisher = kp
	}

	effects := ports.NewAfterCommit(summaryCache, publisher, ledgerMetrics, log.Component("effects"))
	invLog := log.Component("inventory")
	purchasingLog := log.Component("purchasing")
	opts := inventory.Options{EnforceCapacity: cfg.Ledger.EnforceCapacity}

	itemUC := usecase.NewItemUseCase(r.tx, r.items, r.stock, effects)
	warehouseUC := usecase.NewWarehouseUseCase(r.warehouses, effects)
	supplierUC := usecase.NewSupplierUseCase(r.suppliers)

	transferUC := inventory.NewTransferUseCase(r.tx, r.items, r.warehouses, r.transfers, effects, invLog, opts)
	withdrawUC := inventory.NewWithdrawUseCase(r.tx, r.items, r.warehouses, r.stock, effects, invLog)
	stockLevelUC := inventory.NewStockLevelUseCase(r.items, r.warehouses, r.stock, r.ledger)
	replenishmentUC := inventory.NewReplenishmentUseCase(r.items, r.stock)

	matcher := purchasing.NewSupplierMatcher(r.suppliers, purchasingLog)
	recordBatchUC := purchasing.NewRecordBatchUseCase(r.tx, purchasing.NewInvoiceNumberGenerator(), matcher, effects, purchasingLog)
	batchQueryUC := purchasing.NewBatchQueryUseCase(r.orders, r.ledger, r.items, r.suppliers, infrapdf.NewMarotoPDFGenerator())
	receiveUC := purchasing.NewReceiveShipmentUseCase(r.tx, r.shipments, r.warehouses, effects, purchasingLog, opts)

	summaryUC := appanalytics.NewSummaryUseCase(r.items, r.warehouses, r.stock,
		summaryCache, ledgerMetrics, spreadsheet.NewStockReportWriter(), log.Component("analytics"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // reportes XLSX y PDF
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if httpMetrics != nil {
		app.Use(httpRouter.RequestLogger(log.Component("http"), httpMetrics))
	} else {
		app.Use(httpRouter.RequestLogger(log.Component("http"), nil))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    docs.SwaggerInfo.Title,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})
	if registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:        itemUC,
		WarehouseUC:   warehouseUC,
		SupplierUC:    supplierUC,
		Transfer:      transferUC,
		Withdraw:      withdrawUC,
		StockLevels:   stockLevelUC,
		Replenishment: replenishmentUC,
		RecordBatch:   recordBatchUC,
		BatchQuery:    batchQueryUC,
		Receive:       receiveUC,
		SummaryUC:     summaryUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openRepos abre PostgreSQL (aplicando migraciones si DB_AUTO_MIGRATE) o el almacén en memoria.
func openRepos(ctx context.Context, cfg *config.Config, log *logger.Logger) repos {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return repos{
			tx:         s,
			items:      s.Items(),
			warehouses: s.Warehouses(),
			suppliers:  s.Suppliers(),
			stock:      s.StockRecords(),
			transfers:  s.Transfers(),
			ledger:     s.Ledger(),
			orders:     s.PurchaseOrders(),
			shipments:  s.Shipments(),
			close:      func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, postgres.MigrateUp, log); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	return repos{
		tx:         postgres.NewTxRunner(pool),
		items:      postgres.NewItemRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool),
		stock:      postgres.NewStockRecordRepository(pool),
		transfers:  postgres.NewTransferRepository(pool),
		ledger:     postgres.NewLedgerRepository(pool),
		orders:     postgres.NewPurchaseOrderRepository(pool),
		shipments:  postgres.NewShipmentRepository(pool),
		close:      pool.Close,
	}
}
