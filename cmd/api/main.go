package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/retail-pro/internal/application/auth"
	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/application/usecase"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
	"github.com/tu-usuario/retail-pro/internal/infrastructure/memory"
	infrapdf "github.com/tu-usuario/retail-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/retail-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/retail-pro/internal/interfaces/http"
	"github.com/tu-usuario/retail-pro/pkg/config"
	"github.com/tu-usuario/retail-pro/pkg/logger"
)

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL por defecto; DB_DRIVER=memory corre la API con
	// el store en proceso (demo y tests locales, sin atomicidad real).
	var (
		txRunner          inventory.TxRunner
		productRepo       repository.ProductRepository
		warehouseRepo     repository.WarehouseRepository
		establishmentRepo repository.EstablishmentRepository
		userRepo          repository.UserRepository
		ledger            repository.MovementLedger
	)
	if cfg.DB.Driver == "memory" {
		store := memory.NewStore()
		txRunner = store
		productRepo = store.Products()
		warehouseRepo = store.Warehouses()
		establishmentRepo = store.Establishments()
		userRepo = store.Users()
		ledger = store.Ledger()
		log.Warn().Msg("store en memoria: los datos no sobreviven al reinicio")
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		productRepo = postgres.NewProductRepository(pool)
		warehouseRepo = postgres.NewWarehouseRepository(pool)
		establishmentRepo = postgres.NewEstablishmentRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
		ledger = postgres.NewMovementLedgerRepository(pool)
	}

	inventoryFacade := inventory.NewFacade(txRunner, productRepo, warehouseRepo, establishmentRepo, ledger, log)

	establishmentUC := usecase.NewEstablishmentUseCase(establishmentRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	productUC := usecase.NewProductUseCase(productRepo, inventoryFacade)
	authUC := auth.NewAuthUseCase(userRepo, establishmentRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	kardexPDF := infrapdf.NewMarotoKardexGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EstablishmentUC:     establishmentUC,
		WarehouseUC:         warehouseUC,
		ProductUC:           productUC,
		Inventory:           inventoryFacade,
		KardexPDF:           kardexPDF,
		AuthUC:              authUC,
		JWTSecret:           cfg.JWT.Secret,
		RespectReservations: cfg.Stock.RespectReservations,
		AllowNegativeStock:  cfg.Stock.AllowNegativeDefault,
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
