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

	"github.com/jhoicas/ordenes-api/internal/application/companies"
	"github.com/jhoicas/ordenes-api/internal/application/inventory"
	"github.com/jhoicas/ordenes-api/internal/application/orders"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/ordenes-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/ordenes-api/internal/interfaces/http"
	"github.com/jhoicas/ordenes-api/pkg/config"
	"github.com/jhoicas/ordenes-api/pkg/jwt"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	mutator := inventory.NewStockMutator(cfg.Orders.AllowNegativeStock, log)
	numberer := orders.NewInvoiceNumberer(cfg.Orders.InvoiceMaxRetries, cfg.Orders.InvoiceDefaultPrefix, log)
	orderUC := orders.NewOrderUseCase(txRunner, orders.NewItemSet(mutator), numberer, log)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, mutator)
	stockQueryUC := inventory.NewStockQueryUseCase(txRunner)
	companyUC := companies.NewStatusUseCase(txRunner)

	// Idempotencia de POST /orders solo con Redis configurado.
	var idem ports.IdempotencyStore
	if cfg.Redis.URL != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = infraredis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		log.Info().Dur("ttl", cfg.Redis.IdempotencyTTL).Msg("idempotencia habilitada")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Órdenes API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:      orderUC,
		AdjustmentUC: adjustmentUC,
		StockQueryUC: stockQueryUC,
		CompanyUC:    companyUC,
		Idempotency:  idem,
		Tokens:       tokens,
		Log:          log,
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
