package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Tienda-spa/internal/application/audit"
	"github.com/jhoicas/Tienda-spa/internal/application/effects"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/apiclient"
	infrapdf "github.com/jhoicas/Tienda-spa/internal/infrastructure/pdf"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Tienda-spa/internal/interfaces/http"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/config"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.API.BaseURL).
		Msg("iniciando shell de la tienda")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, cleanup, err := buildStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento local")
	}
	defer cleanup()

	st := store.New(log)
	nav := httpRouter.NewSessionNavigator()
	api := apiclient.New(apiclient.Config{
		BaseURL:        cfg.API.BaseURL,
		DefaultRetries: cfg.API.Retries,
		UserAgent:      cfg.API.UserAgent,
	}, st, nav, log)

	pdfGen := infrapdf.NewAuditReportGenerator(cfg.App.Name)
	audits := audit.NewService(st, api, pdfGen, cfg.API.UserAgent, log)

	effects.NewAuthEffects(st, kv, api, audits, log).Register()
	effects.NewCartEffects(st, kv, log).Register()

	go st.Run(ctx)

	// rehidratación inicial de sesión y carrito
	st.Dispatch(store.HydrateAuthRequested{})
	st.Dispatch(store.CartLoadRequested{})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Store:     st,
		API:       api,
		Audits:    audits,
		Navigator: nav,
		Logger:    log,
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

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	cancel()

	log.Info().Msg("aplicación detenida")
}

// buildStorage construye el almacén local según configuración.
func buildStorage(ctx context.Context, cfg config.StorageConfig) (storage.Store, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStore(), noop, nil
	case "redis":
		st, err := storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: cfg.KeyPrefix,
		})
		return st, noop, err
	case "postgres":
		pool, err := storage.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		st, err := storage.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		return st, pool.Close, nil
	default:
		st, err := storage.NewFileStore(cfg.FilePath)
		return st, noop, err
	}
}
