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

	"github.com/jhoicas/Tienda-spa/internal/backend"
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

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = "dev-secret-no-usar-en-produccion"
		log.Warn().Msg("JWT_SECRET vacío, usando secreto de desarrollo")
	}

	data, err := backend.Seed()
	if err != nil {
		log.Fatal().Err(err).Msg("sembrando datos de demostración")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name + "-demoapi",
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
		Title:    "Tienda SPA demo API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name + "-demoapi"})
	})

	h := backend.NewHandler(data, secret, cfg.JWT.Issuer, cfg.JWT.Expiration, log)
	backend.Router(app, h)

	addr := cfg.Backend.Addr()
	log.Info().Str("addr", addr).Msg("iniciando API de desarrollo")

	go func() {
		if err := app.Listen(addr); err != nil {
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

	log.Info().Msg("API de desarrollo detenida")
}
