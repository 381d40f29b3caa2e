package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"taxfiling/internal/adapter/repo"
	"taxfiling/internal/http/handlers"
	httpapi "taxfiling/internal/http/httpapi"
	"taxfiling/internal/infra"
	"taxfiling/internal/service"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	if err := infra.RunMigrations(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	users := repo.NewUserRepository(dbpool)
	businesses := repo.NewBusinessRepository(dbpool)
	quarters := repo.NewQuarterRepository(dbpool)

	secret := []byte(cfg.JWTSecret)
	authSvc := service.NewAuthService(users, secret, cfg.TokenTTL, logger)
	businessSvc := service.NewBusinessService(businesses, quarters, logger)
	quarterSvc := service.NewQuarterService(businesses, quarters, cfg.PersonalAllowance, cfg.BasicTaxRate, logger)

	app := handlers.NewApp(authSvc, businessSvc, quarterSvc, logger)
	router := httpapi.NewRouter(app, secret, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
