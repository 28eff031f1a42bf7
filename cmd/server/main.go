package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/api"
	"github.com/fundadaburda/BrokerageApi/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local overrides (JWT secret, DB path, addr)
	_ = godotenv.Load()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub(slog.Default())
	bootstrap.Orders.SetEventPublisher(hub)

	server := api.NewServer(
		bootstrap.Orders,
		bootstrap.Assets,
		bootstrap.Auth,
		hub,
		slog.Default(),
		bootstrap.Config.Server.AllowedOrigins,
	)

	go func() {
		if err := server.Start(bootstrap.Config.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}
