package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avetisn/plumb_erp/internal/config"
	"github.com/avetisn/plumb_erp/internal/es"
	"github.com/avetisn/plumb_erp/internal/handlers"
	"github.com/avetisn/plumb_erp/internal/logging"
	"github.com/avetisn/plumb_erp/internal/mykafka"
	"github.com/avetisn/plumb_erp/internal/order"
	"github.com/avetisn/plumb_erp/internal/promo"
	"github.com/avetisn/plumb_erp/internal/service/token"
	httpserver "github.com/avetisn/plumb_erp/internal/transport/http"
	"github.com/avetisn/plumb_erp/internal/warranty"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	tokenService := &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
	orderService := &order.Service{DB: db}

	deps := httpserver.Deps{
		DB:              db,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		UserHandler:     &handlers.UserHandler{DB: db},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: prod},
		PromoHandler:    &handlers.PromoHandler{DB: db, Evaluator: &promo.Evaluator{DB: db}},
		OrderHandler:    &handlers.OrderHandler{Svc: orderService, Producer: prod},
		WarrantyHandler: &handlers.WarrantyHandler{Svc: &warranty.Service{DB: db}},
		PointsHandler:   &handlers.PointsHandler{DB: db},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: "product"},
		TokenService:    tokenService,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
