package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ecomapi/internal/config"
	httpapi "ecomapi/internal/http"
	"ecomapi/internal/logger"
	"ecomapi/internal/repository/gormstore"
	"ecomapi/internal/service"

	_ "ecomapi/docs"
)

// @title E-Commerce API
// @version 1.0.0
// @description RESTful CRUD API for users, products and orders with a many-to-many order/product association.
func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zap.L().Sync()

	db, err := gormstore.Open(cfg.MySQL.DSN)
	if err != nil {
		zap.L().Fatal("connect mysql", zap.Error(err))
	}
	zap.L().Info("database ready", zap.String("tables", "users, products, orders, order_product"))

	usersRepo := gormstore.NewUserRepository(db)
	productsRepo := gormstore.NewProductRepository(db)
	ordersRepo := gormstore.NewOrderRepository(db)
	tx := gormstore.NewTxManager(db)

	usersSvc := service.NewUserService(usersRepo, ordersRepo, tx)
	productsSvc := service.NewProductService(productsRepo, ordersRepo, tx)
	ordersSvc := service.NewOrderService(usersRepo, productsRepo, ordersRepo, tx)
	statsSvc := service.NewStatsService(usersRepo, productsRepo, ordersRepo)

	srv := httpapi.NewServer(usersSvc, productsSvc, ordersSvc, statsSvc)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Engine(),
	}

	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zap.L().Error("shutdown error", zap.Error(err))
	}
}
