package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ordelo/orders-ms/internal/adapter/bus"
	"github.com/ordelo/orders-ms/internal/adapter/client/catalog"
	"github.com/ordelo/orders-ms/internal/adapter/client/payment"
	"github.com/ordelo/orders-ms/internal/adapter/config"
	httphandler "github.com/ordelo/orders-ms/internal/adapter/handler/http"
	"github.com/ordelo/orders-ms/internal/adapter/handler/rpc"
	"github.com/ordelo/orders-ms/internal/adapter/logger"
	"github.com/ordelo/orders-ms/internal/adapter/storage"
	"github.com/ordelo/orders-ms/internal/adapter/storage/repository"
	"github.com/ordelo/orders-ms/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}

	b, err := bus.NewBus(conf.Bus, rpc.NewNormalizer(log.Named("Normalizer")), log.Named("Bus"))
	if err != nil {
		log.Error("bus creating error", zap.Error(err))
		return
	}

	catalogClient, err := catalog.NewClient(conf.Bus, b, log.Named("Catalog"))
	if err != nil {
		log.Error("catalog client creating error", zap.Error(err))
		return
	}
	paymentClient, err := payment.NewClient(conf.Bus, b, log.Named("Payment"))
	if err != nil {
		log.Error("payment client creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, catalogClient, paymentClient, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	orderHandler, err := rpc.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}

	rpc.Register(b, orderHandler)
	b.Start(ctx)

	r, err := httphandler.NewRouter(conf.HTTP, db, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	go func() {
		err := r.Serve(conf.HTTP.HostString)
		if err != nil {
			log.Error("router serve error", zap.Error(err))
			stop()
		}
	}()

	log.Info("orders service running",
		zap.String("http", conf.HTTP.HostString),
		zap.String("brokers", conf.Bus.Brokers))

	<-ctx.Done()
	b.Stop()
	db.Close()
}
