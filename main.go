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

	"storefront-service/config"
	"storefront-service/consumers"
	"storefront-service/controllers"
	"storefront-service/database"
	"storefront-service/payment"
	"storefront-service/rabbitmq"
	"storefront-service/repository"
	"storefront-service/services"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	var (
		store repository.Store
		ping  func(context.Context) error
	)
	switch cfg.StorageDriver {
	case "memory":
		log.Printf("Using in-memory storage")
		store = repository.NewMemoryStore().Store()
	case "mysql":
		if err := database.InitDB(cfg); err != nil {
			log.Fatalf("Database initialization failed: %v", err)
		}
		defer database.CloseDB()
		store = repository.NewMySQLStore(database.DB)
		ping = database.DB.PingContext
	default:
		log.Fatalf("Unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	var gateway payment.Gateway = payment.LocalGateway{}
	if cfg.RazorpayKeyID != "" {
		gateway = payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		log.Printf("RAZORPAY_KEY_ID not set, payment orders are local placeholders")
	}

	// 初始化RabbitMQ
	var (
		publisher services.EventPublisher
		rmq       *rabbitmq.RabbitMQ
	)
	if cfg.RabbitMQURL != "" {
		var err error
		rmq, err = rabbitmq.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatalf("RabbitMQ initialization failed: %v", err)
		}
		defer rmq.Close()

		// 设置队列和交换机
		if err := rmq.SetupQueues(); err != nil {
			log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
		}
		publisher = rmq
	} else {
		log.Printf("RABBITMQ_URL not set, order events are disabled")
	}

	paymentTimeout := cfg.PaymentTimeout
	if rmq == nil || !rmq.DelayedEnabled() {
		paymentTimeout = 0
	}

	coupons := services.NewCouponService(store.Coupons)
	orders := services.NewOrderService(store, coupons, gateway, publisher, services.Pricing{
		Currency:              cfg.Currency,
		TaxRate:               cfg.TaxRate,
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}, paymentTimeout)

	// 启动消息消费者
	if rmq != nil {
		consumerCh, err := rmq.ConsumerChannel(10)
		if err != nil {
			log.Fatalf("Failed to open consumer channel: %v", err)
		}
		if err := consumers.NewOrderConsumer(orders).Start(ctx, consumerCh, cfg); err != nil {
			log.Fatalf("Failed to start order consumer: %v", err)
		}
	}

	h := &controllers.Handlers{
		Orders:    orders,
		Coupons:   coupons,
		Addresses: services.NewAddressService(store),
		Catalog:   services.NewCatalogService(store),
		Users:     services.NewUserService(store.Users),
		Content:   services.NewContentService(cfg.ContentDir),
		Ping:      ping,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           controllers.NewRouter(h, cfg.JWTSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Storefront service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
