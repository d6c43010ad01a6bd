package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/kiosk-orders/internal/api"
	"github.com/example/kiosk-orders/internal/command"
	"github.com/example/kiosk-orders/internal/config"
	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/payment"
	"github.com/example/kiosk-orders/internal/domain/product"
	"github.com/example/kiosk-orders/internal/email"
	"github.com/example/kiosk-orders/internal/events"
	"github.com/example/kiosk-orders/internal/infrastructure/gateway"
	"github.com/example/kiosk-orders/internal/infrastructure/kafka"
	"github.com/example/kiosk-orders/internal/infrastructure/rabbitmq"
	"github.com/example/kiosk-orders/internal/infrastructure/store"
	"github.com/example/kiosk-orders/internal/notification"
	"github.com/example/kiosk-orders/internal/query"
	"github.com/example/kiosk-orders/internal/sse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("[API] ========================================")
	log.Println("[API] Kiosk Orders")
	log.Println("[API] ========================================")
	log.Printf("[API] Storage: %s", cfg.Storage)
	log.Printf("[API] Payment gateway: %s (strict transitions: %v)", cfg.PaymentGateway, cfg.StrictTransitions)
	log.Printf("[API] Event bus: %s", cfg.EventBus)

	repo, closeRepo := openRepository(ctx, cfg)
	defer closeRepo()

	gw := openGateway(cfg)

	publisher, closePublisher := openPublisher(cfg)
	defer closePublisher()

	dispatcher := notification.NewDispatcher(cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout)
	var mailer notification.OrderMailer
	if cfg.AdminEmail != "" {
		mailer = email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
		log.Printf("[API] New-order mails go to %s via %s:%s", cfg.AdminEmail, cfg.SMTPHost, cfg.SMTPPort)
	}
	outbound := notification.NewOutbound(dispatcher, publisher, mailer, cfg.AdminEmail)

	// Feeds
	orderFeed := sse.NewRegistry("orders")
	paymentFeed := sse.NewRegistry("payments")
	streamCfg := sse.StreamConfig{
		Heartbeat:    cfg.SSEHeartbeat,
		WriteTimeout: cfg.SSEWriteTimeout,
		QueueSize:    cfg.SSEQueueSize,
	}

	// Domain
	payments := payment.NewStore()
	machine := payment.NewMachine(payments, sse.NewBroadcaster(paymentFeed), payment.Options{
		Strict:   cfg.StrictTransitions,
		Notifier: outbound,
	})
	orderSvc := order.NewService(repo, sse.NewBroadcaster(orderFeed), outbound)

	// Handlers
	cmdHandler := command.NewHandler(orderSvc, machine, gw)
	queryHandler := query.NewHandler(repo, repo, payments)
	router := api.NewRouter(api.RouterConfig{
		Handlers:               api.NewHandlers(cmdHandler, queryHandler),
		OrderFeed:              sse.NewStreamHandler(orderFeed, streamCfg),
		PaymentFeed:            sse.NewStreamHandler(paymentFeed, streamCfg),
		WebhookSignatureHeader: gw.SignatureHeader(),
		AllowedOrigins:         cfg.AllowedOrigins,
		StaticDir:              cfg.StaticDir,
	})

	// Streams run until their request context ends, so they get a base
	// context that is cancelled before Shutdown waits for handlers.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		log.Println("[API] ========================================")
		log.Printf("[API] Server started on :%s", cfg.Port)
		log.Println("[API] ========================================")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[API] Shutting down...")
	cancelStreams()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}

	// Drain outbound mails and events before the bus connection closes.
	dispatcher.Close()
}

func openRepository(ctx context.Context, cfg *config.Config) (store.Repository, func()) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		repo := store.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("[API] Failed to prepare PostgreSQL schema: %v", err)
		}
		log.Println("[API] Connected to PostgreSQL")
		return repo, func() { db.Close() }

	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := store.ConnectMongo(connectCtx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("[API] Failed to connect to MongoDB: %v", err)
		}
		log.Printf("[API] Connected to MongoDB (database %s)", cfg.MongoDatabase)
		return store.NewMongoRepository(client.Database(cfg.MongoDatabase)), func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}

	default:
		repo := store.NewMemoryRepository()
		seedProducts(repo)
		log.Println("[API] Using in-memory storage (orders are lost on restart)")
		return repo, func() {}
	}
}

func seedProducts(repo *store.MemoryRepository) {
	for _, p := range []struct {
		naam  string
		prijs int64
		image string
	}{
		{"Cola", 250, "/images/cola.png"},
		{"Friet", 350, "/images/friet.png"},
		{"Frikandel", 275, "/images/frikandel.png"},
		{"Kroket", 300, "/images/kroket.png"},
	} {
		prod, err := product.New(p.naam, p.prijs, p.image)
		if err != nil {
			log.Fatalf("[API] Invalid demo product %s: %v", p.naam, err)
		}
		repo.AddProduct(prod)
	}
}

func openGateway(cfg *config.Config) payment.Gateway {
	if cfg.PaymentGateway == config.GatewayStripe {
		return gateway.NewStripe(gateway.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookKey,
			Currency:      cfg.Currency,
		})
	}

	local, err := gateway.NewLocal(cfg.LocalGatewaySecret, cfg.Currency)
	if err != nil {
		log.Fatalf("[API] Failed to create local payment gateway: %v", err)
	}
	return local
}

func openPublisher(cfg *config.Config) (events.Publisher, func()) {
	var closer io.Closer

	var publisher events.Publisher
	switch cfg.EventBus {
	case config.BusKafka:
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Printf("[API] Publishing events to Kafka %v topic %s", cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher, closer = producer, producer

	case config.BusRabbitMQ:
		rmq, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("[API] Failed to connect to RabbitMQ: %v", err)
		}
		publisher, closer = rmq, rmq

	default:
		return events.NopPublisher{}, func() {}
	}

	return publisher, func() {
		if err := closer.Close(); err != nil {
			log.Printf("[API] Error closing event publisher: %v", err)
		}
	}
}
