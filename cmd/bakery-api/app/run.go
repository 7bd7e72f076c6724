package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ViduraMC/Bakery-App/configs"
	"github.com/ViduraMC/Bakery-App/internal/adapter/cache"
	"github.com/ViduraMC/Bakery-App/internal/adapter/http"
	"github.com/ViduraMC/Bakery-App/internal/adapter/kafka"
	"github.com/ViduraMC/Bakery-App/internal/adapter/queue"
	"github.com/ViduraMC/Bakery-App/internal/adapter/repo"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/payment"
	"github.com/ViduraMC/Bakery-App/internal/subscriber"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
	// Workers run until their context is cancelled.
	Workers []Worker
}

type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func InitWithConfig(cfg configs.Config) (_ *App, _ func(), err error) {
	log := logging.New("app")

	var cleanup closers
	defer func() {
		if err != nil {
			cleanup.run()
		}
	}()

	// init context
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	log.Info("bakery-api: Starting up...", "db_driver", cfg.DB.Driver, "sqlite_build", repo.BuildMode)

	// init database
	db, err := repo.Open(ctx, repo.Options{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup.add(func() { _ = db.Close() })

	products := repo.NewSQLProductRepo(db)
	orders := repo.NewSQLOrderRepo(db)
	users := repo.NewSQLUserRepo(db)

	// init redis, or keep everything in process
	var (
		idem        usecase.IdempotencyStore
		statusCache usecase.OrderStatusCache
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		cleanup.add(func() { _ = rdb.Close() })
		idem = cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
		statusCache = cache.NewRedisStatusCache(rdb, cfg.Redis.CacheTTL)
	} else {
		log.Info("redis not configured, using in-memory idempotency and status cache")
		idem = cache.NewMemoryIdempotencyStore(cfg.Idempotency.TTL)
		statusCache = cache.NewMemoryStatusCache(cfg.Redis.CacheTTL)
	}

	events := notifier.New(logging.New("notifier"))
	events.Subscribe(subscriber.NewInventory(products, cfg.Inventory.LowStockThreshold))
	events.Subscribe(subscriber.NewNotification())
	events.Subscribe(subscriber.NewStatusCache(statusCache))
	events.Subscribe(subscriber.NewMetrics(prometheus.DefaultRegisterer))

	var workers []Worker

	// init rabbitmq + register [queue-handler]
	if cfg.Rabbit.URL != "" {
		w, err := setupRabbit(cfg, events, &cleanup)
		if err != nil {
			return nil, nil, err
		}
		workers = append(workers, w)
	}

	// kafka producer
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.TopicEvents != "" {
		producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		analytics := kafka.NewAnalyticsPublisher(producer, cfg.Kafka.TopicEvents)
		cleanup.add(func() { _ = analytics.Close() })
		events.Subscribe(analytics)
	}

	strategy, err := payment.FromMethod(cfg.Payment.Method)
	if err != nil {
		return nil, nil, err
	}
	ledger := usecase.NewOrderLedger(orders, products, strategy, events,
		usecase.WithIdempotency(idem), usecase.WithStatusCache(statusCache))
	queries := usecase.NewOrderQueries(orders, statusCache)
	catalog := usecase.NewCatalog(products)
	auth := usecase.NewAuth(users)

	// register kafka-listener
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.TopicStatus != "" {
		w, err := setupKafkaListener(cfg, ledger, &cleanup)
		if err != nil {
			return nil, nil, err
		}
		workers = append(workers, w)
	}

	if err := auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, nil, fmt.Errorf("ensure admin: %w", err)
	}
	if cfg.App.SeedCatalog {
		n, err := catalog.SeedIfEmpty(ctx, sampleCatalog())
		if err != nil {
			return nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("catalog seeded", "products", n)
		}
	}

	// init handlers + routers + middleware
	router := http.NewRouter(http.Handlers{
		Products: http.NewProductHandler(catalog),
		Orders:   http.NewOrderHandler(ledger, queries),
		Auth:     http.NewAuthHandler(auth),
	}, logging.New("http"), cfg.HTTP.AllowedOrigins)

	log.Info("subscribers registered", "count", events.Len(), "payment", strategy.Name())
	return &App{Router: router, Workers: workers}, cleanup.run, nil
}

// setupRabbit publishes order events to the topic exchange and consumes the
// notification queue on a second channel.
func setupRabbit(cfg configs.Config, events *notifier.Notifier, cleanup *closers) (Worker, error) {
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return Worker{}, fmt.Errorf("rabbitmq dial: %w", err)
	}
	cleanup.add(func() { _ = conn.Close() })

	pubCh, err := conn.Channel()
	if err != nil {
		return Worker{}, fmt.Errorf("rabbitmq channel: %w", err)
	}
	publisher, err := queue.NewRabbitPublisher(pubCh, cfg.Rabbit.Exchange, cfg.Rabbit.NotificationQueue)
	if err != nil {
		return Worker{}, err
	}
	events.Subscribe(publisher)

	subCh, err := conn.Channel()
	if err != nil {
		return Worker{}, fmt.Errorf("rabbitmq channel: %w", err)
	}
	h := queue.NewNotificationHandler()
	router := queue.NewRouter(subCh, queue.WithPrefetch(cfg.Rabbit.Prefetch))
	router.Register(cfg.Rabbit.NotificationQueue, queue.JSONHandler[queue.Envelope]{HandleFunc: h.HandleEnvelope})

	return Worker{Name: "rabbitmq-notifications", Run: router.Start}, nil
}

func setupKafkaListener(cfg configs.Config, ledger *usecase.OrderLedger, cleanup *closers) (Worker, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return Worker{}, fmt.Errorf("kafka group: %w", err)
	}
	cleanup.add(func() { _ = grp.Close() })

	h := kafka.NewOrderStatusChangedHandler(ledger)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicStatus}, h.Handle)
	return Worker{Name: "kafka-status", Run: consumer.Start}, nil
}
