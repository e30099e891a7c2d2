package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/wyfcoding/ecommerce/internal/cart/application"
	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	cartmessaging "github.com/wyfcoding/ecommerce/internal/cart/infrastructure/messaging"
	cartmysql "github.com/wyfcoding/ecommerce/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/wyfcoding/ecommerce/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/ecommerce/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/ecommerce/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/ecommerce/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/ecommerce/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/ecommerce/internal/order/application"
	orderdomain "github.com/wyfcoding/ecommerce/internal/order/domain"
	ordermessaging "github.com/wyfcoding/ecommerce/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/mysql"
	orderredis "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/redis"
	orderconsumer "github.com/wyfcoding/ecommerce/internal/order/interfaces/consumer"
	orderhttp "github.com/wyfcoding/ecommerce/internal/order/interfaces/http"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	usermysql "github.com/wyfcoding/ecommerce/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/storefront/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	logCfg := &logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. 指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)

	// 4. 数据库
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(
			&userdomain.User{},
			&catalogdomain.Product{},
			&cartdomain.Cart{},
			&cartdomain.CartItem{},
			&orderdomain.Order{},
			&orderdomain.OrderItem{},
			&outbox.Message{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	// 6. Redis
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
	}

	// 7. 仓储
	userRepo := usermysql.NewUserRepository(db.RawDB())
	productRepo := catalogmysql.NewProductRepository(db.RawDB())
	cartRepo := cartmysql.NewCartRepository(db.RawDB())
	orderRepo := ordermysql.NewOrderRepository(db.RawDB())
	orderReadRepo := orderredis.NewOrderRedisRepository(redisCache.GetClient())

	catalogPublisher := catalogmessaging.NewOutboxPublisher(outboxMgr)
	cartPublisher := cartmessaging.NewOutboxPublisher(outboxMgr)
	orderPublisher := ordermessaging.NewOutboxPublisher(outboxMgr)

	// 8. 应用服务
	catalogCmdSvc := catalogapp.NewCatalogCommandService(productRepo, catalogPublisher)
	catalogQuerySvc := catalogapp.NewCatalogQueryService(productRepo)
	cartCmdSvc := cartapp.NewCartCommandService(cartRepo, productRepo, cartPublisher)
	cartQuerySvc := cartapp.NewCartQueryService(cartRepo)
	orderCmdSvc := orderapp.NewOrderCommandService(orderRepo, cartRepo, productRepo, userRepo, orderPublisher)
	orderQuerySvc := orderapp.NewOrderQueryService(orderRepo, orderReadRepo)

	projectionSvc := orderapp.NewOrderProjectionService(orderRepo, orderReadRepo, logger.Logger)
	projectionHandler := orderconsumer.NewOrderProjectionHandler(projectionSvc, logger.Logger)

	projectionTopics := []string{
		orderdomain.OrderPlacedEventType,
		orderdomain.OrderStatusChangedEventType,
		orderdomain.OrderCancelledEventType,
	}
	projectionConsumers := make([]*kafka.Consumer, 0, len(projectionTopics))
	for _, topic := range projectionTopics {
		consumerCfg := cfg.MessageQueue.Kafka
		consumerCfg.Topic = topic
		if consumerCfg.GroupID == "" {
			consumerCfg.GroupID = "storefront-order-projection-group"
		}
		consumer := kafka.NewConsumer(&consumerCfg, logger, metricsImpl)
		consumer.Start(context.Background(), 3, projectionHandler.Handle)
		projectionConsumers = append(projectionConsumers, consumer)
	}

	// 9. 接口层
	rateLimiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimit.Rate))
	api := r.Group("/api")
	cataloghttp.NewCatalogHandler(catalogCmdSvc, catalogQuerySvc).RegisterRoutes(api)
	carthttp.NewCartHandler(cartCmdSvc, cartQuerySvc).RegisterRoutes(api)
	orderhttp.NewOrderHandler(orderCmdSvc, orderQuerySvc).RegisterRoutes(api)

	// 10. 启动
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
		server := &http.Server{Addr: addr, Handler: r}
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		for _, c := range projectionConsumers {
			_ = c.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
