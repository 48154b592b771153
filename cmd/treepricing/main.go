package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wyfcoding/pkg/app"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/limiter"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/middleware"

	"github.com/wyfcoding/treepricing/internal/treepricing/application"
	"github.com/wyfcoding/treepricing/internal/treepricing/infrastructure"
	persistence "github.com/wyfcoding/treepricing/internal/treepricing/infrastructure/persistence"
	persistence_mysql "github.com/wyfcoding/treepricing/internal/treepricing/infrastructure/persistence/mysql"
	persistence_redis "github.com/wyfcoding/treepricing/internal/treepricing/infrastructure/persistence/redis"
	"github.com/wyfcoding/treepricing/internal/treepricing/interfaces"
	"github.com/wyfcoding/treepricing/internal/treepricing/interfaces/consumer"
)

// BootstrapName 服务唯一标识
const BootstrapName = "treepricing"

// Config 服务扩展配置
type Config struct {
	config.Config `mapstructure:",squash"`
	TreePricing   struct {
		QuoteTopic    string `mapstructure:"quote_topic" toml:"quote_topic"`
		DefaultSteps  int    `mapstructure:"default_steps" toml:"default_steps"`
		ConsumerGroup string `mapstructure:"consumer_group" toml:"consumer_group"`
	} `mapstructure:"treepricing" toml:"treepricing"`
}

// AppContext 应用上下文
type AppContext struct {
	Config       *Config
	CmdService   *application.PricingCommandService
	QueryService *application.PricingQueryService
	HTTPHandler  *interfaces.HTTPHandler
	Limiter      limiter.Limiter
	Metrics      *metrics.Metrics
}

func main() {
	if err := app.NewBuilder[*Config, *AppContext](BootstrapName).
		WithConfig(&Config{}).
		WithService(initService).
		WithGRPC(registerGRPC).
		WithGin(registerGin).
		WithGinMiddleware(
			middleware.CORS(),
			middleware.TimeoutMiddleware(30*time.Second),
		).
		Build().
		Run(); err != nil {
		slog.Error("service bootstrap failed", "error", err)
	}
}

func registerGRPC(s *grpc.Server, ctx *AppContext) {
	// 服务自身的 proto 面暂未定义，仅暴露标准健康检查与反射
	healthServer := health.NewServer()
	healthServer.SetServingStatus(BootstrapName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	reflection.Register(s)
}

func registerGin(e *gin.Engine, ctx *AppContext) {
	if ctx.Config.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	e.Use(middleware.RateLimitWithLimiter(ctx.Limiter))
	api := e.Group("/api/v1")
	{
		ctx.HTTPHandler.RegisterRoutes(api)
	}
	e.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   BootstrapName,
			"timestamp": time.Now().Unix(),
		})
	})
}

func initService(cfg *Config, m *metrics.Metrics) (*AppContext, func(), error) {
	bootLog := slog.With("module", "bootstrap")
	logger := logging.Default()

	// 1. 数据库
	dbWrapper, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init db: %w", err)
	}
	db := dbWrapper.RawDB()

	if err := db.AutoMigrate(&persistence_mysql.QuoteModel{}, &persistence_mysql.PricingResultModel{}, &outbox.Message{}); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	// 2. Redis
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}
	rateLimiter := limiter.NewRedisLimiter(redisCache.GetClient(), cfg.RateLimit.Rate, 0)

	// 3. 消息队列 & Outbox
	producer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, m)
	outboxMgr := outbox.NewManager(db, logger.Logger)
	outboxProc := outbox.NewProcessor(outboxMgr, func(ctx context.Context, topic, key string, payload []byte) error {
		return producer.PublishToTopic(ctx, topic, []byte(key), payload)
	}, 100, 5*time.Second)
	outboxProc.Start()

	// 4. 仓储
	mysqlRepo := persistence_mysql.NewPricingRepository(db)
	redisRepo := persistence_redis.NewPricingRedisRepository(redisCache.GetClient())
	repo := persistence.NewCompositePricingRepository(mysqlRepo, redisRepo)

	// 市场数据服务接入前使用模拟客户端兜底
	marketData := infrastructure.NewMockMarketDataClient()

	// 5. 服务
	publisher := outbox.NewPublisher(outboxMgr)
	cmdService := application.NewPricingCommandService(repo, marketData, publisher, logger.Logger)
	queryService := application.NewPricingQueryService(repo, marketData)

	// 6. 报价消费
	kafkaCfg := cfg.MessageQueue.Kafka
	kafkaCfg.GroupID = cfg.TreePricing.ConsumerGroup
	if kafkaCfg.GroupID == "" {
		kafkaCfg.GroupID = "treepricing-group"
	}
	kafkaCfg.Topic = cfg.TreePricing.QuoteTopic
	if kafkaCfg.Topic == "" {
		kafkaCfg.Topic = "market.price"
	}
	quoteConsumer := kafka.NewConsumer(&kafkaCfg, logger, m)
	priceHandler := consumer.NewMarketPriceHandler(cmdService)
	priceHandler.Subscribe(context.Background(), quoteConsumer)

	// 7. Handler
	httpHandler := interfaces.NewHTTPHandler(cmdService, queryService)

	cleanup := func() {
		bootLog.Info("shutting down...")
		outboxProc.Stop()
		if producer != nil {
			producer.Close()
		}
		redisCache.Close()
		if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
			sqlDB.Close()
		}
	}

	return &AppContext{
		Config:       cfg,
		CmdService:   cmdService,
		QueryService: queryService,
		HTTPHandler:  httpHandler,
		Limiter:      rateLimiter,
		Metrics:      m,
	}, cleanup, nil
}
