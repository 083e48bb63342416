package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/mysql"
	pricinghttp "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/db"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/middleware"
	"github.com/wyfcoding/optionpricing/pkg/mq"
)

func main() {
	// 1. 加载配置
	configPath := os.Getenv("APP_CONFIG")
	if configPath == "" {
		configPath = "configs/pricing/config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "starting pricing service", "version", cfg.Version, "environment", cfg.Environment)

	// 3. 初始化数据库
	gormDB, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}
	defer gormDB.Close()

	// 自动迁移
	if err := gormDB.AutoMigrate(&mysql.PricingResultModel{}); err != nil {
		logger.Fatal(ctx, "failed to migrate database", "error", err)
	}

	// 4. 初始化 Redis（失败时降级为直接读库）
	var redisCache *cache.RedisCache
	redisCache, err = cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Warn(ctx, "redis unavailable, queries will bypass cache", "error", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// 5. 初始化 Kafka 事件发布（失败时不发布事件）
	var publisher *messaging.KafkaEventPublisher
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Warn(ctx, "kafka unavailable, events will not be published", "error", err)
	} else {
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
	}

	// 6. 指标
	m := metrics.New(cfg.ServiceName)
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = m.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 7. 组装应用服务
	repo := mysql.NewPricingRepository(gormDB.DB)
	// 接口变量保持真 nil，避免 typed-nil 判空失效
	var eventPublisher domain.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	service := application.NewPricingService(repo, eventPublisher, redisCache, cfg.Pricing, m)
	handler := pricinghttp.NewPricingHandler(service)

	// 8. HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.Logging(),
		middleware.Metrics(m),
		middleware.CORS(),
	)
	handler.RegisterRoutes(&router.RouterGroup)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	// 9. 等待中断信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	logger.Info(ctx, "server exited")
}
