package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"bitbetty/internal/config"
	cronrunner "bitbetty/internal/cron"
	"bitbetty/internal/db"
	"bitbetty/internal/handler"
	"bitbetty/internal/logger"
	"bitbetty/internal/metrics"
	"bitbetty/internal/oracle"
	"bitbetty/internal/queue"
	gormrepository "bitbetty/internal/repository/gorm"
	"bitbetty/internal/service"

	_ "bitbetty/docs"
)

func main() {
	cfgPath := os.Getenv("BB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("BB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	fields := []zap.Field{zap.String("env", cfg.App.Env)}
	if cfg.App.Region != "" {
		fields = append(fields, zap.String("region", cfg.App.Region))
	}
	logger, err := logger.New(cfg.Log, fields...)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	store := gormrepository.New(dbConn.Gorm)

	q, closeQueue, err := queue.FromConfig(cfg.Queue, cfg.Redis)
	if err != nil {
		logger.Fatal("queue init failed", zap.Error(err))
	}
	defer closeQueue()

	priceOracle, err := oracle.FromConfig(cfg.Oracle, logger)
	if err != nil {
		logger.Fatal("oracle init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if stream, ok := priceOracle.(*oracle.BinanceStream); ok {
		go func() {
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("price stream stopped", zap.Error(err))
			}
		}()
	}

	submission := &service.SubmissionService{
		Repo:   store,
		Queue:  q,
		Logger: logger,
		Wait:   cfg.Resolution.Wait,
	}
	query := &service.QueryService{Repo: store, Logger: logger}
	worker := &service.ResolutionWorker{
		Repo:   store,
		Queue:  q,
		Oracle: priceOracle,
		Logger: logger,
		Wait:   cfg.Resolution.Wait,
		Floor:  cfg.Resolution.FloorInterval,
	}

	if cfg.Worker.Enabled {
		consumer := &service.QueueConsumer{
			Queue:        q,
			Worker:       worker,
			Logger:       logger,
			Concurrency:  cfg.Worker.Concurrency,
			BatchSize:    cfg.Worker.BatchSize,
			PollInterval: cfg.Worker.PollInterval,
			Visibility:   cfg.Queue.VisibilityTimeout,
		}
		go func() {
			logger.Info("resolution consumer starting",
				zap.String("queue", cfg.Queue.Backend),
				zap.Int("concurrency", cfg.Worker.Concurrency),
			)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("resolution consumer stopped", zap.Error(err))
			}
		}()
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Sweeper.Enabled {
		sweeper := &service.Sweeper{
			Repo:       store,
			Queue:      q,
			Logger:     logger,
			StaleAfter: cfg.Sweeper.StaleAfter,
			BatchSize:  cfg.Sweeper.BatchSize,
		}
		if _, err := cronRunner.Add("sweeper", cfg.Cron.Sweeper, cronrunner.SweepJob(sweeper)); err != nil {
			logger.Warn("cron register sweeper failed", zap.Error(err))
		}
	}
	if _, err := cronRunner.Add("queue_depth", cfg.Cron.QueueDepth, cronrunner.QueueDepthJob(q)); err != nil {
		logger.Warn("cron register queue depth failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	if !cfg.Server.Enabled {
		logger.Info("http server disabled, running worker only")
		<-ctx.Done()
		logger.Info("shutdown requested")
		return
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.CORS())
	engine.Use(metrics.Middleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Queue: q, Oracle: priceOracle}
	healthHandler.Register(engine)
	guessHandler := &handler.GuessHandler{
		Submission: submission,
		Query:      query,
		Limiter:    handler.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	}
	guessHandler.Register(engine)
	scoreHandler := &handler.ScoreHandler{Query: query}
	scoreHandler.Register(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
