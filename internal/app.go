package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cloudy/config"
	"cloudy/internal/application/indexing"
	"cloudy/internal/application/ports"
	"cloudy/internal/application/services"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/user"
	"cloudy/internal/infrastructure/cache"
	"cloudy/internal/infrastructure/db/postgres"
	fileDB "cloudy/internal/infrastructure/db/postgres/file"
	userDB "cloudy/internal/infrastructure/db/postgres/user"
	"cloudy/internal/infrastructure/embedding"
	"cloudy/internal/infrastructure/extract"
	"cloudy/internal/infrastructure/jwt"
	"cloudy/internal/infrastructure/llm"
	"cloudy/internal/infrastructure/memory"
	"cloudy/internal/infrastructure/metrics"
	"cloudy/internal/infrastructure/mq"
	"cloudy/internal/infrastructure/otp"
	"cloudy/internal/infrastructure/s3"
	vectormemory "cloudy/internal/infrastructure/vectorindex/memory"
	"cloudy/internal/infrastructure/vectorindex/qdrant"
	"cloudy/internal/interface/api/rest"
	"cloudy/internal/interface/api/rest/middleware"
	"cloudy/pkg/rmqconsumer"
)

type App struct {
	logger   *zap.Logger
	cfg      config.Config
	db       *pgxpool.Pool
	redis    *redis.Client
	httpSrv  *http.Server
	router   *gin.Engine
	mCounter *prometheus.CounterVec

	userRepository user.Repository
	fileRepository file.Repository
	objects        ports.ObjectStore
	views          ports.ViewInvalidator
	embedder       ports.Embedder
	index          ports.VectorIndex

	queue      *indexing.Queue
	scheduler  ports.IndexScheduler
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
}

func NewApp(ctx context.Context, logger *zap.Logger, cfg config.Config) (*App, error) {
	a := &App{
		logger:   logger,
		cfg:      cfg,
		mCounter: metrics.NewCounter(),
	}

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.App.CORSOrigins)))
	r.Use(middleware.RequestLogGin(logger, a.mCounter))
	a.router = r

	// httpServer
	a.httpSrv = &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := a.initStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initViews(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initIndexing(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// initStorage wires the metadata and object stores for the configured
// driver.
func (a *App) initStorage(ctx context.Context) error {
	switch a.cfg.App.StorageDriver {
	case config.StorageMemory:
		a.userRepository = memory.NewUserRepository()
		a.fileRepository = memory.NewFileRepository()
		a.objects = memory.NewObjectStore(a.cfg.S3.PublicURL)
		a.logger.Warn("using in-memory storage, data is lost on restart")
		return nil
	}

	// db
	dbDsn, err := a.cfg.DBDSN()
	if err != nil {
		return fmt.Errorf("DB config error: %w", err)
	}
	a.db, err = postgres.New(ctx, a.logger, dbDsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.userRepository = userDB.NewRepository(a.db)
	a.fileRepository = fileDB.NewRepository(a.db)

	// s3
	a.objects, err = s3.New(ctx, a.logger, a.cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to init S3: %w", err)
	}

	return nil
}

func (a *App) initViews(ctx context.Context) error {
	if a.cfg.Redis.URL == "" {
		a.views = memory.NewViews()
		return nil
	}

	rdb, err := cache.NewClient(ctx, a.cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redis = rdb
	a.views = cache.NewViews(rdb, a.cfg.Redis.KeyPrefix)
	return nil
}

// initIndexing builds the indexing pipeline and picks the transport jobs
// reach it through.
func (a *App) initIndexing(ctx context.Context) error {
	var summarizer ports.ContentSummarizer
	if a.cfg.AI.TextModel != "" {
		c, err := llm.New(llm.Config{
			BaseURL:     a.cfg.AI.BaseURL,
			APIKey:      a.cfg.AI.APIKey,
			TextModel:   a.cfg.AI.TextModel,
			VisionModel: a.cfg.AI.VisionModel,
			Timeout:     a.cfg.AI.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to init summarizer: %w", err)
		}
		summarizer = c
	} else {
		a.logger.Warn("AI_TEXT_MODEL not set, files are indexed by filename only")
	}

	if a.cfg.AI.EmbeddingModel != "" {
		baseURL, apiKey := a.cfg.AI.EmbeddingURL, a.cfg.AI.EmbeddingAPIKey
		if baseURL == "" {
			baseURL = a.cfg.AI.BaseURL
		}
		if apiKey == "" {
			apiKey = a.cfg.AI.APIKey
		}
		a.embedder = embedding.NewOpenAI(embedding.OpenAIConfig{
			BaseURL: baseURL,
			APIKey:  apiKey,
			Model:   a.cfg.AI.EmbeddingModel,
			Timeout: a.cfg.AI.Timeout,
		})
	} else {
		a.embedder = embedding.NewHashing(embedding.DefaultHashingDimension)
	}

	switch a.cfg.Vector.Driver {
	case config.VectorQdrant:
		a.index = qdrant.New(qdrant.Config{
			URL:        a.cfg.Vector.URL,
			APIKey:     a.cfg.Vector.APIKey,
			Collection: a.cfg.Vector.Collection,
			Timeout:    a.cfg.Vector.Timeout,
		})
	default:
		a.index = vectormemory.New()
	}

	pipeline := indexing.NewPipeline(
		a.logger,
		a.objects,
		extract.NewPDF(a.cfg.Limits.PDFMaxChars),
		summarizer,
		a.embedder,
		a.index,
		a.mCounter,
	)
	a.queue = indexing.NewQueue(a.logger, pipeline, a.cfg.Limits.IndexQueueSize, a.cfg.Limits.IndexWorkers)
	a.scheduler = a.queue

	if !a.cfg.MQ.Enabled {
		return nil
	}

	// rabbitMQ
	rabbitDsn, err := a.cfg.AMQPDSN()
	if err != nil {
		return fmt.Errorf("RabbitMQ config error: %w", err)
	}
	rbMQ := mq.New(a.cfg.MQ, a.logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect to rabbitMQ: %w", err)
	}
	a.mq = rbMQ
	if err = rbMQ.Init(); err != nil {
		return fmt.Errorf("failed init rabbitMQ: %w", err)
	}

	// rmqConsumer
	rmqConsumer := rmqconsumer.New(a.cfg.MQ, a.logger, rbMQ.GetConn(), indexing.RoutingKeys(), a.queue.HandleMessage)
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect rabbitMQ consumer: %w", err)
	}
	if err = rmqConsumer.Init(); err != nil {
		return fmt.Errorf("failed to init rabbitMQ consumer: %w", err)
	}
	a.mqConsumer = rmqConsumer
	a.scheduler = rbMQ

	return nil
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		_ = a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		return a.queue.Run(ctx)
	})

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})

		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	accountService := services.NewAccountService(a.logger, a.userRepository, otp.NewLogSender(a.logger), jwtService)
	fileService := services.NewFileService(
		a.logger,
		a.fileRepository,
		a.userRepository,
		a.objects,
		a.scheduler,
		a.views,
		a.mCounter,
		a.cfg.Limits.MaxFileSize,
	)
	searchService := services.NewSearchService(
		a.logger,
		fileService,
		a.embedder,
		a.index,
		a.mCounter,
		a.cfg.Vector.TopK,
		a.cfg.Vector.MinScore,
	)
	usageService := services.NewUsageService(fileService)

	authMW := middleware.AuthMiddleware(jwtService, accountService)

	// controllers
	rest.NewAuthController(a.router, a.logger, accountService, authMW)
	rest.NewFileController(a.router, fileService, a.views, a.logger, authMW)
	rest.NewSearchController(a.router, searchService, usageService, a.logger, authMW)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{rest.HeaderViewVersion},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
