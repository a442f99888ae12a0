package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/config"
	"bookshelf-backend/internal/infrastructure/database"
	infraKV "bookshelf-backend/internal/infrastructure/kv"
	"bookshelf-backend/internal/infrastructure/storage"
	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/pkg/jwt"
	"bookshelf-backend/pkg/kv"

	authorHandler "bookshelf-backend/internal/domains/author/handler"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	authorService "bookshelf-backend/internal/domains/author/service"
	bookHandler "bookshelf-backend/internal/domains/book/handler"
	bookRepo "bookshelf-backend/internal/domains/book/repository"
	bookService "bookshelf-backend/internal/domains/book/service"
	historyHandler "bookshelf-backend/internal/domains/readinghistory/handler"
	historyRepo "bookshelf-backend/internal/domains/readinghistory/repository"
	historyService "bookshelf-backend/internal/domains/readinghistory/service"
	reviewHandler "bookshelf-backend/internal/domains/review/handler"
	reviewRepo "bookshelf-backend/internal/domains/review/repository"
	reviewService "bookshelf-backend/internal/domains/review/service"
	userHandler "bookshelf-backend/internal/domains/user/handler"
	userRepo "bookshelf-backend/internal/domains/user/repository"
	userService "bookshelf-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// singleton for the lifetime of the process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config     *config.Config
	DB         *database.PostgresDB
	KV         kv.Store // token denylist
	Storage    storage.ObjectStore
	Images     *storage.ImageProcessor
	JWTManager *jwt.Manager
	Gate       authz.Gate

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	UserService           userService.ServiceInterface
	AuthorService         authorService.ServiceInterface
	BookService           bookService.ServiceInterface
	ReviewService         reviewService.ServiceInterface
	ReadingHistoryService historyService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	UserHandler           *userHandler.Handler
	AuthorHandler         *authorHandler.Handler
	BookHandler           *bookHandler.Handler
	ReviewHandler         *reviewHandler.Handler
	ReadingHistoryHandler *historyHandler.Handler

	closers []func()
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the whole graph in dependency order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Info().Msg("initializing container")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("config loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ========================================
	// STEP 2: INITIALIZE INFRASTRUCTURE
	// ========================================
	if err := c.initDatabase(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initKV(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initStorage(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	c.Gate = authz.NewRoleGate()

	// ========================================
	// STEP 3: DOMAINS
	// ========================================
	c.initDomains()

	log.Info().Msg("container ready")
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, db); err != nil {
		log.Warn().Err(err).Msg("pool metrics not registered")
	}
	return nil
}

// initKV connects Redis. Outside production an unreachable Redis falls
// back to an in-process store, so logout only lasts until restart.
func (c *Container) initKV(ctx context.Context) error {
	rdb := infraKV.NewRedisStore(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rdb.Connect(ctx); err != nil {
		_ = rdb.Close()
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Warn().Err(err).Msg("redis unavailable, using in-memory token denylist")
		c.KV = kv.NewMemoryStore()
		return nil
	}

	c.KV = rdb
	c.closers = append(c.closers, func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	})
	return nil
}

func (c *Container) initStorage(ctx context.Context) error {
	minioStore, err := storage.NewMinIOStorage(ctx, c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	b := c.Config.Breaker
	c.Storage = storage.NewBreakerStore(minioStore, storage.BreakerSettings{
		Name:         "minio",
		FailureRatio: b.FailureRatio,
		MinRequests:  b.MinRequests,
		Timeout:      b.Timeout,
		Interval:     b.Interval,
	})
	c.Images = storage.NewImageProcessor(c.Config.Upload.MaxImageBytes, c.Config.Upload.MaxImageWidth, c.Config.Upload.MaxImagePixels)

	log.Info().Str("endpoint", c.Config.MinIO.Endpoint).Str("bucket", c.Config.MinIO.Bucket).Msg("object storage ready")
	return nil
}

// initDomains wires repositories -> services -> handlers.
func (c *Container) initDomains() {
	pool := c.DB.Pool

	c.UserService = userService.NewService(userRepo.NewPostgresRepository(pool), c.JWTManager, c.KV, c.Config.JWT.BcryptCost)
	c.AuthorService = authorService.NewService(authorRepo.NewPostgresRepository(pool))
	c.BookService = bookService.NewService(
		pool,
		bookRepo.NewPostgresRepository(pool),
		c.UserService,
		c.Storage,
		c.Images,
		c.Config.Upload.MaxDocumentBytes,
	)
	c.ReviewService = reviewService.NewService(reviewRepo.NewPostgresRepository(pool))
	c.ReadingHistoryService = historyService.NewService(historyRepo.NewPostgresRepository(pool))

	c.UserHandler = userHandler.NewHandler(c.UserService)
	c.AuthorHandler = authorHandler.NewHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewHandler(c.BookService, bookHandler.UploadLimits{
		MaxImageBytes:    c.Config.Upload.MaxImageBytes,
		MaxDocumentBytes: c.Config.Upload.MaxDocumentBytes,
	})
	c.ReviewHandler = reviewHandler.NewHandler(c.ReviewService)
	c.ReadingHistoryHandler = historyHandler.NewHandler(c.ReadingHistoryService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases infrastructure in reverse order of creation.
func (c *Container) Cleanup() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	log.Info().Msg("container cleaned up")
}
