package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"novelpedia-backend/internal/config"
	infraCache "novelpedia-backend/internal/infrastructure/cache"
	"novelpedia-backend/internal/infrastructure/database"
	"novelpedia-backend/internal/infrastructure/email"
	"novelpedia-backend/internal/infrastructure/storage"
	"novelpedia-backend/pkg/cache"
	pkgdb "novelpedia-backend/pkg/database"
	"novelpedia-backend/pkg/jwt"

	"novelpedia-backend/internal/domains/user"
	userHandler "novelpedia-backend/internal/domains/user/handler"
	userRepo "novelpedia-backend/internal/domains/user/repository"
	userService "novelpedia-backend/internal/domains/user/service"

	"novelpedia-backend/internal/domains/federation"
	federationHandler "novelpedia-backend/internal/domains/federation/handler"
	federationProvider "novelpedia-backend/internal/domains/federation/provider"
	federationRepo "novelpedia-backend/internal/domains/federation/repository"
	federationService "novelpedia-backend/internal/domains/federation/service"

	catalogHandler "novelpedia-backend/internal/domains/catalog/handler"
	catalogModel "novelpedia-backend/internal/domains/catalog/model"
	catalogRepo "novelpedia-backend/internal/domains/catalog/repository"
	catalogService "novelpedia-backend/internal/domains/catalog/service"

	novelHandler "novelpedia-backend/internal/domains/novel/handler"
	novelRepo "novelpedia-backend/internal/domains/novel/repository"
	novelService "novelpedia-backend/internal/domains/novel/service"

	chapterHandler "novelpedia-backend/internal/domains/chapter/handler"
	chapterRepo "novelpedia-backend/internal/domains/chapter/repository"
	chapterService "novelpedia-backend/internal/domains/chapter/service"

	reviewHandler "novelpedia-backend/internal/domains/review/handler"
	reviewRepo "novelpedia-backend/internal/domains/review/repository"
	reviewService "novelpedia-backend/internal/domains/review/service"

	commentHandler "novelpedia-backend/internal/domains/comment/handler"
	commentRepo "novelpedia-backend/internal/domains/comment/repository"
	commentService "novelpedia-backend/internal/domains/comment/service"

	dashboardHandler "novelpedia-backend/internal/domains/dashboard/handler"
	dashboardRepo "novelpedia-backend/internal/domains/dashboard/repository"
	dashboardService "novelpedia-backend/internal/domains/dashboard/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Every field is built once
// at startup and shared for the life of the process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Tx         *pkgdb.TxManager
	Storage    *storage.MinIOStorage
	Images     *storage.ImageProcessor
	Messenger  *email.SMTPMessenger

	// ========================================
	// REPOSITORY LAYER
	// ========================================

	UserRepo      user.Repository
	LinkRepo      federation.LinkRepository
	CatalogRepo   catalogRepo.Repository
	NovelRepo     novelRepo.Repository
	ChapterRepo   chapterRepo.Repository
	ReviewRepo    reviewRepo.ReviewRepository
	CommentRepo   commentRepo.CommentRepository
	DashboardRepo dashboardRepo.DashboardRepository

	// ========================================
	// SERVICE LAYER
	// ========================================

	TokenIssuer       user.TokenIssuer
	UserService       user.Service
	FederationService federationService.ServiceInterface
	CatalogService    catalogService.ServiceInterface
	NovelService      novelService.ServiceInterface
	ChapterService    chapterService.ServiceInterface
	ReviewService     reviewService.ServiceInterface
	CommentService    commentService.ServiceInterface
	DashboardService  dashboardService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================

	UserHandler      *userHandler.UserHandler
	OAuthHandler     *federationHandler.OAuthHandler
	TagHandler       *catalogHandler.CatalogHandler
	GenreHandler     *catalogHandler.CatalogHandler
	NovelHandler     *novelHandler.Handler
	ChapterHandler   *chapterHandler.Handler
	ReviewHandler    *reviewHandler.ReviewHandler
	CommentHandler   *commentHandler.CommentHandler
	DashboardHandler *dashboardHandler.DashboardHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the whole graph in dependency order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	c.Tx = pkgdb.NewTxManager(db.Pool)
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	// Refresh tokens, reset tokens and OAuth state all live in Redis, so a
	// failed connection stops startup.
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache
	log.Println("✅ Redis connected")

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// ========================================
	// STEP 4: INITIALIZE STORAGE AND MAIL
	// ========================================
	log.Println("🪣 Connecting to MinIO...")

	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = store
	c.Images = storage.NewImageProcessor()
	c.Messenger = email.NewSMTPMessenger(cfg.Email, cfg.App.FrontendURL)
	log.Printf("✅ Storage ready (bucket: %s)", cfg.MinIO.Bucket)

	// ========================================
	// STEP 5: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.LinkRepo = federationRepo.NewPostgresLinkRepository(pool)
	c.CatalogRepo = catalogRepo.NewPostgresRepository(pool)
	c.NovelRepo = novelRepo.NewPostgresRepository(pool)
	c.ChapterRepo = chapterRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresReviewRepository(pool)
	c.CommentRepo = commentRepo.NewPostgresCommentRepository(pool)
	c.DashboardRepo = dashboardRepo.NewPostgresDashboardRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	// ----------------------------------------
	// IDENTITY
	// ----------------------------------------
	c.TokenIssuer = userService.NewTokenIssuer(c.JWTManager, c.Cache)
	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.TokenIssuer,
		c.Messenger,
		c.Cache,
		cfg.Email.ResetTTL,
	)

	// ----------------------------------------
	// FEDERATION
	// ----------------------------------------
	google := federationProvider.NewGoogle(federationProvider.GoogleConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		AuthURL:      cfg.OAuth.GoogleAuthURL,
		TokenURL:     cfg.OAuth.GoogleTokenURL,
		UserinfoURLs: cfg.OAuth.GoogleUserinfoURLs,
		Timeout:      cfg.OAuth.HTTPTimeout,
	})
	if !cfg.OAuth.GoogleConfigured() {
		log.Println("⚠️  Google OAuth credentials missing, social login disabled")
	}
	c.FederationService = federationService.NewFederationService(
		[]federation.Provider{google},
		c.UserRepo,
		c.UserService,
		c.LinkRepo,
		c.TokenIssuer,
		c.Cache,
		cfg.OAuth.StateTTL,
	)

	// ----------------------------------------
	// CONTENT
	// ----------------------------------------
	c.CatalogService = catalogService.NewCatalogService(c.CatalogRepo)
	c.NovelService = novelService.NewNovelService(
		c.NovelRepo,
		c.CatalogService, // tags and genres by name
		c.UserRepo,       // reader becomes author on first novel
		c.Tx,
		c.Storage,
		c.Images,
	)
	c.ChapterService = chapterService.NewChapterService(
		c.ChapterRepo,
		c.NovelRepo,
		c.Tx,
		c.Storage,
		c.Images,
	)

	// ----------------------------------------
	// FEEDBACK AND METRICS
	// ----------------------------------------
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.Tx)
	c.CommentService = commentService.NewCommentService(c.CommentRepo)
	c.DashboardService = dashboardService.NewDashboardService(c.DashboardRepo)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.OAuthHandler = federationHandler.NewOAuthHandler(c.FederationService, c.Config.App.FrontendURL)
	c.TagHandler = catalogHandler.NewCatalogHandler(c.CatalogService, catalogModel.KindTag)
	c.GenreHandler = catalogHandler.NewCatalogHandler(c.CatalogService, catalogModel.KindGenre)
	c.NovelHandler = novelHandler.NewHandler(c.NovelService)
	c.ChapterHandler = chapterHandler.NewHandler(c.ChapterService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.CommentHandler = commentHandler.NewCommentHandler(c.CommentService)
	c.DashboardHandler = dashboardHandler.NewDashboardHandler(c.DashboardService)
}

// ========================================
// HELPER METHODS
// ========================================

// Cleanup releases pooled connections during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
