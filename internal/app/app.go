package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/propview/realty-service/internal/adapter/messaging/nats"
	mongoadapter "github.com/propview/realty-service/internal/adapter/mongo"
	redisadapter "github.com/propview/realty-service/internal/adapter/redis"
	"github.com/propview/realty-service/internal/adapter/repository/cache"
	"github.com/propview/realty-service/internal/adapter/repository/mongodb"
	"github.com/propview/realty-service/internal/adapter/storage/gridfs"
	"github.com/propview/realty-service/internal/adapter/storage/s3"
	"github.com/propview/realty-service/internal/app/config"
	listingdomain "github.com/propview/realty-service/internal/listing/domain"
	listingusecase "github.com/propview/realty-service/internal/listing/usecase"
	"github.com/propview/realty-service/internal/mailer"
	"github.com/propview/realty-service/internal/platform/logger"
	httpport "github.com/propview/realty-service/internal/port/http"
	"github.com/propview/realty-service/internal/port/http/handler"
	userusecase "github.com/propview/realty-service/internal/user/usecase"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *httpport.Server
	mongoClient *mongo.Client
	redisClient *goredis.Client
	publisher   *natsadapter.Publisher
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP port: %s", cfg.Env, cfg.HTTPServer.Port)

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized")
	db := mongoClient.Database(cfg.MongoDB.Database)

	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized")

	publisher, err := natsadapter.NewPublisher(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
	}
	appLogger.Info("NATS publisher initialized")

	imageStore, err := newImageStore(cfg.Storage, db, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	appLogger.Infof("Image store initialized (backend=%s)", cfg.Storage.Backend)

	listingRepo := mongodb.NewListingRepository(db, appLogger)
	userRepo := mongodb.NewUserRepository(db, appLogger)
	listingCache := cache.NewListingCache(redisClient)
	otpStore := cache.NewOTPStore(redisClient)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	listingUC := listingusecase.NewListingUsecase(listingRepo, imageStore, listingCache, publisher, appLogger)
	userUC := userusecase.NewUserUsecase(
		userRepo, otpStore, smtpMailer, appLogger,
		cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.OTPTTL,
	)

	authHandler := handler.NewAuthHandler(userUC, appLogger)
	listingHandler := handler.NewListingHandler(listingUC, appLogger)
	mux := httpport.NewRouter(authHandler, listingHandler, cfg.Auth.JWTSecret, appLogger)
	server := httpport.NewServer(cfg.HTTPServer, mux, appLogger)

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		publisher:   publisher,
	}, nil
}

func newImageStore(cfg config.StorageConfig, db *mongo.Database, log logger.Logger) (listingdomain.ImageStore, error) {
	switch cfg.Backend {
	case "s3":
		return s3.NewStore(cfg, log)
	case "gridfs", "":
		return gridfs.NewStore(db, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func (a *App) Run() {
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	received := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down...", received)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	a.publisher.Close()

	if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
		a.log.Errorf("Error disconnecting from MongoDB: %v", err)
	}
	if err := a.redisClient.Close(); err != nil {
		a.log.Errorf("Error closing Redis client: %v", err)
	}

	a.log.Info("Application stopped")
}
