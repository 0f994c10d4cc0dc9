// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mobility-service/internal/clients"
	"mobility-service/internal/config"
	"mobility-service/internal/db"
	partnerHandler "mobility-service/internal/handlers/partner"
	sessionHandler "mobility-service/internal/handlers/session"
	signupHandler "mobility-service/internal/handlers/signup"
	uploadHandler "mobility-service/internal/handlers/upload"
	vehicleHandler "mobility-service/internal/handlers/vehicle"
	viesHandler "mobility-service/internal/handlers/vies"
	wsHandler "mobility-service/internal/handlers/websocket"
	"mobility-service/internal/middleware"
	"mobility-service/internal/pkg/partnerauth"
	"mobility-service/internal/pkg/token"
	"mobility-service/internal/repository/postgres"
	documentService "mobility-service/internal/service/document"
	partnerService "mobility-service/internal/service/partner"
	sessionService "mobility-service/internal/service/session"
	signupService "mobility-service/internal/service/signup"
	uploadService "mobility-service/internal/service/upload"
	vehicleService "mobility-service/internal/service/vehicle"
	"mobility-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server

	pool        *pgxpool.Pool
	redisClient *redis.Client
	hubCancel   context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redisClient = redisClient

	// ----- Auth plumbing -----
	tokenManager := token.NewManager(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTTTL)
	tokenStore := partnerauth.NewStore(redisClient)
	rateLimiter := partnerauth.NewRateLimiter(redisClient)
	partnerAuth := middleware.NewPartnerAuthMiddleware(tokenManager, tokenStore)

	// ----- Repositories -----
	sessionRepo := postgres.NewSessionRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	signupRepo := postgres.NewSignupRepository(pool)
	partnerRepo := postgres.NewPartnerRepository(pool)
	uploadRepo := postgres.NewUploadRepository(pool)

	// ----- WebSocket hub -----
	hub := websocket.NewHub(logger)
	hubCtx, cancel := context.WithCancel(context.Background())
	s.hubCancel = cancel
	go hub.Run(hubCtx)

	// ----- Services -----
	sessions := sessionService.NewService(sessionRepo, hub, logger)
	documents := documentService.NewService(sessionRepo, s.cfg.PublicBaseURL, logger)
	vehicles := vehicleService.NewService(vehicleRepo, logger)
	signups := signupService.NewService(signupRepo, logger)
	partners := partnerService.NewService(partnerRepo, signupRepo, tokenManager, tokenStore, rateLimiter, logger)
	uploads := uploadService.NewService(uploadRepo, s.cfg.UploadDir, s.cfg.PublicBaseURL, logger)

	viesClient := clients.NewVIESClient(s.cfg.ViesBaseURL, s.cfg.ViesTimeout)

	// ----- Handlers -----
	h := &Handlers{
		Sessions:    sessionHandler.NewSessionHandler(sessions, documents, logger),
		Vehicles:    vehicleHandler.NewVehicleHandler(vehicles, logger),
		Signups:     signupHandler.NewSignupHandler(signups, logger),
		Partners:    partnerHandler.NewPartnerHandler(partners, sessions, documents, logger),
		Uploads:     uploadHandler.NewUploadHandler(uploads, logger),
		VIES:        viesHandler.NewVIESHandler(viesClient, logger),
		WS:          wsHandler.NewWebSocketHandler(hub, logger),
		PartnerAuth: partnerAuth,
	}

	// ----- Router -----
	s.engine.Use(middleware.RecoveryMiddleware(logger))
	s.engine.Use(middleware.LoggingMiddleware(logger))
	s.engine.Use(middleware.CORSMiddleware())
	SetupRouter(s.engine, s.cfg, h)

	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	logger.Info("server listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server and closes the storage clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error

	if s.http != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			firstErr = err
		}
	}
	if s.hubCancel != nil {
		s.hubCancel()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.logger != nil {
		s.logger.Sync()
	}

	return firstErr
}
