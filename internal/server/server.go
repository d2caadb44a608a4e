package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boards/internal/config"
	"boards/internal/database"
	"boards/internal/handler"
	"boards/internal/logger"
	"boards/internal/middleware"
	"boards/internal/repository"
	"boards/internal/service"
	"boards/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL()); err != nil {
			return nil, err
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	images, err := storage.NewImageStorage(cfg.ImageDir, cfg.MaxImageSize)
	if err != nil {
		return nil, err
	}

	boardRepo := repository.NewBoardRepository(db)
	boardService := service.NewBoardService(boardRepo, images)

	engine, err := NewRouter(cfg, boardService, boardRepo)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: engine,
		DB:     db,
		Config: cfg,
	}, nil
}

// NewRouter builds the route table around already-constructed dependencies.
func NewRouter(cfg *config.Config, boards handler.BoardService, db handler.Pinger) (*gin.Engine, error) {
	if err := handler.RegisterValidations(); err != nil {
		return nil, fmt.Errorf("failed to register validations: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.RequestLogger())
	r.MaxMultipartMemory = 32 << 20

	boardHandler := handler.NewBoardHandler(boards, cfg.MaxImageSize)
	healthHandler := handler.NewHealthHandler(db)

	r.GET("/healthz", healthHandler.Live)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public routes
	v1 := r.Group("/v1")
	boardRoutes := v1.Group("/boards")
	{
		boardRoutes.POST("", boardHandler.Register)
		boardRoutes.GET("", boardHandler.Page)
		boardRoutes.GET("/search/:keyword", boardHandler.PageSearch)
		boardRoutes.GET("/:id", boardHandler.Read)
		boardRoutes.GET("/:id/image", boardHandler.Image)
	}

	// Protected routes - require authentication and authorship
	authorized := boardRoutes.Group("")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.PUT("/:id", boardHandler.Update)
		authorized.DELETE("/:id", boardHandler.Delete)
	}

	return r, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("failed to listen", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server forced to shutdown", "error", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("server exited properly")
}
