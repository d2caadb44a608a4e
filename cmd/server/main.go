package main

import (
	"os"

	_ "boards/docs"
	"boards/internal/config"
	"boards/internal/logger"
	"boards/internal/server"
)

// @title           Board API
// @version         1.0
// @description     Bulletin board posts with optional images. Only the author may modify or remove a post.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	s, err := server.Init(cfg)
	if err != nil {
		logger.Log.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	s.Run()
}
