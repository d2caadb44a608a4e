// Command devtoken mints a bearer token for local testing of the
// author-only board routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"boards/internal/auth"
	"boards/internal/config"
	"boards/internal/logger"
)

func main() {
	identity := flag.String("identity", "", "author identity placed in the sub claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_EXPIRY_HOURS)")
	flag.Parse()

	if *identity == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.JWTExpiry
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}

	token, err := auth.GenerateToken(*identity, cfg.JWTSecret, lifetime)
	if err != nil {
		logger.Log.Error("failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
