// Command token mints a bearer token for GET /api/contact, signed with the
// server's JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Development())

	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", cfg.TokenTTL, "token lifetime")
	flag.Parse()

	if cfg.JWTSecret == "fallback_secret" {
		fmt.Fprintln(os.Stderr, "warning: JWT_SECRET is not set; signing with the fallback secret")
	}
	token, err := auth.IssueToken([]byte(cfg.JWTSecret), *subject, *ttl)
	if err != nil {
		logging.Fatal("failed to issue token", "error", err)
	}
	fmt.Println(token)
}
