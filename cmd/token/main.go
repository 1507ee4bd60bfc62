// Command token issues a bearer token for the attractions API, signed
// with JWT_KEY. It stands in for the real token issuer during development.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tendant/simple-attractions/pkg/attractions/api"
	"github.com/tendant/simple-attractions/pkg/attractions/config"
)

func main() {
	var (
		subject string
		email   string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "sub", "", "subject (user id) of the token")
	flag.StringVar(&email, "email", "", "optional email claim")
	flag.DurationVar(&ttl, "ttl", time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "usage: token -sub <user id> [-email <email>] [-ttl 1h]")
		os.Exit(2)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	claims := map[string]interface{}{"sub": subject}
	if email != "" {
		claims["email"] = email
	}

	token, err := api.NewAuthGate(cfg.JWTSecret).IssueToken(claims, ttl)
	if err != nil {
		slog.Error("Failed to issue token", "err", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
