// Command token issues a client token for the recommendation API when
// auth.enabled is set. The signing secret comes from the server config.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/temcen/smartdiet/internal/config"
	"github.com/temcen/smartdiet/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(cfg.Auth, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(auth config.AuthConfig, args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flags.SetOutput(out)
	clientID := flags.String("client", "", "client id placed in the token")
	scope := flags.String("scope", "recommendations", "scope granted to the client")
	ttl := flags.Duration("ttl", 0, "token lifetime, defaults to auth.token_ttl")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *clientID == "" {
		return errors.New("--client is required")
	}
	if auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}
	if *ttl > 0 {
		auth.TokenTTL = *ttl
	}
	if auth.TokenTTL <= 0 {
		auth.TokenTTL = 24 * time.Hour
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	token, err := services.NewAuthService(&auth, logger).GenerateToken(*clientID, *scope)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
