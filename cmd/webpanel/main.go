package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/csnsor/bs-webpanel/internal/banlog"
	"github.com/csnsor/bs-webpanel/internal/config"
	"github.com/csnsor/bs-webpanel/internal/dashboard"
	"github.com/csnsor/bs-webpanel/internal/enrich"
	"github.com/csnsor/bs-webpanel/internal/identity"
	"github.com/csnsor/bs-webpanel/internal/logger"
	"github.com/csnsor/bs-webpanel/internal/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set by the build system via -ldflags.
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "webpanel",
		Short: "Ban log dashboard for game moderation backends",
	}

	root.AddCommand(
		runCmd(),
		healthcheckCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runCmd is the main daemon command.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

func runDaemon() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := buildLogger(cfg)
	log.Info().Str("version", Version).Msg("bs-webpanel starting")

	source := banlog.NewClient(banlog.ClientConfig{
		BaseURL: cfg.BanAPIURL,
		APIKey:  cfg.BanAPIKey,
		Timeout: cfg.BanAPITimeout,
		Debug:   cfg.APIDebug,
	}, log)

	dir := identity.NewClient(identity.ClientConfig{
		IdentityBaseURL: cfg.IdentityAPIURL,
		AvatarBaseURL:   cfg.AvatarAPIURL,
		Timeout:         cfg.LookupTimeout,
		Debug:           cfg.APIDebug,
	}, log)

	resolver := profile.NewResolver(dir, profile.NewCache(), cfg.LookupTimeout, log)
	enricher := enrich.New(resolver, cfg.ResolveConcurrency, log)

	session := dashboard.NewSession(dashboard.SessionConfig{
		RefreshInterval: cfg.RefreshInterval,
		CountdownTick:   cfg.CountdownTick,
	}, source, enricher, log)

	srv := dashboard.NewServer(cfg, session, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx)
}

// healthcheckCmd exits 0 if the daemon's health endpoint answers.
func healthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check health endpoint and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			resp, err := http.Get("http://" + cfg.HealthAddr + "/healthz") //nolint:noctx
			if err != nil {
				fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
				os.Exit(1)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				fmt.Fprintf(os.Stderr, "healthcheck returned %d\n", resp.StatusCode)
				os.Exit(1)
			}
			fmt.Println("healthy")
			return nil
		},
	}
}

// versionCmd prints the version and exits.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bs-webpanel %s\n", Version)
		},
	}
}

// buildLogger constructs a zerolog.Logger based on config.
func buildLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if cfg.LogFormat == "text" {
		cw := zerolog.NewConsoleWriter()
		cw.Out = logger.NewRedactWriter(os.Stderr)
		base = zerolog.New(cw).Level(level).With().Timestamp().Logger()
	} else {
		redactWriter := logger.NewRedactWriter(os.Stderr)
		base = zerolog.New(redactWriter).Level(level).With().Timestamp().Logger()
	}
	return base
}
