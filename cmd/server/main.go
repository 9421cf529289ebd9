// Command server runs the logbook REST API. With DATABASE_URL configured it
// persists to self-hosted PostgreSQL; with SUPABASE_URL it persists to
// Supabase scoped to the signed-in user; otherwise it runs on the in-memory
// store with a fixed local identity.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/fieldside/strikerlog/internal/app"
	"github.com/fieldside/strikerlog/internal/app/httpapi"
	"github.com/fieldside/strikerlog/internal/app/storage"
	"github.com/fieldside/strikerlog/internal/app/storage/postgres"
	"github.com/fieldside/strikerlog/internal/app/storage/supabase"
	"github.com/fieldside/strikerlog/internal/auth"
	"github.com/fieldside/strikerlog/internal/config"
	"github.com/fieldside/strikerlog/internal/database"
	"github.com/fieldside/strikerlog/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to YAML config (optional)")
		envFile    = flag.String("env", ".env", "Path to .env file (optional)")
		skipSignIn = flag.Bool("no-signin", false, "Do not sign in on startup; wait for POST /session/signin")
	)
	flag.Parse()

	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	appCfg := app.Config{Log: log}
	switch {
	case cfg.Database.URL != "":
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(context.Background()); err != nil {
			log.Fatalf("ping database: %v", err)
		}
		appCfg.Stores = func(userID string) (storage.Store, error) {
			return postgres.New(db, userID)
		}
		log.Info("using postgres store")
	case cfg.Supabase.URL != "":
		client, err := database.NewClient(database.Config{
			URL:     cfg.Supabase.URL,
			AnonKey: cfg.Supabase.AnonKey,
		})
		if err != nil {
			log.Fatalf("supabase client: %v", err)
		}
		provider, err := auth.NewSupabase(client, auth.SupabaseConfig{
			AnonKey:      cfg.Supabase.AnonKey,
			RefreshToken: cfg.Supabase.RefreshToken,
		})
		if err != nil {
			log.Fatalf("supabase auth: %v", err)
		}
		appCfg.Auth = provider
		appCfg.Stores = func(userID string) (storage.Store, error) {
			return supabase.New(client, userID)
		}
		log.WithField("url", cfg.Supabase.URL).Info("using supabase store")
	default:
		log.Info("no store configured, using in-memory store")
	}

	application := app.New(appCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !*skipSignIn {
		repairs, err := application.SignIn(ctx)
		if err != nil {
			log.Fatalf("sign in: %v", err)
		}
		log.WithField("repairs", repairs).Info("signed in")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      httpapi.NewHandler(application),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown error: %v", err)
	}
	if application.SignedIn() {
		if err := application.SignOut(shutdownCtx); err != nil {
			log.Warnf("sign out error: %v", err)
		}
	}
	log.Info("stopped")
}
