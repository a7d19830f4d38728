package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ecoexchange/recycle/internal/api"
	"github.com/ecoexchange/recycle/internal/auth"
	"github.com/ecoexchange/recycle/internal/blob"
	"github.com/ecoexchange/recycle/internal/config"
	"github.com/ecoexchange/recycle/internal/db"
	"github.com/ecoexchange/recycle/internal/logging"
	"github.com/ecoexchange/recycle/internal/metrics"
	"github.com/ecoexchange/recycle/internal/mockstore"
	"github.com/ecoexchange/recycle/internal/model"
	"github.com/ecoexchange/recycle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("recycle", flag.ContinueOnError)

	fs.StringVar(&cfg.Database.DSN, "db", cfg.Database.DSN, "")
	fs.StringVar(&cfg.Database.DSN, "d", cfg.Database.DSN, "")

	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "")
	fs.StringVar(&cfg.Server.Addr, "a", cfg.Server.Addr, "")

	fs.StringVar(&cfg.App.AdminEmail, "email", cfg.App.AdminEmail, "")
	fs.StringVar(&cfg.App.AdminEmail, "e", cfg.App.AdminEmail, "")

	fs.StringVar(&cfg.App.LogFile, "log", cfg.App.LogFile, "")
	fs.StringVar(&cfg.App.LogFile, "l", cfg.App.LogFile, "")

	fs.BoolVar(&cfg.Mock.Standalone, "standalone", cfg.Mock.Standalone, "")
	fs.BoolVar(&cfg.Mock.Standalone, "s", cfg.Mock.Standalone, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: recycle [flags]

Flags:
  -d, -db <dsn>           database path or DSN (default: recycle.sqlite3, env DB_DSN)
  -a, -addr <host:port>   listen address (default: :5000, env HTTP_ADDR)
  -e, -email <address>    admin email on first run (default: admin@recycle.local)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -s, -standalone         serve listings from the mock store, no accounts
  -h, -help               show this help and exit

Other settings are read from the environment or a .env file.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// INFO/WARN go to stdout, ERROR to stderr, optionally also to a file.
	closeLog, err := logging.Setup(log.StandardLogger(), cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx := context.Background()

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer database.Close()

	dialect := db.DialectFor(cfg.Database.Driver)

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database, dialect); err != nil {
		log.WithError(err).Fatal("failed to ensure database schema")
	}
	log.WithField("driver", cfg.Database.Driver).Info("database ready")

	m := metrics.New(database, cfg.Database.Driver)

	var handler http.Handler
	if cfg.Mock.Standalone {
		handler, err = standaloneHandler(cfg, database, dialect, m)
	} else {
		handler, err = apiHandler(ctx, cfg, database, dialect, m)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to set up router")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		log.WithField("signal", sig.String()).Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server forced to shutdown")
		}
	}()

	log.WithFields(log.Fields{
		"addr":       cfg.Server.Addr,
		"env":        cfg.App.Env,
		"standalone": cfg.Mock.Standalone,
	}).Info("server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}

	log.Info("server stopped, closing database")
}

func apiHandler(ctx context.Context, cfg *config.Config, database *sql.DB, dialect db.Dialect, m *metrics.Metrics) (http.Handler, error) {
	if err := ensureAdmin(ctx, database, dialect, cfg.App.AdminEmail); err != nil {
		return nil, err
	}

	// JWT secret from the environment, else persisted in the database.
	jwtSecret := cfg.App.JWTSecret
	if jwtSecret == "" {
		var err error
		jwtSecret, err = store.NewSettingsRepository(database, dialect).GetJWTSecret(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	images, err := blob.Open(ctx, blob.Config{
		Driver: cfg.Blob.Driver,
		Dir:    cfg.Blob.Dir,
		S3: blob.S3Config{
			Bucket:          cfg.Blob.S3Bucket,
			Region:          cfg.Blob.S3Region,
			Endpoint:        cfg.Blob.S3Endpoint,
			AccessKeyID:     cfg.Blob.S3AccessKey,
			SecretAccessKey: cfg.Blob.S3SecretKey,
			PathStyle:       cfg.Blob.S3PathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening image store: %w", err)
	}
	log.WithField("driver", images.Driver()).Info("image store ready")

	return api.NewRouter(api.Options{
		DB:         database,
		Dialect:    dialect,
		JWTSecret:  jwtSecret,
		Debug:      !cfg.Production(),
		Images:     images,
		Metrics:    m,
		RateLimit:  cfg.RateLimit.Requests,
		RateWindow: cfg.RateLimit.Window,
	}), nil
}

// standaloneHandler serves listings from the mock store. The collection is
// kept as JSON files under MOCK_DIR when set, else in the settings table.
func standaloneHandler(cfg *config.Config, database *sql.DB, dialect db.Dialect, m *metrics.Metrics) (http.Handler, error) {
	var storage mockstore.Storage
	if cfg.Mock.Dir != "" {
		fileStorage, err := mockstore.NewFileStorage(cfg.Mock.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening mock storage: %w", err)
		}
		storage = fileStorage
	} else {
		storage = &mockstore.SettingsStorage{Settings: store.NewSettingsRepository(database, dialect)}
	}

	var opts []mockstore.Option
	if !cfg.Mock.Latency {
		opts = append(opts, mockstore.WithLatency(0, 0))
	}

	log.WithField("dir", cfg.Mock.Dir).Warn("standalone mode: listings served from the mock store without authentication")
	return api.NewStandaloneRouter(mockstore.New(storage, opts...), !cfg.Production(), m), nil
}

// ensureAdmin creates the first admin account when no users exist yet.
func ensureAdmin(ctx context.Context, database *sql.DB, dialect db.Dialect, email string) error {
	users := store.NewUserRepository(database, dialect)
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	email, err = model.NormalizeEmail(email)
	if err != nil {
		return fmt.Errorf("admin email: %w", err)
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := users.Create(ctx, email, "Administrator", hash, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	printInitResult(email, password)
	return nil
}

// printInitResult prints the admin credentials to stdout.
func printInitResult(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}
