// Command pocketfile runs the file-sharing HTTP server and its schema migrations.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/and161185/pocketfile/internal/config"
	"github.com/and161185/pocketfile/internal/limiter"
	"github.com/and161185/pocketfile/internal/migrate"
	"github.com/and161185/pocketfile/internal/qr"
	"github.com/and161185/pocketfile/internal/repository/postgres"
	httpserver "github.com/and161185/pocketfile/internal/server/http"
	"github.com/and161185/pocketfile/internal/service"
	"github.com/and161185/pocketfile/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownGrace = 5 * time.Second

var (
	cfgFile string
	v       = viper.New()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "pocketfile",
	Short:        "Self-hosted file sharing server",
	Version:      version,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := config.LoadDatabase(v, cfgFile)
		if err != nil {
			return err
		}
		if err := migrate.Up(cmd.Context(), db.DSN()); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print migration status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := config.LoadDatabase(v, cfgFile)
		if err != nil {
			return err
		}
		return migrate.Status(cmd.Context(), db.DSN())
	},
}

func init() {
	config.SetDefaults(v)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().Bool("debug", false, "development logging")
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	serveCmd.Flags().Int("port", 3001, "listen port")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runServe loads configuration, migrates the schema and serves HTTP until SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Type),
	)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := cfg.Database.DSN()
	db, err := postgres.Open(ctx, dsn, postgres.DefaultReadiness, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate.Up(ctx, dsn); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	projectRepo := postgres.NewProjectRepo(db)
	fileRepo := postgres.NewFileRepo(db)

	var lim limiter.Limiter = limiter.Nop{}
	if cfg.RateLimit {
		lim = limiter.NewPG(db.Pool, limiter.DefaultPolicy)
	}

	// Services
	svc := httpserver.Services{
		Auth:     service.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL, lim),
		Projects: service.NewProjectService(projectRepo),
		Files:    service.NewFileService(fileRepo, store, logger),
		Share:    service.NewShareService(fileRepo, qr.Default),
		Users:    service.NewUserService(userRepo),
	}

	app, err := httpserver.New(svc, db, logger, httpserver.Options{
		PublicBaseURL:  cfg.PublicBaseURL,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("building http server: %w", err)
	}

	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = hs.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			return err
		}
	}

	logger.Info("shutdown complete")
	return nil
}
