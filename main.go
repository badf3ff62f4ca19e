package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"
	"github.com/thejerf/abtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Blog struct {
	cfg       *Config
	db        *gorm.DB
	templates map[string]*template.Template
	sessions  *sessions.CookieStore
	log       *zap.Logger
	clock     abtime.AbstractTime
	metrics   *metrics
}

func NewBlog(cfg *Config, db *gorm.DB, log *zap.Logger) (*Blog, error) {
	templates, err := loadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	store, err := newSessionStore(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Blog{
		cfg:       cfg,
		db:        db,
		templates: templates,
		sessions:  store,
		log:       log,
		clock:     abtime.NewRealTime(),
		metrics:   newMetrics(),
	}, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "blog",
		Short:        "A small server-rendered blog",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := initDB(db); err != nil {
				return err
			}
			log.Info("schema up to date", zap.String("driver", cfg.DBDriver))
			return nil
		},
	})

	return root
}

func setup(configPath string) (*Config, *zap.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

func serve(ctx context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := openDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := initDB(db); err != nil {
		return err
	}

	blog, err := NewBlog(cfg, db, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           blog.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
