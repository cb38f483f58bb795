package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/owner_shop/internal/config"
	pkgdb "github.com/Skotchmaster/owner_shop/internal/db"
	"github.com/Skotchmaster/owner_shop/internal/es"
	"github.com/Skotchmaster/owner_shop/internal/httpserver"
	"github.com/Skotchmaster/owner_shop/internal/logging"
	authmw "github.com/Skotchmaster/owner_shop/internal/middleware/auth"
	"github.com/Skotchmaster/owner_shop/internal/mykafka"
	"github.com/Skotchmaster/owner_shop/internal/repo"
	"github.com/Skotchmaster/owner_shop/internal/service"
	"github.com/Skotchmaster/owner_shop/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("config_error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx := logging.IntoContext(context.Background(), logger)

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_connect_failed", "error", err)
		os.Exit(1)
	}
	if err := pkgdb.Migrate(ctx, db); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	tk, err := tokens.NewService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("token_service_failed", "error", err)
		os.Exit(1)
	}

	var events mykafka.Publisher = mykafka.Discard{}
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		events = prod
	} else {
		logger.Info("kafka_disabled")
	}

	r := repo.New(db)
	catalog := &service.CatalogService{Repo: r}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			// the mirror is optional, the store stays authoritative
			logger.Warn("es_unavailable", "error", err)
		} else {
			catalog.Index = es.NewIndexer(esClient, cfg.ESIndex)
		}
	}

	e := httpserver.New(logger)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: tk}, Events: events},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog, Events: events},
		Auth:           authmw.NewBearerAuth(tk),
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
