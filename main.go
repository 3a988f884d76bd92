package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/hbnb-web/hbnb"
	httpapi "github.com/yourorg/hbnb-web/http"
	"github.com/yourorg/hbnb-web/internal/amenity"
	"github.com/yourorg/hbnb-web/internal/catalog"
	"github.com/yourorg/hbnb-web/internal/config"
	"github.com/yourorg/hbnb-web/internal/events"
	"github.com/yourorg/hbnb-web/internal/logger"
	"github.com/yourorg/hbnb-web/internal/pipeline"
	"github.com/yourorg/hbnb-web/internal/redisx"
	"github.com/yourorg/hbnb-web/internal/runlog"
	"github.com/yourorg/hbnb-web/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		FluentHost: cfg.Log.FluentHost,
		FluentPort: cfg.Log.FluentPort,
		Tag:        "hbnb-web",
	})
	if err != nil {
		log.Warn("fluent forwarding disabled", "error", err)
	}
	defer closeLog()
	slog.SetDefault(log)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := hbnb.NewClient(hbnb.Options{
		BaseURL:   cfg.APIURL,
		RetryMax:  cfg.APIRetryMax,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Logger:    log,
	})

	var (
		sessions amenity.Store = amenity.NewMemoryStore()
		shared   catalog.KV
	)
	if cfg.Redis.Enabled() {
		rc := redisx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(rootCtx, 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, keeping sessions in memory", "addr", cfg.Redis.Addr, "error", err)
			_ = rc.Close()
		} else {
			sessions = &amenity.RedisStore{Redis: rc, TTL: cfg.SessionTTL}
			shared = rc
			defer rc.Close()
		}
		cancel()
	}

	amenities := catalog.New(client, catalog.Options{
		StaleAfter: cfg.CatalogStaleAfter,
		KV:         shared,
		Logger:     log,
	})
	defer amenities.Close()

	pub := events.NewInMemory(256)
	consumer := &runlog.Consumer{Pub: pub, Logger: log.With("component", "runlog")}

	var runs httpapi.RunLister
	if cfg.PostgresDSN != "" {
		st, err := openStore(rootCtx, cfg.PostgresDSN)
		if err != nil {
			log.Warn("run ledger disabled", "error", err)
		} else {
			defer st.Close()
			consumer.Recorder = st
			runs = st
		}
	}
	go consumer.Run(rootCtx)

	router := BuildRouter(RouterDeps{
		API:             client,
		Amenities:       amenities,
		Sessions:        sessions,
		SessionTTL:      cfg.SessionTTL,
		Variant:         pipeline.ParseVariant(cfg.SearchVariant).WithLayout(cfg.Layout),
		Events:          pub,
		Runs:            runs,
		Logger:          log,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-rootCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info("hbnb-web listening", "addr", srv.Addr, "api", client.BaseURL(), "variant", cfg.SearchVariant)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, dsn string) (*store.Store, error) {
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
