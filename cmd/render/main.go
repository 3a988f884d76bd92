// Command render runs one pipeline pass against the configured API and
// writes the resulting page.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/config"
	"github.com/yourorg/hbnb-web/internal/dom"
	"github.com/yourorg/hbnb-web/internal/env"
	"github.com/yourorg/hbnb-web/internal/logger"
	"github.com/yourorg/hbnb-web/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	// stdout carries the page
	log, closeLog, err := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Writer: os.Stderr})
	if err != nil {
		log.Warn("logger setup", "error", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout := env.GetDuration("RENDER_TIMEOUT", 30*time.Second); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client := hbnb.NewClient(hbnb.Options{
		BaseURL:   cfg.APIURL,
		RetryMax:  cfg.APIRetryMax,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Logger:    log,
	})

	var out bytes.Buffer
	res, err := renderOnce(ctx, client, pipeline.ParseVariant(cfg.SearchVariant).WithLayout(cfg.Layout), env.GetBool("RENDER_PLACES_ONLY", false), log, &out)
	if err != nil {
		log.Error("render failed", "error", err)
		os.Exit(1)
	}
	if err := writeOutput(os.Getenv("RENDER_OUT"), out.Bytes()); err != nil {
		log.Error("write output", "error", err)
		os.Exit(1)
	}
	if res.State != pipeline.Rendered {
		log.Warn("pipeline did not reach rendered", "state", res.State.String(),
			"error", errors.Join(res.StatusErr, res.UsersErr, res.PlacesErr))
		os.Exit(2)
	}
}

func renderOnce(ctx context.Context, api pipeline.API, v pipeline.Variant, placesOnly bool, log *slog.Logger, w io.Writer) (pipeline.Result, error) {
	page, err := dom.DefaultPage()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("page: %w", err)
	}
	res, err := pipeline.New(pipeline.Deps{
		API:     api,
		Status:  page,
		Target:  page,
		Variant: v,
		Logger:  log,
	}).Run(ctx)
	if err != nil {
		return res, err
	}
	if placesOnly {
		return res, page.RenderPlaces(w)
	}
	return res, page.Render(w)
}

func writeOutput(path string, b []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
