// Command blog serves the JSON API and, when enabled, watches the content
// directory to announce new posts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	blog "github.com/darshanbajgain/darshan-blog-temp"
	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	watch := flag.Bool("watch", false, "watch the content directory and announce new posts")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *watch); err != nil {
		fmt.Fprintln(os.Stderr, "blog:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, watch bool) error {
	cfg, err := blog.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if watch {
		cfg.Watcher.Enabled = true
	}

	module, err := blog.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "blog.server")

	mux := http.NewServeMux()
	if err := module.API().Register(mux); err != nil {
		return err
	}
	if cfg.HTTP.Metrics {
		mux.Handle("GET /metrics", module.Metrics().Handler())
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server.started", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server.stopping")
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Watcher.Enabled {
		w, err := module.Watcher()
		if err != nil {
			return err
		}
		group.Go(func() error {
			logger.Info("watcher.started", "dir", cfg.Content.Dir)
			return w.Run(ctx)
		})
	}

	return group.Wait()
}
