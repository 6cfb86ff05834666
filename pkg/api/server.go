package api

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds server configuration, sourced from viper so deployments can
// override it with a config file or environment variables without a
// rebuild.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// LoadConfig applies viper defaults and reads whatever config source the
// caller has already configured (file, env, flags).
func LoadConfig() Config {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", 5*time.Second)
	viper.SetDefault("server.write_timeout", 5*time.Second)
	viper.SetDefault("server.cors_origins", []string{"*"})

	return Config{
		Addr:         viper.GetString("server.addr"),
		ReadTimeout:  viper.GetDuration("server.read_timeout"),
		WriteTimeout: viper.GetDuration("server.write_timeout"),
		CORSOrigins:  viper.GetStringSlice("server.cors_origins"),
	}
}

// Run builds the HTTP server from cfg and h, then blocks until ctx is
// canceled or SIGINT/SIGTERM arrives, at which point it shuts down
// gracefully.
func Run(ctx context.Context, cfg Config, h *Handlers, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(h, cfg.CORSOrigins, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
