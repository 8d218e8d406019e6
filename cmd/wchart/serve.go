package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/cache"
	"github.com/alfredjeanlab/worldchart/internal/chart"
	"github.com/alfredjeanlab/worldchart/internal/config"
	"github.com/alfredjeanlab/worldchart/internal/events"
	"github.com/alfredjeanlab/worldchart/internal/live"
	"github.com/alfredjeanlab/worldchart/internal/selection"
	"github.com/alfredjeanlab/worldchart/internal/server"
	"github.com/alfredjeanlab/worldchart/internal/source"
	"github.com/alfredjeanlab/worldchart/internal/store"
	"github.com/alfredjeanlab/worldchart/internal/store/memory"
	"github.com/alfredjeanlab/worldchart/internal/store/postgres"
	chartsync "github.com/alfredjeanlab/worldchart/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the worldchart HTTP and gRPC server",
	GroupID: "system",
	// No client connection is needed to run the server.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		if cfg.SeedFile != "" {
			if err := seedStore(st, cfg.SeedFile, logger); err != nil {
				st.Close()
				return err
			}
		}

		// The hub feeds SSE clients and forwards every event to the bus.
		var bus *events.NATSBus
		var next events.Publisher = events.NoopPublisher{}
		if cfg.NATSURL != "" {
			bus, err = events.Connect(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			next = bus
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			logger.Info("events disabled (WCHART_NATS_URL not set)")
		}
		hub := server.NewHub(next)

		src := source.NewHTTPSource(cfg.UpstreamURL, cfg.UpstreamTimeout)
		seriesCache, err := cache.New(src, st, hub, logger)
		if err != nil {
			hub.Close()
			st.Close()
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		holder := live.NewHolder(src, st, hub, logger)
		if err := holder.Restore(ctx); err != nil {
			logger.Warn("live snapshot not restored", "err", err)
		}
		if cfg.LiveInterval > 0 {
			go holder.Run(ctx, cfg.LiveInterval)
			logger.Info("live polling started", "interval", cfg.LiveInterval)
		}
		if bus != nil {
			go func() {
				if err := holder.StartSubscriber(ctx, bus); err != nil {
					logger.Error("live subscriber error", "err", err)
				}
			}()
		}

		tracker := selection.New()
		tracker.StartReaper(selection.ReaperConfig{})

		chartServer := server.NewChartServer(server.Deps{
			Pipeline:  chart.NewPipeline(seriesCache),
			Live:      holder,
			Cache:     seriesCache,
			Selection: tracker,
			Hub:       hub,
			Language:  cfg.Lang,
			Logger:    logger,
		})
		grpcServer := server.NewGRPCServer(chartServer, cfg.AuthToken)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			tracker.Stop()
			seriesCache.Close()
			hub.Close()
			st.Close()
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           chartServer.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startScheduler(cfg, st, logger)

		logger.Info("worldchart server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
			"upstream", cfg.UpstreamURL,
			"lang", cfg.Lang,
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		cancel()
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}
		tracker.Stop()

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		seriesCache.Close()
		if err := hub.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory store (WCHART_DATABASE_URL not set)")
		return memory.New(), nil
	}
	st, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("using postgres store")
	return st, nil
}

func seedStore(st store.Store, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	n, err := chartsync.ImportJSONL(context.Background(), st, f)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	logger.Info("store seeded", "file", path, "records", n)
	return nil
}

// startScheduler returns nil when no export destination is configured.
func startScheduler(cfg *config.Config, st store.Store, logger *slog.Logger) *chartsync.Scheduler {
	if !cfg.SyncEnabled() {
		return nil
	}
	var dests []chartsync.Destination

	if cfg.SyncS3Bucket != "" {
		s3Dest, err := chartsync.NewS3Destination(
			context.Background(),
			cfg.SyncS3Bucket,
			cfg.SyncS3Key,
			cfg.SyncS3Region,
			cfg.SyncS3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
		}
	}
	if cfg.SyncGitRepo != "" {
		dests = append(dests, chartsync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch))
		logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
	}
	if len(dests) == 0 {
		return nil
	}

	scheduler := chartsync.NewScheduler(st, dests, cfg.SyncInterval, logger)
	scheduler.Start()
	logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
	return scheduler
}
