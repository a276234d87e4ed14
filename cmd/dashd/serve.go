package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/groblegark/dashd/internal/automation"
	"github.com/groblegark/dashd/internal/config"
	"github.com/groblegark/dashd/internal/events"
	"github.com/groblegark/dashd/internal/export"
	"github.com/groblegark/dashd/internal/gitops"
	"github.com/groblegark/dashd/internal/server"
	"github.com/groblegark/dashd/internal/store"
	"github.com/groblegark/dashd/internal/store/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Select the history store.
		var st store.Store
		if cfg.DatabaseURL != "" {
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			st = pg
			logger.Info("postgres store enabled")
		} else {
			st = store.NewMemoryStore()
			logger.Info("in-memory store (DASHD_DATABASE_URL not set)")
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (DASHD_NATS_URL not set)")
		}

		// Load the automation registry, if configured.
		var automations []*automation.Automation
		if cfg.AutomationsFile != "" {
			automations, err = automation.LoadRegistry(cfg.AutomationsFile)
			if err != nil {
				publisher.Close()
				st.Close()
				return err
			}
			logger.Info("automations loaded", "file", cfg.AutomationsFile, "count", len(automations))
		}

		srv := server.New(server.Config{
			Gateway:       gitops.New(cfg.ProjectRoot),
			Store:         st,
			Publisher:     publisher,
			Automations:   automations,
			SweepInterval: cfg.SweepInterval,
		})

		ln, err := net.Listen("tcp", cfg.Addr)
		if err != nil {
			srv.Shutdown()
			publisher.Close()
			st.Close()
			return err
		}

		go func() {
			if err := srv.Serve(ln); err != nil {
				logger.Error("server error", "err", err)
			}
		}()

		// Start the export scheduler if any destinations are configured.
		var scheduler *export.Scheduler
		if cfg.ExportInterval > 0 {
			var dests []export.Destination

			if cfg.ExportS3Bucket != "" {
				s3Dest, err := export.NewS3Destination(
					context.Background(),
					cfg.ExportS3Bucket,
					cfg.ExportS3Key,
					cfg.ExportS3Region,
					cfg.ExportS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 export destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("export S3 destination enabled", "bucket", cfg.ExportS3Bucket, "key", cfg.ExportS3Key)
				}
			}

			if len(dests) > 0 {
				scheduler = export.NewScheduler(st, automations, dests, cfg.ExportInterval, logger)
				scheduler.Start()
				logger.Info("export scheduler started", "interval", cfg.ExportInterval)
			}
		}

		logger.Info("dashd started", "addr", cfg.Addr, "project_root", cfg.ProjectRoot)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("export scheduler stopped")
		}

		srv.Shutdown()
		logger.Info("server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
