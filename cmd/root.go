package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"datadeck/internal/config"
	"datadeck/internal/ingest"
	mcpserver "datadeck/internal/mcp"
	"datadeck/internal/service"
	"datadeck/internal/store"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "datadeck.hcl", "Path to HCL config file")
}

var rootCmd = &cobra.Command{
	Use:   "datadeck",
	Short: "MCP server exposing SQL query, schema, and tabular ingestion tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

// serve runs the stdio MCP server until interrupted.
func serve() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	engine := ingest.NewEngine(st)
	svc := service.NewIngestService(engine, service.LogEmitter{})

	watcher := service.NewWatcher(svc, cfg.Watches)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	srv := mcpserver.New(mcpserver.Deps{Store: st, Ingest: svc})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	case <-ctx.Done():
		log.Println("[MCP] Shutting down...")
	}

	// Let in-flight ingestions finish before closing the store.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer waitCancel()
	svc.WaitRunning(waitCtx)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return store.Open(ctx, store.Config{
		Driver:         cfg.Database.Driver,
		DSN:            cfg.Database.DSN,
		MaxOpenConns:   cfg.MaxOpenConns,
		ReadOnlyStrict: cfg.ReadOnlyStrict,
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
