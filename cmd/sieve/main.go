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

	"github.com/asaidimu/go-sieve/api"
	"github.com/asaidimu/go-sieve/catalog"
	"github.com/asaidimu/go-sieve/config"
	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/metrics"
	"github.com/asaidimu/go-sieve/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "sieve",
	Short: "Serve a product catalog narrowed by whitelisted query filters",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample catalog into an empty database",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./sieve.yaml if present)")
	serveCmd.Flags().Bool("seed", false, "seed an empty database before serving")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and opens the product store.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *sqlite.Store, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cleanup := func() {
		db.Close()
		logger.Sync()
	}

	store, err := sqlite.NewStore(db, catalog.Schema(), logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	if err := store.CreateTable(ctx); err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	return cfg, logger, store, cleanup, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	_, logger, store, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := catalog.Seed(ctx, store, catalog.SampleProducts())
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	logger.Info("Seeded catalog", zap.Int64("inserted", n))
	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d products\n", n)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, store, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	seed, _ := cmd.Flags().GetBool("seed")
	if seed || cfg.Database.Seed {
		n, err := catalog.Seed(ctx, store, catalog.SampleProducts())
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		logger.Info("Seeded catalog", zap.Int64("inserted", n))
	}

	chain, err := filter.NewChain(catalog.QueryFilters(cfg.Filters.MaxLimit), logger)
	if err != nil {
		return err
	}
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	defer collector.Watch(chain)()

	gin.SetMode(cfg.Server.Mode)
	server, err := api.NewServer(chain, store, api.Options{
		Permitted: cfg.Filters.Permitted,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
