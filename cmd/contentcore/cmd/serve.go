package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/contentcore/internal/app"
	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/mcp"
	"github.com/deusflow/contentcore/internal/metrics"
	"github.com/deusflow/contentcore/internal/rss"
)

var (
	serveInterval   time.Duration
	serveCategories []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh topics periodically and expose /health and /metrics",
	Long: `Fetch every category on a fixed interval, keeping the feed cache warm and
the pipeline counters current, and serve them over HTTP:

  GET /health   ok, or 503 when the last run served fallback topics
  GET /metrics  pipeline counters and LLM budget usage as JSON`,
	RunE: runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the operations as MCP tools over stdio",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)

	serveCmd.Flags().DurationVar(&serveInterval, "interval", time.Hour, "time between topic refreshes")
	serveCmd.Flags().StringSliceVar(&serveCategories, "categories", rss.Categories, "categories to refresh")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Init(cfg.Debug)

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Monitoring.Port,
		Handler:           monitoringMux(svc.Stats),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting monitoring server", "port", cfg.Monitoring.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitoring server error", "error", err)
			stop()
		}
	}()

	refresh(ctx, svc)
	ticker := time.NewTicker(serveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		case <-ticker.C:
			refresh(ctx, svc)
		}
	}
}

func refresh(ctx context.Context, svc *app.Service) {
	for _, c := range serveCategories {
		if ctx.Err() != nil {
			return
		}
		res := svc.FetchTopics(ctx, c, cfg.Feeds.EntriesPerEndpoint)
		logger.Info("topics refreshed", "category", c, "run_id", res.RunID,
			"articles", len(res.Articles), "fallback", res.IsFallback, "failures", len(res.Failures))
	}
}

func monitoringMux(stats func() map[string]interface{}) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler(stats))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(stats func() map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats())
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	logger.Info("starting mcp server", "name", cfg.MCP.Name, "version", cfg.MCP.Version)
	return mcp.NewServer(mcp.Config{Name: cfg.MCP.Name, Version: cfg.MCP.Version}, svc).ServeStdio()
}
