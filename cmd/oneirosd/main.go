// Command oneirosd is the Oneiros daemon entrypoint: it loads
// configuration, opens the system database and the brain manager, and
// serves the HTTP surface spec §6 names as an external collaborator.
// Grounded on GoKitt's cmd/wasm/main.go as the teacher's one real entry
// point, rewritten from a WASM/JS bridge (the teacher targets a browser
// host) to a native long-running service, since Oneiros's component is
// a local daemon rather than a page-embedded worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oneiros/oneiros/internal/oneiros/brain"
	"github.com/oneiros/oneiros/internal/oneiros/config"
	"github.com/oneiros/oneiros/internal/oneiros/httpapi"
	"github.com/oneiros/oneiros/internal/oneiros/obs"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "oneirosd: load config:", err)
		os.Exit(1)
	}

	logger := obs.New(cfg.LogFormat())

	mgr, err := brain.NewManager(cfg.DataDir)
	if err != nil {
		logger.Error("open data directory", "error", err, "dataDir", cfg.DataDir)
		os.Exit(1)
	}
	defer mgr.Close()

	if _, _, err := mgr.System(); err != nil {
		logger.Error("open system database", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(mgr)
	srv := &http.Server{
		Addr:    cfg.ServiceAddr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("oneirosd listening", "addr", cfg.ServiceAddr(), "dataDir", cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("oneirosd shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
