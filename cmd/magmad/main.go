// Command magmad serves the magma cipher over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jedisct1/go-magma/magmahttp"
	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	if err := magmadMain(os.Args[1:]); err != nil {
		var flagErr *flags.Error
		if !errors.As(err, &flagErr) || flagErr.Type != flags.ErrHelp {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// magmadMain is the real main function for magmad. It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is
// called.
func magmadMain(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		fmt.Println("magmad version", version)
		return nil
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		return nil
	}

	if cfg.MaxLogFiles > 0 {
		err := initLogRotator(
			filepath.Join(cfg.LogDir, defaultLogFilename),
			cfg.MaxLogFileSize, cfg.MaxLogFiles,
		)
		if err != nil {
			return err
		}
		defer closeLogRotator()
	}

	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	srvCfg := cfg.serverConfig()
	srvCfg.Registry = prometheus.NewRegistry()

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           magmahttp.New(srvCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		mgmdLog.Infof("HTTP API listening on %s (padding=%v, "+
			"truncatekeys=%v)", cfg.Listen, srvCfg.Padding,
			srvCfg.TruncateKeys)
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("unable to serve: %w", err)

	case <-ctx.Done():
	}

	mgmdLog.Infof("Received shutdown request, stopping HTTP API")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down cleanly: %w", err)
	}

	mgmdLog.Infof("Shutdown complete")

	return nil
}
