package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"

	"github.com/angeloszaimis/add-cgi/config"
	"github.com/angeloszaimis/add-cgi/internal/cgihost"
	"github.com/angeloszaimis/add-cgi/internal/handler"
	"github.com/angeloszaimis/add-cgi/internal/httpserver"
	"github.com/angeloszaimis/add-cgi/internal/metrics"
	"github.com/angeloszaimis/add-cgi/pkg/logger"
)

const metricsBufferSize = 1000

func main() {
	serveMode := flag.Bool("serve", false, "run a development web server that hosts the script over CGI")
	scriptFlag := flag.String("script", "", "CGI executable to host in serve mode (defaults to this binary)")
	flag.Parse()

	if !*serveMode {
		cfg := loadCGIConfig(config.Load, os.Stderr)
		runCGI(cfg, os.Stdout, os.Stderr, os.Getenv("QUERY_STRING"))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Logging.Level, cfg.Logging.AddSource, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := serve(ctx, cfg, log, *scriptFlag); err != nil {
		log.Error("Serve mode failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

// runCGI answers a single CGI request. Stdout carries the response, so all
// diagnostics go to stderr. Validation failures are part of the response
// and never change the exit status.
func runCGI(cfg *config.Config, stdout, stderr io.Writer, rawQuery string) {
	log := logger.New(stderr, cfg.Logging.Level, cfg.Logging.AddSource, cfg.Server.Environment)

	if err := handler.New(log).Respond(stdout, rawQuery); err != nil {
		log.Error("Failed to write response", slog.String("err", err.Error()))
	}
}

// loadCGIConfig never fails: a request must still get its response when
// the configuration is broken, so errors are reported on stderr and the
// defaults are used instead.
func loadCGIConfig(load func() (*config.Config, error), stderr io.Writer) *config.Config {
	cfg, err := load()
	if err == nil {
		return cfg
	}

	cfg = config.Default()
	logger.New(stderr, cfg.Logging.Level, cfg.Logging.AddSource, cfg.Server.Environment).
		Error("Failed to load config, using defaults", slog.String("err", err.Error()))

	return cfg
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger, scriptFlag string) error {
	script, err := resolveScript(scriptFlag)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(metricsBufferSize, log)
	collector.Start(ctx)

	host := cgihost.New(log, cfg.CGI.ScriptPath,
		cgihost.NewScriptHandler(script, cfg.CGI.ScriptPath, config.InheritedEnv, log),
		collector)

	srv, err := httpserver.New(cfg.Server.Address, host, log)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	log.Info("Hosting CGI script",
		slog.String("path", cfg.CGI.ScriptPath),
		slog.String("executable", script))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			return errors.Wrap(err, "error during shutdown")
		}
	case err := <-srvErrCh:
		if err != nil {
			return errors.Wrap(err, "error starting server")
		}
	}

	return nil
}

func resolveScript(path string) (string, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", errors.Wrap(err, "failed to locate executable")
		}
		path = exe
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve script %q", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat script %q", abs)
	}

	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return "", errors.Errorf("script %q is not executable", abs)
	}

	return abs, nil
}
