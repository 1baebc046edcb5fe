// Command weather-server answers weather queries over UDP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/Zereker/weather"
	"github.com/Zereker/weather/internal/admin"
	"github.com/Zereker/weather/internal/config"
	"github.com/Zereker/weather/internal/observability"
)

const appName = "weather-server"

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run starts the server and blocks until ctx is canceled or the server
// fails. It returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stdout)
	port := fs.Int("p", config.DefaultPort, "UDP port to listen on")
	cfgPath := fs.String("c", "", "path to a TOML config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stdout, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 1
	}

	cfg, err := config.LoadServer(*cfgPath)
	if err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "p" {
			cfg.Port = *port
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}

	level, ok := observability.ParseLevel(cfg.LogLevel)
	zl := observability.InitLogger(appName, stdout, level)
	if !ok {
		zl.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
	}
	logger := observability.NewLogger(zl)

	shutdownTracer, err := observability.InitTracer(appName, version, cfg.ZipkinURL)
	if err != nil {
		logger.Error("init tracer failed", "error", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	server, err := weather.New(cfg.Network, net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		weather.ServerLoggerOption(logger),
		weather.ReverseLookupOption(cfg.ReverseLookup, cfg.LookupTimeout),
		weather.ReusePortOption(cfg.ReusePort),
		weather.ServerRecorderOption(metrics),
	)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return 1
	}
	defer server.Close()

	var adminLn net.Listener
	if cfg.AdminAddr != "" {
		adminLn, err = net.Listen("tcp", cfg.AdminAddr)
		if err != nil {
			logger.Error("failed to open admin listener", "addr", cfg.AdminAddr, "error", err)
			return 1
		}
	}

	logger.Info("server start", "addr", server.Addr(), "network", cfg.Network, "version", version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(gctx); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	if adminLn != nil {
		gin.SetMode(gin.ReleaseMode)
		router := admin.NewRouter(admin.Options{
			Logger:      zl,
			Gatherer:    reg,
			CORSOrigins: cfg.CORSOrigins,
		})
		logger.Info("admin start", "addr", adminLn.Addr())
		g.Go(func() error {
			return admin.Run(gctx, adminLn, router)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	logger.Info("shutting down server")
	return 0
}
