// Command weather-client asks a weather server for one measurement.
//
//	weather-client -s localhost -p 56700 -r "t bari"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zereker/weather"
	"github.com/Zereker/weather/internal/config"
	"github.com/Zereker/weather/internal/observability"
)

const appName = "weather-client"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run performs one query and returns the process exit code. Non-OK
// statuses from the server are normal outcomes and exit 0.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	defaults := config.DefaultClientConfig()

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stdout)
	server := fs.String("s", defaults.Server, "server name or IPv4 address")
	port := fs.Int("p", defaults.Port, "server UDP port")
	request := fs.String("r", "", `request in the form "<type> <city>", type one of t, h, w, p`)
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

	cfg, err := config.LoadClient(*cfgPath)
	if err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			cfg.Server = *server
		case "p":
			cfg.Port = *port
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}

	if *request == "" {
		fmt.Fprintln(stdout, "error: missing required flag -r")
		fs.Usage()
		return 1
	}
	req, err := weather.ParseRequest(*request)
	if err != nil {
		fmt.Fprintf(stdout, "error: %v: want \"<type> <city>\", got %q\n", err, *request)
		return 1
	}

	level, ok := observability.ParseLevel(cfg.LogLevel)
	zl := observability.InitLogger(appName, stdout, level)
	if !ok {
		zl.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
	}
	logger := observability.NewLogger(zl)

	client, err := weather.NewClient(ctx, cfg.Server, cfg.Port, weather.LoggerOption(logger))
	if err != nil {
		logger.Error("failed to create client", "server", cfg.Server, "error", err)
		return 1
	}
	defer client.Close()

	resp, err := client.Query(ctx, req)
	if err != nil {
		logger.Error("query failed", "server", client.Server(), "error", err)
		return 1
	}

	srv := client.Server()
	fmt.Fprintf(stdout, "Result from server %s (ip %s). %s\n", srv.Name, srv.IP(), weather.Render(req.City, resp))
	return 0
}
