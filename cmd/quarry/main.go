package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"

	"github.com/quarrygql/quarry/internal/engine"
	"github.com/quarrygql/quarry/internal/eventbus"
	"github.com/quarrygql/quarry/internal/metrics"
	"github.com/quarrygql/quarry/internal/otel"
	"github.com/quarrygql/quarry/internal/server"
)

const rootUsage = `quarry — schema-directed query engine

USAGE:
  quarry <command> [flags]

COMMANDS:
  serve            Run the HTTP query endpoint with the built-in service schema
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>          HTTP listen address (default: :8080)
  -server.pretty               Pretty-print JSON responses
  -server.timeout <duration>   Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>     Max request body size (default: 1048576)
  -limit.requests <n>          Per-IP request limit per window; 0 disables (default: 0)
  -limit.window <duration>     Rate-limit window (default: 1m)
  -cors.origin <origin>        Allowed CORS origin (default: *)
  -otel.endpoint <addr>        OTLP collector endpoint
  -otel.service <name>         OpenTelemetry service name (default: quarry)

Flag defaults may also be set through the environment (QUARRY_ADDR,
QUARRY_PRETTY, QUARRY_TIMEOUT, QUARRY_MAX_BODY, QUARRY_LIMIT_REQUESTS,
QUARRY_LIMIT_WINDOW, QUARRY_CORS_ORIGIN, QUARRY_OTEL_ENDPOINT,
QUARRY_OTEL_SERVICE), loaded from a .env file when present.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("quarry", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	switch cmd := remaining[0]; cmd {
	case "serve":
		return cmdServe(remaining[1:])
	case "help":
		return cmdHelp(remaining[1:])
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

// serveConfig carries the resolved serve settings; environment values act
// as flag defaults.
type serveConfig struct {
	addr          string
	pretty        bool
	timeout       time.Duration
	maxBody       int64
	limitRequests int
	limitWindow   time.Duration
	corsOrigin    string
	otelEndpoint  string
	otelService   string
}

func parseServeConfig(args []string) (serveConfig, error) {
	cfg := serveConfig{
		addr:          envString("QUARRY_ADDR", ":8080"),
		pretty:        cast.ToBool(os.Getenv("QUARRY_PRETTY")),
		timeout:       envDuration("QUARRY_TIMEOUT", 10*time.Second),
		maxBody:       envInt64("QUARRY_MAX_BODY", 1<<20),
		limitRequests: cast.ToInt(os.Getenv("QUARRY_LIMIT_REQUESTS")),
		limitWindow:   envDuration("QUARRY_LIMIT_WINDOW", time.Minute),
		corsOrigin:    envString("QUARRY_CORS_ORIGIN", "*"),
		otelEndpoint:  os.Getenv("QUARRY_OTEL_ENDPOINT"),
		otelService:   envString("QUARRY_OTEL_SERVICE", "quarry"),
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&cfg.addr, "server.addr", cfg.addr, "HTTP listen address")
	fs.BoolVar(&cfg.pretty, "server.pretty", cfg.pretty, "Pretty-print JSON responses")
	fs.DurationVar(&cfg.timeout, "server.timeout", cfg.timeout, "Per-request timeout")
	fs.Int64Var(&cfg.maxBody, "server.max-body", cfg.maxBody, "Max request body size")
	fs.IntVar(&cfg.limitRequests, "limit.requests", cfg.limitRequests, "Per-IP request limit per window")
	fs.DurationVar(&cfg.limitWindow, "limit.window", cfg.limitWindow, "Rate-limit window")
	fs.StringVar(&cfg.corsOrigin, "cors.origin", cfg.corsOrigin, "Allowed CORS origin")
	fs.StringVar(&cfg.otelEndpoint, "otel.endpoint", cfg.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&cfg.otelService, "otel.service", cfg.otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return cfg, err
	}
	return cfg, nil
}

func cmdServe(args []string) error {
	_ = godotenv.Load()

	cfg, err := parseServeConfig(args)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.otelEndpoint, cfg.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	root, err := serviceSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	sopts := []server.Option{server.WithTimeout(cfg.timeout), server.WithMaxBodyBytes(cfg.maxBody)}
	if cfg.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	h := server.New(engine.New(root), sopts...)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.corsOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	if cfg.limitRequests > 0 {
		r.Use(httprate.LimitByIP(cfg.limitRequests, cfg.limitWindow))
	}
	r.Handle("/graphql", h)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Printf("listening on %s", cfg.addr)
	return http.ListenAndServe(cfg.addr, r)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		return cast.ToDuration(v)
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		return cast.ToInt64(v)
	}
	return def
}
