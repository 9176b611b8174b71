package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/quarrygql/quarry/internal/resolve"
	"github.com/quarrygql/quarry/internal/schema"
)

const version = "0.1.0"

var startedAt = time.Now()

// serviceSchema builds the schema served by the demo endpoint: static
// service metadata plus a nested process object.
func serviceSchema() (*resolve.Object, error) {
	return schema.NewObject().
		Leaf("version", constant(version)).
		Leaf("time", func(ctx context.Context) (any, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		}).
		Leaf("uptimeSeconds", func(ctx context.Context) (any, error) {
			return int64(time.Since(startedAt).Seconds()), nil
		}).
		Object("process", schema.NewObject().
			Leaf("pid", constant(os.Getpid())).
			Leaf("goVersion", constant(runtime.Version())).
			Leaf("numGoroutine", func(ctx context.Context) (any, error) {
				return runtime.NumGoroutine(), nil
			})).
		Build()
}

func constant(v any) resolve.Handler {
	return func(ctx context.Context) (any, error) { return v, nil }
}
