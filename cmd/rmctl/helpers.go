package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/DanielleFiene/redditmini/internal/app"
	"github.com/DanielleFiene/redditmini/internal/config"
	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/logging"
)

// commonFlags are shared by the loader subcommands.
type commonFlags struct {
	config  *string
	timeout *time.Duration
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:  fs.String("config", "", "Path to config.json"),
		timeout: fs.Duration("timeout", 30*time.Second, "Overall deadline for the load"),
	}
}

// loadConfig loads the config or fatals.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// openRuntime builds the runtime with diagnostics going to the shared event
// log, and logging to stderr at warn so stdout stays pure JSON.
func openRuntime(cf commonFlags) *app.Runtime {
	cfg := loadConfig(*cf.config)
	logging.InitWriter(os.Stderr, "warn")

	rt, err := app.New(cfg, app.Options{Comp: "rmctl"})
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	return rt
}

// runLoad runs one loader under the timeout and prints its state. The exit
// code is 1 when the state is Failed.
func runLoad[T any](cf commonFlags, load func(ctx context.Context, l *loader.Loader) loader.State[T]) int {
	rt := openRuntime(cf)
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *cf.timeout)
	defer cancel()

	s := load(ctx, rt.Loader)
	if err := printJSON(os.Stdout, s); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if s.IsFailed() {
		return 1
	}
	return 0
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
