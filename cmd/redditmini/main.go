// Command redditmini is a read-only terminal reader for reddit: a category
// feed, item details with replies, daily threads and popular communities.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanielleFiene/redditmini/internal/app"
	"github.com/DanielleFiene/redditmini/internal/config"
	"github.com/DanielleFiene/redditmini/internal/logging"
	"github.com/DanielleFiene/redditmini/internal/otel"
	"github.com/DanielleFiene/redditmini/internal/route"
	"github.com/DanielleFiene/redditmini/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json (default ~/.redditmini/config.json)")
	start := flag.String("route", "", "Starting route, e.g. golang or /r/golang/comments/abc123")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	// Initialize logging (file only: the TUI owns the terminal)
	if err := logging.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	first, err := route.Parse(*start)
	if err != nil {
		fatal("Invalid -route: %v", err)
	}

	rt, err := app.New(cfg, app.Options{RingSize: otel.DefaultRingSize})
	if err != nil {
		fatal("Failed to start: %v", err)
	}
	defer rt.Close()
	logging.Info("redditmini starting", "base_url", rt.Client.BaseURL(), "session", rt.Events.SessionID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := ui.NewApp(ui.AppConfig{
		Commands:      ui.LoaderCommands(rt.Loader),
		Events:        rt.Events,
		Ring:          rt.Ring,
		Parent:        ctx,
		Start:         first,
		Categories:    cfg.Sidebar.Categories,
		DefaultAvatar: cfg.Assets.DefaultAvatar,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		rt.Events.Error(otel.KindError, "main", err)
		fatal("Error: %v", err)
	}

	logging.Info("redditmini exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
