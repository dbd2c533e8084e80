// Package app assembles the redditmini runtime shared by the TUI and rmctl:
// diagnostics, the optional request journal, the upstream client and the
// loader, all driven by one Config.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DanielleFiene/redditmini/internal/config"
	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/logging"
	"github.com/DanielleFiene/redditmini/internal/otel"
	"github.com/DanielleFiene/redditmini/internal/reddit"
	"github.com/DanielleFiene/redditmini/internal/store"
)

// Options tunes what New sets up.
type Options struct {
	EventLog io.Writer // overrides the events file; nil uses EventLogPath()
	RingSize int       // 0 = no ring buffer
	Comp     string    // component stamped on lifecycle events, e.g. "main"
}

// Runtime owns every long-lived resource. Close releases them.
type Runtime struct {
	Config  *config.Config
	Events  *otel.Logger
	Ring    *otel.RingBuffer
	Journal *store.Store // nil unless journal.enabled
	Client  *reddit.Client
	Loader  *loader.Loader

	comp       string
	eventsFile *os.File
}

// EventLogPath returns the JSONL diagnostics file, ~/.redditmini/events.jsonl.
func EventLogPath() string {
	return filepath.Join(config.Dir(), "events.jsonl")
}

// New builds a Runtime from cfg. On error everything opened so far is closed.
func New(cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{Config: cfg, comp: opts.Comp}
	if rt.comp == "" {
		rt.comp = "main"
	}

	w := opts.EventLog
	if w == nil {
		path := EventLogPath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open event log: %w", err)
		}
		rt.eventsFile = f
		w = f
	}
	rt.Events = otel.NewLogger(w)
	if opts.RingSize > 0 {
		rt.Ring = otel.NewRingBuffer(opts.RingSize)
		rt.Events.SetRingBuffer(rt.Ring)
	}

	recorders := []reddit.Recorder{rt.Events}
	if cfg.Journal.Enabled {
		j, err := openJournal(cfg.Journal, rt.Events.SessionID())
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Journal = j
		recorders = append(recorders, j)
	}

	client, err := reddit.New(reddit.Options{
		BaseURL:     cfg.API.BaseURL,
		UserAgent:   cfg.API.UserAgent,
		Timeout:     cfg.API.Timeout.Std(),
		MaxPerHost:  cfg.API.MaxPerHost,
		MinInterval: cfg.API.MinInterval.Std(),
		Recorder:    reddit.Recorders(recorders...),
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Client = client

	rt.Loader = loader.New(client, loader.Options{
		PageSize:             cfg.Feed.PageSize,
		DefaultCategory:      cfg.Feed.DefaultCategory,
		DailySources:         cfg.Daily.Sources,
		DailyLimit:           cfg.Daily.Limit,
		PopularLimit:         cfg.Popular.Limit,
		DefaultCommunityIcon: cfg.Assets.DefaultCommunityIcon,
		MaxAvatarLookups:     cfg.API.MaxPerHost,
		Events:               rt.Events,
	})

	rt.Events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  rt.comp,
		URL:   client.BaseURL(),
		Extra: map[string]any{"journal": rt.Journal != nil},
	})
	return rt, nil
}

func openJournal(jc config.JournalConfig, sessionID string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(jc.Path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	j, err := store.Open(jc.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j.SetSession(sessionID)

	if keep := jc.Retention.Std(); keep > 0 {
		n, err := j.Prune(time.Now().Add(-keep))
		if err != nil {
			logging.Warn("journal prune failed", "err", err)
		} else if n > 0 {
			logging.Info("journal pruned", "removed", n, "retention", keep)
		}
	}
	return j, nil
}

// Close emits the shutdown event, then flushes and closes everything.
// Safe to call on a partially built Runtime.
func (rt *Runtime) Close() {
	if rt == nil {
		return
	}
	if rt.Events != nil {
		rt.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: rt.comp})
		rt.Events.Close()
	}
	if rt.Journal != nil {
		if err := rt.Journal.Close(); err != nil {
			logging.Warn("journal close failed", "err", err)
		}
	}
	if rt.eventsFile != nil {
		rt.eventsFile.Close()
	}
}
