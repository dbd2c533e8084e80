// Package loader turns upstream responses into display-ready models.
//
// Each public method is one load: it issues its primary request, fans out
// any secondary avatar lookups, joins them, and returns a State. Loaders
// never return errors; a failed primary request becomes Failed(reason)
// and a failed secondary lookup becomes an absent value.
//
// A Loader keeps no state between calls. Stale-result discard is the
// caller's job (see internal/route).
package loader

import (
	"context"
	"time"

	"github.com/DanielleFiene/redditmini/internal/logging"
	"github.com/DanielleFiene/redditmini/internal/otel"
	"github.com/DanielleFiene/redditmini/internal/reddit"
)

// ReasonNotFound is the Failed reason for a detail load with no item.
const ReasonNotFound = "Post not found"

// API is the subset of *reddit.Client the loaders use.
type API interface {
	Top(ctx context.Context, category string, limit int) ([]reddit.Post, error)
	Comments(ctx context.Context, category, itemID string) (*reddit.Thread, error)
	About(ctx context.Context, author string) (reddit.User, error)
	Popular(ctx context.Context, limit int) ([]reddit.Subreddit, error)
	Feed(ctx context.Context, rawURL string) ([]reddit.FeedEntry, error)
}

// Options tunes the loaders. Zero values take the defaults below.
type Options struct {
	PageSize             int      // feed page size, default 20
	DefaultCategory      string   // feed category when none given, default "all"
	DailySources         []string // default AskReddit, news, movies
	DailyLimit           int      // per daily source, default 5
	PopularLimit         int      // default 20
	DefaultCommunityIcon string   // popular icon fallback
	MaxAvatarLookups     int      // concurrent About calls per load, 0 = unbounded

	Events *otel.Logger // optional
}

// DefaultDailySources are the fixed daily-thread categories.
var DefaultDailySources = []string{"AskReddit", "news", "movies"}

// Loader runs loads against an API.
type Loader struct {
	api    API
	opts   Options
	events *otel.Logger
}

// New builds a Loader, filling unset options with defaults.
func New(api API, opts Options) *Loader {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = "all"
	}
	if len(opts.DailySources) == 0 {
		opts.DailySources = DefaultDailySources
	}
	if opts.DailyLimit <= 0 {
		opts.DailyLimit = 5
	}
	if opts.PopularLimit <= 0 {
		opts.PopularLimit = 20
	}
	if opts.DefaultCommunityIcon == "" {
		opts.DefaultCommunityIcon = "/default-avatar.png"
	}
	sources := make([]string, len(opts.DailySources))
	copy(sources, opts.DailySources)
	opts.DailySources = sources

	return &Loader{api: api, opts: opts, events: opts.Events}
}

// start records the beginning of a load.
func (l *Loader) start(ctx context.Context, label string) time.Time {
	l.events.Emit(otel.Event{
		Level:        otel.LevelDebug,
		Kind:         otel.KindLoadStart,
		Comp:         "loader",
		ActivationID: otel.ActivationID(ctx),
		Route:        label,
	})
	return time.Now()
}

// finish records the outcome of a load and hands the state back.
func finish[T any](l *Loader, ctx context.Context, label string, began time.Time, s State[T], count int) State[T] {
	ev := otel.Event{
		Comp:         "loader",
		ActivationID: otel.ActivationID(ctx),
		Route:        label,
		Dur:          time.Since(began),
	}
	if s.IsFailed() {
		ev.Level = otel.LevelWarn
		ev.Kind = otel.KindLoadFailed
		ev.Err = s.Reason()
		logging.Warn("load failed", "route", label, "reason", s.Reason())
	} else {
		ev.Level = otel.LevelInfo
		ev.Kind = otel.KindLoadReady
		ev.Count = count
		logging.Debug("load ready", "route", label, "count", count, "dur", ev.Dur)
	}
	l.events.Emit(ev)
	return s
}
