package loader

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DanielleFiene/redditmini/internal/clean"
	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/reddit"
)

// Daily loads the top few items of every daily source concurrently and
// concatenates them in declared source order. One failing source fails the
// whole batch; there is no partial list.
func (l *Loader) Daily(ctx context.Context) State[[]model.Item] {
	const label = "daily"
	began := l.start(ctx, label)

	lists := make([][]model.Item, len(l.opts.DailySources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range l.opts.DailySources {
		g.Go(func() error {
			items, err := l.dailySource(gctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			lists[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return finish(l, ctx, label, began, Failed[[]model.Item](fmt.Sprintf("Error fetching daily threads: %v", err)), 0)
	}

	var all []model.Item
	for _, items := range lists {
		all = append(all, items...)
	}
	if all == nil {
		all = []model.Item{}
	}
	return finish(l, ctx, label, began, Ready(all), len(all))
}

// dailySource loads one source: an RSS/Atom URL or a category name.
func (l *Loader) dailySource(ctx context.Context, src string) ([]model.Item, error) {
	if strings.HasPrefix(src, "http") {
		entries, err := l.api.Feed(ctx, src)
		if err != nil {
			return nil, err
		}
		if len(entries) > l.opts.DailyLimit {
			entries = entries[:l.opts.DailyLimit]
		}
		items := make([]model.Item, len(entries))
		for i, e := range entries {
			items[i] = itemFromEntry(e)
		}
		return items, nil
	}

	posts, err := l.api.Top(ctx, src, l.opts.DailyLimit)
	if err != nil {
		return nil, err
	}
	if len(posts) > l.opts.DailyLimit {
		posts = posts[:l.opts.DailyLimit]
	}
	items := make([]model.Item, len(posts))
	for i, p := range posts {
		items[i] = itemFromPost(p, src)
	}
	return items, nil
}

func itemFromEntry(e reddit.FeedEntry) model.Item {
	it := model.Item{
		ID:      e.ID,
		Title:   e.Title,
		Author:  e.Author,
		Created: e.Published,
		URL:     e.Link,
		Source:  e.FeedTitle,
	}
	if img := clean.UnescapeAmpersand(e.ImageURL); clean.IsDisplayableImageURL(img) {
		it.MediaURL = img
	}
	return it
}

// Popular loads the popular communities. Icons come from the same response;
// there is no secondary fetch.
func (l *Loader) Popular(ctx context.Context) State[[]model.Community] {
	const label = "popular"
	began := l.start(ctx, label)

	subs, err := l.api.Popular(ctx, l.opts.PopularLimit)
	if err != nil {
		return finish(l, ctx, label, began, Failed[[]model.Community](fmt.Sprintf("Error fetching popular communities: %v", err)), 0)
	}

	out := make([]model.Community, len(subs))
	for i, s := range subs {
		out[i] = model.Community{
			ID:           s.ID,
			Name:         s.DisplayName,
			PrefixedName: prefixedName(s),
			Title:        s.Title,
			IconURL:      iconFor(s, l.opts.DefaultCommunityIcon),
			Subscribers:  s.Subscribers,
		}
	}
	return finish(l, ctx, label, began, Ready(out), len(out))
}

// prefixedName is display_name_prefixed, or "r/" + display_name when the
// response omits it.
func prefixedName(s reddit.Subreddit) string {
	if s.DisplayNamePrefixed != "" {
		return s.DisplayNamePrefixed
	}
	if s.DisplayName == "" {
		return ""
	}
	return "r/" + s.DisplayName
}

// iconFor prefers icon_img, then community_icon if the whole value looks
// absolute (stripped of its query string afterwards), then fallback.
func iconFor(s reddit.Subreddit, fallback string) string {
	if icon := clean.UnescapeAmpersand(s.IconImg); icon != "" {
		return icon
	}
	if ci := clean.UnescapeAmpersand(s.CommunityIcon); clean.IsAbsolute(ci) {
		return clean.StripQuery(ci)
	}
	return fallback
}
