package loader

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DanielleFiene/redditmini/internal/clean"
	"github.com/DanielleFiene/redditmini/internal/logging"
	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/otel"
	"github.com/DanielleFiene/redditmini/internal/reddit"
)

// pickAvatar applies the two-candidate policy: the cleaned snoovatar if it
// is a displayable image, else the cleaned icon if it is, else absent.
func pickAvatar(u reddit.User) string {
	if primary := clean.UnescapeAmpersand(u.SnoovatarImg); clean.IsDisplayableImageURL(primary) {
		return primary
	}
	if secondary := clean.UnescapeAmpersand(u.IconImg); clean.IsDisplayableImageURL(secondary) {
		return secondary
	}
	return ""
}

// lookupAuthor reports whether author has a profile worth fetching.
func lookupAuthor(author string) bool {
	return author != "" && author != "[deleted]"
}

// resolveAvatars looks up every distinct author concurrently and waits for
// all of them. Failures are logged and leave that author out of the map.
// Each goroutine writes only its own slot, so no lock is needed.
func (l *Loader) resolveAvatars(ctx context.Context, authors []string) map[string]string {
	seen := make(map[string]bool, len(authors))
	unique := make([]string, 0, len(authors))
	for _, a := range authors {
		if lookupAuthor(a) && !seen[a] {
			seen[a] = true
			unique = append(unique, a)
		}
	}

	found := make([]string, len(unique))

	var g errgroup.Group
	if l.opts.MaxAvatarLookups > 0 {
		g.SetLimit(l.opts.MaxAvatarLookups)
	}
	for i, author := range unique {
		g.Go(func() error {
			began := time.Now()
			u, err := l.api.About(ctx, author)
			if err != nil {
				logging.Warn("avatar lookup failed", "author", author, "err", err)
				l.events.Emit(otel.Event{
					Level:        otel.LevelWarn,
					Kind:         otel.KindAvatarError,
					Comp:         "loader",
					ActivationID: otel.ActivationID(ctx),
					Author:       author,
					Dur:          time.Since(began),
					Err:          err.Error(),
				})
				return nil // never fail the group; the avatar is just absent
			}
			found[i] = pickAvatar(u)
			return nil
		})
	}
	_ = g.Wait()

	avatars := make(map[string]string, len(unique))
	for i, a := range unique {
		if found[i] != "" {
			avatars[a] = found[i]
		}
	}
	return avatars
}

// mediaFor picks the image shown for a post: a displayable link, else the
// first preview image, else an absolute thumbnail.
func mediaFor(p reddit.Post) string {
	if u := clean.UnescapeAmpersand(p.URL); clean.IsDisplayableImageURL(u) {
		return u
	}
	if pv := clean.UnescapeAmpersand(p.PreviewURL()); pv != "" {
		return pv
	}
	if strings.HasPrefix(p.Thumbnail, "http") {
		return clean.UnescapeAmpersand(p.Thumbnail)
	}
	return ""
}

// createdAt reads created_utc, falling back to created.
func createdAt(utc, local float64) time.Time {
	secs := utc
	if secs == 0 {
		secs = local
	}
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0).UTC()
}

func itemFromPost(p reddit.Post, category string) model.Item {
	if p.Subreddit != "" {
		category = p.Subreddit
	}
	return model.Item{
		ID:          p.ID,
		Title:       p.Title,
		Author:      p.Author,
		Category:    category,
		Created:     createdAt(p.CreatedUTC, p.Created),
		Score:       p.Score,
		NumComments: p.NumComments,
		Permalink:   p.Permalink,
		URL:         clean.UnescapeAmpersand(p.URL),
		MediaURL:    mediaFor(p),
		Body:        p.Selftext,
	}
}
