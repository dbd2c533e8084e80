package loader

import (
	"context"
	"fmt"

	"github.com/DanielleFiene/redditmini/internal/model"
)

// Feed loads the top page of category (the default category when empty)
// with an avatar resolved per author. Output keeps the upstream rank order.
func (l *Loader) Feed(ctx context.Context, category string) State[[]model.Item] {
	if category == "" {
		category = l.opts.DefaultCategory
	}
	label := "feed:" + category
	began := l.start(ctx, label)

	posts, err := l.api.Top(ctx, category, l.opts.PageSize)
	if err != nil {
		return finish(l, ctx, label, began, Failed[[]model.Item](fmt.Sprintf("Error fetching posts: %v", err)), 0)
	}

	authors := make([]string, len(posts))
	for i, p := range posts {
		authors[i] = p.Author
	}
	avatars := l.resolveAvatars(ctx, authors)

	items := make([]model.Item, len(posts))
	for i, p := range posts {
		items[i] = itemFromPost(p, category)
		items[i].AvatarURL = avatars[p.Author]
	}
	return finish(l, ctx, label, began, Ready(items), len(items))
}
