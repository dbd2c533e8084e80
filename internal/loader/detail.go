package loader

import (
	"context"
	"fmt"

	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/reddit"
)

// Detail loads one item and its first-level replies, resolving avatars for
// the item author and every reply author in a single fan-out. Collapsed
// "more" stubs are not replies and are skipped.
func (l *Loader) Detail(ctx context.Context, category, itemID string) State[model.Detail] {
	label := "detail:" + category + "/" + itemID
	began := l.start(ctx, label)

	if category == "" || itemID == "" {
		return finish(l, ctx, label, began, Failed[model.Detail](ReasonNotFound), 0)
	}

	thread, err := l.api.Comments(ctx, category, itemID)
	if err != nil {
		return finish(l, ctx, label, began, Failed[model.Detail](fmt.Sprintf("Error fetching post details: %v", err)), 0)
	}
	if len(thread.Post.Data.Children) == 0 {
		return finish(l, ctx, label, began, Failed[model.Detail](ReasonNotFound), 0)
	}
	post := thread.Post.Data.Children[0].Data

	var comments []reddit.Comment
	for _, child := range thread.Replies.Data.Children {
		if child.Kind == "t1" {
			comments = append(comments, child.Data)
		}
	}

	authors := make([]string, 0, len(comments)+1)
	authors = append(authors, post.Author)
	for _, c := range comments {
		authors = append(authors, c.Author)
	}
	avatars := l.resolveAvatars(ctx, authors)

	item := itemFromPost(post, category)
	item.AvatarURL = avatars[post.Author]

	replies := make([]model.Reply, len(comments))
	for i, c := range comments {
		replies[i] = model.Reply{
			ID:        c.ID,
			Author:    c.Author,
			Body:      c.Body,
			Score:     c.Score,
			Created:   createdAt(c.CreatedUTC, c.Created),
			AvatarURL: avatars[c.Author],
		}
	}

	return finish(l, ctx, label, began, Ready(model.Detail{Item: item, Replies: replies}), len(replies))
}
