package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
)

// Top fetches /r/{category}/top.json?limit=N.
func (c *Client) Top(ctx context.Context, category string, limit int) ([]Post, error) {
	var l Listing[Post]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.GetJSON(ctx, "/r/"+url.PathEscape(category)+"/top.json", q, &l); err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// Comments fetches /r/{category}/comments/{itemID}.json.
func (c *Client) Comments(ctx context.Context, category, itemID string) (*Thread, error) {
	var t Thread
	path := "/r/" + url.PathEscape(category) + "/comments/" + url.PathEscape(itemID) + ".json"
	if err := c.GetJSON(ctx, path, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// About fetches /user/{author}/about.json.
func (c *Client) About(ctx context.Context, author string) (User, error) {
	var a About
	if err := c.GetJSON(ctx, "/user/"+url.PathEscape(author)+"/about.json", nil, &a); err != nil {
		return User{}, err
	}
	return a.Data, nil
}

// Popular fetches /subreddits/popular.json?limit=N.
func (c *Client) Popular(ctx context.Context, limit int) ([]Subreddit, error) {
	var l Listing[Subreddit]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.GetJSON(ctx, "/subreddits/popular.json", q, &l); err != nil {
		return nil, err
	}
	subs := make([]Subreddit, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		subs = append(subs, child.Data)
	}
	return subs, nil
}

// FeedEntry is one item of an RSS or Atom source.
type FeedEntry struct {
	ID        string
	Title     string
	Link      string
	Author    string
	FeedTitle string
	Published time.Time
	ImageURL  string
}

// Feed fetches and parses an RSS/Atom document at an absolute URL.
func (c *Client) Feed(ctx context.Context, rawURL string) ([]FeedEntry, error) {
	x := Exchange{Started: time.Now(), URL: rawURL}
	var entries []FeedEntry
	err := c.do(ctx, rawURL, "application/rss+xml, application/atom+xml, */*", func(resp *http.Response) error {
		x.Status = resp.StatusCode
		feed, err := gofeed.NewParser().Parse(resp.Body)
		if err != nil {
			return &FetchError{
				URL:     rawURL,
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("failed to parse feed %s: %v", rawURL, err),
				Err:     err,
			}
		}
		entries = make([]FeedEntry, 0, len(feed.Items))
		for _, it := range feed.Items {
			entries = append(entries, entryFrom(feed, it))
		}
		return nil
	}, &x)
	x.Duration = time.Since(x.Started)
	x.Err = err
	if c.recorder != nil {
		c.recorder.RecordExchange(x)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func entryFrom(feed *gofeed.Feed, it *gofeed.Item) FeedEntry {
	e := FeedEntry{
		ID:        it.GUID,
		Title:     it.Title,
		Link:      it.Link,
		FeedTitle: feed.Title,
	}
	if e.ID == "" {
		e.ID = it.Link
	}
	if it.Author != nil {
		e.Author = it.Author.Name
	} else if len(it.Authors) > 0 && it.Authors[0] != nil {
		e.Author = it.Authors[0].Name
	}
	switch {
	case it.PublishedParsed != nil:
		e.Published = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		e.Published = *it.UpdatedParsed
	}
	if it.Image != nil {
		e.ImageURL = it.Image.URL
	}
	return e
}
