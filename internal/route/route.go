// Package route models what the main view is showing and decides which
// load results are still wanted.
package route

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/DanielleFiene/redditmini/internal/clean"
)

// Kind distinguishes the two main views.
type Kind int

const (
	KindFeed Kind = iota
	KindDetail
)

func (k Kind) String() string {
	if k == KindDetail {
		return "detail"
	}
	return "feed"
}

// Route is a navigation target. Slug is cosmetic: it is shown in the path
// but never part of Key and never sent upstream.
type Route struct {
	Kind     Kind
	Category string
	ItemID   string
	Slug     string
}

// Feed returns the route for a category listing. An empty category means
// the configured default.
func Feed(category string) Route {
	return Route{Kind: KindFeed, Category: category}
}

// Detail returns the route for one item. The slug is derived from title.
func Detail(category, itemID, title string) Route {
	return Route{Kind: KindDetail, Category: category, ItemID: itemID, Slug: clean.Slug(title)}
}

// Key identifies the data a route loads. Two routes with equal keys load
// the same thing.
func (r Route) Key() string {
	cat := strings.ToLower(r.Category)
	if r.Kind == KindDetail {
		return "detail:" + cat + "/" + r.ItemID
	}
	return "feed:" + cat
}

// Path renders the route the way the site spells it.
func (r Route) Path() string {
	if r.Kind == KindDetail {
		p := "/r/" + r.Category + "/comments/" + r.ItemID
		if r.Slug != "" {
			p += "/" + r.Slug
		}
		return p
	}
	if r.Category == "" {
		return "/"
	}
	return "/r/" + r.Category
}

func (r Route) String() string { return r.Path() }

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Parse accepts "golang", "r/golang", "/r/golang",
// "/r/golang/comments/abc123[/slug]" and full site URLs of those shapes.
// Empty input is the default feed.
func Parse(input string) (Route, error) {
	s := strings.TrimSpace(input)
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Route{}, fmt.Errorf("parse route %q: %w", input, err)
		}
		s = u.Path
	}

	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 && parts[0] == "r" {
		parts = parts[1:]
	}

	switch {
	case len(parts) == 0:
		return Feed(""), nil
	case len(parts) == 1:
		if !nameRe.MatchString(parts[0]) {
			return Route{}, fmt.Errorf("invalid category %q", parts[0])
		}
		return Feed(parts[0]), nil
	case len(parts) >= 3 && parts[1] == "comments":
		if !nameRe.MatchString(parts[0]) || !nameRe.MatchString(parts[2]) {
			return Route{}, fmt.Errorf("invalid item route %q", input)
		}
		r := Route{Kind: KindDetail, Category: parts[0], ItemID: parts[2]}
		if len(parts) > 3 {
			r.Slug = parts[3]
		}
		return r, nil
	}
	return Route{}, fmt.Errorf("unrecognized route %q", input)
}
