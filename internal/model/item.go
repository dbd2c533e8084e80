// Package model holds the display-ready values the loaders produce and the
// views render. Every URL field here has already been cleaned; empty means
// absent.
package model

import "time"

// Item is one post in a feed or a daily-threads list.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Created     time.Time `json:"created"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	Permalink   string    `json:"permalink,omitempty"`
	URL         string    `json:"url,omitempty"`
	MediaURL    string    `json:"media_url,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Body        string    `json:"body,omitempty"`
	Source      string    `json:"source,omitempty"` // feed title for RSS-sourced entries
}

// HasAvatar reports whether an avatar was resolved for the author.
func (i Item) HasAvatar() bool { return i.AvatarURL != "" }

// Reply is a first-level comment under an item.
type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Score     int       `json:"score"`
	Created   time.Time `json:"created"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// Detail is an item with its replies.
type Detail struct {
	Item    Item    `json:"item"`
	Replies []Reply `json:"replies"`
}

// Community is an entry in the popular-communities sidebar.
type Community struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PrefixedName string `json:"prefixed_name"` // "r/golang"
	Title        string `json:"title,omitempty"`
	IconURL      string `json:"icon_url"`
	Subscribers  int    `json:"subscribers"`
}
