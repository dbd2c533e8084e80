// Package ui provides the Bubble Tea TUI for redditmini.
package ui

import (
	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/route"
)

// FeedLoaded is sent when a category listing finishes loading.
type FeedLoaded struct {
	Act   route.Activation // activation the load ran under (for stale-check)
	State loader.State[[]model.Item]
}

// DetailLoaded is sent when an item and its replies finish loading.
type DetailLoaded struct {
	Act   route.Activation
	State loader.State[model.Detail]
}

// DailyLoaded is sent when the daily-threads batch finishes.
type DailyLoaded struct {
	Act   route.Activation
	State loader.State[[]model.Item]
}

// PopularLoaded is sent when the popular communities finish loading.
type PopularLoaded struct {
	Act   route.Activation
	State loader.State[[]model.Community]
}
