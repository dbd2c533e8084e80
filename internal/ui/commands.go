package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/route"
)

// Commands builds the tea.Cmd for each load. The App never calls a loader
// directly; it receives results via messages.
type Commands struct {
	LoadFeed    func(act route.Activation) tea.Cmd
	LoadDetail  func(act route.Activation) tea.Cmd
	LoadDaily   func(act route.Activation) tea.Cmd
	LoadPopular func(act route.Activation) tea.Cmd
}

// LoaderCommands wires every load to l. Each command runs under the
// activation's context, so a superseded load is cancelled upstream too.
func LoaderCommands(l *loader.Loader) Commands {
	return Commands{
		LoadFeed: func(act route.Activation) tea.Cmd {
			return func() tea.Msg {
				return FeedLoaded{Act: act, State: l.Feed(act.Ctx, act.Route.Category)}
			}
		},
		LoadDetail: func(act route.Activation) tea.Cmd {
			return func() tea.Msg {
				return DetailLoaded{Act: act, State: l.Detail(act.Ctx, act.Route.Category, act.Route.ItemID)}
			}
		},
		LoadDaily: func(act route.Activation) tea.Cmd {
			return func() tea.Msg {
				return DailyLoaded{Act: act, State: l.Daily(act.Ctx)}
			}
		},
		LoadPopular: func(act route.Activation) tea.Cmd {
			return func() tea.Msg {
				return PopularLoaded{Act: act, State: l.Popular(act.Ctx)}
			}
		},
	}
}
