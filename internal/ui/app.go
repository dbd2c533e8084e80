package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/logging"
	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/otel"
	"github.com/DanielleFiene/redditmini/internal/route"
)

type pane int

const (
	paneMain pane = iota
	paneDaily
	paneSide
	paneCount
)

// AppConfig holds everything the App needs from outside.
type AppConfig struct {
	Commands      Commands
	Events        *otel.Logger     // nil disables events
	Ring          *otel.RingBuffer // nil disables the debug overlay
	Parent        context.Context  // parent of every activation context
	Start         route.Route      // first route shown
	Categories    []string         // fixed sidebar shortcuts
	DefaultAvatar string           // shown when an author has no avatar
	Now           func() time.Time // clock for relative times; defaults to time.Now
}

// visit is one history entry: where the user was and which row was selected.
type visit struct {
	route  route.Route
	cursor int
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the loader. It receives results via messages,
// and drops any result whose activation is no longer current.
type App struct {
	cmds          Commands
	events        *otel.Logger
	ring          *otel.RingBuffer
	categories    []string
	defaultAvatar string
	now           func() time.Time

	main    *route.Tracker
	daily   *route.Tracker
	popular *route.Tracker

	route   route.Route
	history []visit

	feed         loader.State[[]model.Item]
	detail       loader.State[model.Detail]
	dailyState   loader.State[[]model.Item]
	popularState loader.State[[]model.Community]

	focus       pane
	cursor      int
	dailyCursor int
	sideCursor  int

	searching bool
	search    textinput.Model
	spin      spinner.Model
	vp        viewport.Model
	keys      keyMap

	err       error
	status    string
	showDebug bool
	width     int
	height    int
	ready     bool
}

// NewApp creates a new App. Nothing loads until Init.
func NewApp(cfg AppConfig) App {
	parent := cfg.Parent
	if parent == nil {
		parent = context.Background()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "golang, r/pics or a post URL"
	ti.CharLimit = 256

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle))

	return App{
		cmds:          cfg.Commands,
		events:        cfg.Events,
		ring:          cfg.Ring,
		categories:    cfg.Categories,
		defaultAvatar: cfg.DefaultAvatar,
		now:           now,
		main:          route.NewTracker(parent),
		daily:         route.NewTracker(parent),
		popular:       route.NewTracker(parent),
		route:         cfg.Start,
		search:        ti,
		spin:          sp,
		vp:            viewport.New(0, 0),
		keys:          defaultKeyMap(),
	}
}

// Init activates the starting route and both sidebars.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.spin.Tick,
		a.load(a.activateMain(a.route)),
		a.loadDaily(),
		a.loadPopular(),
	)
}

func (a App) activateMain(r route.Route) route.Activation {
	act := a.main.Activate(r)
	a.events.Emit(otel.Event{
		Level:        otel.LevelInfo,
		Kind:         otel.KindNav,
		Comp:         "ui",
		Route:        r.Key(),
		ActivationID: act.ID,
		Msg:          r.Path(),
	})
	logging.Info("navigate", "route", r.Path(), "aid", act.ID)
	return act
}

func (a App) load(act route.Activation) tea.Cmd {
	if act.Route.Kind == route.KindDetail {
		if a.cmds.LoadDetail == nil {
			return nil
		}
		return a.cmds.LoadDetail(act)
	}
	if a.cmds.LoadFeed == nil {
		return nil
	}
	return a.cmds.LoadFeed(act)
}

func (a App) loadDaily() tea.Cmd {
	if a.cmds.LoadDaily == nil {
		return nil
	}
	return a.cmds.LoadDaily(a.daily.Activate(route.Route{Category: "daily"}))
}

func (a App) loadPopular() tea.Cmd {
	if a.cmds.LoadPopular == nil {
		return nil
	}
	return a.cmds.LoadPopular(a.popular.Activate(route.Route{Category: "popular"}))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resizeViewport()
		return a, nil

	case spinner.TickMsg:
		if !a.anyLoading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case FeedLoaded:
		if !a.main.Current(msg.Act) {
			a.dropStale(msg.Act)
			return a, nil
		}
		a.feed = msg.State
		if items, ok := a.feed.Data(); ok && a.cursor >= len(items) {
			a.cursor = max(len(items)-1, 0)
		}
		return a, nil

	case DetailLoaded:
		if !a.main.Current(msg.Act) {
			a.dropStale(msg.Act)
			return a, nil
		}
		a.detail = msg.State
		a.refreshDetail()
		return a, nil

	case DailyLoaded:
		if !a.daily.Current(msg.Act) {
			a.dropStale(msg.Act)
			return a, nil
		}
		a.dailyState = msg.State
		return a, nil

	case PopularLoaded:
		if !a.popular.Current(msg.Act) {
			a.dropStale(msg.Act)
			return a, nil
		}
		a.popularState = msg.State
		return a, nil
	}

	if a.searching {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) dropStale(act route.Activation) {
	a.events.Emit(otel.Event{
		Level:        otel.LevelDebug,
		Kind:         otel.KindLoadStale,
		Comp:         "ui",
		Route:        act.Route.Key(),
		ActivationID: act.ID,
	})
	logging.Debug("dropped stale result", "route", act.Route.Key(), "aid", act.ID)
}

func (a App) anyLoading() bool {
	mainLoading := a.feed.IsLoading()
	if a.route.Kind == route.KindDetail {
		mainLoading = a.detail.IsLoading()
	}
	return mainLoading || a.dailyState.IsLoading() || a.popularState.IsLoading()
}

// navigate activates r in the main view. Failed sidebars get another try.
func (a App) navigate(r route.Route, push bool) (App, tea.Cmd) {
	if push {
		a.history = append(a.history, visit{route: a.route, cursor: a.cursor})
	}
	a.route = r
	a.err = nil
	a.status = ""
	a.focus = paneMain
	if r.Kind == route.KindDetail {
		a.detail = loader.Loading[model.Detail]()
		a.vp.SetContent("")
		a.vp.GotoTop()
	} else {
		a.feed = loader.Loading[[]model.Item]()
		a.cursor = 0
	}

	cmds := []tea.Cmd{a.load(a.activateMain(r)), a.spin.Tick}
	if a.dailyState.IsFailed() {
		a.dailyState = loader.Loading[[]model.Item]()
		cmds = append(cmds, a.loadDaily())
	}
	if a.popularState.IsFailed() {
		a.popularState = loader.Loading[[]model.Community]()
		cmds = append(cmds, a.loadPopular())
	}
	return a, tea.Batch(cmds...)
}

func (a App) back() (App, tea.Cmd) {
	if n := len(a.history); n > 0 {
		prev := a.history[n-1]
		a.history = a.history[:n-1]
		next, cmd := a.navigate(prev.route, false)
		next.cursor = prev.cursor
		return next, cmd
	}
	if a.route.Kind == route.KindDetail {
		return a.navigate(route.Feed(a.route.Category), false)
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}

	if a.searching {
		return a.handleSearchKey(msg)
	}

	if a.showDebug {
		switch {
		case key.Matches(msg, a.keys.Debug), msg.String() == "esc":
			a.showDebug = false
		case key.Matches(msg, a.keys.Quit):
			return a.quit()
		}
		return a, nil
	}

	// Clear any existing error on key press
	a.err = nil

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Debug):
		if a.ring != nil {
			a.showDebug = true
		}
		return a, nil

	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.search.SetValue("")
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.Pane):
		a.focus = (a.focus + 1) % paneCount
		return a, nil

	case key.Matches(msg, a.keys.Reload):
		return a.navigate(a.route, false)

	case key.Matches(msg, a.keys.Back):
		return a.back()

	case key.Matches(msg, a.keys.VoteUp):
		a.vote("up")
		return a, nil

	case key.Matches(msg, a.keys.VoteDown):
		a.vote("down")
		return a, nil

	case key.Matches(msg, a.keys.Open):
		return a.open()
	}

	if a.focus == paneMain && a.route.Kind == route.KindDetail {
		var cmd tea.Cmd
		a.vp, cmd = a.vp.Update(msg)
		return a, cmd
	}

	n := a.paneLen(a.focus)
	cur := a.paneCursor()
	switch {
	case key.Matches(msg, a.keys.Down):
		if *cur < n-1 {
			*cur++
		}
	case key.Matches(msg, a.keys.Up):
		if *cur > 0 {
			*cur--
		}
	case key.Matches(msg, a.keys.Top):
		*cur = 0
	case key.Matches(msg, a.keys.Bottom):
		if n > 0 {
			*cur = n - 1
		}
	}
	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		return a, nil
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		r, err := route.Parse(a.search.Value())
		if err != nil {
			a.err = err
			return a, nil
		}
		return a.navigate(r, true)
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.main.Stop()
	a.daily.Stop()
	a.popular.Stop()
	return a, tea.Quit
}

// paneCursor returns the cursor of the focused pane.
func (a *App) paneCursor() *int {
	switch a.focus {
	case paneDaily:
		return &a.dailyCursor
	case paneSide:
		return &a.sideCursor
	}
	return &a.cursor
}

func (a App) focusCursor() int {
	return *a.paneCursor()
}

func (a App) paneLen(p pane) int {
	switch p {
	case paneDaily:
		items, _ := a.dailyState.Data()
		return len(items)
	case paneSide:
		comms, _ := a.popularState.Data()
		return len(a.categories) + len(comms)
	}
	if a.route.Kind == route.KindDetail {
		return 0
	}
	items, _ := a.feed.Data()
	return len(items)
}

// open acts on the selected row of the focused pane.
func (a App) open() (tea.Model, tea.Cmd) {
	switch a.focus {
	case paneDaily:
		items, ok := a.dailyState.Data()
		if !ok || a.dailyCursor >= len(items) {
			return a, nil
		}
		it := items[a.dailyCursor]
		if it.Source != "" {
			// feed entries have no thread to open
			a.status = it.URL
			return a, nil
		}
		return a.navigate(route.Detail(it.Category, it.ID, it.Title), true)

	case paneSide:
		if a.sideCursor < len(a.categories) {
			return a.navigate(route.Feed(a.categories[a.sideCursor]), true)
		}
		comms, ok := a.popularState.Data()
		i := a.sideCursor - len(a.categories)
		if !ok || i >= len(comms) {
			return a, nil
		}
		return a.navigate(route.Feed(comms[i].Name), true)
	}

	if a.route.Kind == route.KindDetail {
		return a, nil
	}
	items, ok := a.feed.Data()
	if !ok || a.cursor >= len(items) {
		return a, nil
	}
	it := items[a.cursor]
	return a.navigate(route.Detail(it.Category, it.ID, it.Title), true)
}

// vote records the intent and nothing else: redditmini never writes upstream.
func (a *App) vote(dir string) {
	target := ""
	switch {
	case a.route.Kind == route.KindDetail:
		if d, ok := a.detail.Data(); ok {
			target = d.Item.ID
		}
	default:
		if items, ok := a.feed.Data(); ok && a.cursor < len(items) {
			target = items[a.cursor].ID
		}
	}
	if target == "" {
		return
	}
	a.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindVoteStub,
		Comp:  "ui",
		Route: a.route.Key(),
		Msg:   dir,
		Extra: map[string]any{"item": target},
	})
	a.status = "vote " + dir + " not sent: read-only"
}

// layout returns the side column width (0 when hidden), the main column
// width and the body height.
func (a App) layout() (side, main, body int) {
	body = a.height - 2 // header + status bar
	if a.err != nil {
		body--
	}
	if body < 3 {
		body = 3
	}
	if a.width >= 100 {
		side = a.width / 5
		if side < 24 {
			side = 24
		}
	}
	main = a.width - 2*side
	return side, main, body
}

func (a *App) resizeViewport() {
	_, main, body := a.layout()
	a.vp.Width = max(main-4, 1)
	a.vp.Height = max(body-3, 1)
	a.refreshDetail()
}

func (a *App) refreshDetail() {
	if d, ok := a.detail.Data(); ok {
		a.vp.SetContent(RenderDetail(d, a.vp.Width, a.now(), a.defaultAvatar))
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug {
		live, _ := a.main.Active()
		return debugOverlay(a.ring, live, a.width, a.height-1, a.now()) + "\n" + debugStatusBar(a.width)
	}

	side, main, body := a.layout()

	columns := []string{}
	if side > 0 {
		columns = append(columns, a.paneBox(paneDaily, side, body, a.renderDaily(side-4, body-2)))
	}
	columns = append(columns, a.paneBox(paneMain, main, body, a.renderMain(main-4, body-2)))
	if side > 0 {
		columns = append(columns, a.paneBox(paneSide, side, body, a.renderSide(side-4, body-2)))
	}

	parts := []string{a.renderHeader(), lipgloss.JoinHorizontal(lipgloss.Top, columns...)}
	if a.err != nil {
		parts = append(parts, ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()+" (press any key to dismiss)"))
	}

	path := a.route.Path()
	if a.status != "" {
		path = a.status
	}
	parts = append(parts, RenderStatusBar(path, a.focusCursor(), a.paneLen(a.focus), a.width, a.anyLoading()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) paneBox(p pane, width, height int, content string) string {
	style := Pane
	if a.focus == p {
		style = FocusedPane
	}
	return style.Width(width - 2).Height(height - 2).MaxHeight(height).Render(content)
}

func (a App) renderHeader() string {
	left := HeaderTitle.Render("redditmini")
	var right string
	if a.searching {
		right = a.search.View()
	} else {
		right = MetaItem.Render("press / to go to a community or post")
	}
	return HeaderBar.Width(a.width).Render(left + "  " + right)
}

func (a App) renderMain(width, height int) string {
	title := PaneTitle.Render(a.route.Path())
	if a.route.Kind == route.KindDetail {
		return title + "\n" + renderState(a.detail, a.spin, func(model.Detail) string {
			return a.vp.View()
		})
	}
	return title + "\n" + renderState(a.feed, a.spin, func(items []model.Item) string {
		cursor := a.cursor
		if a.focus != paneMain {
			cursor = -1
		}
		return RenderFeed(items, cursor, width, height-1, a.now())
	})
}

func (a App) renderDaily(width, height int) string {
	return PaneTitle.Render("Daily threads") + "\n" + renderState(a.dailyState, a.spin, func(items []model.Item) string {
		rows := make([]string, len(items))
		for i, it := range items {
			label := "r/" + it.Category
			if it.Source != "" {
				label = it.Source
			}
			rows[i] = label + ": " + it.Title
		}
		return renderList("", rows, a.focusedCursor(paneDaily, a.dailyCursor), width, height-1)
	})
}

func (a App) renderSide(width, height int) string {
	cats := make([]string, len(a.categories))
	for i, c := range a.categories {
		cats[i] = "r/" + c
	}
	cursor := a.focusedCursor(paneSide, a.sideCursor)
	top := renderList("Categories", cats, cursor, width, len(cats)+1)

	popular := PaneTitle.Render("Popular") + "\n" + renderState(a.popularState, a.spin, func(comms []model.Community) string {
		rows := make([]string, len(comms))
		for i, c := range comms {
			rows[i] = c.PrefixedName + " " + MetaItem.Render(compactCount(c.Subscribers))
		}
		pc := -1
		if cursor >= len(cats) {
			pc = cursor - len(cats)
		}
		return renderList("", rows, pc, width, height-len(cats)-3)
	})
	return strings.Join([]string{top, "", popular}, "\n")
}

func (a App) focusedCursor(p pane, cursor int) int {
	if a.focus != p {
		return -1
	}
	return cursor
}

// Cursor returns the main-pane cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Route returns the route shown in the main view (for testing).
func (a App) Route() route.Route {
	return a.route
}

// Feed returns the main feed state (for testing).
func (a App) Feed() loader.State[[]model.Item] {
	return a.feed
}
