package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/DanielleFiene/redditmini/internal/clean"
	"github.com/DanielleFiene/redditmini/internal/loader"
	"github.com/DanielleFiene/redditmini/internal/model"
)

// renderState renders a LoadState: spinner while loading, the reason when
// failed, ready(data) otherwise.
func renderState[T any](s loader.State[T], spin spinner.Model, ready func(T) string) string {
	switch s.Status() {
	case loader.StatusFailed:
		return ErrorStyle.Render(s.Reason())
	case loader.StatusReady:
		data, _ := s.Data()
		return ready(data)
	default:
		return spin.View() + " Loading..."
	}
}

// RenderFeed renders the item list, scrolled so the cursor stays visible.
func RenderFeed(items []model.Item, cursor int, width, height int, now time.Time) string {
	if len(items) == 0 {
		return HelpStyle.Render("Nothing here. Press 'r' to reload or '/' to pick a category.")
	}

	if height < 1 {
		height = 1
	}
	offset := calcScrollOffset(len(items), cursor, height)

	var b strings.Builder
	for i := offset; i < len(items) && i < offset+height; i++ {
		b.WriteString(renderItemLine(items[i], i == cursor, width, now))
		b.WriteString("\n")
	}
	return b.String()
}

// calcScrollOffset returns the first visible row such that cursor fits in
// a window of height rows.
func calcScrollOffset(total, cursor, height int) int {
	if total == 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	if cursor >= height {
		return cursor - height + 1
	}
	return 0
}

// renderItemLine renders one row: score badge, title, dot leader, then
// author and age right-aligned.
func renderItemLine(item model.Item, selected bool, width int, now time.Time) string {
	badge := ScoreBadge.Render(fmt.Sprintf("%5s", compactCount(item.Score)))
	badgeWidth := lipgloss.Width(badge)

	meta := itemMeta(item, now)
	metaWidth := utf8.RuneCountInString(meta)

	titleWidth := width - badgeWidth - metaWidth - 4
	if titleWidth < 20 {
		titleWidth = 20
	}
	title := clean.Truncate(item.Title, titleWidth)

	if selected {
		plain := title
		dots := width - badgeWidth - lipgloss.Width(plain) - metaWidth - 3
		if dots < 0 {
			dots = 0
		}
		return badge + SelectedItem.Render(plain+fadeDots(dots)+" "+meta)
	}

	styled := NormalItem.Render(title)
	dots := width - badgeWidth - lipgloss.Width(styled) - metaWidth - 1
	if dots < 0 {
		dots = 0
	}
	return badge + styled + MetaItem.Render(fadeDots(dots)) + " " + MetaItem.Render(meta)
}

// itemMeta is the right-hand column: "u/author · 3 hours ago".
// RSS entries show their feed title instead of a community.
func itemMeta(item model.Item, now time.Time) string {
	var parts []string
	switch {
	case item.Source != "":
		parts = append(parts, item.Source)
	case item.Author != "":
		parts = append(parts, "u/"+item.Author)
	}
	if !item.Created.IsZero() {
		parts = append(parts, clean.RelativeTime(item.Created.Unix(), now))
	}
	return strings.Join(parts, " · ")
}

// compactCount renders 12345 as "12.3k".
func compactCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fm", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%dk", n/1000)
	case n >= 1000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func fadeDots(count int) string {
	if count <= 0 {
		return ""
	}
	// leave a one-column gap before the meta column
	return strings.Repeat(".", count-1) + " "
}

// avatarOrDefault returns url, or fallback when no avatar was resolved.
func avatarOrDefault(url, fallback string) string {
	if url == "" {
		return fallback
	}
	return url
}

// RenderDetail renders an opened item and its replies as plain viewport
// content. Width is the wrap width.
func RenderDetail(d model.Detail, width int, now time.Time, defaultAvatar string) string {
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	it := d.Item
	var b strings.Builder
	b.WriteString(DetailTitle.Width(width).Render(it.Title))
	b.WriteString("\n")
	b.WriteString(MetaItem.Render(fmt.Sprintf("r/%s · u/%s · %s · %s points · %d comments",
		it.Category, it.Author, clean.RelativeTime(it.Created.Unix(), now), compactCount(it.Score), it.NumComments)))
	b.WriteString("\n")
	b.WriteString(MetaItem.Render("avatar: " + avatarOrDefault(it.AvatarURL, defaultAvatar)))
	b.WriteString("\n")
	if it.MediaURL != "" {
		b.WriteString(MetaItem.Render("media: " + it.MediaURL))
		b.WriteString("\n")
	} else if it.URL != "" && it.URL != it.Permalink {
		b.WriteString(MetaItem.Render("link: " + it.URL))
		b.WriteString("\n")
	}
	if it.Body != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Render(it.Body))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(PaneTitle.Render(fmt.Sprintf("%d replies", len(d.Replies))))
	b.WriteString("\n")
	for _, r := range d.Replies {
		b.WriteString("\n")
		b.WriteString(ReplyAuthor.Render("u/" + r.Author))
		b.WriteString(MetaItem.Render(fmt.Sprintf(" · %s · %s points · avatar: %s",
			clean.RelativeTime(r.Created.Unix(), now), compactCount(r.Score), avatarOrDefault(r.AvatarURL, defaultAvatar))))
		b.WriteString("\n")
		b.WriteString(wrap.Render(r.Body))
		b.WriteString("\n")
	}
	return b.String()
}

// renderList renders a sidebar list under an optional title. cursor < 0
// means no selection.
func renderList(title string, rows []string, cursor, width, height int) string {
	var b strings.Builder
	avail := height
	if title != "" {
		b.WriteString(PaneTitle.Render(title))
		b.WriteString("\n")
		avail--
	}
	if avail < 1 {
		avail = 1
	}
	offset := 0
	if cursor >= 0 {
		offset = calcScrollOffset(len(rows), cursor, avail)
	}
	for i := offset; i < len(rows) && i < offset+avail; i++ {
		// rows may carry styling, so cut by display width
		row := lipgloss.NewStyle().MaxWidth(width).Render(rows[i])
		if i == cursor {
			b.WriteString(SelectedItem.Padding(0).Render(row))
		} else {
			b.WriteString(row)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderStatusBar renders the bottom status bar with the route, key hints
// and the cursor position.
func RenderStatusBar(path string, cursor, total int, width int, loading bool) string {
	var position string
	switch {
	case loading:
		position = " " + path + "  Loading... "
	case total > 0:
		position = fmt.Sprintf(" %s  %d/%d ", path, cursor+1, total)
	default:
		position = " " + path + " "
	}

	keys := []string{
		StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
		StatusBarKey.Render("Enter") + StatusBarText.Render(":open"),
		StatusBarKey.Render("Esc") + StatusBarText.Render(":back"),
		StatusBarKey.Render("/") + StatusBarText.Render(":go"),
		StatusBarKey.Render("Tab") + StatusBarText.Render(":pane"),
		StatusBarKey.Render("r") + StatusBarText.Render(":reload"),
		StatusBarKey.Render("D") + StatusBarText.Render(":debug"),
		StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
	}
	keyHints := strings.Join(keys, " ")

	leftWidth := lipgloss.Width(position)
	rightWidth := lipgloss.Width(keyHints)
	padding := width - leftWidth - rightWidth - 2
	if padding < 0 {
		padding = 0
	}

	bar := position + strings.Repeat(" ", padding) + keyHints
	return StatusBar.Width(width).Render(bar)
}
