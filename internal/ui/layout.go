package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailsettings/internal/theme"
)

const (
	appName        = "Mail Settings"
	crumbSeparator = " › "
	ellipsis       = "…"
)

// Frame is what the layout draws around a view: the navigation trail in the
// header, and a flash message and key hints in the status bar.
type Frame struct {
	Crumbs []string
	Flash  string
	Hints  string
}

// Layout splits the terminal into a one-line header, the content area and a
// one-line status bar.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left between the header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-2, 0)
}

// Breadcrumb joins the application name and crumbs. When the trail is wider
// than width the oldest crumbs are replaced by an ellipsis; the current
// view's title is always kept.
func Breadcrumb(crumbs []string, width int) string {
	parts := append([]string{appName}, crumbs...)
	trail := strings.Join(parts, crumbSeparator)
	if width <= 0 || lipgloss.Width(trail) <= width {
		return trail
	}

	for i := 1; i < len(parts); i++ {
		trail = strings.Join(append([]string{ellipsis}, parts[i:]...), crumbSeparator)
		if lipgloss.Width(trail) <= width {
			return trail
		}
	}
	return parts[len(parts)-1]
}

// Render draws content inside the header and status bar described by f.
func (l Layout) Render(f Frame, content string) string {
	header := bar(theme.HeaderStyle, l.Width,
		Breadcrumb(f.Crumbs, l.Width-theme.HeaderStyle.GetHorizontalFrameSize()), "")
	status := bar(theme.StatusBarStyle, l.Width, f.Hints, f.Flash)

	body := lipgloss.NewStyle().
		Width(l.ContentWidth()).
		Height(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

// bar renders left and right aligned text on one full-width line.
func bar(style lipgloss.Style, width int, left, right string) string {
	l := style.Render(left)
	if right == "" {
		return style.Width(max(width, lipgloss.Width(l))).Render(left)
	}

	r := style.Render(right)
	gap := max(width-lipgloss.Width(l)-lipgloss.Width(r), 0)
	fill := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, l, fill, r)
}
