package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Palette is the set of colors the styles are built from.
type Palette struct {
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Muted   lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Subtle  lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
}

var palettes = map[string]Palette{
	"default": {
		Accent:  ColorBlue,
		Success: ColorGreen,
		Warning: ColorYellow,
		Error:   ColorRed,
		Muted:   ColorGray,
		Text:    ColorWhite,
		Subtle:  ColorSubtle,
		Border:  ColorBorder,
	},
	"mono": {
		Accent:  ColorWhite,
		Success: ColorWhite,
		Warning: ColorWhite,
		Error:   ColorWhite,
		Muted:   ColorGray,
		Text:    ColorWhite,
		Subtle:  ColorSubtle,
		Border:  ColorBorder,
	},
}

var (
	// HeaderStyle is used for top-level section headers and the application title.
	HeaderStyle lipgloss.Style

	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style

	// DetailPanelStyle wraps the detail view content area.
	DetailPanelStyle lipgloss.Style

	// ListItemStyle is the base style for items in a list.
	ListItemStyle lipgloss.Style

	// SelectedItemStyle highlights the currently focused list item.
	SelectedItemStyle lipgloss.Style

	// HelpStyle is used for keyboard shortcut hints and help text.
	HelpStyle lipgloss.Style

	// DefaultBadgeStyle marks the default account in lists.
	DefaultBadgeStyle lipgloss.Style

	// LabelStyle is used for field labels in detail panels.
	LabelStyle lipgloss.Style

	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	SuccessStyle lipgloss.Style
)

func init() {
	Use("default")
}

// Use rebuilds every style from the named palette. Unknown names fall
// back to "default". It reports whether name was known.
func Use(name string) bool {
	p, ok := palettes[name]
	if !ok {
		p = palettes["default"]
	}

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Subtle).
		Padding(0, 1)
	if name != "mono" {
		HeaderStyle = HeaderStyle.Background(p.Accent)
	}

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Subtle).
		Padding(0, 1)

	DetailPanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(p.Accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Accent)

	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)

	DefaultBadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Success).
		Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Width(14)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Error)
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Warning)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Success)

	return ok
}
