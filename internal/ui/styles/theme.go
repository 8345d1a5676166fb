package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/skyhawk/internal/models"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// Hardwood is the default theme: court floor browns with net blue accents
var Hardwood = Theme{
	Name: "Hardwood",

	Background:    lipgloss.Color("#1c1917"),
	Foreground:    lipgloss.Color("#e7e5e4"),
	ForegroundDim: lipgloss.Color("#78716c"),

	Primary:   lipgloss.Color("#60a5fa"),
	Secondary: lipgloss.Color("#f59e0b"),
	Accent:    lipgloss.Color("#38bdf8"),

	Success: lipgloss.Color("#84cc16"),
	Warning: lipgloss.Color("#fbbf24"),
	Error:   lipgloss.Color("#f43f5e"),

	Border:      lipgloss.Color("#44403c"),
	BorderFocus: lipgloss.Color("#60a5fa"),
	Selection:   lipgloss.Color("#1e3a5f"),
}

// Current holds the active theme
var Current = Hardwood

// MaxWidth caps the content width. The builder shows the library and the
// plan side by side, so it is wider than a classic terminal.
const MaxWidth = 110

// ContentWidth returns min(terminalWidth, MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally on terminals wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds the pre-computed styles for the UI
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	Popup lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Drill rows and the plan timeline
	DrillItem      lipgloss.Style
	DrillTitle     lipgloss.Style
	DrillMeta      lipgloss.Style
	CategoryHeader lipgloss.Style
	PlanIndex      lipgloss.Style
	PlanTotal      lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	StatusInfo    lipgloss.Style
	StatusOK      lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
}

func bordered(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c)
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current
	status := lipgloss.NewStyle().Padding(0, 1)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Popup: bordered(t.Border).Padding(1, 3),

		Button: bordered(t.Border).
			Foreground(t.Foreground).
			Padding(0, 2),
		ButtonFocused: bordered(t.BorderFocus).
			Foreground(t.Primary).
			Padding(0, 2).
			Bold(true),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		DrillItem:  lipgloss.NewStyle().Padding(0, 1),
		DrillTitle: lipgloss.NewStyle().Foreground(t.Foreground),
		DrillMeta:  lipgloss.NewStyle().Foreground(t.ForegroundDim),
		CategoryHeader: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			MarginTop(1),
		PlanIndex: lipgloss.NewStyle().Foreground(t.Accent).Width(4),
		PlanTotal: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),

		Pane:        bordered(t.Border).Padding(0, 1),
		PaneFocused: bordered(t.BorderFocus).Padding(0, 1),

		Input:        bordered(t.Border).Foreground(t.Foreground).Padding(0, 1),
		InputFocused: bordered(t.BorderFocus).Foreground(t.Foreground).Padding(0, 1),

		Help:    lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),

		StatusInfo:    status.Foreground(t.ForegroundDim),
		StatusOK:      status.Foreground(t.Success),
		StatusWarning: status.Foreground(t.Warning).Bold(true),
		StatusError:   status.Foreground(t.Error),
	}
}

// DifficultyColor maps a drill difficulty onto the theme
func DifficultyColor(d models.Difficulty) lipgloss.Color {
	switch d {
	case models.Beginner:
		return Current.Success
	case models.Intermediate:
		return Current.Warning
	case models.Advanced:
		return Current.Error
	}
	return Current.ForegroundDim
}
