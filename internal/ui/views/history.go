package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/skyhawk/internal/models"
	"github.com/tgienger/skyhawk/internal/ui/keys"
	"github.com/tgienger/skyhawk/internal/ui/styles"
)

// PracticeHistory is the read side of saved practices
type PracticeHistory interface {
	ListPractices(ctx context.Context) ([]models.Practice, error)
	GetPracticeWithItems(ctx context.Context, id string) (*models.PracticeWithItems, error)
	DeletePractice(ctx context.Context, id string) error
}

// HistoryView lists saved practices and shows their drills
type HistoryView struct {
	history   PracticeHistory
	practices []models.Practice
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	loaded  bool
	cursor  int
	scrollY int
	status  status

	// Detail of the selected practice, loaded on demand
	viewing bool
	detail  *models.PracticeWithItems

	confirmingDelete bool
	showHelpPopup    bool
}

func NewHistoryView(history PracticeHistory) *HistoryView {
	return &HistoryView{
		history: history,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
}

type practicesLoadedMsg struct {
	practices []models.Practice
}

type historyFailedMsg struct {
	err error
}

type practiceDetailMsg struct {
	practice *models.PracticeWithItems
	load     bool // hand the practice to the builder once fetched
}

func (v *HistoryView) Init() tea.Cmd {
	return v.loadPractices
}

func (v *HistoryView) loadPractices() tea.Msg {
	practices, err := v.history.ListPractices(context.Background())
	if err != nil {
		return historyFailedMsg{err: err}
	}
	return practicesLoadedMsg{practices: practices}
}

func (v *HistoryView) loadDetail(load bool) tea.Cmd {
	if v.cursor >= len(v.practices) {
		return nil
	}
	id := v.practices[v.cursor].ID
	return func() tea.Msg {
		p, err := v.history.GetPracticeWithItems(context.Background(), id)
		if err != nil {
			return historyFailedMsg{err: err}
		}
		return practiceDetailMsg{practice: p, load: load}
	}
}

func (v *HistoryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case practicesLoadedMsg:
		v.practices = msg.practices
		v.loaded = true
		if v.cursor >= len(v.practices) {
			v.cursor = max(0, len(v.practices)-1)
		}
		return v, nil

	case PracticeSaved:
		return v, v.loadPractices

	case practiceDetailMsg:
		if msg.load {
			p := *msg.practice
			return v, tea.Batch(
				func() tea.Msg { return LoadPractice{Practice: p} },
				func() tea.Msg { return BackToBuilder{} },
			)
		}
		v.detail = msg.practice
		v.viewing = true
		return v, nil

	case historyFailedMsg:
		v.loaded = true
		v.status = errorStatus(msg.err)
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.viewing {
			return v.updateViewing(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *HistoryView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Builder):
		return v, func() tea.Msg { return BackToBuilder{} }
	case key.Matches(msg, v.keys.Library):
		return v, func() tea.Msg { return OpenLibrary{} }
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.practices)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		return v, v.loadDetail(false)
	case key.Matches(msg, v.keys.Load):
		return v, v.loadDetail(true)
	case key.Matches(msg, v.keys.Delete):
		if len(v.practices) > 0 {
			v.confirmingDelete = true
		}
		return v, nil
	}
	return v, nil
}

func (v *HistoryView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewing = false
		v.detail = nil
		return v, nil
	case key.Matches(msg, v.keys.Load):
		p := *v.detail
		v.viewing = false
		v.detail = nil
		return v, tea.Batch(
			func() tea.Msg { return LoadPractice{Practice: p} },
			func() tea.Msg { return BackToBuilder{} },
		)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *HistoryView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		p := v.practices[v.cursor]
		if err := v.history.DeletePractice(context.Background(), p.ID); err != nil {
			v.status = errorStatus(err)
			return v, nil
		}
		v.status = status{text: "Deleted " + p.Title, level: statusInfo}
		return v, v.loadPractices
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *HistoryView) visibleItems() int {
	return max((v.height-8)/2, 1)
}

func (v *HistoryView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *HistoryView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete && v.cursor < len(v.practices) {
		return renderConfirm(v.styles, "Delete Practice?",
			fmt.Sprintf("%q and its drill order are removed.", v.practices[v.cursor].Title), v.width, v.height)
	}
	if v.viewing && v.detail != nil {
		return v.renderDetail()
	}

	s := v.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Saved Practices"))
	b.WriteString("\n\n")

	switch {
	case !v.loaded:
		b.WriteString(s.TitleMuted.Render("Loading..."))
	case len(v.practices) == 0:
		b.WriteString(s.TitleMuted.Render("No saved practices. Build a plan and press ctrl+s."))
	default:
		width := styles.ContentWidth(v.width) - 4
		end := min(v.scrollY+v.visibleItems(), len(v.practices))
		var rows []string
		for i := v.scrollY; i < end; i++ {
			p := v.practices[i]
			row := s.ListItem.Width(width)
			if i == v.cursor {
				row = s.ListSelected.Width(width)
			}
			rows = append(rows,
				row.Render(models.FormatDate(p.Date)+"  "+p.Title),
				s.DrillItem.Render(s.DrillMeta.Render("   saved "+p.CreatedAt.Local().Format("Jan 2 15:04"))),
			)
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	b.WriteString("\n")
	b.WriteString(v.status.render(s))
	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *HistoryView) renderDetail() string {
	s := v.styles
	p := v.detail

	lines := []string{
		s.Title.Render(p.Title),
		s.TitleMuted.Render(models.FormatDate(p.Date)),
		"",
	}
	if p.Notes != "" {
		lines = append(lines, p.Notes, "")
	}
	if len(p.Items) == 0 {
		lines = append(lines, s.TitleMuted.Render("This practice has no drills."))
	}
	elapsed := 0
	for i, it := range p.Items {
		elapsed += it.Drill.DurationMinutes
		lines = append(lines,
			s.PlanIndex.Render(fmt.Sprintf("%d.", i+1))+s.DrillTitle.Render(it.Drill.Title),
			s.PlanIndex.Render("")+drillMeta(s, it.Drill)+s.DrillMeta.Render(fmt.Sprintf("  → %d min", elapsed)),
		)
	}
	lines = append(lines,
		"",
		s.PlanTotal.Render(fmt.Sprintf("%d drills · Total %s", len(p.Items), minutes(p.TotalMinutes()))),
		s.Help.Render(fmt.Sprintf("%s load into plan • %s back",
			s.HelpKey.Render("l"),
			s.HelpKey.Render("esc"),
		)),
	)

	content := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return styles.CenterView(content, v.width, v.height)
}

func (v *HistoryView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s load into plan • %s del • %s builder • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("l"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *HistoryView) renderHelpPopup() string {
	s := v.styles
	return renderPopup(s, "Keyboard Shortcuts", []string{
		s.HelpKey.Render("↵") + "      view practice",
		s.HelpKey.Render("l") + "      load drills into plan",
		s.HelpKey.Render("d") + "      delete practice",
		s.HelpKey.Render("esc") + "    back to builder",
		s.HelpKey.Render("2") + "      library",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}, v.width, v.height)
}
