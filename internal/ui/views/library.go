package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/models"
	"github.com/tgienger/skyhawk/internal/ui/keys"
	"github.com/tgienger/skyhawk/internal/ui/styles"
)

// DrillLibrary is the drill storage the library view edits
type DrillLibrary interface {
	builder.Catalog
	UpdateDrill(ctx context.Context, id string, fields models.DrillFields) (*models.Drill, error)
	DeleteDrill(ctx context.Context, id string) error
}

type drillItem struct {
	drill models.Drill
}

func (i drillItem) Title() string { return i.drill.Title }
func (i drillItem) Description() string {
	return fmt.Sprintf("%s · %s · %s", minutes(i.drill.DurationMinutes), i.drill.Difficulty, i.drill.Category)
}
func (i drillItem) FilterValue() string {
	return i.drill.Title + " " + i.drill.Description + " " + strings.Join(i.drill.Tags, " ")
}

type drillDelegate struct {
	styles *styles.Styles
	width  int
}

func (d drillDelegate) Height() int                               { return 2 }
func (d drillDelegate) Spacing() int                              { return 1 }
func (d drillDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d drillDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(drillItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	titleStyle := d.styles.ListItem.Width(width)
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
	}

	meta := drillMeta(d.styles, it.drill)
	if len(it.drill.Tags) > 0 {
		meta += d.styles.DrillMeta.Render("  #" + strings.Join(it.drill.Tags, " #"))
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(it.Title()), d.styles.DrillItem.Render(" "+meta))
}

const (
	fieldTitle = iota
	fieldDescription
	fieldDuration
	fieldDifficulty
	fieldCategory
	fieldTags
	fieldDiagram
	fieldSave
	fieldCount
)

// LibraryView lists, creates, edits and deletes drills
type LibraryView struct {
	library  DrillLibrary
	list     list.Model
	delegate *drillDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	status   status

	confirmingDelete bool
	deleteTarget     models.Drill

	// Create/edit form
	editing       bool
	editingID     string // empty when creating
	focusIdx      int
	titleInput    textinput.Model
	descInput     textinput.Model
	durationInput textinput.Model
	tagsInput     textinput.Model
	diagramInput  textinput.Model
	difficultyIdx int
	categoryIdx   int

	showHelpPopup bool
}

func NewLibraryView(library DrillLibrary) *LibraryView {
	s := styles.NewStyles()

	titleInput := textinput.New()
	titleInput.Placeholder = "Drill title"
	titleInput.CharLimit = 120

	descInput := textinput.New()
	descInput.Placeholder = "Description (optional)"
	descInput.CharLimit = 500

	durationInput := textinput.New()
	durationInput.Placeholder = "Minutes"
	durationInput.CharLimit = 3

	tagsInput := textinput.New()
	tagsInput.Placeholder = "warmup, serve receive"
	tagsInput.CharLimit = 200

	diagramInput := textinput.New()
	diagramInput.Placeholder = "Diagram URL (optional)"
	diagramInput.CharLimit = 300

	delegate := &drillDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Drill Library"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &LibraryView{
		library:       library,
		list:          l,
		delegate:      delegate,
		styles:        s,
		keys:          keys.DefaultKeyMap(),
		titleInput:    titleInput,
		descInput:     descInput,
		durationInput: durationInput,
		tagsInput:     tagsInput,
		diagramInput:  diagramInput,
	}
}

func (v *LibraryView) Init() tea.Cmd {
	return v.loadDrills
}

func (v *LibraryView) loadDrills() tea.Msg {
	drills, err := v.library.ListDrills(context.Background())
	if err != nil {
		return libraryFailedMsg{err: err}
	}
	return libraryLoadedMsg{drills: drills}
}

type libraryLoadedMsg struct {
	drills []models.Drill
}

type libraryFailedMsg struct {
	err error
}

func (v *LibraryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-7)
		return v, nil

	case libraryLoadedMsg:
		items := make([]list.Item, len(msg.drills))
		for i, d := range msg.drills {
			items[i] = drillItem{drill: d}
		}
		cmd := v.list.SetItems(items)
		v.loaded = true
		return v, cmd

	case libraryFailedMsg:
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

		if v.editing {
			return v.updateEditing(msg)
		}

		// While the list filter is open every key belongs to it
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Builder):
			if v.list.FilterState() == list.FilterApplied && key.Matches(msg, v.keys.Back) {
				v.list.ResetFilter()
				return v, nil
			}
			return v, func() tea.Msg { return BackToBuilder{} }
		case key.Matches(msg, v.keys.History):
			return v, func() tea.Msg { return OpenHistory{} }
		case key.Matches(msg, v.keys.New):
			v.startForm(nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(drillItem); ok {
				v.startForm(&item.drill)
				return v, textinput.Blink
			}
			return v, nil
		case key.Matches(msg, v.keys.Add):
			if item, ok := v.list.SelectedItem().(drillItem); ok {
				d := item.drill
				v.status = status{text: "Added " + d.Title + " to the plan", level: statusInfo}
				return v, func() tea.Msg { return AddToPlan{Drill: d} }
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(drillItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.drill
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *LibraryView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.library.DeleteDrill(context.Background(), v.deleteTarget.ID); err != nil {
			v.status = errorStatus(err)
			return v, nil
		}
		v.status = status{text: "Deleted " + v.deleteTarget.Title, level: statusInfo}
		return v, tea.Batch(v.loadDrills, drillsChanged)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func drillsChanged() tea.Msg { return DrillsChanged{} }

func (v *LibraryView) startForm(d *models.Drill) {
	v.editing = true
	v.focusIdx = fieldTitle
	v.status = status{}
	if d == nil {
		v.editingID = ""
		v.titleInput.Reset()
		v.descInput.Reset()
		v.durationInput.SetValue("10")
		v.tagsInput.Reset()
		v.diagramInput.Reset()
		v.difficultyIdx = 0
		v.categoryIdx = 0
	} else {
		v.editingID = d.ID
		v.titleInput.SetValue(d.Title)
		v.descInput.SetValue(d.Description)
		v.durationInput.SetValue(strconv.Itoa(d.DurationMinutes))
		v.tagsInput.SetValue(strings.Join(d.Tags, ", "))
		v.diagramInput.SetValue(d.DiagramURL)
		v.difficultyIdx = indexOf(models.Difficulties, d.Difficulty)
		v.categoryIdx = indexOf(models.Categories, d.Category)
	}
	v.updateFocus()
}

func indexOf[T comparable](all []T, want T) int {
	for i, x := range all {
		if x == want {
			return i
		}
	}
	return 0
}

func (v *LibraryView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.status = status{}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveDrill()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + fieldCount - 1) % fieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % fieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == fieldSave {
			return v, v.saveDrill()
		}
		v.focusIdx++
		v.updateFocus()
		return v, nil

	case msg.String() == "left" || msg.String() == "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch v.focusIdx {
		case fieldDifficulty:
			n := len(models.Difficulties)
			v.difficultyIdx = (v.difficultyIdx + step + n) % n
			return v, nil
		case fieldCategory:
			n := len(models.Categories)
			v.categoryIdx = (v.categoryIdx + step + n) % n
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case fieldTitle:
		v.titleInput, cmd = v.titleInput.Update(msg)
	case fieldDescription:
		v.descInput, cmd = v.descInput.Update(msg)
	case fieldDuration:
		v.durationInput, cmd = v.durationInput.Update(msg)
	case fieldTags:
		v.tagsInput, cmd = v.tagsInput.Update(msg)
	case fieldDiagram:
		v.diagramInput, cmd = v.diagramInput.Update(msg)
	}
	return v, cmd
}

func (v *LibraryView) updateFocus() {
	inputs := map[int]*textinput.Model{
		fieldTitle:       &v.titleInput,
		fieldDescription: &v.descInput,
		fieldDuration:    &v.durationInput,
		fieldTags:        &v.tagsInput,
		fieldDiagram:     &v.diagramInput,
	}
	for idx, in := range inputs {
		if idx == v.focusIdx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (v *LibraryView) formFields() (models.DrillFields, error) {
	mins, err := strconv.Atoi(strings.TrimSpace(v.durationInput.Value()))
	if err != nil {
		return models.DrillFields{}, fmt.Errorf("duration must be a whole number of minutes")
	}
	return models.DrillFields{
		Title:           v.titleInput.Value(),
		Description:     v.descInput.Value(),
		DurationMinutes: mins,
		Difficulty:      models.Difficulties[v.difficultyIdx],
		Category:        models.Categories[v.categoryIdx],
		Tags:            models.ParseTags(v.tagsInput.Value()),
		DiagramURL:      v.diagramInput.Value(),
	}, nil
}

// saveDrill writes the form. The form stays open on error so nothing typed is lost.
func (v *LibraryView) saveDrill() tea.Cmd {
	fields, err := v.formFields()
	if err != nil {
		v.status = status{text: "Invalid input: " + err.Error(), level: statusError}
		return nil
	}

	ctx := context.Background()
	var saved *models.Drill
	if v.editingID == "" {
		saved, err = v.library.CreateDrill(ctx, fields)
	} else {
		saved, err = v.library.UpdateDrill(ctx, v.editingID, fields)
	}
	if err != nil {
		v.status = errorStatus(err)
		return nil
	}

	v.editing = false
	v.status = status{text: "Saved " + saved.Title, level: statusOK}
	return tea.Batch(v.loadDrills, drillsChanged)
}

// View renders the view
func (v *LibraryView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderConfirm(v.styles, "Delete Drill?",
			fmt.Sprintf("%q is removed from the library.", v.deleteTarget.Title), v.width, v.height)
	}

	if v.editing {
		return v.renderForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.status.render(v.styles) + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *LibraryView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Drills"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first drill"),
		"",
		s.ButtonPrimary.Render(" New Drill "),
		"",
		v.status.render(s),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *LibraryView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	field := func(idx int) lipgloss.Style {
		if v.focusIdx == idx {
			return s.InputFocused.Width(inputWidth)
		}
		return s.Input.Width(inputWidth)
	}
	selector := func(idx int, value string) string {
		st := field(idx)
		if v.focusIdx == idx {
			return st.Render("◀ " + value + " ▶")
		}
		return st.Render(value)
	}
	btnStyle := s.Button
	if v.focusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	heading := "New Drill"
	if v.editingID != "" {
		heading = "Edit Drill"
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		"Title:",
		field(fieldTitle).Render(v.titleInput.View()),
		"Description:",
		field(fieldDescription).Render(v.descInput.View()),
		"Duration (minutes):",
		field(fieldDuration).Render(v.durationInput.View()),
		"Difficulty:",
		selector(fieldDifficulty, string(models.Difficulties[v.difficultyIdx])),
		"Category:",
		selector(fieldCategory, string(models.Categories[v.categoryIdx])),
		"Tags (comma separated):",
		field(fieldTags).Render(v.tagsInput.View()),
		"Diagram:",
		field(fieldDiagram).Render(v.diagramInput.View()),
		"",
		btnStyle.Render(" Save "),
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *LibraryView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s add to plan • %s new • %s edit • %s del • %s filter • %s builder • %s quit",
			v.styles.HelpKey.Render("a"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *LibraryView) renderHelpPopup() string {
	s := v.styles
	return renderPopup(s, "Keyboard Shortcuts", []string{
		s.HelpKey.Render("a ↵") + "    add drill to plan",
		s.HelpKey.Render("n") + "      new drill",
		s.HelpKey.Render("e") + "      edit drill",
		s.HelpKey.Render("d") + "      delete drill",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("esc") + "    back to builder",
		s.HelpKey.Render("3") + "      history",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}, v.width, v.height)
}
