package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/logger"
	"github.com/tgienger/skyhawk/internal/models"
	"github.com/tgienger/skyhawk/internal/ui/keys"
	"github.com/tgienger/skyhawk/internal/ui/styles"
)

// BuilderFocus is the pane that receives navigation keys
type BuilderFocus int

const (
	FocusCatalog BuilderFocus = iota
	FocusPlan
)

// BuilderView composes a practice plan from the drill library
type BuilderView struct {
	catalog   builder.Catalog
	store     *builder.DraftStore
	committer *builder.Committer
	log       *logger.Logger
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	// Library pane
	allDrills  []models.Drill
	drills     []models.Drill // filtered, in section order
	loaded     bool
	catCursor  int
	catScroll  int
	searching  bool
	search     textinput.Model
	focus      BuilderFocus
	planCursor int
	planScroll int

	// Placement picked up for a move. Empty when nothing is held.
	grabbedID string

	// Plan header form
	editingHeader  bool
	titleInput     textinput.Model
	dateInput      textinput.Model
	headerFocusIdx int // 0=title, 1=date, 2=apply

	saving          bool
	confirmingReset bool
	showHelpPopup   bool
	status          status
}

// NewBuilderView creates the builder over an already constructed draft store
func NewBuilderView(catalog builder.Catalog, store *builder.DraftStore, committer *builder.Committer, log *logger.Logger) *BuilderView {
	if log == nil {
		log = logger.Nop()
	}

	search := textinput.New()
	search.Placeholder = "Search drills..."
	search.CharLimit = 100

	titleInput := textinput.New()
	titleInput.Placeholder = models.DefaultDraftTitle
	titleInput.CharLimit = 120

	dateInput := textinput.New()
	dateInput.Placeholder = "YYYY-MM-DD"
	dateInput.CharLimit = len(models.DateLayout)

	return &BuilderView{
		catalog:    catalog,
		store:      store,
		committer:  committer,
		log:        log.With("view", "builder"),
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		search:     search,
		titleInput: titleInput,
		dateInput:  dateInput,
	}
}

type drillsLoadedMsg struct {
	drills []models.Drill
}

type catalogFailedMsg struct {
	err error
}

// Init loads the draft and the drill library
func (v *BuilderView) Init() tea.Cmd {
	v.store.Snapshot()
	return v.loadDrills
}

func (v *BuilderView) loadDrills() tea.Msg {
	drills, err := v.catalog.ListDrills(context.Background())
	if err != nil {
		return catalogFailedMsg{err: err}
	}
	return drillsLoadedMsg{drills: drills}
}

// Draft returns a snapshot of the plan being built
func (v *BuilderView) Draft() models.Draft {
	return v.store.Snapshot()
}

// Saving reports whether a commit is in flight
func (v *BuilderView) Saving() bool {
	return v.saving
}

// Update handles messages
func (v *BuilderView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case drillsLoadedMsg:
		v.allDrills = msg.drills
		v.loaded = true
		v.applyFilter()
		return v, nil

	case DrillsChanged:
		return v, v.loadDrills

	case catalogFailedMsg:
		v.loaded = true
		v.status = errorStatus(msg.err)
		return v, nil

	case AddToPlan:
		v.add(msg.Drill)
		return v, nil

	case LoadPractice:
		v.loadPractice(msg.Practice)
		return v, nil

	case CommitFinished:
		if msg.Err != nil {
			v.saving = false
			v.status = errorStatus(msg.Err)
			return v, nil
		}
		return v, v.handleCommitted(msg.Result)

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingReset {
			return v.updateConfirmReset(msg)
		}
		if v.editingHeader {
			return v.updateHeader(msg)
		}
		if v.searching {
			return v.updateSearch(msg)
		}
		if v.grabbedID != "" {
			return v.updateGrabbed(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BuilderView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Library):
		return v, func() tea.Msg { return OpenLibrary{} }

	case key.Matches(msg, v.keys.History):
		return v, func() tea.Msg { return OpenHistory{} }

	case key.Matches(msg, v.keys.Tab), msg.String() == "shift+tab":
		if v.focus == FocusCatalog {
			v.focus = FocusPlan
		} else {
			v.focus = FocusCatalog
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.focus = FocusCatalog
		v.search.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Back):
		if v.search.Value() != "" {
			v.search.Reset()
			v.applyFilter()
		}
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.save()

	// Checked before Up/Down: K and J are the shifted forms of k and j.
	case key.Matches(msg, v.keys.MoveUp):
		v.moveSelected(-1)
		return v, nil

	case key.Matches(msg, v.keys.MoveDown):
		v.moveSelected(1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		v.moveCursor(-1)
		return v, nil

	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)
		return v, nil

	case key.Matches(msg, v.keys.Grab) && v.focus == FocusPlan:
		v.grab()
		return v, nil

	case key.Matches(msg, v.keys.Add) && v.focus == FocusCatalog:
		if v.catCursor < len(v.drills) {
			v.add(v.drills[v.catCursor])
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete) && v.focus == FocusPlan:
		v.removeSelected()
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.blockedWhileSaving() {
			return v, nil
		}
		v.startEditHeader()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Reset):
		if v.blockedWhileSaving() {
			return v, nil
		}
		v.confirmingReset = true
		return v, nil
	}

	return v, nil
}

// updateGrabbed lets the cursor travel while a placement is held. Dropping
// moves the placement to the cursor position in one step.
func (v *BuilderView) updateGrabbed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.grabbedID = ""
		v.status = status{}
	case key.Matches(msg, v.keys.Up):
		v.moveCursor(-1)
	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)
	case key.Matches(msg, v.keys.Grab), key.Matches(msg, v.keys.Enter):
		v.drop()
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *BuilderView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.search.Reset()
		v.search.Blur()
		v.searching = false
		v.applyFilter()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.search.Blur()
		v.searching = false
		return v, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.applyFilter()
	return v, cmd
}

func (v *BuilderView) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingReset = false
		if err := v.store.Reset(); err != nil {
			v.noteLocal(err)
			return v, nil
		}
		v.planCursor, v.planScroll = 0, 0
		v.status = status{text: "Plan cleared", level: statusInfo}
	case "n", "N", "esc":
		v.confirmingReset = false
	}
	return v, nil
}

func (v *BuilderView) updateHeader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editingHeader = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		v.applyHeader()
		return v, nil

	case msg.String() == "shift+tab":
		v.headerFocusIdx = (v.headerFocusIdx + 2) % 3
		v.updateHeaderFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.headerFocusIdx = (v.headerFocusIdx + 1) % 3
		v.updateHeaderFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.headerFocusIdx < 2 {
			v.headerFocusIdx++
			v.updateHeaderFocus()
			return v, nil
		}
		v.applyHeader()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.headerFocusIdx {
	case 0:
		v.titleInput, cmd = v.titleInput.Update(msg)
	case 1:
		v.dateInput, cmd = v.dateInput.Update(msg)
	}
	return v, cmd
}

func (v *BuilderView) startEditHeader() {
	d := v.store.Snapshot()
	v.editingHeader = true
	v.headerFocusIdx = 0
	v.titleInput.SetValue(d.Title)
	v.dateInput.SetValue(models.FormatDate(d.Date))
	v.updateHeaderFocus()
}

func (v *BuilderView) updateHeaderFocus() {
	v.titleInput.Blur()
	v.dateInput.Blur()
	switch v.headerFocusIdx {
	case 0:
		v.titleInput.Focus()
	case 1:
		v.dateInput.Focus()
	}
}

func (v *BuilderView) applyHeader() {
	title := strings.TrimSpace(v.titleInput.Value())
	if title == "" {
		v.status = status{text: "Title is required", level: statusError}
		return
	}
	date, err := models.ParseDate(strings.TrimSpace(v.dateInput.Value()))
	if err != nil {
		v.status = status{text: "Date must look like 2026-10-19", level: statusError}
		return
	}
	v.editingHeader = false
	if err := errors.Join(v.store.SetTitle(title), v.store.SetDate(date)); err != nil {
		v.noteLocal(err)
		return
	}
	v.status = status{}
}

func (v *BuilderView) applyFilter() {
	filtered := builder.Filter(v.allDrills, v.search.Value())
	v.drills = v.drills[:0]
	for _, sec := range builder.GroupByCategory(filtered) {
		v.drills = append(v.drills, sec.Drills...)
	}
	v.catCursor = clamp(v.catCursor, 0, max(0, len(v.drills)-1))
	v.catScroll = 0
	v.ensureVisible()
}

func (v *BuilderView) moveCursor(delta int) {
	if v.focus == FocusCatalog {
		v.catCursor = clamp(v.catCursor+delta, 0, max(0, len(v.drills)-1))
	} else {
		v.planCursor = clamp(v.planCursor+delta, 0, max(0, v.store.Snapshot().Len()-1))
	}
	v.ensureVisible()
}

// blockedWhileSaving keeps the draft still until the in-flight commit
// settles, since a successful commit clears it.
func (v *BuilderView) blockedWhileSaving() bool {
	if v.saving {
		v.status = status{text: "Saving... the plan is locked until it finishes", level: statusInfo}
	}
	return v.saving
}

func (v *BuilderView) add(d models.Drill) {
	if v.blockedWhileSaving() {
		return
	}
	err := v.store.Add(d)
	v.planCursor = v.store.Snapshot().Len() - 1
	v.ensureVisible()
	if err != nil {
		v.noteLocal(err)
		return
	}
	v.status = status{text: fmt.Sprintf("Added %s", d.Title), level: statusInfo}
}

func (v *BuilderView) removeSelected() {
	if v.blockedWhileSaving() {
		return
	}
	d := v.store.Snapshot()
	if v.planCursor >= d.Len() {
		return
	}
	err := v.store.Remove(d.Instances[v.planCursor].InstanceID)
	v.planCursor = clamp(v.planCursor, 0, max(0, d.Len()-2))
	v.ensureVisible()
	if err != nil {
		v.noteLocal(err)
	}
}

func (v *BuilderView) moveSelected(dir int) {
	if v.focus != FocusPlan || v.blockedWhileSaving() {
		return
	}
	d := v.store.Snapshot()
	if v.planCursor >= d.Len() {
		return
	}
	id := d.Instances[v.planCursor].InstanceID
	var err error
	if dir < 0 {
		err = v.store.MoveUp(id)
	} else {
		err = v.store.MoveDown(id)
	}
	v.planCursor = builder.IndexOf(v.store.Snapshot().Instances, id)
	v.ensureVisible()
	if err != nil {
		v.noteLocal(err)
	}
}

func (v *BuilderView) grab() {
	if v.blockedWhileSaving() {
		return
	}
	d := v.store.Snapshot()
	if v.planCursor >= d.Len() {
		return
	}
	in := d.Instances[v.planCursor]
	v.grabbedID = in.InstanceID
	v.status = status{text: "Moving " + in.Title + ": pick a spot, g or ↵ to drop, esc to cancel", level: statusInfo}
}

func (v *BuilderView) drop() {
	id := v.grabbedID
	v.grabbedID = ""
	v.status = status{}
	if v.blockedWhileSaving() {
		return
	}
	d := v.store.Snapshot()
	if v.planCursor >= d.Len() {
		return
	}
	err := v.store.Move(id, d.Instances[v.planCursor].InstanceID)
	v.planCursor = max(builder.IndexOf(v.store.Snapshot().Instances, id), 0)
	v.ensureVisible()
	if err != nil {
		v.noteLocal(err)
	}
}

func (v *BuilderView) loadPractice(p models.PracticeWithItems) {
	if v.blockedWhileSaving() {
		return
	}
	d := v.store.Snapshot()
	err := v.store.SetInstances(builder.AppendPractice(d.Instances, p))
	if err != nil {
		v.noteLocal(err)
		return
	}
	v.focus = FocusPlan
	v.status = status{text: fmt.Sprintf("Added %d drills from %s", len(p.Items), p.Title), level: statusInfo}
}

// noteLocal reports a draft that could not be written to local storage.
// The edit itself stays in place.
func (v *BuilderView) noteLocal(err error) {
	v.log.Warn("draft not persisted", "error", err)
	v.status = status{text: "Draft not saved locally: " + err.Error(), level: statusWarning}
}

// save commits a snapshot in the background. The snapshot is taken here so
// later edits never leak into the commit.
func (v *BuilderView) save() tea.Cmd {
	if v.saving {
		return nil
	}
	snap := v.store.Snapshot()
	if err := builder.Validate(snap); err != nil {
		v.status = errorStatus(err)
		return nil
	}
	v.saving = true
	v.status = status{text: "Saving...", level: statusInfo}
	committer := v.committer
	return func() tea.Msg {
		res, err := committer.Commit(context.Background(), snap)
		return CommitFinished{Result: res, Err: err}
	}
}

func (v *BuilderView) handleCommitted(res *builder.CommitResult) tea.Cmd {
	v.saving = false
	if err := v.store.Reset(); err != nil {
		v.log.Warn("draft not cleared after commit", "practice_id", res.Practice.ID, "error", err)
	}
	v.planCursor, v.planScroll = 0, 0

	text := fmt.Sprintf("Saved %q: %d drills, %s", res.Practice.Title, len(res.Items), minutes(res.TotalMinutes))
	level := statusOK
	for _, a := range res.Advisories {
		if a == builder.AdvisoryLongSession {
			text += " (long session)"
			level = statusWarning
		}
	}
	v.status = status{text: text, level: level}

	p := *res.Practice
	return func() tea.Msg { return PracticeSaved{Practice: p} }
}

// visibleRows is how many list rows fit in a pane
func (v *BuilderView) visibleRows() int {
	return max(v.height-12, 3)
}

func (v *BuilderView) ensureVisible() {
	rows := v.visibleRows()
	if v.catCursor < v.catScroll {
		v.catScroll = v.catCursor
	} else if v.catCursor >= v.catScroll+rows {
		v.catScroll = v.catCursor - rows + 1
	}
	if v.planCursor < v.planScroll {
		v.planScroll = max(v.planCursor, 0)
	} else if v.planCursor >= v.planScroll+rows {
		v.planScroll = v.planCursor - rows + 1
	}
}

// View renders the view
func (v *BuilderView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingReset {
		return renderConfirm(v.styles, "Clear Plan?", "Every drill in the current plan is removed.", v.width, v.height)
	}
	if v.editingHeader {
		return v.renderHeaderForm()
	}

	d := v.store.Snapshot()
	contentWidth := styles.ContentWidth(v.width)
	paneWidth := max((contentWidth-4)/2, 24)

	var b strings.Builder
	b.WriteString(v.renderHeader(d))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		v.renderCatalog(paneWidth),
		v.renderPlan(d, paneWidth),
	))
	b.WriteString("\n")
	b.WriteString(v.status.render(v.styles))
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *BuilderView) renderHeader(d models.Draft) string {
	s := v.styles
	title := s.Title.Render(d.Title) + "  " + s.TitleMuted.Render(models.FormatDate(d.Date))
	summary := s.PlanTotal.Render(fmt.Sprintf("%d drills · %s", d.Len(), minutes(d.TotalMinutes())))
	for _, a := range v.committer.Advise(d) {
		if a == builder.AdvisoryLongSession {
			summary += "  " + s.StatusWarning.Render("Long session")
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, summary)
}

func (v *BuilderView) renderCatalog(width int) string {
	s := v.styles
	pane := s.Pane
	if v.focus == FocusCatalog {
		pane = s.PaneFocused
	}

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	lines := []string{
		s.Title.Render("Drill Library"),
		searchStyle.Width(width - 6).Render(v.search.View()),
	}

	switch {
	case !v.loaded:
		lines = append(lines, s.TitleMuted.Render("Loading..."))
	case len(v.drills) == 0 && len(v.allDrills) == 0:
		lines = append(lines, s.TitleMuted.Render("No drills yet. Press 2 to open the library."))
	case len(v.drills) == 0:
		lines = append(lines, s.TitleMuted.Render("No drills match."))
	default:
		end := min(v.catScroll+v.visibleRows(), len(v.drills))
		var lastCat models.Category
		for i := v.catScroll; i < end; i++ {
			d := v.drills[i]
			if d.Category != lastCat {
				lines = append(lines, s.CategoryHeader.Render(string(d.Category)))
				lastCat = d.Category
			}
			row := s.DrillItem.Width(width - 4)
			if i == v.catCursor && v.focus == FocusCatalog {
				row = s.ListSelected.Width(width - 4)
			}
			lines = append(lines, row.Render(d.Title), "  "+drillMeta(s, d))
		}
	}

	return pane.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BuilderView) renderPlan(d models.Draft, width int) string {
	s := v.styles
	pane := s.Pane
	if v.focus == FocusPlan {
		pane = s.PaneFocused
	}

	lines := []string{s.Title.Render("Plan")}
	if d.IsEmpty() {
		lines = append(lines, s.TitleMuted.Render("Add drills from the library with a or ↵."))
	}
	elapsed := 0
	for i := 0; i < v.planScroll && i < d.Len(); i++ {
		elapsed += d.Instances[i].DurationMinutes
	}
	end := min(v.planScroll+v.visibleRows(), d.Len())
	for i := v.planScroll; i < end; i++ {
		in := d.Instances[i]
		row := s.DrillItem.Width(width - 8)
		if i == v.planCursor && v.focus == FocusPlan {
			row = s.ListSelected.Width(width - 8)
		}
		title := in.Title
		if in.InstanceID == v.grabbedID {
			title = "⇅ " + title
		}
		lines = append(lines,
			s.PlanIndex.Render(fmt.Sprintf("%d.", i+1))+row.Render(title),
			s.PlanIndex.Render("")+s.DrillMeta.Render(fmt.Sprintf("%s  +%d → %d min", in.Category, in.DurationMinutes, elapsed+in.DurationMinutes)),
		)
		elapsed += in.DurationMinutes
	}
	if !d.IsEmpty() {
		lines = append(lines, "", s.PlanTotal.Render("Total "+minutes(d.TotalMinutes())))
	}

	return pane.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BuilderView) renderHeaderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	dateStyle := s.Input
	btnStyle := s.Button
	switch v.headerFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		dateStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)
	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Plan Details"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.titleInput.View()),
		"",
		"Date:",
		dateStyle.Width(inputWidth).Render(v.dateInput.View()),
		"",
		btnStyle.Render(" Apply "),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • Ctrl+S: apply • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BuilderView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s pane • %s add • %s remove • %s/%s move • %s details • %s save • %s library • %s history • %s quit",
			s.HelpKey.Render("tab"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("K"),
			s.HelpKey.Render("J"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("ctrl+s"),
			s.HelpKey.Render("2"),
			s.HelpKey.Render("3"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *BuilderView) renderHelpPopup() string {
	s := v.styles
	return renderPopup(s, "Keyboard Shortcuts", []string{
		s.HelpKey.Render("tab") + "     switch library / plan",
		s.HelpKey.Render("/") + "       search drills",
		s.HelpKey.Render("a ↵") + "     add drill to plan",
		s.HelpKey.Render("d") + "       remove from plan",
		s.HelpKey.Render("K J") + "     move up / down",
		s.HelpKey.Render("g") + "       grab, then g or ↵ to drop",
		s.HelpKey.Render("e") + "       edit title and date",
		s.HelpKey.Render("ctrl+s") + "  save practice",
		s.HelpKey.Render("R") + "       clear plan",
		s.HelpKey.Render("2 3") + "     library / history",
		s.HelpKey.Render("q") + "       quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}, v.width, v.height)
}
