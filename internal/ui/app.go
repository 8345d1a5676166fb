package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/db"
	"github.com/tgienger/skyhawk/internal/logger"
	"github.com/tgienger/skyhawk/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewBuilder View = iota
	ViewLibrary
	ViewHistory
)

// lastViewKey is the settings key remembering the screen to reopen
const lastViewKey = "last_view"

func (v View) String() string {
	switch v {
	case ViewLibrary:
		return "library"
	case ViewHistory:
		return "history"
	}
	return "builder"
}

func parseView(s string) View {
	switch s {
	case "library":
		return ViewLibrary
	case "history":
		return ViewHistory
	}
	return ViewBuilder
}

type App struct {
	db          *db.DB
	log         *logger.Logger
	currentView View
	builder     *views.BuilderView
	library     *views.LibraryView
	history     *views.HistoryView
	width       int
	height      int
}

// Creates a new application. The draft store and committer are owned by the
// builder view for the lifetime of the program.
func NewApp(database *db.DB, store *builder.DraftStore, committer *builder.Committer, log *logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	return &App{
		db:          database,
		log:         log,
		currentView: ViewBuilder,
		builder:     views.NewBuilderView(database, store, committer, log),
		library:     views.NewLibraryView(database),
		history:     views.NewHistoryView(database),
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.builder.Init()}

	// Reopen the screen used last
	last, err := a.db.GetSetting(lastViewKey)
	if err != nil {
		a.log.Warn("read last view", "error", err)
	}
	if v := parseView(last); v != ViewBuilder {
		cmds = append(cmds, a.show(v))
	}
	return tea.Batch(cmds...)
}

// Current returns the active view
func (a *App) Current() View {
	return a.currentView
}

func (a *App) show(v View) tea.Cmd {
	a.currentView = v
	if err := a.db.SetSetting(lastViewKey, v.String()); err != nil {
		a.log.Warn("save last view", "view", v.String(), "error", err)
	}

	// Library and history reload every time they are opened
	switch v {
	case ViewLibrary:
		return a.library.Init()
	case ViewHistory:
		return a.history.Init()
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.BackToBuilder:
		return a, a.show(ViewBuilder)

	case views.OpenLibrary:
		return a, a.show(ViewLibrary)

	case views.OpenHistory:
		return a, a.show(ViewHistory)

	case tea.KeyMsg:
		// Keys only reach the screen on display
		var cmd tea.Cmd
		switch a.currentView {
		case ViewBuilder:
			_, cmd = a.builder.Update(msg)
		case ViewLibrary:
			_, cmd = a.library.Update(msg)
		case ViewHistory:
			_, cmd = a.history.Update(msg)
		}
		return a, cmd
	}

	// Everything else is broadcast. Loads and commits finish in the
	// background and must land on their own view even after a switch.
	_, builderCmd := a.builder.Update(msg)
	_, libraryCmd := a.library.Update(msg)
	_, historyCmd := a.history.Update(msg)
	return a, tea.Batch(builderCmd, libraryCmd, historyCmd)
}

func (a *App) View() string {
	switch a.currentView {
	case ViewLibrary:
		return a.library.View()
	case ViewHistory:
		return a.history.View()
	}
	return a.builder.View()
}
