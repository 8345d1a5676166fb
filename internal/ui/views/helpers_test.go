package views

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/db"
	"github.com/tgienger/skyhawk/internal/models"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "skyhawk.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if _, err := database.SignIn(context.Background(), "riley"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	return database
}

func createDrill(t *testing.T, database *db.DB, title string, minutes int, category models.Category) models.Drill {
	t.Helper()
	d, err := database.CreateDrill(context.Background(), models.DrillFields{
		Title:           title,
		DurationMinutes: minutes,
		Difficulty:      models.Beginner,
		Category:        category,
	})
	if err != nil {
		t.Fatalf("CreateDrill(%s): %v", title, err)
	}
	return *d
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and returns every message it produces, flattening batches
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func titlesOf(d models.Draft) []string {
	out := make([]string, len(d.Instances))
	for i, in := range d.Instances {
		out[i] = in.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newBuilder(t *testing.T, database *db.DB) *BuilderView {
	t.Helper()
	store := builder.NewDraftStore(builder.NewMemoryMedium(), nil)
	v := NewBuilderView(database, store, builder.NewCommitter(database, nil), nil)
	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	for _, msg := range collect(v.Init()) {
		v.Update(msg)
	}
	return v
}
