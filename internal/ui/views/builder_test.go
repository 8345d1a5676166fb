package views

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/skyhawk/internal/models"
)

func TestBuilderAddMoveAndSave(t *testing.T) {
	database := openTestDB(t)
	createDrill(t, database, "Pepper", 10, models.Passing)
	createDrill(t, database, "Jump serve", 15, models.Serving)
	v := newBuilder(t, database)

	// Catalog is grouped Passing before Serving
	v.Update(runes("a"))
	v.Update(runes("j"))
	v.Update(runes("a"))
	if got := titlesOf(v.Draft()); !equal(got, []string{"Pepper", "Jump serve"}) {
		t.Fatalf("after add got %v", got)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(runes("K"))
	if got := titlesOf(v.Draft()); !equal(got, []string{"Jump serve", "Pepper"}) {
		t.Fatalf("after move up got %v", got)
	}

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil || !v.Saving() {
		t.Fatalf("ctrl+s should start a commit")
	}

	// Edits wait for the commit
	v.Update(runes("d"))
	if v.Draft().Len() != 2 {
		t.Fatalf("remove must be blocked while saving")
	}
	if _, again := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); again != nil {
		t.Fatalf("second save while saving should be ignored")
	}

	msgs := collect(cmd)
	finished, ok := msgs[0].(CommitFinished)
	if !ok || finished.Err != nil {
		t.Fatalf("expected a successful CommitFinished, got %#v", msgs[0])
	}
	_, cmd = v.Update(finished)
	if v.Saving() {
		t.Fatalf("saving flag should clear")
	}
	if v.Draft().Len() != 0 || v.Draft().Title != models.DefaultDraftTitle {
		t.Fatalf("draft should reset after commit, got %+v", v.Draft())
	}
	saved, ok := collect(cmd)[0].(PracticeSaved)
	if !ok {
		t.Fatalf("expected PracticeSaved")
	}

	p, err := database.GetPracticeWithItems(context.Background(), saved.Practice.ID)
	if err != nil {
		t.Fatalf("GetPracticeWithItems: %v", err)
	}
	if len(p.Items) != 2 || p.Items[0].Drill.Title != "Jump serve" || p.Items[1].Drill.Title != "Pepper" {
		t.Fatalf("stored order wrong: %+v", p.Items)
	}
	if !strings.Contains(v.status.text, "25 min") {
		t.Fatalf("status = %q", v.status.text)
	}
}

func TestBuilderFailedCommitKeepsDraft(t *testing.T) {
	database := openTestDB(t)
	pepper := createDrill(t, database, "Pepper", 10, models.Passing)
	v := newBuilder(t, database)

	v.Update(runes("a"))
	// The drill disappears before the plan is saved
	if err := database.DeleteDrill(context.Background(), pepper.ID); err != nil {
		t.Fatalf("DeleteDrill: %v", err)
	}

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	finished := collect(cmd)[0].(CommitFinished)
	if finished.Err == nil {
		t.Fatalf("commit of a deleted drill should fail")
	}
	v.Update(finished)

	if v.Saving() {
		t.Fatalf("saving flag should clear on failure")
	}
	if got := titlesOf(v.Draft()); !equal(got, []string{"Pepper"}) {
		t.Fatalf("draft must survive a failed commit, got %v", got)
	}
	if v.status.level != statusError {
		t.Fatalf("status level = %v", v.status.level)
	}
	n, err := database.PracticeCount(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("PracticeCount = %d, %v", n, err)
	}
}

func TestBuilderRemoveAndReset(t *testing.T) {
	database := openTestDB(t)
	createDrill(t, database, "Pepper", 10, models.Passing)
	v := newBuilder(t, database)

	v.Update(runes("a"))
	v.Update(runes("a"))
	v.Update(runes("a"))

	// Delete only acts on the plan pane
	v.Update(runes("d"))
	if v.Draft().Len() != 3 {
		t.Fatalf("delete in the catalog pane must not touch the plan")
	}
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(runes("d"))
	if v.Draft().Len() != 2 {
		t.Fatalf("len = %d, want 2", v.Draft().Len())
	}

	v.Update(runes("R"))
	v.Update(runes("n"))
	if v.Draft().Len() != 2 {
		t.Fatalf("declined reset cleared the plan")
	}
	v.Update(runes("R"))
	v.Update(runes("y"))
	if v.Draft().Len() != 0 {
		t.Fatalf("reset should clear the plan")
	}
}

func TestBuilderEditHeader(t *testing.T) {
	database := openTestDB(t)
	v := newBuilder(t, database)

	v.Update(runes("e"))
	v.Update(runes("!"))
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if got := v.Draft().Title; got != models.DefaultDraftTitle+"!" {
		t.Fatalf("title = %q", got)
	}
	if v.editingHeader {
		t.Fatalf("form should close after apply")
	}
}

func TestBuilderSearchFiltersCatalog(t *testing.T) {
	database := openTestDB(t)
	createDrill(t, database, "Pepper", 10, models.Passing)
	createDrill(t, database, "Jump serve", 15, models.Serving)
	v := newBuilder(t, database)

	v.Update(runes("/"))
	v.Update(runes("serve"))
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(v.drills) != 1 || v.drills[0].Title != "Jump serve" {
		t.Fatalf("filtered drills = %+v", v.drills)
	}

	v.Update(runes("a"))
	if got := titlesOf(v.Draft()); !equal(got, []string{"Jump serve"}) {
		t.Fatalf("got %v", got)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(v.drills) != 2 {
		t.Fatalf("esc should clear the filter")
	}
}

func TestBuilderLoadPracticeAppends(t *testing.T) {
	database := openTestDB(t)
	pepper := createDrill(t, database, "Pepper", 10, models.Passing)
	v := newBuilder(t, database)
	v.Update(runes("a"))

	v.Update(LoadPractice{Practice: models.PracticeWithItems{
		Practice: models.Practice{Title: "Monday"},
		Items:    []models.PracticeEntry{{Drill: pepper}, {Drill: pepper}},
	}})

	d := v.Draft()
	if d.Len() != 3 {
		t.Fatalf("len = %d, want 3", d.Len())
	}
	seen := map[string]bool{}
	for _, in := range d.Instances {
		if seen[in.InstanceID] {
			t.Fatalf("duplicate instance id %s", in.InstanceID)
		}
		seen[in.InstanceID] = true
	}
}

func TestBuilderViewRendersPlan(t *testing.T) {
	database := openTestDB(t)
	createDrill(t, database, "Pepper", 10, models.Passing)
	v := newBuilder(t, database)
	v.Update(runes("a"))

	out := v.View()
	for _, want := range []string{"Pepper", "PASSING"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestBuilderGrabAndDropMovesAcrossThePlan(t *testing.T) {
	database := openTestDB(t)
	createDrill(t, database, "Pepper", 10, models.Passing)
	createDrill(t, database, "Queen of the court", 20, models.Competition)
	createDrill(t, database, "Jump serve", 15, models.Serving)
	v := newBuilder(t, database)

	// Catalog order is Passing, Serving, Competition
	v.Update(runes("a"))
	v.Update(runes("j"))
	v.Update(runes("a"))
	v.Update(runes("j"))
	v.Update(runes("a"))
	if got := titlesOf(v.Draft()); !equal(got, []string{"Pepper", "Jump serve", "Queen of the court"}) {
		t.Fatalf("after add got %v", got)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v.Update(runes("k"))
	v.Update(runes("k"))
	v.Update(runes("g"))
	v.Update(runes("j"))
	v.Update(runes("j"))
	if got := titlesOf(v.Draft()); !equal(got, []string{"Pepper", "Jump serve", "Queen of the court"}) {
		t.Fatalf("plan must not change before the drop, got %v", got)
	}
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := titlesOf(v.Draft()); !equal(got, []string{"Jump serve", "Queen of the court", "Pepper"}) {
		t.Fatalf("after drop got %v", got)
	}
	if v.planCursor != 2 {
		t.Fatalf("cursor should follow the dropped drill, got %d", v.planCursor)
	}

	// Cancelled grabs leave the order alone
	v.Update(runes("g"))
	v.Update(runes("k"))
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.grabbedID != "" {
		t.Fatalf("esc should release the grabbed drill")
	}
	if got := titlesOf(v.Draft()); !equal(got, []string{"Jump serve", "Queen of the court", "Pepper"}) {
		t.Fatalf("after cancel got %v", got)
	}
}
