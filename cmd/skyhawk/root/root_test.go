package root

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/db"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SKYHAWK_DATA_DIR", dataDir)
	t.Setenv("SKYHAWK_DB_PATH", "")
	t.Setenv("SKYHAWK_COACH", "riley")
	t.Setenv("SKYHAWK_DRAFT_BACKEND", "file")
	t.Setenv("SKYHAWK_REDIS_ADDR", "")
	t.Setenv("SKYHAWK_LONG_SESSION_MINUTES", "")
	t.Setenv("SKYHAWK_LOG_LEVEL", "debug")
	return dataDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-v"} {
		out, err := run(t, flag)
		if err != nil {
			t.Fatalf("%s: %v", flag, err)
		}
		if !strings.HasPrefix(out, "skyhawk dev") {
			t.Fatalf("%s: got %q", flag, out)
		}
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "drills")
	if err == nil {
		t.Fatalf("expected error for a missing --config file")
	}
}

func TestDrillsAddAndList(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "drills", "add", "Pepper", "-m", "10", "-c", "Passing", "-t", "warmup, pairs"); err != nil {
		t.Fatalf("drills add: %v", err)
	}
	if _, err := run(t, "drills", "add", "Jump serve", "-m", "15", "-c", "Serving", "--difficulty", "Advanced"); err != nil {
		t.Fatalf("drills add: %v", err)
	}

	out, err := run(t, "drills")
	if err != nil {
		t.Fatalf("drills: %v", err)
	}
	passing := strings.Index(out, "PASSING")
	serving := strings.Index(out, "SERVING")
	if passing < 0 || serving < 0 || passing > serving {
		t.Fatalf("categories missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, "pairs,warmup") {
		t.Fatalf("tags not listed:\n%s", out)
	}

	out, err = run(t, "drills", "--search", "serve")
	if err != nil {
		t.Fatalf("drills --search: %v", err)
	}
	if strings.Contains(out, "Pepper") || !strings.Contains(out, "Jump serve") {
		t.Fatalf("search output:\n%s", out)
	}
}

func TestDrillsAddRejectsBadInput(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "drills", "add", "Pepper", "-m", "0"); err == nil {
		t.Fatalf("expected a validation error for zero minutes")
	}
	if _, err := run(t, "drills", "add", "Pepper", "-c", "Swimming"); err == nil {
		t.Fatalf("expected a validation error for an unknown category")
	}
}

func TestDraftSaveCommitsAndClears(t *testing.T) {
	dataDir := setupEnv(t)
	if _, err := run(t, "drills", "add", "Pepper", "-m", "10"); err != nil {
		t.Fatalf("drills add: %v", err)
	}

	// Put the drill in the draft file the way the builder view would
	database, err := db.New(filepath.Join(dataDir, "skyhawk.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := database.SignIn(context.Background(), "riley"); err != nil {
		t.Fatal(err)
	}
	drills, err := database.ListDrills(context.Background())
	database.Close()
	if err != nil || len(drills) != 1 {
		t.Fatalf("ListDrills: %v %v", drills, err)
	}
	draftPath := filepath.Join(dataDir, "builder_state.json")
	store := builder.NewDraftStore(builder.NewFileMedium(draftPath), nil)
	if err := store.SetTitle("Tuesday"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(drills[0]); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(drills[0]); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "draft")
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if !strings.Contains(out, "Tuesday") || !strings.Contains(out, "Total: 2 drills, 20 min") {
		t.Fatalf("draft output:\n%s", out)
	}

	out, err = run(t, "draft", "save")
	if err != nil {
		t.Fatalf("draft save: %v", err)
	}
	if !strings.Contains(out, `Saved "Tuesday": 2 drills, 20 min`) {
		t.Fatalf("save output:\n%s", out)
	}
	if _, err := os.Stat(draftPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("draft file should be gone after save: %v", err)
	}

	out, err = run(t, "practices")
	if err != nil {
		t.Fatalf("practices: %v", err)
	}
	if !strings.Contains(out, "Tuesday") {
		t.Fatalf("practices output:\n%s", out)
	}
	id := strings.Fields(strings.TrimSpace(out))[2]
	out, err = run(t, "practices", "show", id)
	if err != nil {
		t.Fatalf("practices show: %v", err)
	}
	if !strings.Contains(out, "Total: 2 drills, 20 min") {
		t.Fatalf("show output:\n%s", out)
	}
}

func TestDraftClear(t *testing.T) {
	dataDir := setupEnv(t)
	draftPath := filepath.Join(dataDir, "builder_state.json")
	store := builder.NewDraftStore(builder.NewFileMedium(draftPath), nil)
	if err := store.SetTitle("Scratch"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "draft", "clear"); err != nil {
		t.Fatalf("draft clear: %v", err)
	}
	if _, err := os.Stat(draftPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("draft file should be gone: %v", err)
	}
}

func TestUnreachableRedisFallsBackToDraftFile(t *testing.T) {
	dataDir := setupEnv(t)
	t.Setenv("SKYHAWK_DRAFT_BACKEND", "redis")
	t.Setenv("SKYHAWK_REDIS_ADDR", "127.0.0.1:1")

	a, err := openApp(context.Background(), &options{})
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	if _, ok := a.medium.(*builder.FileMedium); !ok {
		t.Fatalf("medium = %T, want *builder.FileMedium", a.medium)
	}
	if err := a.draftStore().SetTitle("Wednesday"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	a.close()

	// The edit survives into the next run
	store := builder.NewDraftStore(builder.NewFileMedium(filepath.Join(dataDir, "builder_state.json")), nil)
	if got := store.Load().Title; got != "Wednesday" {
		t.Fatalf("title = %q, want Wednesday", got)
	}
}
