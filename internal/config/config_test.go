package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SKYHAWK_DATA_DIR", "SKYHAWK_DB_PATH", "SKYHAWK_COACH", "SKYHAWK_DRAFT_BACKEND",
		"SKYHAWK_REDIS_ADDR", "SKYHAWK_LONG_SESSION_MINUTES", "SKYHAWK_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Draft.Backend != DraftBackendFile {
		t.Fatalf("Draft.Backend: want=%q got=%q", DraftBackendFile, cfg.Draft.Backend)
	}
	if cfg.LongSessionMinutes != 120 {
		t.Fatalf("LongSessionMinutes: want=%d got=%d", 120, cfg.LongSessionMinutes)
	}
	wantDir := filepath.Join(dataHome, AppName)
	if cfg.DataDir != wantDir {
		t.Fatalf("DataDir: want=%q got=%q", wantDir, cfg.DataDir)
	}
	if cfg.DBPath != filepath.Join(wantDir, "skyhawk.db") {
		t.Fatalf("DBPath: got=%q", cfg.DBPath)
	}
	if cfg.Draft.Path != filepath.Join(wantDir, "builder_state.json") {
		t.Fatalf("Draft.Path: got=%q", cfg.Draft.Path)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := strings.TrimSpace(`
data_dir: /tmp/skyhawk-test
coach: riley
draft:
  backend: redis
redis:
  addr: redis:6379
  key: plans:draft
  timeout: 500ms
long_session_minutes: 90
remote_timeout: 3s
log:
  level: debug
`)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Coach != "riley" {
		t.Fatalf("Coach: want=%q got=%q", "riley", cfg.Coach)
	}
	if cfg.Draft.Backend != DraftBackendRedis {
		t.Fatalf("Draft.Backend: want=%q got=%q", DraftBackendRedis, cfg.Draft.Backend)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.Key != "plans:draft" {
		t.Fatalf("Redis: got=%+v", cfg.Redis)
	}
	if cfg.Redis.Timeout != 500*time.Millisecond {
		t.Fatalf("Redis.Timeout: want=%v got=%v", 500*time.Millisecond, cfg.Redis.Timeout)
	}
	if cfg.LongSessionMinutes != 90 {
		t.Fatalf("LongSessionMinutes: want=%d got=%d", 90, cfg.LongSessionMinutes)
	}
	if cfg.RemoteTimeout != 3*time.Second {
		t.Fatalf("RemoteTimeout: want=%v got=%v", 3*time.Second, cfg.RemoteTimeout)
	}
	if cfg.DBPath != "/tmp/skyhawk-test/skyhawk.db" {
		t.Fatalf("DBPath: got=%q", cfg.DBPath)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("long_session_minutes: 90\ncoach: riley\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SKYHAWK_DATA_DIR", dir)
	t.Setenv("SKYHAWK_LONG_SESSION_MINUTES", "45")
	t.Setenv("SKYHAWK_COACH", "sam")
	t.Setenv("SKYHAWK_DRAFT_BACKEND", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LongSessionMinutes != 45 {
		t.Fatalf("LongSessionMinutes: want=%d got=%d", 45, cfg.LongSessionMinutes)
	}
	if cfg.Coach != "sam" {
		t.Fatalf("Coach: want=%q got=%q", "sam", cfg.Coach)
	}
	if cfg.Draft.Backend != DraftBackendMemory {
		t.Fatalf("Draft.Backend: want=%q got=%q", DraftBackendMemory, cfg.Draft.Backend)
	}
	if cfg.DataDir != dir {
		t.Fatalf("DataDir: want=%q got=%q", dir, cfg.DataDir)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"backend":   func(c *Config) { c.Draft.Backend = "s3" },
		"threshold": func(c *Config) { c.LongSessionMinutes = 0 },
		"timeout":   func(c *Config) { c.RemoteTimeout = 0 },
		"level":     func(c *Config) { c.Log.Level = "loud" },
		"redis":     func(c *Config) { c.Draft.Backend = DraftBackendRedis; c.Redis.Addr = " " },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
