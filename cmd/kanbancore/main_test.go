package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kanbancore/internal/app"
	"kanbancore/internal/config"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "kv")
	cfg := "store:\n  driver: fs\n  fs_root: " + root + "\nlog:\n  level: error\n"
	path := filepath.Join(dir, "kanban.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, root
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestMainUsesExitFunc(t *testing.T) {
	orig, origArgs := exitFunc, os.Args
	defer func() { exitFunc, os.Args = orig, origArgs }()
	got := -1
	exitFunc = func(code int) { got = code }
	os.Args = []string{"kanbancore"}
	main()
	if got != 2 {
		t.Fatalf("expected exit code 2 without a command, got %d", got)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg, _ := writeConfig(t)
	if code, _, _ := run(t, "-bogus"); code != 2 {
		t.Fatalf("unknown flag: expected 2, got %d", code)
	}
	if code, _, stderr := run(t, "-config", cfg, "frobnicate"); code != 2 || !strings.Contains(stderr, "unknown command") {
		t.Fatalf("unknown command: code %d stderr %q", code, stderr)
	}
	if code, _, stderr := run(t, "-config", cfg, "board"); code != 2 || !strings.Contains(stderr, "-project is required") {
		t.Fatalf("board without project: code %d stderr %q", code, stderr)
	}
}

func TestMissingConfigFails(t *testing.T) {
	code, _, stderr := run(t, "-config", filepath.Join(t.TempDir(), "absent.yaml"), "summary")
	if code != 1 || !strings.Contains(stderr, "read config") {
		t.Fatalf("code %d stderr %q", code, stderr)
	}
}

func TestSummaryListsSeedProjects(t *testing.T) {
	cfg, _ := writeConfig(t)
	code, out, stderr := run(t, "-config", cfg, "summary")
	if code != 0 {
		t.Fatalf("summary failed: %d %s", code, stderr)
	}
	for _, want := range []string{"source: seed", "Web Platform", "Mobile App", "Spring Campaign", "users: 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestBoardPrintsEveryLane(t *testing.T) {
	cfg, _ := writeConfig(t)
	code, out, stderr := run(t, "-config", cfg, "board", "-project", "p1")
	if code != 0 {
		t.Fatalf("board failed: %d %s", code, stderr)
	}
	for _, want := range []string{"p1 Web Platform", "To Do (1)", "In Progress (1)", "3-D Secure flow", "Landing page copy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("board output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sync queue prototype") {
		t.Fatalf("board leaked another project's task:\n%s", out)
	}

	code, _, stderr = run(t, "-config", cfg, "board", "-project", "p404")
	if code != 1 || !strings.Contains(stderr, "p404") {
		t.Fatalf("unknown project: code %d stderr %q", code, stderr)
	}
}

func TestSprintsGroupsByState(t *testing.T) {
	cfg, _ := writeConfig(t)
	code, out, stderr := run(t, "-config", cfg, "sprints", "-project", "p1")
	if code != 0 {
		t.Fatalf("sprints failed: %d %s", code, stderr)
	}
	for _, want := range []string{"active:", "upcoming:", "completed:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("sprints output missing %q:\n%s", want, out)
		}
	}
}

func TestResetDeletesStoredSnapshot(t *testing.T) {
	cfgPath, root := writeConfig(t)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := context.Background()
	a, err := app.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	if err := a.Persister.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, config.DefaultNamespace)); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}

	code, out, _ := run(t, "-config", cfgPath, "summary")
	if code != 0 || !strings.Contains(out, "source: snapshot") {
		t.Fatalf("expected state from snapshot, got %d %q", code, out)
	}
	code, out, _ = run(t, "-config", cfgPath, "reset")
	if code != 0 || !strings.Contains(out, "deleted snapshot") {
		t.Fatalf("reset: %d %q", code, out)
	}
	code, out, _ = run(t, "-config", cfgPath, "reset")
	if code != 0 || !strings.Contains(out, "no snapshot stored") {
		t.Fatalf("second reset: %d %q", code, out)
	}
}

func TestServeRequiresAddress(t *testing.T) {
	cfg, _ := writeConfig(t)
	code, _, stderr := run(t, "-config", cfg, "serve")
	if code != 1 || !strings.Contains(stderr, "metrics-addr") {
		t.Fatalf("code %d stderr %q", code, stderr)
	}
}

func TestOpenFailureReported(t *testing.T) {
	orig := openApp
	defer func() { openApp = orig }()
	openApp = func(context.Context, config.Config, ...app.Option) (*app.App, error) {
		return nil, errors.New("kv unavailable")
	}
	cfg, _ := writeConfig(t)
	code, _, stderr := run(t, "-config", cfg, "summary")
	if code != 1 || !strings.Contains(stderr, "kv unavailable") {
		t.Fatalf("code %d stderr %q", code, stderr)
	}
}
