package sync

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// newTestRepo returns a clone of a fresh bare repo with one commit on main.
func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	remote := t.TempDir()
	run(t, remote, "git", "init", "--bare")

	work := t.TempDir()
	run(t, work, "git", "clone", remote, "repo")
	repo := filepath.Join(work, "repo")

	run(t, repo, "git", "config", "user.email", "test@test.com")
	run(t, repo, "git", "config", "user.name", "Test")
	run(t, repo, "git", "symbolic-ref", "HEAD", "refs/heads/main")
	if err := os.WriteFile(filepath.Join(repo, ".gitkeep"), nil, 0o644); err != nil {
		t.Fatalf("write .gitkeep: %v", err)
	}
	run(t, repo, "git", "add", ".")
	run(t, repo, "git", "commit", "-m", "init")
	run(t, repo, "git", "push", "origin", "main")
	return repo
}

func run(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, out)
	}
	return string(out)
}

func TestGitDestination(t *testing.T) {
	repo := newTestRepo(t)
	dest := NewGitDestination(repo, "cache.jsonl", "main")
	dest.output = io.Discard
	ctx := context.Background()

	first := &Export{ID: "exp-1", Data: []byte(`{"type":"header"}` + "\n")}
	if err := dest.Write(ctx, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(repo, "cache.jsonl"))
	if err != nil || string(got) != string(first.Data) {
		t.Fatalf("file = %q, err = %v", got, err)
	}

	// Unchanged data makes no commit.
	if err := dest.Write(ctx, &Export{ID: "exp-2", Data: first.Data}); err != nil {
		t.Fatalf("no-op write: %v", err)
	}
	if log := run(t, repo, "git", "log", "--oneline"); strings.Contains(log, "exp-2") {
		t.Errorf("unchanged export was committed:\n%s", log)
	}

	second := &Export{ID: "exp-3", Entries: 1, Data: []byte(`{"type":"header","entry_count":1}` + "\n")}
	if err := dest.Write(ctx, second); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if log := run(t, repo, "git", "log", "--oneline"); !strings.Contains(log, "cache export exp-3 (1 entries)") {
		t.Errorf("commit message missing:\n%s", log)
	}
}

func TestGitDestination_SubDirectory(t *testing.T) {
	repo := newTestRepo(t)
	dest := NewGitDestination(repo, "data/cache.jsonl", "main")
	dest.output = io.Discard

	exp := &Export{ID: "exp-1", Data: []byte(`{"type":"header"}` + "\n")}
	if err := dest.Write(context.Background(), exp); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(repo, "data", "cache.jsonl"))
	if err != nil || string(got) != string(exp.Data) {
		t.Fatalf("file = %q, err = %v", got, err)
	}
}
