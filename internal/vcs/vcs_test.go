package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// initRepo creates a git repository holding files and commits them.
func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git not found: %v", err)
	}
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	git(t, dir, "init", "-q")
	git(t, dir, "add", ".")
	git(t, dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init")
	return dir
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestGitVCS_Files(t *testing.T) {
	dir := initRepo(t, map[string]string{
		"SConstruct":   "env = Environment()\n",
		"src/main.cpp": "int main() {}\n",
	})
	if err := os.WriteFile(filepath.Join(dir, "untracked.o"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := NewGitVCS().Files(context.Background(), dir)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if diff := cmp.Diff([]string{"SConstruct", "src/main.cpp"}, files); diff != "" {
		t.Errorf("Files (-want +got):\n%s", diff)
	}
}

func TestGitVCS_Revision(t *testing.T) {
	dir := initRepo(t, map[string]string{"README": "hi\n"})
	vcs := NewGitVCS()
	ctx := context.Background()

	rev, err := vcs.Revision(ctx, dir)
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	if len(rev) < 7 {
		t.Errorf("expected abbreviated hash, got %q", rev)
	}

	git(t, dir, "tag", "v1.2.0")
	rev, err = vcs.Revision(ctx, dir)
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	if rev != "v1.2.0" {
		t.Errorf("Revision = %q, want v1.2.0", rev)
	}
}

func TestGitVCS_RevisionDirty(t *testing.T) {
	dir := initRepo(t, map[string]string{"README": "hi\n"})
	vcs := NewGitVCS()
	ctx := context.Background()

	clean, err := vcs.Revision(ctx, dir)
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rev, err := vcs.Revision(ctx, dir); err != nil || rev != clean {
		t.Errorf("Revision with untracked file = %q, %v; want %q", rev, err, clean)
	}

	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rev, err := vcs.Revision(ctx, dir)
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	if want := clean + "-dirty"; rev != want {
		t.Errorf("Revision = %q, want %q", rev, want)
	}

	git(t, dir, "tag", "v1.2.0")
	rev, err = vcs.Revision(ctx, dir)
	if err != nil {
		t.Fatalf("Revision failed: %v", err)
	}
	if rev != "v1.2.0-dirty" {
		t.Errorf("Revision = %q, want v1.2.0-dirty", rev)
	}
}

func TestGitVCS_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git not found: %v", err)
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	if _, err := NewGitVCS().Revision(context.Background(), dir); err == nil {
		t.Error("Revision outside a repository succeeded")
	}
}
