package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spritegen/internal/testsupport"
)

func TestCheckReadableDirectory_OK(t *testing.T) {
	result := CheckReadableDirectory("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckReadableDirectory_NotExist(t *testing.T) {
	result := CheckReadableDirectory("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckReadableDirectory_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableDirectory("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory_MissingUnderWritableParent(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatableDirectory("target", filepath.Join(base, "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "created under "+base) {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckCreatableDirectory_FileInPath(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatableDirectory("target", filepath.Join(blocker, "out")); result.Passed {
		t.Fatal("expected failure when an ancestor is a file")
	}
}

func TestRunAllCoversSourcesTargetsAndCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("toolbar", ""), testsupport.WithCache())
	results := RunAll(cfg)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	want := "Source toolbar,Target icons,Target scss,Target ts,Pack cache"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("unexpected checks %s", got)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, failed: %+v", failed)
	}
}

func TestRunAllReportsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("gone", ""))
	if err := os.RemoveAll(cfg.Sprites[0].SourceFolder); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(cfg))
	if len(failed) != 1 || failed[0].Name != "Source gone" {
		t.Fatalf("expected one failed source check, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil, got %+v", results)
	}
}
