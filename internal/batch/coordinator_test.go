package batch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"spritegen/internal/batch"
	"spritegen/internal/config"
	"spritegen/internal/logging"
	"spritegen/internal/packing"
	"spritegen/internal/services"
	"spritegen/internal/testsupport"
)

type packFunc func(ctx context.Context, files []string, padding int) (*packing.Sheet, error)

func (f packFunc) Pack(ctx context.Context, files []string, padding int) (*packing.Sheet, error) {
	return f(ctx, files, padding)
}

// squareSheet places every file in one row using size as width and height.
func squareSheet(ext string, size int) packFunc {
	return func(_ context.Context, files []string, padding int) (*packing.Sheet, error) {
		icons := make([]packing.Placement, len(files))
		for i, f := range files {
			icons[i] = packing.Placement{Name: packing.IconName(f), X: i * (size + padding), Width: size, Height: size}
		}
		return &packing.Sheet{Extension: ext, Icons: icons, Image: []byte("sheet")}, nil
	}
}

func newCoordinator(cfg *config.Config, opts ...batch.Option) *batch.Coordinator {
	opts = append([]batch.Option{batch.WithLogger(logging.NewNop())}, opts...)
	return batch.New(cfg, opts...)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunTwoGroupExample(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSprite("icons-a", ""),
		testsupport.WithSprite("icons-b", `\.svg$`),
	)
	a := testsupport.SourceFolder(t, cfg, "icons-a")
	testsupport.WritePNG(t, filepath.Join(a, "home.png"), 16, 16)
	testsupport.WritePNG(t, filepath.Join(a, "user.png"), 16, 16)
	testsupport.WriteSVG(t, filepath.Join(testsupport.SourceFolder(t, cfg, "icons-b"), "logo.svg"), 32, 32)

	report, err := newCoordinator(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Count(batch.StatusGenerated) != 2 || report.HasFailures() {
		t.Fatalf("unexpected report: %+v", report.Groups)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}

	sizes := testsupport.ReadFile(t, filepath.Join(cfg.TargetFolder.SCSS, "_sizes.scss"))
	if !strings.Contains(sizes, "$sizes: 16 32;") {
		t.Fatalf("unexpected sizes stylesheet:\n%s", sizes)
	}

	moduleA := testsupport.ReadFile(t, filepath.Join(cfg.TargetFolder.TS, "icons-a.ts"))
	if !strings.Contains(moduleA, "Home = 'icon sprite0 size16 i0',") || !strings.Contains(moduleA, "User = 'icon sprite0 size16 i1',") {
		t.Fatalf("unexpected icons-a module:\n%s", moduleA)
	}
	moduleB := testsupport.ReadFile(t, filepath.Join(cfg.TargetFolder.TS, "icons-b.ts"))
	if strings.Count(moduleB, "= 'icon sprite1 size32") != 1 {
		t.Fatalf("expected one enum entry in icons-b module:\n%s", moduleB)
	}

	if got := listDir(t, cfg.TargetFolder.Icons); strings.Join(got, ",") != "icons-a.png,icons-b.svg" {
		t.Fatalf("unexpected sprite images: %v", got)
	}
	if got := listDir(t, cfg.TargetFolder.SCSS); strings.Join(got, ",") != "_icons-a.scss,_icons-b.scss,_sizes.scss" {
		t.Fatalf("unexpected stylesheets: %v", got)
	}
}

func TestRunMixedGroupDoesNotBlockSiblings(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSprite("mixed", `\.(png|svg)$`),
		testsupport.WithSprite("plain", ""),
	)
	mixed := testsupport.SourceFolder(t, cfg, "mixed")
	testsupport.WriteFile(t, filepath.Join(mixed, "a.png"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(mixed, "b.svg"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, "plain"), "c.png"), []byte("x"))

	report, err := newCoordinator(cfg, batch.WithPackers(squareSheet(".png", 24), nil)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Groups[0].Status != batch.StatusFailed || !errors.Is(report.Groups[0].Err, services.ErrClassification) {
		t.Fatalf("expected classification failure, got %+v", report.Groups[0])
	}
	if !strings.Contains(report.Groups[0].Err.Error(), "mixed file types") {
		t.Fatalf("unexpected error: %v", report.Groups[0].Err)
	}
	if report.Groups[1].Status != batch.StatusGenerated {
		t.Fatalf("sibling should generate, got %+v", report.Groups[1])
	}

	if got := listDir(t, cfg.TargetFolder.Icons); strings.Join(got, ",") != "plain.png" {
		t.Fatalf("mixed group must not emit artifacts: %v", got)
	}
	if _, err := os.Stat(filepath.Join(cfg.TargetFolder.TS, "mixed.ts")); !os.IsNotExist(err) {
		t.Fatalf("mixed module should not exist, stat err=%v", err)
	}
	if !report.HasFailures() {
		t.Fatal("report should flag the failure")
	}
	if got := report.Sizes; len(got) != 1 || got[0] != 24 {
		t.Fatalf("unexpected sizes %v", got)
	}
}

func TestRunRejectsNonSquareGroup(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("shapes", ""))
	dir := testsupport.SourceFolder(t, cfg, "shapes")
	testsupport.WritePNG(t, filepath.Join(dir, "square.png"), 32, 32)
	testsupport.WritePNG(t, filepath.Join(dir, "wide.png"), 32, 16)
	testsupport.WritePNG(t, filepath.Join(dir, "tall.png"), 8, 12)

	report, err := newCoordinator(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	group := report.Groups[0]
	if group.Status != batch.StatusFailed || !errors.Is(group.Err, services.ErrValidation) {
		t.Fatalf("expected validation failure, got %+v", group)
	}
	msg := group.Err.Error()
	for _, want := range []string{"shapes", "wide is 32x16", "tall is 8x12"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "square is") {
		t.Fatalf("square icon should not be reported: %q", msg)
	}
	for _, dir := range cfg.TargetFolder.All() {
		if got := listDir(t, dir); len(got) != 0 {
			t.Fatalf("expected no artifacts in %s, got %v", dir, got)
		}
	}
	if len(report.Sizes) != 0 {
		t.Fatalf("sizes stylesheet should be omitted, got %v", report.Sizes)
	}
}

func TestRunSizesDeduplicatedAcrossGroupsRegardlessOfOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSprite("slow", ""),
		testsupport.WithSprite("fast", ""),
		testsupport.WithSprite("same", ""),
	)
	for _, name := range []string{"slow", "fast", "same"} {
		testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, name), "icon.png"), []byte("x"))
	}

	fastDone := make(chan struct{})
	sizes := map[string]int{"slow": 48, "fast": 16, "same": 16}
	packer := packFunc(func(ctx context.Context, files []string, padding int) (*packing.Sheet, error) {
		group, _ := services.GroupFromContext(ctx)
		switch group {
		case "slow":
			select {
			case <-fastDone:
			case <-time.After(5 * time.Second):
				t.Error("fast group never settled")
			}
		case "fast":
			defer close(fastDone)
		}
		return squareSheet(".png", sizes[group])(ctx, files, padding)
	})

	report, err := newCoordinator(cfg, batch.WithPackers(packer, nil)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Count(batch.StatusGenerated) != 3 {
		t.Fatalf("expected all groups generated: %+v", report.Groups)
	}
	got := testsupport.ReadFile(t, filepath.Join(cfg.TargetFolder.SCSS, "_sizes.scss"))
	if !strings.Contains(got, "$sizes: 16 48;") {
		t.Fatalf("unexpected sizes stylesheet:\n%s", got)
	}
	if strings.Count(got, ".icon.size16 {") != 1 {
		t.Fatalf("size 16 rule should appear once:\n%s", got)
	}
	// sprite classes follow configuration order, not completion order
	slow := testsupport.ReadFile(t, filepath.Join(cfg.TargetFolder.SCSS, "_slow.scss"))
	if !strings.Contains(slow, ".icon.sprite0 {") {
		t.Fatalf("slow group should keep sprite0:\n%s", slow)
	}
}

func TestRunWithNothingToDoSkipsSizesAndCleansTargets(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("empty", ""))
	stale := filepath.Join(cfg.TargetFolder.SCSS, "_old.scss")
	testsupport.WriteFile(t, stale, []byte("stale"))

	report, err := newCoordinator(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Groups[0].Status != batch.StatusSkipped {
		t.Fatalf("expected skip, got %+v", report.Groups[0])
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale output should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.TargetFolder.SCSS, "_sizes.scss")); !os.IsNotExist(err) {
		t.Fatalf("sizes stylesheet should not exist, stat err=%v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSprite("raster", ""),
		testsupport.WithSprite("vector", `\.svg$`),
	)
	for i, name := range []string{"b", "a", "c"} {
		testsupport.WritePNG(t, filepath.Join(testsupport.SourceFolder(t, cfg, "raster"), name+".png"), 16+8*i, 16+8*i)
		testsupport.WriteSVG(t, filepath.Join(testsupport.SourceFolder(t, cfg, "vector"), name+".svg"), 24, 24)
	}

	snapshot := func() map[string]string {
		files := make(map[string]string)
		for _, dir := range cfg.TargetFolder.All() {
			for _, name := range listDir(t, dir) {
				files[filepath.Join(dir, name)] = testsupport.ReadFile(t, filepath.Join(dir, name))
			}
		}
		return files
	}

	if _, err := newCoordinator(cfg).Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := snapshot()
	if _, err := newCoordinator(cfg).Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second := snapshot()

	if len(first) != 7 {
		t.Fatalf("expected 7 generated files, got %d", len(first))
	}
	for path, content := range first {
		if second[path] != content {
			t.Fatalf("%s differs between runs", path)
		}
	}
	if len(second) != len(first) {
		t.Fatalf("file sets differ: %d vs %d", len(first), len(second))
	}
}

func TestRunFailsWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lockPath := filepath.Join(t.TempDir(), "run.lock")
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = newCoordinator(cfg, batch.WithLockPath(lockPath)).Run(context.Background())
	if !errors.Is(err, batch.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestRunReturnsContextErrorOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("hung", ""))
	testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, "hung"), "a.png"), []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	packer := packFunc(func(ctx context.Context, _ []string, _ int) (*packing.Sheet, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	go func() {
		<-started
		cancel()
	}()

	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", Writer: &logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	if _, err := newCoordinator(cfg, batch.WithPackers(packer, nil), batch.WithLogger(logger)).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out := logs.String(); !strings.Contains(out, `"event_type":"run_cancelled"`) || !strings.Contains(out, `"alert":"incomplete_output"`) {
		t.Fatalf("expected flagged cancellation warning, got %q", out)
	}
}

func TestRunRecoversPackerPanic(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("boom", ""))
	testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, "boom"), "a.png"), []byte("x"))

	packer := packFunc(func(context.Context, []string, int) (*packing.Sheet, error) {
		panic("engine exploded")
	})
	report, err := newCoordinator(cfg, batch.WithPackers(packer, nil)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(report.Groups[0].Err, services.ErrPacking) || !strings.Contains(report.Groups[0].Err.Error(), "engine exploded") {
		t.Fatalf("expected packing failure, got %+v", report.Groups[0])
	}
}

func TestRunFailsGroupWhenPackerReturnsNoSheet(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSprite("empty", ""),
		testsupport.WithSprite("vectors", `\.svg$`),
	)
	testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, "empty"), "a.png"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, "vectors"), "b.svg"), []byte("x"))

	packer := packFunc(func(context.Context, []string, int) (*packing.Sheet, error) {
		return nil, nil
	})
	report, err := newCoordinator(cfg, batch.WithPackers(packer, squareSheet(".svg", 32))).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	groupErr := report.Groups[0].Err
	if !errors.Is(groupErr, services.ErrPacking) || !strings.Contains(groupErr.Error(), "packer returned no sheet") {
		t.Fatalf("expected packing failure, got %+v", report.Groups[0])
	}
	if report.Groups[1].Status != batch.StatusGenerated {
		t.Fatalf("sibling should generate, got %+v", report.Groups[1])
	}
}

func TestRunRejectsIconsSharingAName(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSprite("dup", ""),
		testsupport.WithSprite("plain", ""),
	)
	dup := testsupport.SourceFolder(t, cfg, "dup")
	testsupport.WritePNG(t, filepath.Join(dup, "home.png"), 16, 16)
	testsupport.WritePNG(t, filepath.Join(dup, "home.PNG"), 16, 16)
	testsupport.WritePNG(t, filepath.Join(testsupport.SourceFolder(t, cfg, "plain"), "menu.png"), 16, 16)

	report, err := newCoordinator(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(report.Groups[0].Err, services.ErrClassification) || !strings.Contains(report.Groups[0].Err.Error(), "duplicate icon name") {
		t.Fatalf("expected duplicate name failure, got %+v", report.Groups[0])
	}
	if _, err := os.Stat(filepath.Join(cfg.TargetFolder.TS, "dup.ts")); !os.IsNotExist(err) {
		t.Fatalf("dup module should not exist, stat err=%v", err)
	}
	if report.Groups[1].Status != batch.StatusGenerated {
		t.Fatalf("sibling should generate, got %+v", report.Groups[1])
	}
}

func TestRunWrapsUnmarkedPackerErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSprite("broken", ""))
	testsupport.WriteFile(t, filepath.Join(testsupport.SourceFolder(t, cfg, "broken"), "a.png"), []byte("x"))

	packer := packFunc(func(context.Context, []string, int) (*packing.Sheet, error) {
		return nil, errors.New("library failure")
	})
	report, err := newCoordinator(cfg, batch.WithPackers(packer, nil)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	groupErr := report.Groups[0].Err
	if !errors.Is(groupErr, services.ErrPacking) || !strings.Contains(groupErr.Error(), "broken") {
		t.Fatalf("expected packing error naming the group, got %v", groupErr)
	}
}

func TestRunUsesPackCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCache(), testsupport.WithSprite("cached", ""))
	testsupport.WritePNG(t, filepath.Join(testsupport.SourceFolder(t, cfg, "cached"), "a.png"), 16, 16)
	store := testsupport.MustOpenCache(t, cfg)

	calls := 0
	packer := packFunc(func(ctx context.Context, files []string, padding int) (*packing.Sheet, error) {
		calls++
		return squareSheet(".png", 16)(ctx, files, padding)
	})

	for i := 0; i < 2; i++ {
		report, err := newCoordinator(cfg, batch.WithPackers(packer, nil), batch.WithCache(store)).Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if report.Groups[0].Status != batch.StatusGenerated {
			t.Fatalf("run %d: unexpected group %+v", i, report.Groups[0])
		}
		if wantCached := i == 1; report.Groups[0].Cached != wantCached {
			t.Fatalf("run %d: cached=%v", i, report.Groups[0].Cached)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one pack, got %d", calls)
	}
}
