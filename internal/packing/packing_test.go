package packing_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"spritegen/internal/fileutil"
	"spritegen/internal/logging"
	"spritegen/internal/packing"
	"spritegen/internal/services"
	"spritegen/internal/testsupport"
	"spritegen/internal/vector"
)

func TestRasterPackerReportsPlacementsInFileOrder(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "small.png"), filepath.Join(dir, "large.png")}
	testsupport.WritePNG(t, files[0], 16, 16)
	testsupport.WritePNG(t, files[1], 32, 32)

	sheet, err := packing.NewRasterPacker(fileutil.OS{}, nil).Pack(context.Background(), files, 0)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if sheet.Extension != ".png" {
		t.Fatalf("unexpected extension %q", sheet.Extension)
	}
	want := []packing.Placement{
		{Name: "small", X: 32, Y: 0, Width: 16, Height: 16},
		{Name: "large", X: 0, Y: 0, Width: 32, Height: 32},
	}
	for i := range want {
		if sheet.Icons[i] != want[i] {
			t.Fatalf("icon %d: expected %+v, got %+v", i, want[i], sheet.Icons[i])
		}
	}
	if len(sheet.Image) == 0 {
		t.Fatal("expected encoded sheet bytes")
	}
}

func TestRasterPackerWrapsDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "broken.png")
	testsupport.WriteFile(t, file, []byte("not a png"))

	_, err := packing.NewRasterPacker(fileutil.OS{}, nil).Pack(context.Background(), []string{file}, 0)
	if !errors.Is(err, services.ErrPacking) {
		t.Fatalf("expected packing error, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("error should name the icon: %v", err)
	}
}

func TestRasterPackerHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	testsupport.WritePNG(t, file, 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := packing.NewRasterPacker(fileutil.OS{}, nil).Pack(ctx, []string{file}, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type stubVectorEngine struct {
	sprite *vector.Sprite
	err    error
}

func (s stubVectorEngine) Compile([]vector.Source, int) (*vector.Sprite, error) {
	return s.sprite, s.err
}

func TestVectorPackerStripsMargin(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "home.svg"), filepath.Join(dir, "user.svg")}
	for _, f := range files {
		testsupport.WriteSVG(t, f, 16, 16)
	}
	engine := stubVectorEngine{sprite: &vector.Sprite{
		SVG: []byte("<svg/>"),
		Shapes: []vector.Shape{
			{Name: "home", InnerWidth: 16, InnerHeight: 16, OuterWidth: 18, OuterHeight: 18, AbsoluteX: -34, AbsoluteY: 0},
			{Name: "user", InnerWidth: 16, InnerHeight: 16, OuterWidth: 20, OuterHeight: 20, AbsoluteX: 0, AbsoluteY: -18},
		},
	}}

	sheet, err := packing.NewVectorPacker(fileutil.OS{}, engine).Pack(context.Background(), files, 1)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []packing.Placement{
		{Name: "home", X: 35, Y: 1, Width: 16, Height: 16},
		{Name: "user", X: 2, Y: 20, Width: 16, Height: 16},
	}
	for i := range want {
		if sheet.Icons[i] != want[i] {
			t.Fatalf("icon %d: expected %+v, got %+v", i, want[i], sheet.Icons[i])
		}
	}
	if sheet.Extension != ".svg" {
		t.Fatalf("unexpected extension %q", sheet.Extension)
	}
}

func TestVectorPackerWithBuiltinEngine(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.svg"), filepath.Join(dir, "b.svg")}
	testsupport.WriteSVG(t, files[0], 24, 24)
	testsupport.WriteSVG(t, files[1], 24, 24)

	sheet, err := packing.NewVectorPacker(fileutil.OS{}, nil).Pack(context.Background(), files, 2)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	// boxes are 28x28 with the icon inset by the 2px margin
	if sheet.Icons[0] != (packing.Placement{Name: "a", X: 2, Y: 2, Width: 24, Height: 24}) {
		t.Fatalf("unexpected first placement %+v", sheet.Icons[0])
	}
	if sheet.Icons[1] != (packing.Placement{Name: "b", X: 30, Y: 2, Width: 24, Height: 24}) {
		t.Fatalf("unexpected second placement %+v", sheet.Icons[1])
	}
}

func TestVectorPackerRejectsShapeCountMismatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.svg")
	testsupport.WriteSVG(t, file, 16, 16)

	engine := stubVectorEngine{sprite: &vector.Sprite{}}
	_, err := packing.NewVectorPacker(fileutil.OS{}, engine).Pack(context.Background(), []string{file}, 0)
	if !errors.Is(err, services.ErrPacking) {
		t.Fatalf("expected packing error, got %v", err)
	}
}

type countingPacker struct {
	calls int
}

func (c *countingPacker) Pack(_ context.Context, files []string, _ int) (*packing.Sheet, error) {
	c.calls++
	icons := make([]packing.Placement, len(files))
	for i, f := range files {
		icons[i] = packing.Placement{Name: packing.IconName(f), X: i * 16, Width: 16, Height: 16}
	}
	return &packing.Sheet{Extension: ".png", Icons: icons, Image: []byte("sheet")}, nil
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*packing.Sheet
	getErr  error
}

func (m *memoryStore) Get(_ context.Context, key string) (*packing.Sheet, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	sheet, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	clone := *sheet
	return &clone, true, nil
}

func (m *memoryStore) Put(_ context.Context, key string, sheet *packing.Sheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]*packing.Sheet)
	}
	m.entries[key] = sheet
	return nil
}

func TestCachingPackerHitsOnUnchangedInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	testsupport.WriteFile(t, file, []byte("v1"))

	next := &countingPacker{}
	store := &memoryStore{}
	packer := packing.NewCachingPacker(next, "raster", fileutil.OS{}, store, logging.NewNop())

	first, err := packer.Pack(context.Background(), []string{file}, 2)
	if err != nil {
		t.Fatalf("first Pack: %v", err)
	}
	if first.Cached {
		t.Fatal("first pack should miss")
	}
	second, err := packer.Pack(context.Background(), []string{file}, 2)
	if err != nil {
		t.Fatalf("second Pack: %v", err)
	}
	if !second.Cached || next.calls != 1 {
		t.Fatalf("expected cache hit, cached=%v calls=%d", second.Cached, next.calls)
	}

	testsupport.WriteFile(t, file, []byte("v2"))
	third, err := packer.Pack(context.Background(), []string{file}, 2)
	if err != nil {
		t.Fatalf("third Pack: %v", err)
	}
	if third.Cached || next.calls != 2 {
		t.Fatalf("content change should miss, cached=%v calls=%d", third.Cached, next.calls)
	}
}

func TestCachingPackerIgnoresStoreFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	testsupport.WriteFile(t, file, []byte("v1"))

	next := &countingPacker{}
	store := &memoryStore{getErr: errors.New("database is locked")}
	packer := packing.NewCachingPacker(next, "raster", fileutil.OS{}, store, logging.NewNop())

	sheet, err := packer.Pack(context.Background(), []string{file}, 0)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if sheet.Cached || next.calls != 1 {
		t.Fatalf("expected fallthrough to packer, cached=%v calls=%d", sheet.Cached, next.calls)
	}
}

func TestKeyVariesWithKindAndPadding(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	testsupport.WriteFile(t, file, []byte("data"))
	files := []string{file}

	base, err := packing.Key(fileutil.OS{}, "raster", files, 2)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	again, _ := packing.Key(fileutil.OS{}, "raster", files, 2)
	otherPad, _ := packing.Key(fileutil.OS{}, "raster", files, 3)
	otherKind, _ := packing.Key(fileutil.OS{}, "vector", files, 2)
	if base != again {
		t.Fatal("key should be stable")
	}
	if base == otherPad || base == otherKind {
		t.Fatal("key should change with padding and kind")
	}
	if _, err := packing.Key(fileutil.OS{}, "raster", []string{filepath.Join(dir, "missing.png")}, 2); err == nil {
		t.Fatal("expected error for missing file")
	}
}
