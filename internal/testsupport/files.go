package testsupport

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// WritePNG writes a solid-colour PNG of the requested dimensions.
func WritePNG(t testing.TB, path string, width, height int) {
	t.Helper()

	mkdirFor(t, path)
	img := imaging.New(width, height, color.NRGBA{R: 0x20, G: 0x80, B: 0xc0, A: 0xff})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

// WriteSVG writes a minimal SVG document with a single filled rectangle.
func WriteSVG(t testing.TB, path string, width, height int) {
	t.Helper()

	doc := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d"><rect width="%d" height="%d" fill="#2080c0"/></svg>`,
		width, height, width, height, width, height)
	WriteFile(t, path, []byte(doc))
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	mkdirFor(t, path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func mkdirFor(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}
