package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"spritegen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Target folders live under <tmp>/out and sprite sources under <tmp>/src.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TargetFolder = config.TargetFolder{
		Icons: filepath.Join(base, "out", "icons"),
		SCSS:  filepath.Join(base, "out", "scss"),
		TS:    filepath.Join(base, "out", "ts"),
	}
	cfgVal.Cache.Dir = filepath.Join(base, "cache")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithSprite appends a sprite group whose source folder is created under
// <tmp>/src/<name>. An empty include keeps the default PNG filter.
func WithSprite(name, include string) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "src", name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir %s: %v", dir, err)
		}
		sprite := config.Sprite{Name: name, SourceFolder: dir}
		if err := sprite.SetInclude(include); err != nil {
			b.t.Fatalf("include for %s: %v", name, err)
		}
		b.cfg.Sprites = append(b.cfg.Sprites, sprite)
	}
}

// WithPadding sets the global padding.
func WithPadding(padding int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Padding = padding
	}
}

// WithCache enables the packed sheet cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// SourceFolder returns the source folder of the named sprite group.
func SourceFolder(t testing.TB, cfg *config.Config, name string) string {
	t.Helper()
	for _, sprite := range cfg.Sprites {
		if sprite.Name == name {
			return sprite.SourceFolder
		}
	}
	t.Fatalf("sprite %q not configured", name)
	return ""
}
