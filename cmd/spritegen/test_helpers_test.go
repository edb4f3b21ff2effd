package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spritegen/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	iconsDir   string
	scssDir    string
	tsDir      string
}

// setupCLITestEnv writes a config with one PNG group ("toolbar") and one SVG
// group ("logos") under a temp project directory.
func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))

	testsupport.WritePNG(t, filepath.Join(base, "assets", "toolbar", "save.png"), 16, 16)
	testsupport.WritePNG(t, filepath.Join(base, "assets", "toolbar", "open.png"), 16, 16)
	testsupport.WriteSVG(t, filepath.Join(base, "assets", "logos", "brand.svg"), 32, 32)

	content := fmt.Sprintf(`url = "/static/[name]"

[target_folder]
icons = "dist/icons"
scss = "src/styles"
ts = "src/sprites"

[[sprites]]
name = "toolbar"
source_folder = "assets/toolbar"

[[sprites]]
name = "logos"
source_folder = "assets/logos"
include = '\.svg$'
%s`, extra)
	configPath := filepath.Join(base, "spritegen.toml")
	testsupport.WriteFile(t, configPath, []byte(content))

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		iconsDir:   filepath.Join(base, "dist", "icons"),
		scssDir:    filepath.Join(base, "src", "styles"),
		tsDir:      filepath.Join(base, "src", "sprites"),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
}
