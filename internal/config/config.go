package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Sprite describes one sprite group: the icons in SourceFolder whose file name
// matches Include are packed into a single sheet named Name.
type Sprite struct {
	Name         string `toml:"name" yaml:"name"`
	SourceFolder string `toml:"source_folder" yaml:"source_folder"`
	Include      string `toml:"include" yaml:"include"`
	Padding      *int   `toml:"padding" yaml:"padding"`

	include *regexp.Regexp
}

// Matches reports whether fileName is selected by the group's include pattern.
func (s Sprite) Matches(fileName string) bool {
	if s.include == nil {
		return defaultIncludePattern.MatchString(fileName)
	}
	return s.include.MatchString(fileName)
}

// EffectivePadding returns the group padding, falling back to the global value.
func (s Sprite) EffectivePadding(global int) int {
	if s.Padding != nil {
		return *s.Padding
	}
	return global
}

// TargetFolder holds the three independent output directories.
type TargetFolder struct {
	Icons string `toml:"icons" yaml:"icons"`
	SCSS  string `toml:"scss" yaml:"scss"`
	TS    string `toml:"ts" yaml:"ts"`
}

// All returns the target folders in a stable order.
func (t TargetFolder) All() []string {
	return []string{t.Icons, t.SCSS, t.TS}
}

// Classes holds the CSS class prefixes.
type Classes struct {
	Base   string `toml:"base" yaml:"base"`
	Sprite string `toml:"sprite" yaml:"sprite"`
	Size   string `toml:"size" yaml:"size"`
	Icon   string `toml:"icon" yaml:"icon"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Cache contains configuration for the packed sheet cache.
type Cache struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Config encapsulates all configuration values for spritegen.
type Config struct {
	Sprites      []Sprite     `toml:"sprites" yaml:"sprites"`
	Padding      int          `toml:"padding" yaml:"padding"`
	URL          string       `toml:"url" yaml:"url"`
	HelperModule string       `toml:"helper_module" yaml:"helper_module"`
	TargetFolder TargetFolder `toml:"target_folder" yaml:"target_folder"`
	Classes      Classes      `toml:"classes" yaml:"classes"`
	Logging      Logging      `toml:"logging" yaml:"logging"`
	Cache        Cache        `toml:"cache" yaml:"cache"`

	baseDir string
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and include patterns compiled. The
// boolean reports whether a config file was found; when none exists the
// defaults are validated as-is.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg.baseDir, err = os.Getwd()
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve working directory: %w", err)
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
		cfg.baseDir = filepath.Dir(resolvedPath)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Parse decodes raw configuration data in the given format ("toml" or
// "yaml"), resolving relative paths against baseDir, then normalizes and
// validates it.
func Parse(data []byte, format, baseDir string) (*Config, error) {
	cfg := Default()
	if err := decode(data, format, &cfg); err != nil {
		return nil, err
	}
	cfg.baseDir = baseDir
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	return decode(data, formatForPath(path), cfg)
}

func decode(data []byte, format string, cfg *Config) error {
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	case "toml", "":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		return fmt.Errorf("parse config: unsupported format %q", format)
	}
	return nil
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath("", path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	var first string
	for _, name := range DefaultFileNames {
		candidate, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if first == "" {
			first = candidate
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return first, false, nil
}

// BaseDir returns the directory relative paths were resolved against.
func (c *Config) BaseDir() string {
	return c.baseDir
}

// CachePath returns the location of the packed sheet cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.Cache.Dir, "packcache.db")
}

// LockPath returns the run lock for this config's output tree. Runs that share
// an icons target folder share a lock.
func (c *Config) LockPath() string {
	sum := sha256.Sum256([]byte(c.TargetFolder.Icons))
	return filepath.Join(c.Cache.Dir, "locks", hex.EncodeToString(sum[:8])+".lock")
}

// expandPath expands a leading tilde and resolves relative paths against base
// (or the working directory when base is empty).
func expandPath(base, pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	if !filepath.IsAbs(pathValue) && base != "" {
		pathValue = filepath.Join(base, pathValue)
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath("", pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "spritegen")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/spritegen"
	}
	return filepath.Join(home, ".cache", "spritegen")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
