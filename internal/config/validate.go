package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"spritegen/internal/naming"
)

// sizesFragment is the shared stylesheet name; a group of that name would
// overwrite it.
const sizesFragment = "sizes"

var classPrefixPattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTargets(); err != nil {
		return err
	}
	if err := c.validateURL(); err != nil {
		return err
	}
	if err := c.validateClasses(); err != nil {
		return err
	}
	if err := c.validateSprites(); err != nil {
		return err
	}
	if err := c.validateOverlap(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTargets() error {
	if c.TargetFolder.Icons == "" {
		return errors.New("target_folder.icons must be set")
	}
	if c.TargetFolder.SCSS == "" {
		return errors.New("target_folder.scss must be set")
	}
	if c.TargetFolder.TS == "" {
		return errors.New("target_folder.ts must be set")
	}
	return nil
}

func (c *Config) validateURL() error {
	switch n := naming.CountPlaceholders(c.URL); n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("url must contain the %s placeholder", naming.Placeholder)
	default:
		return fmt.Errorf("url must contain the %s placeholder exactly once (found %d)", naming.Placeholder, n)
	}
}

func (c *Config) validateClasses() error {
	prefixes := []struct{ key, value string }{
		{"classes.base", c.Classes.Base},
		{"classes.sprite", c.Classes.Sprite},
		{"classes.size", c.Classes.Size},
		{"classes.icon", c.Classes.Icon},
	}
	for _, p := range prefixes {
		if !classPrefixPattern.MatchString(p.value) {
			return fmt.Errorf("%s must be a CSS identifier prefix, got %q", p.key, p.value)
		}
	}
	return nil
}

func (c *Config) validateSprites() error {
	if c.Padding < 0 {
		return errors.New("padding must be >= 0")
	}
	seen := make(map[string]int, len(c.Sprites))
	for i, sprite := range c.Sprites {
		if sprite.Name == "" {
			return fmt.Errorf("sprites[%d].name must be set", i)
		}
		if strings.ContainsAny(sprite.Name, `/\`) || sprite.Name == "." || sprite.Name == ".." {
			return fmt.Errorf("sprites[%d].name %q must not contain path separators", i, sprite.Name)
		}
		key := strings.ToLower(sprite.Name)
		if key == sizesFragment {
			return fmt.Errorf("sprites[%d].name %q is reserved for the shared sizes stylesheet", i, sprite.Name)
		}
		if first, exists := seen[key]; exists {
			return fmt.Errorf("sprites[%d].name %q duplicates sprites[%d]", i, sprite.Name, first)
		}
		seen[key] = i
		if sprite.SourceFolder == "" {
			return fmt.Errorf("sprites[%d].source_folder must be set", i)
		}
		if sprite.Padding != nil && *sprite.Padding < 0 {
			return fmt.Errorf("sprites[%d].padding must be >= 0", i)
		}
	}
	return nil
}

// validateOverlap rejects source folders inside a target folder; target
// folders are deleted at the start of every run.
func (c *Config) validateOverlap() error {
	for i, sprite := range c.Sprites {
		for _, target := range c.TargetFolder.All() {
			if within(target, sprite.SourceFolder) {
				return fmt.Errorf("sprites[%d].source_folder %q is inside target folder %q", i, sprite.SourceFolder, target)
			}
		}
	}
	return nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
