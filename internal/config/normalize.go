package config

import (
	"fmt"
	"regexp"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeTargets(); err != nil {
		return err
	}
	if err := c.normalizeSprites(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeClasses()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTargets() error {
	var err error
	if c.TargetFolder.Icons, err = c.expand(c.TargetFolder.Icons); err != nil {
		return fmt.Errorf("target_folder.icons: %w", err)
	}
	if c.TargetFolder.SCSS, err = c.expand(c.TargetFolder.SCSS); err != nil {
		return fmt.Errorf("target_folder.scss: %w", err)
	}
	if c.TargetFolder.TS, err = c.expand(c.TargetFolder.TS); err != nil {
		return fmt.Errorf("target_folder.ts: %w", err)
	}
	c.URL = strings.TrimSpace(c.URL)
	c.HelperModule = strings.TrimSpace(c.HelperModule)
	if c.HelperModule == "" {
		c.HelperModule = defaultHelperModule
	}
	return nil
}

func (c *Config) normalizeSprites() error {
	for i := range c.Sprites {
		sprite := &c.Sprites[i]
		sprite.Name = strings.TrimSpace(sprite.Name)

		var err error
		if sprite.SourceFolder, err = c.expand(strings.TrimSpace(sprite.SourceFolder)); err != nil {
			return fmt.Errorf("sprites[%d].source_folder: %w", i, err)
		}

		if err := sprite.SetInclude(sprite.Include); err != nil {
			return fmt.Errorf("sprites[%d].include: %w", i, err)
		}
	}
	return nil
}

// SetInclude compiles pattern as the group's include filter. An empty pattern
// selects the default PNG filter.
func (s *Sprite) SetInclude(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		s.Include = ""
		s.include = defaultIncludePattern
		return nil
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.Include = pattern
	s.include = compiled
	return nil
}

func (c *Config) normalizeCache() error {
	var err error
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	if c.Cache.Dir, err = expandPath("", c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeClasses() {
	c.Classes.Base = strings.TrimSpace(c.Classes.Base)
	c.Classes.Sprite = strings.TrimSpace(c.Classes.Sprite)
	c.Classes.Size = strings.TrimSpace(c.Classes.Size)
	c.Classes.Icon = strings.TrimSpace(c.Classes.Icon)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) expand(pathValue string) (string, error) {
	return expandPath(c.baseDir, strings.TrimSpace(pathValue))
}
