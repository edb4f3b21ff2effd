package config

import "regexp"

const (
	defaultPadding      = 2
	defaultURL          = "/assets/sprites/[name]"
	defaultHelperModule = "./sprite-icon"
	defaultInclude      = `(?i)\.png$`
	defaultClassBase    = "icon"
	defaultClassSprite  = "sprite"
	defaultClassSize    = "size"
	defaultClassIcon    = "i"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// DefaultFileNames lists the config files searched for in the working
// directory, in order.
var DefaultFileNames = []string{"spritegen.toml", "spritegen.yaml", "spritegen.yml"}

var defaultIncludePattern = regexp.MustCompile(defaultInclude)

// Default returns a Config populated with repository defaults. Target folders
// and sprite groups have no defaults: every run deletes its target folders, so
// they must be named explicitly.
func Default() Config {
	return Config{
		Padding:      defaultPadding,
		URL:          defaultURL,
		HelperModule: defaultHelperModule,
		Classes: Classes{
			Base:   defaultClassBase,
			Sprite: defaultClassSprite,
			Size:   defaultClassSize,
			Icon:   defaultClassIcon,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Cache: Cache{
			Dir: defaultCacheDir(),
		},
	}
}
