package preflight

import (
	"spritegen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := make([]Result, 0, len(cfg.Sprites)+4)
	for _, sprite := range cfg.Sprites {
		results = append(results, CheckReadableDirectory("Source "+sprite.Name, sprite.SourceFolder))
	}

	results = append(results,
		CheckCreatableDirectory("Target icons", cfg.TargetFolder.Icons),
		CheckCreatableDirectory("Target scss", cfg.TargetFolder.SCSS),
		CheckCreatableDirectory("Target ts", cfg.TargetFolder.TS),
	)

	if cfg.Cache.Enabled {
		results = append(results, CheckCreatableDirectory("Pack cache", cfg.Cache.Dir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
