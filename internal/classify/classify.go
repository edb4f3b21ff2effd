// Package classify decides how a sprite group is packed by inspecting the
// extensions of the files its include pattern selects.
package classify

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"spritegen/internal/config"
	"spritegen/internal/fileutil"
	"spritegen/internal/services"
)

// Kind is the outcome of classifying one sprite group.
type Kind int

const (
	// Skip means no files matched; the group is silently omitted.
	Skip Kind = iota
	Raster
	Vector
	Invalid
)

func (k Kind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Raster:
		return "raster"
	case Vector:
		return "vector"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	ExtPNG = ".png"
	ExtSVG = ".svg"
)

// Decision carries the classification result for one group.
type Decision struct {
	Kind Kind
	// Files holds absolute paths of matched files in lexical order.
	Files []string
	// Extensions holds the distinct lowercase extensions, sorted.
	Extensions []string
	// Err is set when Kind is Invalid and wraps services.ErrClassification.
	Err error
}

// Extension returns the sprite file extension for packable decisions.
func (d Decision) Extension() string {
	switch d.Kind {
	case Raster:
		return ExtPNG
	case Vector:
		return ExtSVG
	default:
		return ""
	}
}

// Classify lists the regular files directly inside the group's source folder,
// keeps those selected by its include pattern, and decides the packing kind.
func Classify(fsys fileutil.FS, sprite config.Sprite) Decision {
	entries, err := fsys.ReadDir(sprite.SourceFolder)
	if err != nil {
		return invalid(sprite.Name, "read source folder", err)
	}

	var files []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !sprite.Matches(name) {
			continue
		}
		files = append(files, filepath.Join(sprite.SourceFolder, name))
		seen[strings.ToLower(filepath.Ext(name))] = struct{}{}
	}
	if len(files) == 0 {
		return Decision{Kind: Skip}
	}
	sort.Strings(files)

	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	decision := Decision{Files: files, Extensions: exts}
	switch {
	case len(exts) > 1:
		decision.Kind = Invalid
		decision.Err = services.Wrap(services.ErrClassification, sprite.Name, "classify",
			fmt.Sprintf("mixed file types (%s)", strings.Join(exts, ", ")), nil)
	case exts[0] == ExtPNG:
		decision.Kind = Raster
	case exts[0] == ExtSVG:
		decision.Kind = Vector
	default:
		decision.Kind = Invalid
		decision.Err = services.Wrap(services.ErrClassification, sprite.Name, "classify",
			fmt.Sprintf("unsupported extension %q", exts[0]), nil)
	}
	if decision.Kind != Invalid {
		if dups := duplicateNames(files); len(dups) > 0 {
			decision.Kind = Invalid
			decision.Err = services.Wrap(services.ErrClassification, sprite.Name, "classify",
				fmt.Sprintf("duplicate icon name (%s)", strings.Join(dups, ", ")), nil)
		}
	}
	return decision
}

// duplicateNames returns the sorted file names whose icon name (base name
// without extension, case-folded) is shared with another file.
func duplicateNames(files []string) []string {
	byIcon := make(map[string][]string, len(files))
	for _, file := range files {
		base := filepath.Base(file)
		key := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
		byIcon[key] = append(byIcon[key], base)
	}
	var dups []string
	for _, names := range byIcon {
		if len(names) > 1 {
			dups = append(dups, names...)
		}
	}
	sort.Strings(dups)
	return dups
}

func invalid(group, operation string, err error) Decision {
	return Decision{
		Kind: Invalid,
		Err:  services.Wrap(services.ErrClassification, group, operation, "", err),
	}
}
