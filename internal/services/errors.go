package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrClassification = errors.New("classification error")
	ErrPacking        = errors.New("packing error")
	ErrValidation     = errors.New("validation error")
	ErrOutput         = errors.New("output error")
	ErrConfiguration  = errors.New("configuration error")
)

// Wrap builds an error message that includes group context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, group, operation, message string, err error) error {
	detail := buildDetail(group, operation, message)
	if marker == nil {
		marker = ErrPacking
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, used as the
// event type of log records and in the run summary.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrClassification):
		return "classification"
	case errors.Is(err, ErrPacking):
		return "packing"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrOutput):
		return "output"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}

// Hint returns an operator-facing next step for the marker carried by err.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrClassification):
		return "keep a single file type (.png or .svg) per sprite group or narrow the include pattern"
	case errors.Is(err, ErrPacking):
		return "check that every source image decodes and is readable"
	case errors.Is(err, ErrValidation):
		return "icons must be square; resize the listed files"
	case errors.Is(err, ErrOutput):
		return "check permissions on the target folders"
	case errors.Is(err, ErrConfiguration):
		return "run 'spritegen config validate'"
	default:
		return "check logs for details"
	}
}

func buildDetail(group, operation, message string) string {
	parts := make([]string, 0, 3)
	if group = strings.TrimSpace(group); group != "" {
		parts = append(parts, group)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sprite failure"
	}
	return strings.Join(parts, ": ")
}
