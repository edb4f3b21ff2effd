package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	groupKey contextKey = "group"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithGroup annotates context with the sprite group name.
func WithGroup(ctx context.Context, group string) context.Context {
	if group == "" {
		return ctx
	}
	return context.WithValue(ctx, groupKey, group)
}

// GroupFromContext returns the sprite group name if present.
func GroupFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(groupKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
