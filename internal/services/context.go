package services

import "context"

type contextKey string

const (
	projectIDKey    contextKey = "project_id"
	segmentIDKey    contextKey = "segment_id"
	segmentIndexKey contextKey = "segment_index"
	requestIDKey    contextKey = "request_id"
)

// WithProjectID attaches a project identifier to the context.
func WithProjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, projectIDKey, id)
}

// ProjectIDFromContext extracts the project identifier, if present.
func ProjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(projectIDKey).(string)
	return id, ok && id != ""
}

// WithSegment attaches segment identity to the context.
func WithSegment(ctx context.Context, id string, index int) context.Context {
	ctx = context.WithValue(ctx, segmentIDKey, id)
	return context.WithValue(ctx, segmentIndexKey, index)
}

// SegmentIDFromContext extracts the segment identifier, if present.
func SegmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(segmentIDKey).(string)
	return id, ok && id != ""
}

// SegmentIndexFromContext extracts the segment index, if present.
func SegmentIndexFromContext(ctx context.Context) (int, bool) {
	idx, ok := ctx.Value(segmentIndexKey).(int)
	return idx, ok
}

// WithRequestID attaches a correlation identifier to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}
