package ctxutil

import (
	"context"
	"time"
)

type traceDataKey struct{}

// TraceData is attached once per request. RunID is filled in later, by the
// pipeline, once a build has minted its run token.
type TraceData struct {
	TraceID   string
	RequestID string
	RunID     string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// SetRunID records the run on the request's trace data, if there is any.
func SetRunID(ctx context.Context, runID string) {
	if td := GetTraceData(ctx); td != nil {
		td.RunID = runID
	}
}

// LogFields returns the non-empty ids as logger key/value pairs.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	var out []interface{}
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.RunID != "" {
		out = append(out, "run_id", td.RunID)
	}
	return out
}

// Default returns ctx, or a background context when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithOptionalTimeout bounds ctx by d when d is positive.
func WithOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ctx = Default(ctx)
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
