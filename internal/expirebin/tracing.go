package expirebin

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/expirebin/engine/internal/storage/record"
	"github.com/expirebin/engine/internal/tracing"
)

// StartGetSpan starts a span for a bin read
func StartGetSpan(ctx context.Context, key record.Key, binCount int) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.ops")
	ctx, span := tracer.Start(ctx, "bins.get",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrNamespace, key.Namespace),
		attribute.String(tracing.AttrSet, key.Set),
		attribute.String(tracing.AttrRecordID, key.ID),
		attribute.Int(tracing.AttrBinCount, binCount),
		attribute.String(tracing.AttrOperation, "get"),
	)
	return ctx, span
}

// StartPutSpan starts a span for a single bin write
func StartPutSpan(ctx context.Context, key record.Key, bin string, create bool) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.ops")
	ctx, span := tracer.Start(ctx, "bins.put",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrNamespace, key.Namespace),
		attribute.String(tracing.AttrSet, key.Set),
		attribute.String(tracing.AttrRecordID, key.ID),
		attribute.String(tracing.AttrBin, bin),
		attribute.Bool(tracing.AttrCreate, create),
		attribute.String(tracing.AttrOperation, "put"),
	)
	return ctx, span
}

// StartPutsSpan starts a span for a batch bin write
func StartPutsSpan(ctx context.Context, key record.Key, binCount int) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.ops")
	ctx, span := tracer.Start(ctx, "bins.puts",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrNamespace, key.Namespace),
		attribute.String(tracing.AttrSet, key.Set),
		attribute.String(tracing.AttrRecordID, key.ID),
		attribute.Int(tracing.AttrBinCount, binCount),
		attribute.String(tracing.AttrOperation, "puts"),
	)
	return ctx, span
}

// StartTouchSpan starts a span for a batch TTL refresh
func StartTouchSpan(ctx context.Context, key record.Key, binCount int) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.ops")
	ctx, span := tracer.Start(ctx, "bins.touch",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrNamespace, key.Namespace),
		attribute.String(tracing.AttrSet, key.Set),
		attribute.String(tracing.AttrRecordID, key.ID),
		attribute.Int(tracing.AttrBinCount, binCount),
		attribute.String(tracing.AttrOperation, "touch"),
	)
	return ctx, span
}

// StartTTLSpan starts a span for a remaining-TTL query
func StartTTLSpan(ctx context.Context, key record.Key, bin string) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.ops")
	ctx, span := tracer.Start(ctx, "bins.ttl",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrNamespace, key.Namespace),
		attribute.String(tracing.AttrSet, key.Set),
		attribute.String(tracing.AttrRecordID, key.ID),
		attribute.String(tracing.AttrBin, bin),
		attribute.String(tracing.AttrOperation, "ttl"),
	)
	return ctx, span
}

// StartCleanSpan starts a span for an expired-bin removal
func StartCleanSpan(ctx context.Context, key record.Key, binCount int) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.ops")
	ctx, span := tracer.Start(ctx, "bins.clean",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrNamespace, key.Namespace),
		attribute.String(tracing.AttrSet, key.Set),
		attribute.String(tracing.AttrRecordID, key.ID),
		attribute.Int(tracing.AttrBinCount, binCount),
		attribute.String(tracing.AttrOperation, "clean"),
	)
	return ctx, span
}

// StartSweepSpan starts a span for one reaper sweep of a set
func StartSweepSpan(ctx context.Context, runID, namespace, set string) (context.Context, trace.Span) {
	tracer := otel.Tracer("expirebin.reaper")
	ctx, span := tracer.Start(ctx, "reaper.sweep",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrReapRunID, runID),
		attribute.String(tracing.AttrNamespace, namespace),
		attribute.String(tracing.AttrSet, set),
		attribute.String(tracing.AttrOperation, "sweep"),
	)
	return ctx, span
}
