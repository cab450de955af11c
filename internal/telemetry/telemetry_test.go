package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/smbmanager/internal/logger"
)

// recordSpans installs an in-memory provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Endpoint: "localhost:4317"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := StartSpan(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "ParentBased{root:AlwaysOnSampler,")
	assert.Contains(t, sampler(0).Description(), "ParentBased{root:AlwaysOffSampler,")
	assert.Contains(t, sampler(0.25).Description(), "ParentBased{root:TraceIDRatioBased{0.25},")
}

func TestApplySpanHierarchy(t *testing.T) {
	rec := recordSpans(t)

	ctx, root := StartApplySpan(context.Background(), "Public", 2, 1)
	_, step := StartSpan(ctx, SpanApplySet, trace.WithAttributes(Section("Public"), Step("set")))
	RecordError(ctx, nil)
	step.End()
	SetAttributes(ctx, State("failed"))
	RecordError(ctx, errors.New("setparm exited 255"))
	root.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, SpanApplySet, spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	got := spans[1]
	assert.Equal(t, SpanApply, got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "setparm exited 255", got.Status().Description)
	attrs := attrMap(got.Attributes())
	assert.Equal(t, "Public", attrs[AttrSection].AsString())
	assert.Equal(t, int64(2), attrs[AttrToSet].AsInt64())
	assert.Equal(t, int64(1), attrs[AttrToDelete].AsInt64())
	assert.Equal(t, "failed", attrs[AttrState].AsString())
}

func TestStartNetConfSpan(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartNetConfSpan(context.Background(), "setparm", Command("net", "conf", "setparm", "Public", "comment", "x"))
	SetAttributes(trace.ContextWithSpan(context.Background(), span), ExitCode(0))
	span.End()

	require.Len(t, rec.Ended(), 1)
	got := rec.Ended()[0]
	assert.Equal(t, "netconf.setparm", got.Name())
	assert.Equal(t, trace.SpanKindClient, got.SpanKind())
	attrs := attrMap(got.Attributes())
	assert.Equal(t, "net conf setparm Public comment x", attrs[AttrCommand].AsString())
	assert.Equal(t, int64(0), attrs[AttrExitCode].AsInt64())
}

func TestWithLogContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithLogContext(ctx))

	recordSpans(t)
	ctx, span := StartSpan(logger.WithContext(ctx, logger.NewLogContext("10.0.0.1")), "op")
	defer span.End()

	lc := logger.FromContext(WithLogContext(ctx))
	require.NotNil(t, lc)
	assert.Equal(t, span.SpanContext().TraceID().String(), lc.TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), lc.SpanID)
	assert.Equal(t, "10.0.0.1", lc.ClientIP)
}

func TestAttributeHelpers(t *testing.T) {
	for _, kv := range []attribute.KeyValue{
		ClientIP("192.168.1.100"), Actor("admin"), Section("Public"),
		Scope("share"), State("done"), Step("delete"), Session("abc"),
	} {
		assert.NotEmpty(t, kv.Value.AsString(), kv.Key)
	}
	assert.Equal(t, int64(2), Skipped(2).Value.AsInt64())
	assert.Equal(t, "net", Command("net").Value.AsString())
}

func TestInitProfiling(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{ProfileTypes: []string{"nonsense"}})
	require.NoError(t, err, "disabled profiling ignores its settings")
	assert.NoError(t, shutdown(context.Background()))

	_, err = InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"cpu", "heap"}})
	assert.ErrorContains(t, err, `unknown profile type "heap"`)
}

func TestProfileTypeNames(t *testing.T) {
	names := ProfileTypeNames()
	assert.Len(t, names, 10)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "goroutines")
}
