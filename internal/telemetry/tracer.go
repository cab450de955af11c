package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on smbm spans.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP = "client.ip"
	AttrActor    = "smbm.actor"

	// ========================================================================
	// Configuration attributes
	// ========================================================================
	AttrSection  = "smbconf.section"
	AttrScope    = "smbconf.scope"
	AttrToSet    = "smbconf.to_set"
	AttrToDelete = "smbconf.to_delete"
	AttrState    = "smbconf.apply_state"
	AttrStep     = "smbconf.apply_step"
	AttrSession  = "smbconf.session"
	AttrSkipped  = "smbconf.skipped_lines"

	// ========================================================================
	// Command attributes
	// ========================================================================
	AttrCommand  = "process.command_line"
	AttrExitCode = "process.exit.code"
)

// Span names.
const (
	SpanApply       = "reconcile.apply"
	SpanApplyDelete = "reconcile.apply.delete"
	SpanApplySet    = "reconcile.apply.set"
	SpanNetConf     = "netconf."
)

func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

func Actor(name string) attribute.KeyValue {
	return attribute.String(AttrActor, name)
}

func Section(name string) attribute.KeyValue {
	return attribute.String(AttrSection, name)
}

func Scope(scope string) attribute.KeyValue {
	return attribute.String(AttrScope, scope)
}

func ToSet(n int) attribute.KeyValue {
	return attribute.Int(AttrToSet, n)
}

func ToDelete(n int) attribute.KeyValue {
	return attribute.Int(AttrToDelete, n)
}

func State(s string) attribute.KeyValue {
	return attribute.String(AttrState, s)
}

func Step(s string) attribute.KeyValue {
	return attribute.String(AttrStep, s)
}

func Session(id string) attribute.KeyValue {
	return attribute.String(AttrSession, id)
}

func Skipped(n int) attribute.KeyValue {
	return attribute.Int(AttrSkipped, n)
}

// Command returns the command line attribute
func Command(name string, args ...string) attribute.KeyValue {
	return attribute.String(AttrCommand, strings.TrimSpace(name+" "+strings.Join(args, " ")))
}

func ExitCode(code int) attribute.KeyValue {
	return attribute.Int(AttrExitCode, code)
}

// StartApplySpan starts the root span of an apply run for a section.
func StartApplySpan(ctx context.Context, section string, toSet, toDelete int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanApply, trace.WithAttributes(
		Section(section),
		ToSet(toSet),
		ToDelete(toDelete),
	))
}

// StartNetConfSpan starts a span for one `net conf` subcommand.
func StartNetConfSpan(ctx context.Context, subcommand string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanNetConf+subcommand,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}
