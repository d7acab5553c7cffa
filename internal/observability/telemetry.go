package observability

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry holds the tracing, log mirroring and profiling hooks of one
// syncer invocation.
type Telemetry struct {
	command string
	logger  *logging.Logger
	tracer  trace.Tracer
	closers []func(context.Context) error
}

// Start wires Uptrace and Pyroscope for command. Disabled backends are
// skipped; a failing backend stops the ones already started.
func Start(cfg config.Config, command string, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{
		command: strings.TrimSpace(command),
		logger:  logger,
	}

	if err := t.startUptrace(cfg); err != nil {
		return nil, errors.Wrap(err, "start uptrace")
	}
	if err := t.startPyroscope(cfg); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, errors.Wrap(err, "start pyroscope")
	}
	t.tracer = otel.Tracer("matchsync/cmd/syncer")
	return t, nil
}

// Trace opens the root span of the command. Usecase spans only attach below
// a root span, so without this call a run records no traces.
func (t *Telemetry) Trace(ctx context.Context) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "syncer."+t.command,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("matchsync.command", t.command)),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// Shutdown stops the backends in reverse start order.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	for i := len(t.closers) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, t.closers[i](ctx))
	}
	t.closers = nil
	return err
}

func (t *Telemetry) onShutdown(fn func(context.Context) error) {
	t.closers = append(t.closers, fn)
}
