// Package mediator routes commands and queries to their handlers by exact runtime type.
//
// Handlers are collected in a Registry during startup composition and frozen into a Mediator
// with Build. A Mediator is read-only and safe for concurrent dispatch.
package mediator

import (
	"context"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "multi-tenant-crm/backend/internal/mediator"

// CommandHandler handles one command type. A command may have several handlers.
type CommandHandler[C, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// QueryHandler handles one query type.
type QueryHandler[Q, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc[C, R any] func(ctx context.Context, cmd C) (R, error)

func (f CommandHandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) { return f(ctx, cmd) }

// QueryHandlerFunc adapts a function to QueryHandler.
type QueryHandlerFunc[Q, R any] func(ctx context.Context, q Q) (R, error)

func (f QueryHandlerFunc[Q, R]) Handle(ctx context.Context, q Q) (R, error) { return f(ctx, q) }

type handlerFunc func(ctx context.Context, req any) (any, error)

// Registry collects handler registrations. It is not safe for concurrent use; populate it once
// at startup and call Build.
type Registry struct {
	commands map[reflect.Type][]handlerFunc
	queries  map[reflect.Type]handlerFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[reflect.Type][]handlerFunc),
		queries:  make(map[reflect.Type]handlerFunc),
	}
}

// RegisterCommand associates handlers with command type C, replacing any earlier registration
// for C. Handlers run in the order given.
func RegisterCommand[C, R any](r *Registry, handlers ...CommandHandler[C, R]) {
	fns := make([]handlerFunc, 0, len(handlers))
	for _, h := range handlers {
		fns = append(fns, func(ctx context.Context, req any) (any, error) {
			return h.Handle(ctx, req.(C))
		})
	}
	r.commands[typeOf[C]()] = fns
}

// RegisterQuery associates handler with query type Q, replacing any earlier registration for Q.
func RegisterQuery[Q, R any](r *Registry, handler QueryHandler[Q, R]) {
	r.queries[typeOf[Q]()] = func(ctx context.Context, req any) (any, error) {
		return handler.Handle(ctx, req.(Q))
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Option configures a Mediator.
type Option func(*Mediator)

// WithLogger sets the logger used for dispatch debug logs.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Mediator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTracerProvider sets the provider for dispatch spans. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Mediator) {
		if tp != nil {
			m.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithMeterProvider sets the provider for the dispatch counter. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Mediator) {
		if mp != nil {
			m.meter = mp.Meter(instrumentationName)
		}
	}
}

// Mediator dispatches commands and queries to the handlers captured at Build time.
type Mediator struct {
	commands   map[reflect.Type][]handlerFunc
	queries    map[reflect.Type]handlerFunc
	logger     *zap.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	dispatches metric.Int64Counter
}

// Build copies the registrations into an immutable Mediator. Later changes to r are not seen.
func (r *Registry) Build(opts ...Option) *Mediator {
	m := &Mediator{
		commands: make(map[reflect.Type][]handlerFunc, len(r.commands)),
		queries:  make(map[reflect.Type]handlerFunc, len(r.queries)),
		logger:   zap.NewNop(),
		tracer:   otel.GetTracerProvider().Tracer(instrumentationName),
		meter:    otel.GetMeterProvider().Meter(instrumentationName),
	}
	for t, hs := range r.commands {
		m.commands[t] = append([]handlerFunc(nil), hs...)
	}
	for t, h := range r.queries {
		m.queries[t] = h
	}
	for _, opt := range opts {
		opt(m)
	}
	counter, err := m.meter.Int64Counter("crm.mediator.dispatches",
		metric.WithDescription("Commands and queries dispatched by the mediator."))
	if err != nil {
		m.logger.Warn("mediator: dispatch counter unavailable", zap.Error(err))
	}
	m.dispatches = counter
	return m
}

// HandleCommand runs every handler registered for the exact type of cmd, in registration order,
// and returns their results. The first handler error stops dispatch and is returned unchanged.
func (m *Mediator) HandleCommand(ctx context.Context, cmd any) ([]any, error) {
	t := reflect.TypeOf(cmd)
	handlers, ok := m.commands[t]
	if !ok || len(handlers) == 0 {
		err := &HandlersNotRegisteredError{CommandType: t}
		m.record(ctx, "command", t, err)
		return nil, err
	}

	ctx, span := m.tracer.Start(ctx, "mediator.command "+typeName(t),
		trace.WithAttributes(attribute.Int("mediator.handlers", len(handlers))))
	defer span.End()

	start := time.Now()
	results := make([]any, 0, len(handlers))
	for i, h := range handlers {
		res, err := h(ctx, cmd)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			m.logger.Debug("mediator: command failed",
				zap.String("command", typeName(t)), zap.Int("handler", i), zap.Error(err))
			m.record(ctx, "command", t, err)
			return nil, err
		}
		results = append(results, res)
	}
	m.logger.Debug("mediator: command handled",
		zap.String("command", typeName(t)), zap.Int("handlers", len(handlers)), zap.Duration("took", time.Since(start)))
	m.record(ctx, "command", t, nil)
	return results, nil
}

// HandleQuery runs the handler registered for the exact type of q and returns its result.
func (m *Mediator) HandleQuery(ctx context.Context, q any) (any, error) {
	t := reflect.TypeOf(q)
	h, ok := m.queries[t]
	if !ok {
		err := &HandlerNotRegisteredError{QueryType: t}
		m.record(ctx, "query", t, err)
		return nil, err
	}

	ctx, span := m.tracer.Start(ctx, "mediator.query "+typeName(t))
	defer span.End()

	start := time.Now()
	res, err := h(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		m.logger.Debug("mediator: query failed", zap.String("query", typeName(t)), zap.Error(err))
		m.record(ctx, "query", t, err)
		return nil, err
	}
	m.logger.Debug("mediator: query handled", zap.String("query", typeName(t)), zap.Duration("took", time.Since(start)))
	m.record(ctx, "query", t, nil)
	return res, nil
}

func (m *Mediator) record(ctx context.Context, kind string, t reflect.Type, err error) {
	if m.dispatches == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("type", typeName(t)),
		attribute.String("outcome", outcome),
	))
}

// Send dispatches cmd and converts every handler result to R.
func Send[R any](ctx context.Context, m *Mediator, cmd any) ([]R, error) {
	results, err := m.HandleCommand(ctx, cmd)
	if err != nil {
		return nil, err
	}
	out := make([]R, 0, len(results))
	for _, res := range results {
		v, ok := res.(R)
		if !ok {
			return nil, &ResultTypeError{RequestType: reflect.TypeOf(cmd), Want: typeOf[R](), Got: reflect.TypeOf(res)}
		}
		out = append(out, v)
	}
	return out, nil
}

// SendOne dispatches cmd and returns the first handler's result as R.
func SendOne[R any](ctx context.Context, m *Mediator, cmd any) (R, error) {
	var zero R
	results, err := m.HandleCommand(ctx, cmd)
	if err != nil {
		return zero, err
	}
	v, ok := results[0].(R)
	if !ok {
		return zero, &ResultTypeError{RequestType: reflect.TypeOf(cmd), Want: typeOf[R](), Got: reflect.TypeOf(results[0])}
	}
	return v, nil
}

// Ask dispatches q and returns its result as R.
func Ask[R any](ctx context.Context, m *Mediator, q any) (R, error) {
	var zero R
	res, err := m.HandleQuery(ctx, q)
	if err != nil {
		return zero, err
	}
	v, ok := res.(R)
	if !ok {
		return zero, &ResultTypeError{RequestType: reflect.TypeOf(q), Want: typeOf[R](), Got: reflect.TypeOf(res)}
	}
	return v, nil
}
