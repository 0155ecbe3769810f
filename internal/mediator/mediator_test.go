package mediator

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"multi-tenant-crm/backend/internal/platform/errs"
)

type createThing struct{ Name string }

type renameThing struct{ Name string }

type getThing struct{ ID string }

type childQuery struct{ getThing }

func recordingHandler(calls *[]string, label string, err error) CommandHandlerFunc[createThing, string] {
	return func(ctx context.Context, cmd createThing) (string, error) {
		*calls = append(*calls, label)
		if err != nil {
			return "", err
		}
		return label + ":" + cmd.Name, nil
	}
}

func TestHandleCommand_RunsHandlersInRegistrationOrder(t *testing.T) {
	var calls []string
	reg := NewRegistry()
	RegisterCommand[createThing, string](reg,
		recordingHandler(&calls, "first", nil),
		recordingHandler(&calls, "second", nil),
	)
	m := reg.Build()

	results, err := m.HandleCommand(context.Background(), createThing{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, []any{"first:x", "second:x"}, results)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestHandleCommand_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	reg := NewRegistry()
	RegisterCommand[createThing, string](reg,
		recordingHandler(&calls, "first", boom),
		recordingHandler(&calls, "second", nil),
	)
	m := reg.Build()

	results, err := m.HandleCommand(context.Background(), createThing{Name: "x"})
	assert.Same(t, boom, err)
	assert.Nil(t, results)
	assert.Equal(t, []string{"first"}, calls)
}

func TestRegisterCommand_OverwritesPriorRegistration(t *testing.T) {
	var calls []string
	reg := NewRegistry()
	RegisterCommand[createThing, string](reg, recordingHandler(&calls, "old", nil))
	RegisterCommand[createThing, string](reg, recordingHandler(&calls, "new", nil))
	m := reg.Build()

	results, err := m.HandleCommand(context.Background(), createThing{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, []any{"new:x"}, results)
}

func TestHandleCommand_NotRegistered(t *testing.T) {
	m := NewRegistry().Build()

	_, err := m.HandleCommand(context.Background(), renameThing{})
	var notReg *HandlersNotRegisteredError
	require.True(t, errors.As(err, &notReg), "err = %v, want *HandlersNotRegisteredError", err)
	assert.Equal(t, reflect.TypeOf(renameThing{}), notReg.CommandType)
	assert.Equal(t, errs.Dispatch, errs.KindOf(err))
	assert.Contains(t, err.Error(), "mediator.renameThing")
}

func TestHandleCommand_ExactTypeOnly(t *testing.T) {
	var calls []string
	reg := NewRegistry()
	RegisterCommand[createThing, string](reg, recordingHandler(&calls, "h", nil))
	m := reg.Build()

	_, err := m.HandleCommand(context.Background(), &createThing{Name: "x"})
	var notReg *HandlersNotRegisteredError
	assert.True(t, errors.As(err, &notReg), "pointer command must not match value registration")
	assert.Empty(t, calls)
}

func TestHandleQuery(t *testing.T) {
	reg := NewRegistry()
	RegisterQuery[getThing, string](reg, QueryHandlerFunc[getThing, string](func(ctx context.Context, q getThing) (string, error) {
		return "thing-" + q.ID, nil
	}))
	m := reg.Build()

	res, err := m.HandleQuery(context.Background(), getThing{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "thing-1", res)

	_, err = m.HandleQuery(context.Background(), childQuery{})
	var notReg *HandlerNotRegisteredError
	require.True(t, errors.As(err, &notReg), "embedding type must not match")
	assert.Equal(t, reflect.TypeOf(childQuery{}), notReg.QueryType)
}

func TestBuild_IsolatedFromLaterRegistrations(t *testing.T) {
	var calls []string
	reg := NewRegistry()
	m := reg.Build()
	RegisterCommand[createThing, string](reg, recordingHandler(&calls, "late", nil))

	_, err := m.HandleCommand(context.Background(), createThing{})
	var notReg *HandlersNotRegisteredError
	assert.True(t, errors.As(err, &notReg))
}

func TestTypedHelpers(t *testing.T) {
	var calls []string
	reg := NewRegistry()
	RegisterCommand[createThing, string](reg,
		recordingHandler(&calls, "a", nil),
		recordingHandler(&calls, "b", nil),
	)
	RegisterQuery[getThing, int](reg, QueryHandlerFunc[getThing, int](func(ctx context.Context, q getThing) (int, error) {
		return 42, nil
	}))
	m := reg.Build()
	ctx := context.Background()

	all, err := Send[string](ctx, m, createThing{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:n", "b:n"}, all)

	first, err := SendOne[string](ctx, m, createThing{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "a:n", first)

	n, err := Ask[int](ctx, m, getThing{})
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = Ask[string](ctx, m, getThing{})
	var typeErr *ResultTypeError
	require.True(t, errors.As(err, &typeErr), "err = %v, want *ResultTypeError", err)
	assert.Equal(t, errs.Dispatch, errs.KindOf(err))
}

func TestHandleCommand_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	var calls []string
	reg := NewRegistry()
	RegisterCommand[createThing, string](reg, recordingHandler(&calls, "h", errors.New("fail")))
	m := reg.Build(WithTracerProvider(tp))

	_, _ = m.HandleCommand(context.Background(), createThing{})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mediator.command mediator.createThing", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1, "error should be recorded on the span")
}

func TestMediator_ConcurrentDispatch(t *testing.T) {
	reg := NewRegistry()
	RegisterQuery[getThing, string](reg, QueryHandlerFunc[getThing, string](func(ctx context.Context, q getThing) (string, error) {
		return q.ID, nil
	}))
	m := reg.Build()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Ask[string](context.Background(), m, getThing{ID: "x"})
			assert.NoError(t, err)
			assert.Equal(t, "x", res)
		}()
	}
	wg.Wait()
}
