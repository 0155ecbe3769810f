package mediator

import (
	"fmt"
	"reflect"

	"multi-tenant-crm/backend/internal/platform/errs"
)

// HandlersNotRegisteredError is returned when a command has no registered handlers.
type HandlersNotRegisteredError struct {
	CommandType reflect.Type
}

func (e *HandlersNotRegisteredError) Error() string {
	return fmt.Sprintf("handlers not registered for command %s", typeName(e.CommandType))
}

func (e *HandlersNotRegisteredError) Kind() errs.Kind { return errs.Dispatch }

// HandlerNotRegisteredError is returned when a query has no registered handler.
type HandlerNotRegisteredError struct {
	QueryType reflect.Type
}

func (e *HandlerNotRegisteredError) Error() string {
	return fmt.Sprintf("handler not registered for query %s", typeName(e.QueryType))
}

func (e *HandlerNotRegisteredError) Kind() errs.Kind { return errs.Dispatch }

// ResultTypeError is returned by Send, SendOne and Ask when a handler result does not have the
// type the caller asked for.
type ResultTypeError struct {
	RequestType reflect.Type
	Want        reflect.Type
	Got         reflect.Type
}

func (e *ResultTypeError) Error() string {
	return fmt.Sprintf("handler for %s returned %s, want %s", typeName(e.RequestType), typeName(e.Got), typeName(e.Want))
}

func (e *ResultTypeError) Kind() errs.Kind { return errs.Dispatch }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
