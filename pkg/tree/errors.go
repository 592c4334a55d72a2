package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/geonodes/pkg/graph"
)

// ErrEmptyStack is returned when popping or peeking an empty Stack.
var ErrEmptyStack = errors.New("tree stack is empty")

// InvalidSelectionError reports a selector that cannot become a Boolean
// predicate.
type InvalidSelectionError struct {
	Selector string
	Reason   string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection %s: %s", e.Selector, e.Reason)
}

// UnsupportedDomainError reports a field accessed on a domain it does not
// live on.
type UnsupportedDomainError struct {
	Field   string
	Domain  graph.Domain
	Allowed []graph.Domain
}

func (e *UnsupportedDomainError) Error() string {
	names := make([]string, len(e.Allowed))
	for i, d := range e.Allowed {
		names[i] = d.String()
	}
	return fmt.Sprintf("%s is not available on the %s domain (allowed: %s)",
		e.Field, e.Domain, strings.Join(names, ", "))
}

// ReadOnlyFieldError reports a write to a getter-only field.
type ReadOnlyFieldError struct {
	Field string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("field %s is read only", e.Field)
}

// UnsupportedOperationError reports an operator with no mapping for the
// operand's semantic type.
type UnsupportedOperationError struct {
	Op     Op
	Type   graph.SocketType
	Detail string
}

func (e *UnsupportedOperationError) Error() string {
	msg := fmt.Sprintf("operator %s is not supported on %s", e.Op, e.Type)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ResourceNotFoundError reports a named resource missing from the library.
type ResourceNotFoundError struct {
	Kind graph.ResourceKind
	Name string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}
