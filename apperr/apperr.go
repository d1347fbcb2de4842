package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an internal error. It never leaves the process; the service layer maps
// it onto the external response taxonomy.
type Kind int

const (
	// ServerError is the generic fallback for failures with no better classification.
	ServerError Kind = iota
	// ConnectionError means the store could not be reached or no connection was available.
	ConnectionError
	// QueryError means a store operation failed to execute.
	QueryError
	// ContentNotFound means a lookup or update matched no visible row.
	ContentNotFound
	// ValidationError means a value failed field constraints.
	ValidationError
)

func (k Kind) String() string {
	switch k {
	case ConnectionError:
		return "unable to connect to database"
	case QueryError:
		return "a database query failed to be executed"
	case ContentNotFound:
		return "a database query did not find any content"
	case ValidationError:
		return "a value failed validation"
	default:
		return "internal server error"
	}
}

// Error carries the kind of failure, the operation it happened in and the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind without an underlying cause.
func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

// Wrap attaches kind and op to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain, or ServerError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ServerError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
