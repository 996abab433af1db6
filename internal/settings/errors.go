package settings

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrAnchorRequired = errors.New("first single week date is required")
)

// ErrorKind is a coarse-grained categorization for store errors
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidRecord ErrorKind = "invalid_record"
	KindStorage       ErrorKind = "storage"
)

// OpError wraps an underlying error with the store operation and key
type OpError struct {
	Op   string
	Kind ErrorKind
	Key  string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Key != "" {
		base += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an OpError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

func notFound(op, key string) error {
	return &OpError{Op: op, Kind: KindNotFound, Key: key, Err: ErrNotFound}
}
