package controller

import (
	"errors"
	"fmt"
	"reflect"
)

// Configuration defects. Any of these aborts initialization.
var (
	ErrValueController   = errors.New("controller must be a pointer type")
	ErrValueState        = errors.New("state must be a pointer type")
	ErrMissingHandler    = errors.New("no handler for declared state interest")
	ErrUnsettableField   = errors.New("dependency field has no settable storage and no setter")
	ErrDuplicateInterest = errors.New("state interest declared twice")
)

// DefectError identifies the type that carries a configuration defect.
type DefectError struct {
	Type   reflect.Type
	Detail string
	Err    error
}

func (e *DefectError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Type, e.Err, e.Detail)
}

func (e *DefectError) Unwrap() error { return e.Err }

// Defect builds a DefectError for t.
func Defect(t reflect.Type, err error, detail string) error {
	return &DefectError{Type: t, Detail: detail, Err: err}
}
