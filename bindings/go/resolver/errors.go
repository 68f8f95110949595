package resolver

import (
	"errors"
	"fmt"

	"github.com/uklance/gradle-dependency-export/bindings/go/coordinate"
)

var (
	// ErrUnresolvableCoordinate is matched by every UnresolvableCoordinateError.
	ErrUnresolvableCoordinate = errors.New("unresolvable coordinate")
	// ErrInvalidReference is matched by every InvalidReferenceError.
	ErrInvalidReference = errors.New("invalid reference")
)

// UnresolvableCoordinateError is returned if the fetch service could not produce
// exactly one file for a coordinate.
type UnresolvableCoordinateError struct {
	Coordinate coordinate.Coordinate
	// Unit is the name of the fetch unit used for the attempt.
	Unit string
	Err  error
}

func (e *UnresolvableCoordinateError) Error() string {
	return fmt.Sprintf("%s: %s (fetch unit %q): %v", ErrUnresolvableCoordinate, e.Coordinate, e.Unit, e.Err)
}

func (e *UnresolvableCoordinateError) Unwrap() error {
	return e.Err
}

func (e *UnresolvableCoordinateError) Is(target error) bool {
	return target == ErrUnresolvableCoordinate
}

// InvalidReferenceError is returned if a parent or dependency reference does not carry a usable coordinate.
// No fetch is attempted in that case.
type InvalidReferenceError struct {
	// Kind is either "parent" or "dependency".
	Kind string
	// Reference is the string form of the offending reference.
	Reference string
	Err       error
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrInvalidReference, e.Kind, e.Reference, e.Err)
}

func (e *InvalidReferenceError) Unwrap() error {
	return e.Err
}

func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}
