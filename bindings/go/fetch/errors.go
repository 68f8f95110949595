package fetch

import "errors"

var (
	// ErrUnitExists is returned when creating a unit with a name that is already in use.
	ErrUnitExists = errors.New("fetch unit already exists")
	// ErrTransitiveUnsupported is returned when resolving a transitive unit.
	ErrTransitiveUnsupported = errors.New("transitive resolution is not supported")
	// ErrNoFiles is returned by ResolveToSingleFile if the unit resolved to no file.
	ErrNoFiles = errors.New("fetch unit resolved to no files")
	// ErrMultipleFiles is returned by ResolveToSingleFile if the unit resolved to more than one file.
	ErrMultipleFiles = errors.New("fetch unit resolved to more than one file")
)
