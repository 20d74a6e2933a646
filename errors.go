package facegraph

import "github.com/pkg/errors"

// Sentinel errors returned at mutation boundaries. Callers match them with errors.Is; the returned
// values are wrapped with context describing which parameter was rejected.
var (
	// ErrDomain is returned when a transform component would produce a non-invertible or non-finite matrix
	// (zero, negative or NaN scale, zero-length rotation).
	ErrDomain = errors.New("facegraph: transform out of domain")
	// ErrInvalidArgument is returned for degenerate camera parameters.
	ErrInvalidArgument = errors.New("facegraph: invalid argument")
	// ErrInvalidState is returned when an operation is not valid for the object's current state, such as
	// binding a skeleton twice or binding a bone whose world matrix can't be inverted.
	ErrInvalidState = errors.New("facegraph: invalid state")
	// ErrBackendInit is returned when a renderer is created without a usable graphics backend.
	ErrBackendInit = errors.New("facegraph: graphics backend unavailable")
)
