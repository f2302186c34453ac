package canvaspdf

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Browser].
	ErrClosed = errors.New("canvaspdf: browser is closed")

	// ErrElementNotFound is returned by a [Session] when no element matches
	// a selector or XPath expression.
	ErrElementNotFound = errors.New("canvaspdf: element not found")

	// ErrSurfaceLost is returned when the render canvas cannot be located
	// during traversal. No document is written.
	ErrSurfaceLost = errors.New("canvaspdf: render surface lost")

	// ErrGeometryUnavailable is returned when the scroll geometry of a
	// continuous document cannot be measured before the first capture.
	ErrGeometryUnavailable = errors.New("canvaspdf: scroll geometry unavailable")

	// ErrNoPages is returned when assembly is attempted with zero frames.
	ErrNoPages = errors.New("canvaspdf: no pages captured")

	// ErrInvalidPageCount is returned when the requested page total is not
	// a positive integer.
	ErrInvalidPageCount = errors.New("canvaspdf: page count must be positive")

	// ErrWrite is returned when the assembled document cannot be written
	// to its destination.
	ErrWrite = errors.New("canvaspdf: writing document")
)
