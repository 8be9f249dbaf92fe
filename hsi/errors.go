package hsi

import "errors"

var (
	// ErrNilFilter is generated when SetFilter is called with a nil filter
	ErrNilFilter = errors.New("hsi: filter cannot be nil")

	// ErrClosed is generated by a blocking wait started on a closed
	// session, or abandoned because the session closed
	ErrClosed = errors.New("hsi: session closed")

	// ErrInUse is generated when the instrument rejects a connection
	// because the client name is already registered
	ErrInUse = errors.New("hsi: client name already in use on instrument")

	// ErrDecodeMismatch is generated when a chunk stream's total length
	// diverges from noofsamples * sourcewidth
	ErrDecodeMismatch = errors.New("hsi: chunk stream does not match header sample count")
)
