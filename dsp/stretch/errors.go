package stretch

import "errors"

var (
	// ErrInvalidParameter reports parameters outside their documented range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformedInput reports sample data that does not form whole frames
	// or does not match the stream format.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidState reports a call that is not allowed in the stream's
	// current state.
	ErrInvalidState = errors.New("invalid state")
)
