package imgio

import "fmt"

// DecodeError reports a source image that is missing, unreadable or not in
// a registered format.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode image %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a destination that could not be encoded or written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("could not encode image %q: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
