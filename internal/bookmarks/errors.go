package bookmarks

import "fmt"

// DecodeError reports an upload whose bytes are not valid UTF-8.
type DecodeError struct {
	Offset int
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: %v", e.Cause)
	}
	return fmt.Sprintf("decode error: invalid UTF-8 at byte %d", e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
