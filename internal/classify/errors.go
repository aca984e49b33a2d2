package classify

import "fmt"

// ExternalServiceError reports a failed call to the LLM service (network, auth, quota).
type ExternalServiceError struct {
	Batch   int
	Message string
	Cause   error
}

func (e *ExternalServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("external service error (batch %d): %s: %v", e.Batch, e.Message, e.Cause)
	}
	return fmt.Sprintf("external service error (batch %d): %s", e.Batch, e.Message)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError reports a reply that is not a usable JSON array for the batch.
type MalformedResponseError struct {
	Batch    int
	Message  string
	Sent     int
	Received int
	Cause    error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed response (batch %d): %s", e.Batch, e.Message)
	if e.Received > 0 || e.Sent > 0 {
		msg += fmt.Sprintf(" (sent %d, received %d)", e.Sent, e.Received)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
