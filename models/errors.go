package models

// ErrorKind classifies what went wrong while executing an action.
type ErrorKind string

const (
	// ErrorTimeout means no result arrived within the deadline. The action
	// may still have run on the device; only the wait was abandoned.
	ErrorTimeout ErrorKind = "timeout"
	// ErrorExecutionFailed means a device call failed or a multi-step
	// handler aborted mid-sequence.
	ErrorExecutionFailed ErrorKind = "execution_failed"
	// ErrorInvalidInput means malformed request content was detected
	// before any device interaction took place.
	ErrorInvalidInput ErrorKind = "invalid_input"
	// ErrorChannel means an internal delivery-path failure, e.g. the
	// worker terminated without answering.
	ErrorChannel ErrorKind = "channel_error"
)

// ActionError is the error taxonomy carried on action responses.
type ActionError struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
}

func (e *ActionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func TimeoutError() *ActionError {
	return &ActionError{Kind: ErrorTimeout, Message: "Action timed out"}
}

func ExecutionFailed(msg string) *ActionError {
	return &ActionError{Kind: ErrorExecutionFailed, Message: msg}
}

func InvalidInput(msg string) *ActionError {
	return &ActionError{Kind: ErrorInvalidInput, Message: msg}
}

func ChannelError(msg string) *ActionError {
	return &ActionError{Kind: ErrorChannel, Message: msg}
}
