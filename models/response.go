package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionOutput carries the data payload of actions that return
// information. Only screenshot and cursor_position produce output.
type ActionOutput struct {
	Image string
	X     int
	Y     int
	kind  ActionType
}

func ScreenshotOutput(image string) *ActionOutput {
	return &ActionOutput{Image: image, kind: ActionScreenshot}
}

func CursorPositionOutput(x, y int) *ActionOutput {
	return &ActionOutput{X: x, Y: y, kind: ActionCursorPosition}
}

// MarshalJSON emits the untagged wire shape: {"image": ...} for
// screenshots, {"x": ..., "y": ...} for cursor positions.
func (o ActionOutput) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case ActionScreenshot:
		return json.Marshal(struct {
			Image string `json:"image"`
		}{o.Image})
	default:
		return json.Marshal(struct {
			X int `json:"x"`
			Y int `json:"y"`
		}{o.X, o.Y})
	}
}

func (o *ActionOutput) UnmarshalJSON(data []byte) error {
	var w struct {
		Image *string `json:"image"`
		X     int     `json:"x"`
		Y     int     `json:"y"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Image != nil {
		*o = ActionOutput{Image: *w.Image, kind: ActionScreenshot}
		return nil
	}
	*o = ActionOutput{X: w.X, Y: w.Y, kind: ActionCursorPosition}
	return nil
}

// ResponseStatus is the overall outcome of a request.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusError   ResponseStatus = "error"
)

// ActionResponse is the single outgoing message produced for a request.
// Exactly one is created per completed or timed-out request.
type ActionResponse struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id"`
	Timestamp time.Time      `json:"timestamp"`
	Status    ResponseStatus `json:"status"`
	Action    Action         `json:"action"`
	Data      *ActionOutput  `json:"data,omitempty"`
	Error     *ActionError   `json:"error,omitempty"`
}

// SuccessActionResponse builds a success response, attaching output data
// when the action produced any.
func SuccessActionResponse(requestID string, action Action, data *ActionOutput) ActionResponse {
	return ActionResponse{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Status:    StatusSuccess,
		Action:    action,
		Data:      data,
	}
}

// ErrorActionResponse builds an error response carrying the given error.
func ErrorActionResponse(requestID string, action Action, actionErr *ActionError) ActionResponse {
	return ActionResponse{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Status:    StatusError,
		Action:    action,
		Error:     actionErr,
	}
}

// APIResponse is the generic envelope for non-action HTTP endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func ErrorResponse(err string) APIResponse {
	return APIResponse{Success: false, Error: err}
}

func MessageResponse(message string) APIResponse {
	return APIResponse{Success: true, Message: message}
}
