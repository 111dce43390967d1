package models

import (
	"encoding/json"
	"fmt"
)

// ActionType identifies the kind of an action, ignoring its payload.
type ActionType string

const (
	ActionLeftClick      ActionType = "left_click"
	ActionRightClick     ActionType = "right_click"
	ActionMiddleClick    ActionType = "middle_click"
	ActionDoubleClick    ActionType = "double_click"
	ActionMouseMove      ActionType = "mouse_move"
	ActionLeftClickDrag  ActionType = "left_click_drag"
	ActionTypeText       ActionType = "type_text"
	ActionKeyPress       ActionType = "key_press"
	ActionScreenshot     ActionType = "screenshot"
	ActionCursorPosition ActionType = "cursor_position"
)

// Action is one discrete request to manipulate the input device or capture
// the display. Which payload fields are meaningful depends on Type:
// X/Y for mouse_move and left_click_drag, Text for type_text, Key for
// key_press. An Action is immutable once constructed.
type Action struct {
	Type ActionType
	X    int
	Y    int
	Text string
	Key  string
}

func (a Action) String() string {
	switch a.Type {
	case ActionMouseMove, ActionLeftClickDrag:
		return fmt.Sprintf("%s(%d,%d)", a.Type, a.X, a.Y)
	case ActionTypeText:
		return fmt.Sprintf("%s(%q)", a.Type, a.Text)
	case ActionKeyPress:
		return fmt.Sprintf("%s(%q)", a.Type, a.Key)
	default:
		return string(a.Type)
	}
}

// actionWire is the flattened JSON shape: {"type": "...", ...fields}.
type actionWire struct {
	Type ActionType `json:"type"`
	X    *int       `json:"x,omitempty"`
	Y    *int       `json:"y,omitempty"`
	Text *string    `json:"text,omitempty"`
	Key  *string    `json:"key,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	w := actionWire{Type: a.Type}
	switch a.Type {
	case ActionMouseMove, ActionLeftClickDrag:
		x, y := a.X, a.Y
		w.X, w.Y = &x, &y
	case ActionTypeText:
		text := a.Text
		w.Text = &text
	case ActionKeyPress:
		key := a.Key
		w.Key = &key
	}
	return json.Marshal(w)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var w actionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed := Action{Type: w.Type}
	switch w.Type {
	case ActionLeftClick, ActionRightClick, ActionMiddleClick,
		ActionDoubleClick, ActionScreenshot, ActionCursorPosition:
		// No payload.
	case ActionMouseMove, ActionLeftClickDrag:
		if w.X == nil || w.Y == nil {
			return fmt.Errorf("action %s requires x and y", w.Type)
		}
		parsed.X, parsed.Y = *w.X, *w.Y
	case ActionTypeText:
		if w.Text == nil {
			return fmt.Errorf("action %s requires text", w.Type)
		}
		parsed.Text = *w.Text
	case ActionKeyPress:
		if w.Key == nil {
			return fmt.Errorf("action %s requires key", w.Type)
		}
		parsed.Key = *w.Key
	default:
		return fmt.Errorf("unknown action type: %q", w.Type)
	}
	*a = parsed
	return nil
}

// ActionRequest is an incoming message asking for one action to be
// performed. The id is caller-supplied and echoed back as request_id on
// the response.
type ActionRequest struct {
	ID     string `json:"id"`
	Action Action `json:"action"`
}
