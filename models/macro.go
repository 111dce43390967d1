package models

// Macro is a named, stored sequence of actions that can be replayed
// through the action queue as if each step had been submitted by hand.
type Macro struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Actions     []Action `json:"actions"`
	CreatedAt   int64    `json:"created_at"`
}
