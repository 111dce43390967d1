package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log"
	"sync"
	"time"

	"deskcontrol/driver"
	"deskcontrol/models"
)

const (
	// DefaultActionTimeout bounds how long Execute waits for a result.
	DefaultActionTimeout = 10 * time.Second

	defaultSettleDelay      = 500 * time.Millisecond
	defaultDoubleClickDelay = 100 * time.Millisecond
	defaultDragStepDelay    = 10 * time.Millisecond
	defaultScreenshotDelay  = 2 * time.Second
	defaultIdleDelay        = 10 * time.Millisecond
)

type queueEntry struct {
	request models.ActionRequest
	done    chan models.ActionResponse
}

// ActionQueue serializes all access to the input device and screen
// capture backend. Callers submit actions from any goroutine; a single
// worker pops them one at a time (most recently submitted first), runs
// the per-action handler while holding exclusive device access, and
// delivers exactly one response per request.
type ActionQueue struct {
	mu      sync.Mutex
	pending []queueEntry

	device  driver.InputDevice
	capture driver.ScreenCapture
	hub     *MonitorHub
	stop    chan struct{}

	// Pacing between device operations. Defaults match real-world
	// injection reliability needs; tests shorten them.
	SettleDelay      time.Duration
	DoubleClickDelay time.Duration
	DragStepDelay    time.Duration
	ScreenshotDelay  time.Duration
	IdleDelay        time.Duration
}

func NewActionQueue(device driver.InputDevice, capture driver.ScreenCapture, hub *MonitorHub) *ActionQueue {
	return &ActionQueue{
		device:           device,
		capture:          capture,
		hub:              hub,
		stop:             make(chan struct{}),
		SettleDelay:      defaultSettleDelay,
		DoubleClickDelay: defaultDoubleClickDelay,
		DragStepDelay:    defaultDragStepDelay,
		ScreenshotDelay:  defaultScreenshotDelay,
		IdleDelay:        defaultIdleDelay,
	}
}

// Start launches the worker loop. It runs until Stop is called.
func (q *ActionQueue) Start() {
	go q.run()
}

// Stop terminates the worker and answers all still-pending requests with
// a channel error.
func (q *ActionQueue) Stop() {
	close(q.stop)
}

// Submit appends the request to the pending list and returns the
// completion handle the worker will deliver the response on.
func (q *ActionQueue) Submit(request models.ActionRequest) <-chan models.ActionResponse {
	done := make(chan models.ActionResponse, 1)
	q.mu.Lock()
	q.pending = append(q.pending, queueEntry{request: request, done: done})
	q.mu.Unlock()
	return done
}

// Execute submits the request and waits for its response, bounded by
// timeout. On timeout, pending entries whose action kind matches the
// timed-out action are pruned as a best-effort unblock; if several
// actions of the same kind are queued this can evict an unrelated
// instance, which is accepted behavior.
func (q *ActionQueue) Execute(request models.ActionRequest, timeout time.Duration) models.ActionResponse {
	done := q.Submit(request)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-done:
		if !ok {
			return models.ErrorActionResponse(request.ID, request.Action,
				models.ChannelError("worker terminated before delivering a result"))
		}
		return resp
	case <-timer.C:
		q.pruneKind(request.Action.Type)
		return models.ErrorActionResponse(request.ID, request.Action, models.TimeoutError())
	}
}

// pruneKind drops every pending entry whose action kind matches.
func (q *ActionQueue) pruneKind(kind models.ActionType) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.pending[:0]
	for _, entry := range q.pending {
		if entry.request.Action.Type != kind {
			kept = append(kept, entry)
		}
	}
	q.pending = kept
}

// pop removes and returns the most recently submitted pending entry.
func (q *ActionQueue) pop() (queueEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return queueEntry{}, false
	}
	entry := q.pending[len(q.pending)-1]
	q.pending = q.pending[:len(q.pending)-1]
	return entry, true
}

func (q *ActionQueue) run() {
	for {
		select {
		case <-q.stop:
			q.failPending()
			return
		default:
		}

		entry, ok := q.pop()
		if !ok {
			time.Sleep(q.IdleDelay)
			continue
		}

		time.Sleep(q.SettleDelay)

		q.hub.Publish(models.RequestEvent(entry.request))

		output, actionErr := q.handleAction(entry.request.Action)

		var resp models.ActionResponse
		if actionErr != nil {
			log.Printf("Action %s failed: %v", entry.request.Action.Type, actionErr)
			resp = models.ErrorActionResponse(entry.request.ID, entry.request.Action, actionErr)
		} else {
			resp = models.SuccessActionResponse(entry.request.ID, entry.request.Action, output)
		}

		q.hub.Publish(models.ResponseEvent(resp))

		entry.done <- resp

		time.Sleep(q.IdleDelay)
	}
}

func (q *ActionQueue) failPending() {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, entry := range pending {
		entry.done <- models.ErrorActionResponse(entry.request.ID, entry.request.Action,
			models.ChannelError("queue stopped"))
	}
}

// handleAction dispatches to the per-action handler. It runs on the
// worker only, so it holds exclusive device access for its duration.
func (q *ActionQueue) handleAction(action models.Action) (*models.ActionOutput, *models.ActionError) {
	switch action.Type {
	case models.ActionLeftClick:
		return nil, q.click(driver.ButtonLeft)
	case models.ActionRightClick:
		return nil, q.click(driver.ButtonRight)
	case models.ActionMiddleClick:
		return nil, q.click(driver.ButtonMiddle)
	case models.ActionDoubleClick:
		return nil, q.doubleClick()
	case models.ActionMouseMove:
		if err := q.device.MoveAbsolute(action.X, action.Y); err != nil {
			return nil, models.ExecutionFailed(err.Error())
		}
		return nil, nil
	case models.ActionLeftClickDrag:
		return nil, q.drag(action.X, action.Y)
	case models.ActionTypeText:
		return nil, q.typeText(action.Text)
	case models.ActionKeyPress:
		return nil, q.keyPress(action.Key)
	case models.ActionCursorPosition:
		x, y, err := q.device.CursorPosition()
		if err != nil {
			return nil, models.ExecutionFailed(err.Error())
		}
		return models.CursorPositionOutput(x, y), nil
	case models.ActionScreenshot:
		return q.screenshot()
	default:
		return nil, models.InvalidInput(fmt.Sprintf("unknown action type: %s", action.Type))
	}
}

// click is press, settle, release. A failed press skips the release and
// surfaces the press error.
func (q *ActionQueue) click(b driver.Button) *models.ActionError {
	if err := q.device.PressButton(b); err != nil {
		return models.ExecutionFailed(err.Error())
	}
	time.Sleep(q.SettleDelay)
	if err := q.device.ReleaseButton(b); err != nil {
		return models.ExecutionFailed(err.Error())
	}
	return nil
}

func (q *ActionQueue) clickOnce() error {
	if err := q.device.PressButton(driver.ButtonLeft); err != nil {
		return err
	}
	time.Sleep(q.DoubleClickDelay)
	return q.device.ReleaseButton(driver.ButtonLeft)
}

// doubleClick runs two click sequences with a short pause between them.
// A failed first sequence aborts before the second is attempted.
func (q *ActionQueue) doubleClick() *models.ActionError {
	if err := q.clickOnce(); err != nil {
		return models.ExecutionFailed("Failed to execute first click")
	}
	time.Sleep(q.DoubleClickDelay)
	if err := q.clickOnce(); err != nil {
		return models.ExecutionFailed("Failed to execute second click")
	}
	return nil
}

// drag presses and holds the left button, walks the interpolated path to
// the target, and releases. Any move failure triggers a best-effort
// button release before the error is surfaced.
func (q *ActionQueue) drag(x, y int) *models.ActionError {
	if err := q.device.PressButton(driver.ButtonLeft); err != nil {
		return models.ExecutionFailed(err.Error())
	}

	time.Sleep(q.DoubleClickDelay)

	curX, curY, err := q.device.CursorPosition()
	if err != nil {
		_ = q.device.ReleaseButton(driver.ButtonLeft)
		return models.ExecutionFailed(err.Error())
	}

	for _, step := range PlanDragPath(curX, curY, x, y) {
		if step.Absolute {
			err = q.device.MoveAbsolute(step.X, step.Y)
		} else {
			err = q.device.MoveRelative(step.DX, step.DY)
		}
		if err != nil {
			_ = q.device.ReleaseButton(driver.ButtonLeft)
			return models.ExecutionFailed(err.Error())
		}
		if !step.Absolute {
			time.Sleep(q.DragStepDelay)
		}
	}

	time.Sleep(q.DoubleClickDelay)

	if err := q.device.ReleaseButton(driver.ButtonLeft); err != nil {
		return models.ExecutionFailed(err.Error())
	}
	return nil
}

// typeText rejects empty text before touching the device. When the
// device fails, any non-ASCII characters in the text are named in the
// error message as a diagnostic aid.
func (q *ActionQueue) typeText(text string) *models.ActionError {
	if text == "" {
		return models.InvalidInput("Text cannot be empty")
	}

	if err := q.device.TypeText(text); err != nil {
		var nonASCII []rune
		for _, r := range text {
			if r > 127 {
				nonASCII = append(nonASCII, r)
			}
		}
		if len(nonASCII) > 0 {
			return models.ExecutionFailed(fmt.Sprintf(
				"Input simulation failed. This might be because the text contains non-ASCII characters (%q) which may not be supported by your system. Original error: %v",
				string(nonASCII), err))
		}
		return models.ExecutionFailed(fmt.Sprintf("Input simulation failed: %v", err))
	}
	return nil
}

// keyPress parses the combo, presses modifiers in listed order, then the
// main key, releases the main key, then the modifiers in reverse order.
// Any step failure aborts the remaining steps.
func (q *ActionQueue) keyPress(combo string) *models.ActionError {
	parsed, err := ParseKeyCombo(combo)
	if err != nil {
		return models.InvalidInput(fmt.Sprintf("Invalid key format or key not found: %s", combo))
	}

	for _, mod := range parsed.Modifiers {
		if err := q.device.PressKey(mod); err != nil {
			return models.ExecutionFailed(err.Error())
		}
		time.Sleep(q.SettleDelay)
	}

	if err := q.device.PressKey(parsed.Key); err != nil {
		return models.ExecutionFailed(err.Error())
	}
	time.Sleep(q.SettleDelay)

	if err := q.device.ReleaseKey(parsed.Key); err != nil {
		return models.ExecutionFailed(err.Error())
	}
	time.Sleep(q.SettleDelay)

	for i := len(parsed.Modifiers) - 1; i >= 0; i-- {
		if err := q.device.ReleaseKey(parsed.Modifiers[i]); err != nil {
			return models.ExecutionFailed(err.Error())
		}
		time.Sleep(q.SettleDelay)
	}
	return nil
}

// screenshot waits the longer capture settle delay, grabs one frame from
// the primary display and returns it as base64-encoded PNG.
func (q *ActionQueue) screenshot() (*models.ActionOutput, *models.ActionError) {
	time.Sleep(q.ScreenshotDelay)

	frame, err := q.capture.CaptureFrame()
	if err != nil {
		return nil, models.ExecutionFailed(fmt.Sprintf("Failed to capture image: %v", err))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, models.ExecutionFailed(fmt.Sprintf("Failed to encode image: %v", err))
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return models.ScreenshotOutput(encoded), nil
}
