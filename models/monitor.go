package models

// MonitorEventType tags the payload of a monitor stream event.
type MonitorEventType string

const (
	EventActionRequest  MonitorEventType = "action_request"
	EventActionResponse MonitorEventType = "action_response"
)

// MonitorEvent is one message on the monitor stream. The queue worker
// publishes a request event when it starts executing an action and a
// response event when the result is known.
type MonitorEvent struct {
	EventType MonitorEventType `json:"event_type"`
	Data      interface{}      `json:"data"`
}

func RequestEvent(req ActionRequest) MonitorEvent {
	return MonitorEvent{EventType: EventActionRequest, Data: req}
}

func ResponseEvent(resp ActionResponse) MonitorEvent {
	return MonitorEvent{EventType: EventActionResponse, Data: resp}
}
