package sse

// Event is the payload written as a single "data:" frame.
type Event struct {
	Topic    string `json:"topic"`
	Name     string `json:"name"`
	Data     any    `json:"data"`
	Metadata any    `json:"metadata,omitempty"`
}

const SYSSessionTopic = "$SYS/session"

const (
	SYSSessionCreated = "Created"
)
