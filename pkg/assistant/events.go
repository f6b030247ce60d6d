package assistant

import "time"

// State is a phase of the interaction loop.
type State string

const (
	AwaitingQuestion     State = "awaiting_question"
	AnsweringAndSpeaking State = "answering"
	AwaitingFeedback     State = "awaiting_feedback"
	AnalyzingFeedback    State = "analyzing_feedback"
	SessionEnded         State = "session_ended"
)

// EventKind identifies what an Event reports.
type EventKind string

const (
	EventState     EventKind = "state"
	EventAttempt   EventKind = "attempt"
	EventQuestion  EventKind = "question"
	EventAnswer    EventKind = "answer"
	EventFeedback  EventKind = "feedback"
	EventSentiment EventKind = "sentiment"
	EventSummary   EventKind = "summary"
)

// Event is published to the observer as the session progresses.
type Event struct {
	Kind    EventKind `json:"kind"`
	Session string    `json:"session"`
	Turn    string    `json:"turn,omitempty"`
	State   State     `json:"state"`
	Text    string    `json:"text,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	Time    time.Time `json:"time"`
}

// Observer receives loop events. It is called synchronously and must not block.
type Observer func(Event)
