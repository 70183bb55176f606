package ws

import (
	"time"
)

type EventType string

const (
	EventRecognitionUpdated EventType = "recognition.updated"
	EventSignatureEnrolled  EventType = "signature.enrolled"
	EventSignatureDeleted   EventType = "signature.deleted"
	EventSessionNotice      EventType = "session.notice"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
