package models

import "time"

// LogEntry is an alarm or fault event resolved against its code dictionary.
type LogEntry struct {
	ID          int64     `json:"id"`
	DeviceID    string    `json:"deviceId"`
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"eventType"` // alarm | fault
	Description string    `json:"description"`
	Code        int       `json:"code"`
	Read        bool      `json:"read"`
}

// EventType discriminates the two event tables merged into one feed.
type EventType string

const (
	EventAlarm EventType = "alarm"
	EventFault EventType = "fault"
)

// EventTypes lists every known event type in feed order.
var EventTypes = []EventType{EventAlarm, EventFault}
