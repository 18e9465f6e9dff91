package service

import (
	"context"
	"fmt"
	"strings"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

type EventLogService struct {
	events      repository.EventRepo
	access      access
	deviceLimit int
	feedLimit   int
}

func NewEventLogService(events repository.EventRepo, a access, deviceLimit, feedLimit int) *EventLogService {
	return &EventLogService{events: events, access: a, deviceLimit: deviceLimit, feedLimit: feedLimit}
}

var _ EventLog = (*EventLogService)(nil)

// ParseEventType validates a client supplied event type.
func ParseEventType(s string) (models.EventType, error) {
	typ := models.EventType(strings.TrimSpace(s))
	for _, known := range models.EventTypes {
		if typ == known {
			return typ, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidEventType, s)
}

// GetDeviceLog returns the newest alarms and faults of one device.
func (s *EventLogService) GetDeviceLog(ctx context.Context, p models.Principal, deviceID string) ([]models.LogEntry, error) {
	if err := s.access.authorize(ctx, p, deviceID); err != nil {
		return nil, err
	}
	entries, err := s.events.Feed(ctx, repository.EventFilter{
		DeviceID: deviceID,
		Scope:    s.access.scopeFor(p),
		Limit:    s.deviceLimit,
	})
	if err != nil {
		return nil, storeErr("get device log", err)
	}
	return entries, nil
}

// GetNotifications returns the newest alarms and faults across every visible device.
func (s *EventLogService) GetNotifications(ctx context.Context, p models.Principal) ([]models.LogEntry, error) {
	entries, err := s.events.Feed(ctx, repository.EventFilter{
		Scope: ResolveScope(p),
		Limit: s.feedLimit,
	})
	if err != nil {
		return nil, storeErr("get notifications", err)
	}
	return entries, nil
}

// MarkRead flags one event as read. Unknown ids and events outside the
// caller's scope are silently ignored.
func (s *EventLogService) MarkRead(ctx context.Context, p models.Principal, eventType string, id int64) error {
	typ, err := ParseEventType(eventType)
	if err != nil {
		return err
	}
	if _, err := s.events.MarkRead(ctx, ResolveScope(p), typ, id); err != nil {
		return storeErr("mark read", err)
	}
	return nil
}
