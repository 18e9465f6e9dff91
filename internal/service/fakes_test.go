package service

import (
	"context"
	"time"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

// fakeReadings is a stub satisfying repository.ReadingRepo.
type fakeReadings struct {
	latest []models.LatestState
	rows   []models.Reading
	err    error

	calls     int
	gotScope  repository.Scope
	gotDevice string
	gotSince  time.Time
}

func (f *fakeReadings) Latest(_ context.Context, scope repository.Scope, deviceID string) ([]models.LatestState, error) {
	f.calls++
	f.gotScope, f.gotDevice = scope, deviceID
	return f.latest, f.err
}

func (f *fakeReadings) Since(_ context.Context, deviceID string, since time.Time) ([]models.Reading, error) {
	f.calls++
	f.gotDevice, f.gotSince = deviceID, since
	return f.rows, f.err
}

func (f *fakeReadings) All(_ context.Context, deviceID string) ([]models.Reading, error) {
	f.calls++
	f.gotDevice = deviceID
	return f.rows, f.err
}

func (f *fakeReadings) Insert(context.Context, models.Reading) (int64, error) { return 0, nil }

// fakeDevices answers OwnedBy from a fixed ownership map.
type fakeDevices struct {
	owners map[string]int
	err    error
	calls  int
}

func (f *fakeDevices) OwnedBy(_ context.Context, deviceID string, userID int) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.owners[deviceID]
	return ok && owner == userID, nil
}

func (f *fakeDevices) UpsertIdentification(context.Context, models.Identification) error { return nil }

type fakeGPS struct {
	points []models.RoutePoint
	err    error
	calls  int
}

func (f *fakeGPS) Route(context.Context, string) ([]models.RoutePoint, error) {
	f.calls++
	return f.points, f.err
}

func (f *fakeGPS) Insert(context.Context, models.GPSFix) (int64, error) { return 0, nil }

type fakeEvents struct {
	entries []models.LogEntry
	err     error

	calls     int
	gotFilter repository.EventFilter
	gotScope  repository.Scope
	gotType   models.EventType
	gotID     int64
}

func (f *fakeEvents) Feed(_ context.Context, flt repository.EventFilter) ([]models.LogEntry, error) {
	f.calls++
	f.gotFilter = flt
	return f.entries, f.err
}

func (f *fakeEvents) MarkRead(_ context.Context, scope repository.Scope, typ models.EventType, id int64) (int64, error) {
	f.calls++
	f.gotScope, f.gotType, f.gotID = scope, typ, id
	return 0, f.err
}

func (f *fakeEvents) Insert(context.Context, models.EventType, string, time.Time, int) (int64, error) {
	return 0, nil
}

func (f *fakeEvents) UpsertCode(context.Context, models.EventType, int, string) error { return nil }

var (
	admin = models.Principal{ID: 1, Role: models.RoleAdmin, Name: "Admin User", Email: "admin@bms.com"}
	owner = models.Principal{ID: 2, Role: models.RoleUser, Name: "Regular User", Email: "user@bms.com"}
)

// ownedDevices gives D1 and D2 to owner and C to someone else.
func ownedDevices() *fakeDevices {
	return &fakeDevices{owners: map[string]int{"D1": owner.ID, "D2": owner.ID, "C": 99}}
}

func f64(v float64) *float64 { return &v }
