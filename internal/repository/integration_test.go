package repository

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"bms_telemetry/internal/config"
	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openSQLite opens a private in-memory database with the full schema.
func openSQLite(t *testing.T) (*sql.DB, *Repository) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, d, err := db.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, NewRepository(conn, d)
}

type fixture struct {
	repo  *Repository
	owner int
	other int
	base  time.Time
}

// seed creates two users, D1/D2 owned by owner and C owned by other.
func seed(t *testing.T) fixture {
	t.Helper()
	_, repo := openSQLite(t)
	c := ctx(t)

	owner, err := repo.Auth.Create(c, models.User{Name: "Owner", Email: "owner@bms.com", PasswordHash: "x"})
	require.NoError(t, err)
	other, err := repo.Auth.Create(c, models.User{Name: "Other", Email: "other@bms.com", PasswordHash: "x"})
	require.NoError(t, err)

	for dev, uid := range map[string]int{"D1": owner, "D2": owner, "C": other} {
		uid := uid
		require.NoError(t, repo.Devices.UpsertIdentification(c, models.Identification{
			DeviceID: dev, DeviceType: "BMS", BatteryNumber: dev, UserID: &uid,
		}))
	}
	return fixture{repo: repo, owner: owner, other: other, base: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
}

func (f fixture) reading(t *testing.T, dev string, at time.Time, volts float64, temps ...float64) int64 {
	t.Helper()
	id, err := f.repo.Readings.Insert(ctx(t), models.Reading{
		DeviceID: dev, Timestamp: at, PackVoltage: volts, PackCurrent: 1.5,
		SOC: 80, SOH: 95, CycleCount: 12, CellTemps: temps,
	})
	require.NoError(t, err)
	return id
}

func TestSQLite_LatestPerDevice(t *testing.T) {
	f := seed(t)
	c := ctx(t)

	f.reading(t, "D1", f.base.Add(-time.Hour), 5)
	f.reading(t, "D1", f.base, 11.5, 21, 22)
	f.reading(t, "D2", f.base, 9)
	tieLoser := f.reading(t, "D2", f.base.Add(time.Hour), 8)
	tieWinner := f.reading(t, "D2", f.base.Add(time.Hour), 7)
	require.Greater(t, tieWinner, tieLoser)
	f.reading(t, "C", f.base, 12)

	_, err := f.repo.GPS.Insert(c, models.GPSFix{DeviceID: "D1", Timestamp: f.base.Add(-time.Hour), Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	_, err = f.repo.GPS.Insert(c, models.GPSFix{DeviceID: "D1", Timestamp: f.base, Latitude: 40.1, Longitude: -70.2})
	require.NoError(t, err)

	t.Run("admin sees every device", func(t *testing.T) {
		got, err := f.repo.Readings.Latest(ctx(t), Scope{All: true}, "")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"C", "D1", "D2"}, []string{got[0].DeviceID, got[1].DeviceID, got[2].DeviceID})
	})

	t.Run("owner never sees foreign device", func(t *testing.T) {
		got, err := f.repo.Readings.Latest(ctx(t), Scope{OwnerID: f.owner}, "")
		require.NoError(t, err)
		require.Len(t, got, 2)

		d1, d2 := got[0], got[1]
		assert.Equal(t, "D1", d1.DeviceID)
		assert.Equal(t, 11.5, d1.PackVoltage)
		assert.Equal(t, []float64{21, 22}, d1.CellTemps)
		assert.True(t, d1.Timestamp.Equal(f.base))
		require.NotNil(t, d1.Latitude)
		assert.Equal(t, 40.1, *d1.Latitude)
		assert.Equal(t, -70.2, *d1.Longitude)

		assert.Equal(t, "D2", d2.DeviceID)
		assert.Equal(t, tieWinner, d2.ID)
		assert.Nil(t, d2.Latitude)
	})

	t.Run("single device outside scope is empty", func(t *testing.T) {
		got, err := f.repo.Readings.Latest(ctx(t), Scope{OwnerID: f.owner}, "C")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSQLite_SinceAndAll(t *testing.T) {
	f := seed(t)

	f.reading(t, "D1", f.base.Add(-30*time.Hour), 10)
	first := f.reading(t, "D1", f.base.Add(-2*time.Hour), 11, 20, 21, 22)
	second := f.reading(t, "D1", f.base, 12, 23)

	since, err := f.repo.Readings.Since(ctx(t), "D1", f.base.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, first, since[0].ID)
	assert.Equal(t, second, since[1].ID)
	assert.Len(t, since[0].CellTemps, 3)

	all, err := f.repo.Readings.All(ctx(t), "D1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, second, all[0].ID)
	assert.True(t, all[0].Timestamp.After(all[1].Timestamp))
}

func TestSQLite_EventFeed(t *testing.T) {
	f := seed(t)
	c := ctx(t)
	ev := f.repo.Events

	require.NoError(t, ev.UpsertCode(c, models.EventAlarm, 1, "OverPackVoltageAlarm"))
	require.NoError(t, ev.UpsertCode(c, models.EventAlarm, 1, "ignored on conflict"))
	require.NoError(t, ev.UpsertCode(c, models.EventFault, 2, "UnderPackVoltageFault"))

	alarmID, err := ev.Insert(c, models.EventAlarm, "D1", f.base, 1)
	require.NoError(t, err)
	_, err = ev.Insert(c, models.EventFault, "D1", f.base, 2)
	require.NoError(t, err)
	_, err = ev.Insert(c, models.EventAlarm, "D1", f.base.Add(-time.Hour), 77)
	require.NoError(t, err)
	_, err = ev.Insert(c, models.EventFault, "C", f.base.Add(time.Hour), 2)
	require.NoError(t, err)

	t.Run("device log ordering and descriptions", func(t *testing.T) {
		got, err := ev.Feed(ctx(t), EventFilter{DeviceID: "D1", Scope: Scope{All: true}, Limit: 100})
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "alarm", got[0].EventType)
		assert.Equal(t, "OverPackVoltageAlarm", got[0].Description)
		assert.Equal(t, "fault", got[1].EventType)
		assert.Equal(t, "UnderPackVoltageFault", got[1].Description)
		assert.Equal(t, "Unknown alarm code", got[2].Description)
		assert.Equal(t, 77, got[2].Code)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].Timestamp.After(got[i-1].Timestamp))
		}
	})

	t.Run("limit truncates after ordering", func(t *testing.T) {
		got, err := ev.Feed(ctx(t), EventFilter{Scope: Scope{All: true}, Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "C", got[0].DeviceID)
	})

	t.Run("owner scope hides foreign events", func(t *testing.T) {
		got, err := ev.Feed(ctx(t), EventFilter{Scope: Scope{OwnerID: f.owner}, Limit: 50})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, e := range got {
			assert.Equal(t, "D1", e.DeviceID)
		}
	})

	t.Run("mark read is idempotent and scoped", func(t *testing.T) {
		n, err := ev.MarkRead(ctx(t), Scope{OwnerID: f.other}, models.EventAlarm, alarmID)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = ev.MarkRead(ctx(t), Scope{OwnerID: f.owner}, models.EventAlarm, alarmID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = ev.MarkRead(ctx(t), Scope{All: true}, models.EventAlarm, alarmID)
		require.NoError(t, err)

		got, err := ev.Feed(ctx(t), EventFilter{DeviceID: "D1", Scope: Scope{All: true}, Limit: 100})
		require.NoError(t, err)
		assert.True(t, got[0].Read)
		assert.False(t, got[1].Read)

		n, err = ev.MarkRead(ctx(t), Scope{All: true}, models.EventFault, 9999)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSQLite_RouteAndOwnership(t *testing.T) {
	f := seed(t)
	c := ctx(t)

	for i, p := range []models.RoutePoint{{Lat: 3, Lng: 3}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}} {
		offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
		_, err := f.repo.GPS.Insert(c, models.GPSFix{DeviceID: "D1", Timestamp: f.base.Add(offsets[i]), Latitude: p.Lat, Longitude: p.Lng})
		require.NoError(t, err)
	}

	route, err := f.repo.GPS.Route(c, "D1")
	require.NoError(t, err)
	assert.Equal(t, []models.RoutePoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}}, route)

	owned, err := f.repo.Devices.OwnedBy(c, "D1", f.owner)
	require.NoError(t, err)
	assert.True(t, owned)
	owned, err = f.repo.Devices.OwnedBy(c, "C", f.owner)
	require.NoError(t, err)
	assert.False(t, owned)

	_, err = f.repo.Auth.Create(c, models.User{Name: "Dup", Email: "owner@bms.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
