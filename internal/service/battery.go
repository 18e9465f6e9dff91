package service

import (
	"context"
	"fmt"
	"math"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

type BatteryService struct {
	readings  repository.ReadingRepo
	access    access
	threshold float64
}

func NewBatteryService(readings repository.ReadingRepo, a access, onlineVoltageThreshold float64) *BatteryService {
	return &BatteryService{readings: readings, access: a, threshold: onlineVoltageThreshold}
}

var _ States = (*BatteryService)(nil)

// ListCurrentStates returns one snapshot per visible device that has reported at least once.
func (s *BatteryService) ListCurrentStates(ctx context.Context, p models.Principal) ([]models.BatterySnapshot, error) {
	states, err := s.readings.Latest(ctx, ResolveScope(p), "")
	if err != nil {
		return nil, storeErr("list current states", err)
	}
	out := make([]models.BatterySnapshot, 0, len(states))
	for _, st := range states {
		out = append(out, s.snapshot(st))
	}
	return out, nil
}

// GetBattery returns the newest state of one device including its pack current.
func (s *BatteryService) GetBattery(ctx context.Context, p models.Principal, deviceID string) (models.BatteryDetails, error) {
	states, err := s.readings.Latest(ctx, s.access.scopeFor(p), deviceID)
	if err != nil {
		return models.BatteryDetails{}, storeErr("get battery", err)
	}
	if len(states) == 0 {
		return models.BatteryDetails{}, fmt.Errorf("battery %q: %w", deviceID, ErrNotFound)
	}
	st := states[0]
	return models.BatteryDetails{
		BatterySnapshot: s.snapshot(st),
		Current:         st.PackCurrent,
	}, nil
}

func (s *BatteryService) snapshot(st models.LatestState) models.BatterySnapshot {
	return models.BatterySnapshot{
		ID:            st.DeviceID,
		Voltage:       st.PackVoltage,
		StateOfCharge: st.SOC,
		Health:        st.SOH,
		CycleCount:    st.CycleCount,
		Temperature:   meanTemperature(st.CellTemps),
		Status:        status(st.PackVoltage, s.threshold),
		Latitude:      st.Latitude,
		Longitude:     st.Longitude,
		LastUpdate:    st.Timestamp,
	}
}

// meanTemperature rounds the average cell temperature half up; no cells reads as 0.
func meanTemperature(temps []float64) int {
	if len(temps) == 0 {
		return 0
	}
	var sum float64
	for _, t := range temps {
		sum += t
	}
	return int(math.Floor(sum/float64(len(temps)) + 0.5))
}

// status is a voltage heuristic, not a connectivity check.
func status(voltage, threshold float64) string {
	if voltage > threshold {
		return statusOnline
	}
	return statusOffline
}
