package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

// Metric is one of the series a client may chart.
type Metric string

const (
	MetricVoltage       Metric = "voltage"
	MetricTemperature   Metric = "temperature"
	MetricStateOfCharge Metric = "stateOfCharge"
	MetricHealth        Metric = "health"
)

// MaxHistoryWindowHours bounds the trailing window a caller may request.
const MaxHistoryWindowHours = 720

const chartTimeLayout = "03:04 PM"

// metricValues is the closed mapping from metric name to the reading fields it charts.
var metricValues = map[Metric]func(models.Reading) []float64{
	MetricVoltage:       func(r models.Reading) []float64 { return []float64{r.PackVoltage} },
	MetricTemperature:   func(r models.Reading) []float64 { return r.CellTemps },
	MetricStateOfCharge: func(r models.Reading) []float64 { return []float64{r.SOC} },
	MetricHealth:        func(r models.Reading) []float64 { return []float64{r.SOH} },
}

// ParseMetric validates a client supplied metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if _, ok := metricValues[m]; !ok {
		return "", fmt.Errorf("%w %q", ErrInvalidMetric, s)
	}
	return m, nil
}

// SeriesValue is one named value of a chart point.
type SeriesValue struct {
	Key   string
	Value float64
}

// SeriesPoint is a chart row: a wall-clock label followed by its values.
type SeriesPoint struct {
	Time   string
	Values []SeriesValue
}

// MarshalJSON keeps "time" first and the values in their series order.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"time":`)
	t, err := json.Marshal(p.Time)
	if err != nil {
		return nil, err
	}
	buf.Write(t)
	for _, v := range p.Values {
		k, err := json.Marshal(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type HistoryService struct {
	readings      repository.ReadingRepo
	access        access
	defaultWindow int
	loc           *time.Location
	now           func() time.Time
}

func NewHistoryService(readings repository.ReadingRepo, a access, defaultWindowHours int, loc *time.Location) *HistoryService {
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{
		readings:      readings,
		access:        a,
		defaultWindow: defaultWindowHours,
		loc:           loc,
		now:           time.Now,
	}
}

var _ History = (*HistoryService)(nil)

// GetHistory charts metric for the readings of the last windowHours (0 = default window).
// Labels carry only the time of day, so multi-day windows repeat labels.
func (s *HistoryService) GetHistory(ctx context.Context, p models.Principal, deviceID, metric string, windowHours int) ([]SeriesPoint, error) {
	m, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	if windowHours == 0 {
		windowHours = s.defaultWindow
	}
	if windowHours < 1 || windowHours > MaxHistoryWindowHours {
		return nil, fmt.Errorf("%w: %d hours", ErrInvalidWindow, windowHours)
	}

	if err := s.access.authorize(ctx, p, deviceID); err != nil {
		return nil, err
	}

	since := s.now().Add(-time.Duration(windowHours) * time.Hour)
	rows, err := s.readings.Since(ctx, deviceID, since)
	if err != nil {
		return nil, storeErr("get history", err)
	}

	values := metricValues[m]
	out := make([]SeriesPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, SeriesPoint{
			Time:   r.Timestamp.In(s.loc).Format(chartTimeLayout),
			Values: label(m, values(r)),
		})
	}
	return out, nil
}

// label names scalar values after the metric and cell temperatures temp1..tempN.
func label(m Metric, vals []float64) []SeriesValue {
	out := make([]SeriesValue, 0, len(vals))
	for i, v := range vals {
		key := string(m)
		if m == MetricTemperature {
			key = "temp" + strconv.Itoa(i+1)
		}
		out = append(out, SeriesValue{Key: key, Value: v})
	}
	return out
}
