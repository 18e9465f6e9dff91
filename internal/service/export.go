package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository"
)

// exportColumns is the header row, in bms_values column order.
var exportColumns = []string{
	"id", "device_id", "timestamp", "pack_voltage", "pack_current",
	"soc", "soh", "cycle_count", "cell_temps",
}

// exportTimeLayout is ISO-8601 with milliseconds; UTC renders as "Z".
const exportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type ExportService struct {
	readings repository.ReadingRepo
	access   access
}

func NewExportService(readings repository.ReadingRepo, a access) *ExportService {
	return &ExportService{readings: readings, access: a}
}

var _ Export = (*ExportService)(nil)

// ExportReadings renders every reading of a device, newest first, as CSV.
func (s *ExportService) ExportReadings(ctx context.Context, p models.Principal, deviceID string) ([]byte, error) {
	if err := s.access.authorize(ctx, p, deviceID); err != nil {
		return nil, err
	}
	rows, err := s.readings.All(ctx, deviceID)
	if err != nil {
		return nil, storeErr("export readings", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("export %q: %w", deviceID, ErrNotFound)
	}
	return EncodeReadingsCSV(rows)
}

// EncodeReadingsCSV writes a header line and one line per reading. Every field
// is JSON encoded on its own, so strings are double quoted, numbers are bare and
// cell_temps is a JSON array whose commas are not escaped. Lines are joined by
// "\n" without a trailing newline.
func EncodeReadingsCSV(rows []models.Reading) ([]byte, error) {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(exportColumns, ","))
	for _, r := range rows {
		line, err := encodeReadingLine(r)
		if err != nil {
			return nil, fmt.Errorf("encode reading %d: %w", r.ID, err)
		}
		lines = append(lines, line)
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func encodeReadingLine(r models.Reading) (string, error) {
	values := []any{
		r.ID,
		r.DeviceID,
		r.Timestamp.UTC().Format(exportTimeLayout),
		r.PackVoltage,
		r.PackCurrent,
		r.SOC,
		r.SOH,
		r.CycleCount,
		r.CellTemps,
	}
	fields := make([]string, 0, len(values))
	for _, v := range values {
		f, err := jsonField(v)
		if err != nil {
			return "", err
		}
		fields = append(fields, f)
	}
	return strings.Join(fields, ","), nil
}

// jsonField encodes v without HTML escaping.
func jsonField(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ExportFilename is the attachment name of a device export.
func ExportFilename(deviceID string) string {
	return "battery_" + deviceID + "_export.csv"
}

