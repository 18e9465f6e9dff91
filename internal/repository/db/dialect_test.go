package db

import (
	"strings"
	"testing"
)

func TestRebind(t *testing.T) {
	q := `SELECT * FROM bms_values WHERE device_id = ? AND timestamp >= ? LIMIT ?`

	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
	want := `SELECT * FROM bms_values WHERE device_id = $1 AND timestamp >= $2 LIMIT $3`
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind:\n got %q\nwant %q", got, want)
	}
}

func TestExpand(t *testing.T) {
	pg := Postgres.expand(schemaValues)
	if !strings.Contains(pg, "id BIGSERIAL PRIMARY KEY") || !strings.Contains(pg, "timestamp TIMESTAMPTZ") {
		t.Fatalf("postgres schema not expanded: %s", pg)
	}
	lite := SQLite.expand(schemaValues)
	if !strings.Contains(lite, "INTEGER PRIMARY KEY AUTOINCREMENT") || strings.Contains(lite, "{{") {
		t.Fatalf("sqlite schema not expanded: %s", lite)
	}
}
