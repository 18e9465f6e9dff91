package db

import (
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported stores.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect struct {
	Name string

	numbered bool   // $1, $2 ... instead of ?
	pkType   string // auto-increment primary key column type
	tsType   string // timestamp column type
}

var (
	SQLite = Dialect{
		Name:   "sqlite",
		pkType: "INTEGER PRIMARY KEY AUTOINCREMENT",
		tsType: "TIMESTAMP",
	}
	Postgres = Dialect{
		Name:     "postgres",
		numbered: true,
		pkType:   "BIGSERIAL PRIMARY KEY",
		tsType:   "TIMESTAMPTZ",
	}
)

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(q string) string {
	if !d.numbered {
		return q
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(q) + 8)
	for i := 0; i < len(q); i++ {
		if q[i] != '?' {
			b.WriteByte(q[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

func (d Dialect) expand(stmt string) string {
	return strings.NewReplacer("{{pk}}", d.pkType, "{{ts}}", d.tsType).Replace(stmt)
}
