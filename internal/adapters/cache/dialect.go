package cache

import (
	"strconv"
	"strings"
)

// Dialect selects the bind-parameter style of the SQL caches.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// bind returns the placeholder for the n-th (1-based) parameter.
func (d Dialect) bind(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// binds returns a comma-separated list of count placeholders starting at from.
func (d Dialect) binds(from, count int) string {
	ph := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ph = append(ph, d.bind(from+i))
	}
	return strings.Join(ph, ",")
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}
