package sqlstore

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// Dialect holds the driver specific parts of the store.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string

	schema   string
	numbered bool
	pragmas  []string

	// extract renders an expression reading one top-level payload member
	// as text. The placeholder binds the member name.
	extract func(ph string) string

	// boolText is how extract prints a JSON boolean.
	boolText func(b bool) string
}

var (
	// SQLite is the mattn/go-sqlite3 dialect.
	SQLite = Dialect{
		Driver: "sqlite3",
		schema: sqliteSchema,
		pragmas: []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		},
		extract: func(ph string) string {
			return "CAST(json_extract(payload, '$.' || " + ph + ") AS TEXT)"
		},
		boolText: func(b bool) string {
			if b {
				return "1"
			}
			return "0"
		},
	}

	// Postgres is the jackc/pgx dialect.
	Postgres = Dialect{
		Driver:   "pgx",
		schema:   postgresSchema,
		numbered: true,
		extract: func(ph string) string {
			return "(payload ->> CAST(" + ph + " AS TEXT))"
		},
		boolText: strconv.FormatBool,
	}
)

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case SQLite.Driver, "sqlite":
		return SQLite, nil
	case Postgres.Driver, "postgres":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q (want sqlite3 or pgx)", driver)
	}
}

// rebind rewrites ? placeholders into $n for numbered dialects.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// statements splits the schema into single statements. Comment lines are
// dropped; no statement may contain a literal semicolon.
func (d Dialect) statements() []string {
	var lines []string
	for _, line := range strings.Split(d.schema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
