// Package sqlstore is a database/sql backed row source for grids.
//
// Every grid's rows live in one grid_rows table, keyed by an integer id and
// scoped by grid name. Row fields are stored as canonical JSON together with
// their fingerprint.
//
// Two dialects are supported:
//   - sqlite3: github.com/mattn/go-sqlite3, WAL mode, single connection
//   - pgx: github.com/jackc/pgx/v5/stdlib
//
// # Critical Patterns
//
// CP-1: Deterministic Reads
//   - Every query orders by id ASC
//   - Paging is applied in SQL, the total count comes from the same filter
//
// CP-2: Atomic Apply
//   - A change set is applied in one transaction
//   - An update or delete that matches no row rolls the whole set back
//
// CP-3: Canonical Payloads
//   - Payloads are written with value.MarshalCanonical
//   - The key field is never stored in the payload; it is the id column
package sqlstore
