package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/wgrid/internal/grid"
	"github.com/roach88/wgrid/internal/value"
)

// DefaultKey is the row field the id column is exposed as.
const DefaultKey = "id"

// ErrRowNotFound is returned when an update or delete names an id that the
// grid does not hold.
var ErrRowNotFound = errors.New("row not found")

var memberName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is an open grid_rows database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger. Default: no logging.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open connects with the given driver ("sqlite3" or "pgx") and applies the
// dialect's schema. For sqlite3 the dsn is a file path.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Driver, err)
	}

	if d.Driver == SQLite.Driver {
		// SQLite only supports one writer at a time.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &Store{db: db, dialect: d, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug().Str("driver", d.Driver).Msg("store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, pragma := range s.dialect.pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	for _, stmt := range s.dialect.statements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Table returns the row source for one grid. The key field carries the id
// column in returned rows; empty means DefaultKey.
func (s *Store) Table(name, key string) *Table {
	if key == "" {
		key = DefaultKey
	}
	return &Table{store: s, grid: name, key: key}
}

// Table is the rows of one grid. It implements grid.Source and grid.Applier.
type Table struct {
	store *Store
	grid  string
	key   string
}

var (
	_ grid.Source  = (*Table)(nil)
	_ grid.Applier = (*Table)(nil)
)

// Search returns one page of rows ordered by id. params.Values are equality
// filters on top-level fields; only string, integer and boolean filter values
// are supported. The key field may be filtered on as well.
func (t *Table) Search(ctx context.Context, params grid.Parameter) (grid.SearchResult, error) {
	where, args, err := t.where(params.Values)
	if err != nil {
		return grid.SearchResult{}, fmt.Errorf("search %s: %w", t.grid, err)
	}

	var total int
	countQuery := t.store.dialect.rebind("SELECT COUNT(*) FROM grid_rows WHERE " + where)
	if err := t.store.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return grid.SearchResult{}, fmt.Errorf("search %s: count: %w", t.grid, err)
	}

	query := "SELECT id, payload FROM grid_rows WHERE " + where + " ORDER BY id ASC"
	pageArgs := args
	if p := params.Paging; p.PageSize > 0 {
		query += " LIMIT ? OFFSET ?"
		pageArgs = append(append([]any{}, args...), p.PageSize, p.Offset())
	}

	rows, err := t.store.db.QueryContext(ctx, t.store.dialect.rebind(query), pageArgs...)
	if err != nil {
		return grid.SearchResult{}, fmt.Errorf("search %s: %w", t.grid, err)
	}
	defer func() { _ = rows.Close() }()

	var out []value.Object
	for rows.Next() {
		var (
			id      int64
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return grid.SearchResult{}, fmt.Errorf("search %s: scan: %w", t.grid, err)
		}
		fields, err := decodePayload(payload)
		if err != nil {
			return grid.SearchResult{}, fmt.Errorf("search %s: row %d: %w", t.grid, id, err)
		}
		fields[t.key] = value.Int(id)
		out = append(out, fields)
	}
	if err := rows.Err(); err != nil {
		return grid.SearchResult{}, fmt.Errorf("search %s: %w", t.grid, err)
	}

	res := params.Clone()
	res.Paging.TotalCount = total
	t.store.logger.Debug().Str("grid", t.grid).Int("rows", len(out)).Int("total", total).Msg("search")
	return grid.SearchResult{Rows: out, Params: res}, nil
}

func (t *Table) where(filters value.Object) (string, []any, error) {
	clauses := []string{"grid = ?"}
	args := []any{t.grid}

	for _, name := range filters.SortedKeys() {
		text, err := t.store.dialect.filterText(filters[name])
		if err != nil {
			return "", nil, fmt.Errorf("filter %q: %w", name, err)
		}
		if name == t.key {
			id, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return "", nil, fmt.Errorf("filter %q: key must be an integer", name)
			}
			clauses = append(clauses, "id = ?")
			args = append(args, id)
			continue
		}
		if !memberName.MatchString(name) {
			return "", nil, fmt.Errorf("filter %q: unsupported field name", name)
		}
		clauses = append(clauses, t.store.dialect.extract("?")+" = ?")
		args = append(args, name, text)
	}
	return strings.Join(clauses, " AND "), args, nil
}

// filterText renders a filter value the way the dialect prints a JSON member
// as text.
func (d Dialect) filterText(v value.Value) (string, error) {
	switch val := v.(type) {
	case value.String:
		return string(val), nil
	case value.Int:
		return strconv.FormatInt(int64(val), 10), nil
	case value.Bool:
		return d.boolText(bool(val)), nil
	default:
		return "", fmt.Errorf("unsupported filter type %T", v)
	}
}

// Apply writes a change set in one transaction. Inserts get new ids; updates
// and deletes find their row by the key field of the current fields, falling
// back to the origin.
func (t *Table) Apply(ctx context.Context, cs grid.ChangeSet) (res grid.ApplyResult, err error) {
	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("apply %s: begin: %w", cs.ID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range cs.Inserts {
		if _, err = t.insert(ctx, tx, c.Fields); err != nil {
			return grid.ApplyResult{}, fmt.Errorf("apply %s: insert seq %d: %w", cs.ID, c.Seq, err)
		}
		res.Inserted++
	}
	for _, c := range cs.Updates {
		if err = t.update(ctx, tx, c); err != nil {
			return grid.ApplyResult{}, fmt.Errorf("apply %s: update seq %d: %w", cs.ID, c.Seq, err)
		}
		res.Updated++
	}
	for _, c := range cs.Deletes {
		if err = t.delete(ctx, tx, c); err != nil {
			return grid.ApplyResult{}, fmt.Errorf("apply %s: delete seq %d: %w", cs.ID, c.Seq, err)
		}
		res.Deleted++
	}

	if err = tx.Commit(); err != nil {
		return grid.ApplyResult{}, fmt.Errorf("apply %s: commit: %w", cs.ID, err)
	}
	t.store.logger.Debug().Str("grid", t.grid).Str("changeSet", cs.ID).
		Int("inserted", res.Inserted).Int("updated", res.Updated).Int("deleted", res.Deleted).
		Msg("applied")
	return res, nil
}

// Seed inserts rows outside of any grid and returns their ids in order.
func (t *Table) Seed(ctx context.Context, rows []value.Object) (ids []int64, err error) {
	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("seed %s: begin: %w", t.grid, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, fields := range rows {
		var id int64
		if id, err = t.insert(ctx, tx, fields); err != nil {
			return nil, fmt.Errorf("seed %s: row %d: %w", t.grid, i, err)
		}
		ids = append(ids, id)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("seed %s: commit: %w", t.grid, err)
	}
	return ids, nil
}

// Count returns the number of rows stored for the grid.
func (t *Table) Count(ctx context.Context) (int, error) {
	var n int
	query := t.store.dialect.rebind("SELECT COUNT(*) FROM grid_rows WHERE grid = ?")
	if err := t.store.db.QueryRowContext(ctx, query, t.grid).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.grid, err)
	}
	return n, nil
}

func (t *Table) insert(ctx context.Context, tx *sql.Tx, fields value.Object) (int64, error) {
	payload, fp, err := t.encode(fields)
	if err != nil {
		return 0, err
	}
	query := t.store.dialect.rebind(
		"INSERT INTO grid_rows (grid, payload, fingerprint) VALUES (?, ?, ?) RETURNING id")

	var id int64
	if err := tx.QueryRowContext(ctx, query, t.grid, payload, fp).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *Table) update(ctx context.Context, tx *sql.Tx, c grid.Change) error {
	id, err := t.keyOf(c)
	if err != nil {
		return err
	}
	payload, fp, err := t.encode(c.Fields)
	if err != nil {
		return err
	}
	query := t.store.dialect.rebind(
		"UPDATE grid_rows SET payload = ?, fingerprint = ? WHERE grid = ? AND id = ?")
	result, err := tx.ExecContext(ctx, query, payload, fp, t.grid, id)
	if err != nil {
		return err
	}
	return expectOne(result, id)
}

func (t *Table) delete(ctx context.Context, tx *sql.Tx, c grid.Change) error {
	id, err := t.keyOf(c)
	if err != nil {
		return err
	}
	query := t.store.dialect.rebind("DELETE FROM grid_rows WHERE grid = ? AND id = ?")
	result, err := tx.ExecContext(ctx, query, t.grid, id)
	if err != nil {
		return err
	}
	return expectOne(result, id)
}

func expectOne(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrRowNotFound)
	}
	return nil
}

func (t *Table) keyOf(c grid.Change) (int64, error) {
	for _, fields := range []value.Object{c.Fields, c.Origin} {
		if id, ok := fields[t.key].(value.Int); ok {
			return int64(id), nil
		}
	}
	return 0, fmt.Errorf("missing integer %q field", t.key)
}

// encode strips the key field and returns the canonical payload and its
// fingerprint.
func (t *Table) encode(fields value.Object) (string, string, error) {
	stored := make(value.Object, len(fields))
	for k, v := range fields {
		if k != t.key {
			stored[k] = v
		}
	}

	data, err := value.MarshalCanonical(stored)
	if err != nil {
		return "", "", fmt.Errorf("encode payload: %w", err)
	}
	fp, err := value.RowFingerprint(stored)
	if err != nil {
		return "", "", fmt.Errorf("fingerprint payload: %w", err)
	}
	return string(data), fp, nil
}

func decodePayload(payload string) (value.Object, error) {
	v, err := value.Unmarshal([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	obj, ok := v.(value.Object)
	if !ok {
		return nil, fmt.Errorf("decode payload: want object, got %T", v)
	}
	return obj, nil
}
