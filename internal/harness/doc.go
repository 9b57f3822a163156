// Package harness runs scripted editing sessions against a grid.
//
// A scenario names a grid (inline fields or a CUE definitions directory),
// seeds a backend, applies a list of steps and then checks assertions.
// Every step leaves one trace event holding the row states after it, which
// is what golden files record.
//
// # Scenario Format
//
//	name: edit_and_submit
//	description: "Edits reach the backend"
//	fields: [id, name]
//	source:
//	  rows:
//	    - {id: 1, name: a}
//	steps:
//	  - op: load
//	  - op: update
//	    seq: 1
//	    field: name
//	    value: b
//	  - op: remove
//	    seq: 9
//	    expect_error: NOT_FOUND
//	  - op: submit
//	assertions:
//	  - type: states
//	    states: {UPDATE: [1]}
//	  - type: applied
//	    applied: {inserted: 0, updated: 1, deleted: 0}
//
// # Steps
//
//   - load: Search the backend with filter, page and size
//   - set_data: load literal rows
//   - insert, update, remove, restore, move: row mutations
//   - check_all: SetAllChecked on a checkbox field
//   - paint: drop the caches and register fresh fake cells for every row
//   - reset_caches: drop the caches without repainting
//   - change_option: ChangeOption by dotted path
//   - submit: send the change set to the backend
//   - dispose: Dispose the grid
//
// A step that fails with a grid error is only a failure when the error code
// differs from expect_error.
//
// # Assertion Types
//
//   - row_count: number of rows
//   - states: row sequences per state, in row order; unlisted states are empty
//   - checked_seqs: CheckedSeqs for a field
//   - row: subset match of one row's fields
//   - modified: ModifiedFields of one row
//   - applied: totals over all submit steps
//   - source_count: rows in the backend
//   - option: one merged option by dotted path
//
// # Deterministic Testing
//
// Row sequences come from a fresh grid clock and change set ids are fixed
// (changeset_id, default "test-changeset"), so traces are identical across
// runs.
package harness
