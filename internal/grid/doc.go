// Package grid implements the row repository and index engine behind an
// editable, paginated data grid.
//
// A *Grid is one grid instance. It owns:
//   - Repository: the live row set, the origin snapshot taken at SetData, the
//     last query parameters, field definitions and the insert template
//   - Index: the row-sequence clock, position/identity lookups and the caches of
//     render handles registered by the view layer
//   - Options: the merged configuration (see DefaultOptions)
//
// Selection queries (CheckedCells, CheckedSeqs, CheckedItems, SetAllChecked) are
// derived from the handle cache and the rows; they hold no state of their own.
//
// # Critical Patterns
//
// CP-1: Identity Is Never Reused
//   - Instance sequences come from a process-wide atomic clock
//   - Row sequences come from a per-instance clock that ResetCaches never rewinds
//
// CP-2: Positions Are Derived
//   - The ordered []*Row is the only authority on position
//   - seq->index and index->seq are a cache, rebuilt wholesale (never patched)
//     on the first lookup after any structural change
//
// CP-3: State Only Moves Forward
//   - SELECT -> UPDATE | REMOVE, INSERT -> REMOVE (row is dropped), UPDATE -> REMOVE
//   - A REMOVE row rejects edits until RestoreRow
//
// CP-4: Origin Is Frozen
//   - SetData deep-copies every row into the origin snapshot
//   - Nothing but the next SetData replaces it
//
// # Concurrency
//
// A Grid is not safe for concurrent use. Every method is a plain synchronous
// call; only Search and Submit block, and only inside the supplied source.
package grid
