// Package value provides the field-value model for grid rows.
//
// Row fields are a closed set of types: Null, String, Int, Float, Bool, Array
// and Object. The interface is sealed so every consumer (deep copy, equality,
// canonical JSON, fingerprints) can switch exhaustively.
//
// This package imports nothing internal. The grid, sources, harness and CLI all
// build on it.
//
// Key design constraints:
//   - JSON numbers decode to Int when they are integral, Float otherwise
//   - Null is an explicit value, never a nil interface, inside Array and Object
//   - Object iteration is always done through SortedKeys for determinism
//   - Clone is a full deep copy; nothing is shared with the source
package value
