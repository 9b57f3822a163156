package grid

import "slices"

// State is a row's dirty-tracking status relative to the last load.
type State string

const (
	// StateSelect marks a row as loaded and unchanged.
	StateSelect State = "SELECT"
	// StateInsert marks a row created locally and never persisted.
	StateInsert State = "INSERT"
	// StateUpdate marks a loaded row with local edits.
	StateUpdate State = "UPDATE"
	// StateRemove marks a loaded row scheduled for deletion.
	StateRemove State = "REMOVE"
)

// transitions lists the state changes each state permits. Staying in the same
// state (an edit to an UPDATE or INSERT row) is not a transition.
// REMOVE only leaves through RestoreRow.
var transitions = map[State][]State{
	StateSelect: {StateUpdate, StateRemove},
	StateInsert: {StateRemove},
	StateUpdate: {StateRemove},
	StateRemove: {StateSelect, StateUpdate, StateInsert},
}

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a row in state from may move to state to.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}
