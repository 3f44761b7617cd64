package text

import "fmt"

// OutOfRangeError reports a buffer access outside [1, len]. With correct
// cursor arithmetic this indicates an integration bug, not user input.
type OutOfRangeError struct {
	Line int
	Len  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("line %d out of range [1, %d]", e.Line, e.Len)
}

// ApplyMismatchError reports that the buffer content found during forward
// application does not match the edit script. The buffer has diverged from
// the state the proposal was computed against; the caller should discard
// the whole proposal.
type ApplyMismatchError struct {
	Line     int
	Expected string
	Actual   string
}

func (e *ApplyMismatchError) Error() string {
	return fmt.Sprintf("diff does not apply at line %d: expected %q, got %q", e.Line, e.Expected, e.Actual)
}

// RejectMismatchError is the reversal-time counterpart of ApplyMismatchError:
// an inserted line that should be removed no longer holds the inserted text.
type RejectMismatchError struct {
	Line     int
	Expected string
	Actual   string
}

func (e *RejectMismatchError) Error() string {
	return fmt.Sprintf("cannot undo change at line %d: expected %q, got %q", e.Line, e.Expected, e.Actual)
}

// GroupNotFoundError reports a group lookup or resolve against an index that
// does not exist, a line no pending group starts at, or a group that has
// already been resolved.
type GroupNotFoundError struct {
	Index int
	Line  int        // set when the lookup was by buffer line
	State GroupState // non-pending when the group exists but is resolved
}

func (e *GroupNotFoundError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("no change group starting at line %d", e.Line)
	}
	if e.State != GroupPending {
		return fmt.Sprintf("change group %d is already %s", e.Index, e.State)
	}
	return fmt.Sprintf("change group %d does not exist", e.Index)
}
