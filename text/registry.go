package text

// GroupState is the resolution state of a change group
type GroupState int

const (
	GroupPending GroupState = iota
	GroupAccepted
	GroupRejected
)

// String returns the string representation of GroupState
func (s GroupState) String() string {
	switch s {
	case GroupPending:
		return "pending"
	case GroupAccepted:
		return "accepted"
	case GroupRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Registry owns the ordered change groups of one applied proposal and
// drives their resolution. Accepted and Rejected are terminal states.
//
// The registry is not safe for concurrent use; per the session model all
// resolution happens on the thread that owns the buffer.
type Registry struct {
	groups  []*Group
	states  []GroupState
	buf     Buffer
	overlay OverlaySink
}

// NewRegistry creates a registry over groups as applied to buf. overlay may
// be nil when the proposal was applied without rendering.
func NewRegistry(groups []*Group, buf Buffer, overlay OverlaySink) *Registry {
	return &Registry{
		groups:  groups,
		states:  make([]GroupState, len(groups)),
		buf:     buf,
		overlay: overlay,
	}
}

// Groups returns the registry's groups in index order
func (r *Registry) Groups() []*Group { return r.groups }

// State returns the resolution state of group index
func (r *Registry) State(index int) (GroupState, error) {
	if index < 0 || index >= len(r.groups) {
		return GroupPending, &GroupNotFoundError{Index: index}
	}
	return r.states[index], nil
}

// PendingCount returns how many groups are still unresolved
func (r *Registry) PendingCount() int {
	n := 0
	for _, s := range r.states {
		if s == GroupPending {
			n++
		}
	}
	return n
}

// FindByLine returns the first group whose current StartLine equals line.
// Used to map an editor cursor position back to a group.
func (r *Registry) FindByLine(line int) (int, *Group, bool) {
	for i, g := range r.groups {
		if g.StartLine == line {
			return i, g, true
		}
	}
	return 0, nil, false
}

// requirePending validates that group index exists and is unresolved
func (r *Registry) requirePending(index int) error {
	if index < 0 || index >= len(r.groups) {
		return &GroupNotFoundError{Index: index}
	}
	if r.states[index] != GroupPending {
		return &GroupNotFoundError{Index: index, State: r.states[index]}
	}
	return nil
}

// Accept resolves group index as accepted: its overlay rendering is cleared
// and nothing else changes. The buffer already holds the new text, and an
// accept changes zero net lines, so no other group's span moves.
func (r *Registry) Accept(index int) error {
	if err := r.requirePending(index); err != nil {
		return err
	}
	if r.overlay != nil {
		r.overlay.Clear(index)
	}
	r.states[index] = GroupAccepted
	return nil
}

// Reject resolves group index as rejected: its overlay rendering is
// cleared, its records are undone against the buffer, and every group with
// a higher index is shifted by the net line count the undo restored.
//
// The undo walks the group's records in their original order with a cursor
// starting at the group's StartLine. Undoing an insert deletes the buffer
// line at the cursor, which does not advance because the next line shifts
// into its place; undoing a delete re-inserts the recorded text and
// advances past it. This mirrors the forward cursor rule in Apply.
//
// Shifting also touches groups already resolved. That is inert: resolved
// coordinates are never read again. It is required for groups still
// pending, whose true position moved by exactly the restored count, and it
// is what keeps rejection correct in any resolution order. Groups below
// index are never touched; content before an inner span is unaffected by
// mutating that span.
func (r *Registry) Reject(index int) error {
	if err := r.requirePending(index); err != nil {
		return err
	}
	if r.overlay != nil {
		r.overlay.Clear(index)
	}

	g := r.groups[index]
	cursor := g.StartLine
	restored := 0
	for _, rec := range g.Records {
		switch rec.Kind {
		case KindInsert:
			actual, err := r.buf.Delete(cursor)
			if err != nil {
				return err
			}
			if actual != rec.Text {
				return &RejectMismatchError{Line: cursor, Expected: rec.Text, Actual: actual}
			}
			restored--
		case KindDelete:
			if err := r.buf.Insert(cursor, rec.Text); err != nil {
				return err
			}
			cursor++
			restored++
		}
	}

	r.states[index] = GroupRejected
	for _, later := range r.groups[index+1:] {
		later.StartLine += restored
		later.EndLine += restored
	}
	return nil
}

// AcceptAll resolves every pending group as accepted and clears all overlay
// state. The buffer already holds the new text.
func (r *Registry) AcceptAll() {
	if r.overlay != nil {
		r.overlay.ClearAll()
	}
	for i, s := range r.states {
		if s == GroupPending {
			r.states[i] = GroupAccepted
		}
	}
}

// RejectAll rejects every pending group, restoring the original content.
// Groups are processed from highest index to lowest so each rejection's
// line shifts only ever affect spans that are corrected before use.
func (r *Registry) RejectAll() error {
	for i := len(r.groups) - 1; i >= 0; i-- {
		if r.states[i] != GroupPending {
			continue
		}
		if err := r.Reject(i); err != nil {
			return err
		}
	}
	return nil
}
