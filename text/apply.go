package text

// TextPosition places deleted-context annotations relative to a line
type TextPosition int

const (
	PosAbove TextPosition = iota
	PosBelow
)

// String returns the string representation of TextPosition
func (p TextPosition) String() string {
	if p == PosBelow {
		return "below"
	}
	return "above"
}

// OverlaySink receives non-content annotations while a script is applied in
// grouped mode, and clears them again when a group is resolved. Every mark
// carries the index of the change group it belongs to, so Clear can remove
// exactly one group's rendering. Implemented by the editor integration; a
// headless harness can record the calls.
type OverlaySink interface {
	// MarkAdded marks line as newly inserted
	MarkAdded(group, line int)
	// MarkChanged marks line as replacing deleted content shown above it
	MarkChanged(group, line int)
	// MarkDeletedContext renders deleted text next to line without occupying
	// a buffer line
	MarkDeletedContext(group, line int, text string, pos TextPosition)
	// Clear removes all annotations recorded for one group
	Clear(group int)
	// ClearAll removes every annotation
	ClearAll()
}

// Apply replays an edit script against buf starting at startLine, leaving
// the buffer equal to the script's new-side content. With a nil overlay
// this is direct mode: the same mutations with no annotation bookkeeping.
// With an overlay the applied diff is additionally rendered in place:
// inserted lines are marked added, or changed when they directly replace a
// pending run of deletions, and deleted text is attached as context to the
// line that follows it.
//
// Apply runs once per proposal. Deciding each group's fate afterwards is
// the registry's job and operates on the already-applied buffer.
//
// A mismatch between the script and the buffer aborts with
// ApplyMismatchError; mutations already performed are left in place and the
// caller must discard the proposal.
func Apply(script []Record, buf Buffer, startLine int, overlay OverlaySink) error {
	cursor := startLine
	var pending []string // deleted text awaiting its annotation anchor
	group := -1          // index of the run currently or most recently open
	inRun := false

	flush := func(line int, pos TextPosition) {
		for _, text := range pending {
			overlay.MarkDeletedContext(group, line, text, pos)
		}
		pending = pending[:0]
	}

	for _, r := range script {
		switch r.Kind {
		case KindInsert:
			if !inRun {
				group++
				inRun = true
			}
			if err := buf.Insert(cursor, r.Text); err != nil {
				return err
			}
			if overlay != nil {
				if len(pending) > 0 {
					flush(cursor, PosAbove)
					overlay.MarkChanged(group, cursor)
				} else {
					overlay.MarkAdded(group, cursor)
				}
			}
			cursor++

		case KindDelete:
			if !inRun {
				group++
				inRun = true
			}
			actual, err := buf.Delete(cursor)
			if err != nil {
				return err
			}
			if actual != r.Text {
				return &ApplyMismatchError{Line: cursor, Expected: r.Text, Actual: actual}
			}
			if overlay != nil {
				pending = append(pending, actual)
			}
			// cursor stays put: the next line has shifted into its place

		case KindContext:
			inRun = false
			if overlay != nil && len(pending) > 0 {
				flush(cursor, PosAbove)
			}
			actual, err := buf.Line(cursor)
			if err != nil {
				return err
			}
			if actual != r.Text {
				return &ApplyMismatchError{Line: cursor, Expected: r.Text, Actual: actual}
			}
			cursor++
		}
	}

	// Trailing deletions have no following context line to hang off. Anchor
	// them above the line after the span, or below the last line when the
	// span ends at the buffer end.
	if overlay != nil && len(pending) > 0 {
		if cursor > buf.Len() {
			flush(buf.Len(), PosBelow)
		} else {
			flush(cursor, PosAbove)
		}
	}
	return nil
}
