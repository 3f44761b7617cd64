package text

// Group is a maximal contiguous run of non-context records, reviewable as
// one unit. StartLine and EndLine are the 1-indexed span of the group in
// the buffer as currently mutated; the registry corrects them whenever an
// earlier group's rejection changes the line count above this group.
type Group struct {
	Index     int // stable, assigned in segmentation order
	StartLine int
	EndLine   int
	Records   []Record
}

// Segment partitions an edit script into change groups. It tracks a virtual
// cursor starting at startLine that advances for every record except
// deletes: a deleted line is removed before the cursor would pass it, so at
// grouping time it occupies no position in the evolving buffer. A context
// record closes the open group; consecutive inserts and deletes, in any
// combination, extend it. The cursor values here are buffer coordinates
// during application, which is what lets Apply place each group's records
// at the group's StartLine.
//
// A script with no insert or delete records yields no groups: nothing to
// review is not an error.
func Segment(script []Record, startLine int) []*Group {
	var groups []*Group
	var open []Record
	openStart := 0
	cursor := startLine

	closeGroup := func() {
		endLine := cursor - 1
		if endLine < openStart {
			// delete-only run: nothing was consumed, anchor the span at its start
			endLine = openStart
		}
		groups = append(groups, &Group{
			Index:     len(groups),
			StartLine: openStart,
			EndLine:   endLine,
			Records:   open,
		})
		open = nil
	}

	for _, r := range script {
		switch r.Kind {
		case KindContext:
			if len(open) > 0 {
				closeGroup()
			}
			cursor++
		case KindInsert:
			if len(open) == 0 {
				openStart = cursor
			}
			open = append(open, r)
			cursor++
		case KindDelete:
			if len(open) == 0 {
				openStart = cursor
			}
			open = append(open, r)
		}
	}
	if len(open) > 0 {
		closeGroup()
	}
	return groups
}
