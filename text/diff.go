package text

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RecordKind classifies a single line in an edit script
type RecordKind int

const (
	KindContext RecordKind = iota
	KindInsert
	KindDelete
)

// String returns the string representation of RecordKind
func (k RecordKind) String() string {
	switch k {
	case KindContext:
		return "context"
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Record is one line of an edit script. Replaying the script in order,
// a context record consumes one line of both old and new content, an
// insert record consumes one line of new only, and a delete record
// consumes one line of old only.
type Record struct {
	Kind RecordKind
	Text string
}

// String renders the record in ndiff style, mostly for log output
func (r Record) String() string {
	switch r.Kind {
	case KindInsert:
		return "+ " + r.Text
	case KindDelete:
		return "- " + r.Text
	default:
		return "  " + r.Text
	}
}

// splitLines splits text by newline and removes the trailing empty element if present
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// joinLines is the inverse of splitLines: every line, including the last,
// is terminated by a newline so that line identity survives the round trip
// through the character-encoded diff.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Compute produces a line-level edit script transforming old into new.
// Delete records for a changed region are emitted immediately before the
// insert records that replace them, with no context record in between, so
// the segmenter treats a changed line as a single group. Equal inputs
// yield a script of context records only; an empty old yields all inserts
// and an empty new all deletes.
func Compute(old, new []string) []Record {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(joinLines(old), joinLines(new))
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var script []Record
	for _, d := range diffs {
		var kind RecordKind
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = KindContext
		case diffmatchpatch.DiffInsert:
			kind = KindInsert
		case diffmatchpatch.DiffDelete:
			kind = KindDelete
		}
		for _, line := range splitLines(d.Text) {
			script = append(script, Record{Kind: kind, Text: line})
		}
	}
	return script
}

// OldLines reconstructs the original line sequence from an edit script
func OldLines(script []Record) []string {
	var lines []string
	for _, r := range script {
		if r.Kind == KindContext || r.Kind == KindDelete {
			lines = append(lines, r.Text)
		}
	}
	return lines
}

// NewLines reconstructs the replacement line sequence from an edit script
func NewLines(script []Record) []string {
	var lines []string
	for _, r := range script {
		if r.Kind == KindContext || r.Kind == KindInsert {
			lines = append(lines, r.Text)
		}
	}
	return lines
}
