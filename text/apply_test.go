package text

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures overlay calls for inspection
type recordingSink struct {
	marks   []string
	cleared []int
	allTime int
}

func (s *recordingSink) MarkAdded(group, line int) {
	s.marks = append(s.marks, fmt.Sprintf("added g%d l%d", group, line))
}

func (s *recordingSink) MarkChanged(group, line int) {
	s.marks = append(s.marks, fmt.Sprintf("changed g%d l%d", group, line))
}

func (s *recordingSink) MarkDeletedContext(group, line int, text string, pos TextPosition) {
	s.marks = append(s.marks, fmt.Sprintf("deleted g%d l%d %q %s", group, line, text, pos))
}

func (s *recordingSink) Clear(group int) { s.cleared = append(s.cleared, group) }

func (s *recordingSink) ClearAll() { s.allTime++ }

func TestApplyRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		old  []string
		new  []string
	}{
		{"identity", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"single addition", []string{"a", "b"}, []string{"a", "c", "b"}},
		{"single deletion", []string{"a", "b", "c"}, []string{"a", "c"}},
		{"changed line", []string{"x", "y", "z"}, []string{"x", "Y", "z"}},
		{"change first line", []string{"old", "b", "c"}, []string{"new", "b", "c"}},
		{"change last line", []string{"a", "b", "end"}, []string{"a", "b", "END"}},
		{"insert runs", []string{"a", "b", "c", "d", "e", "f"}, []string{"a", "1", "b", "2", "3", "c", "d", "4", "5", "6", "e", "f"}},
		{"trailing deletion", []string{"a", "b", "c"}, []string{"a"}},
		{"empty to content", nil, []string{"a", "b"}},
		{"content to empty", []string{"a", "b"}, nil},
		{"grow and shrink", []string{"a", "b", "c", "d", "e"}, []string{"a", "x", "y", "e"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			script := Compute(tc.old, tc.new)

			// direct mode
			buf := NewLineBuffer(tc.old)
			require.NoError(t, Apply(script, buf, 1, nil))
			assert.Equal(t, append([]string{}, tc.new...), append([]string{}, buf.Lines()...))

			// grouped mode ends with the same buffer content
			buf = NewLineBuffer(tc.old)
			require.NoError(t, Apply(script, buf, 1, &recordingSink{}))
			assert.Equal(t, append([]string{}, tc.new...), append([]string{}, buf.Lines()...))
		})
	}
}

func TestApplyAtOffset(t *testing.T) {
	// Diff computed over a sub-range of the buffer, applied at its offset
	old := []string{"keep1", "keep2", "a", "b", "keep3"}
	script := Compute([]string{"a", "b"}, []string{"a", "x", "b"})

	buf := NewLineBuffer(old)
	require.NoError(t, Apply(script, buf, 3, nil))
	assert.Equal(t, []string{"keep1", "keep2", "a", "x", "b", "keep3"}, buf.Lines())
}

func TestApplyMarksAddedLines(t *testing.T) {
	sink := &recordingSink{}
	script := Compute([]string{"a", "b"}, []string{"a", "c", "b"})

	buf := NewLineBuffer([]string{"a", "b"})
	require.NoError(t, Apply(script, buf, 1, sink))

	assert.Equal(t, []string{"added g0 l2"}, sink.marks)
}

func TestApplyMarksChangedLine(t *testing.T) {
	sink := &recordingSink{}
	script := Compute([]string{"a", "b", "c"}, []string{"a", "X", "c"})

	buf := NewLineBuffer([]string{"a", "b", "c"})
	require.NoError(t, Apply(script, buf, 1, sink))

	// deleted text is shown above the replacement line
	assert.Equal(t, []string{
		`deleted g0 l2 "b" above`,
		"changed g0 l2",
	}, sink.marks)
}

func TestApplyMarksDeletionBeforeContext(t *testing.T) {
	sink := &recordingSink{}
	script := Compute([]string{"a", "b", "c"}, []string{"a", "c"})

	buf := NewLineBuffer([]string{"a", "b", "c"})
	require.NoError(t, Apply(script, buf, 1, sink))

	assert.Equal(t, []string{`deleted g0 l2 "b" above`}, sink.marks)
}

func TestApplyMarksTrailingDeletionBelow(t *testing.T) {
	sink := &recordingSink{}
	script := Compute([]string{"a", "b", "c"}, []string{"a"})

	buf := NewLineBuffer([]string{"a", "b", "c"})
	require.NoError(t, Apply(script, buf, 1, sink))

	assert.Equal(t, []string{
		`deleted g0 l1 "b" below`,
		`deleted g0 l1 "c" below`,
	}, sink.marks)
}

func TestApplyTagsMarksPerGroup(t *testing.T) {
	sink := &recordingSink{}
	old := []string{"a", "b", "c", "d", "e", "f"}
	new := []string{"a", "1", "b", "2", "3", "c", "d", "4", "5", "6", "e", "f"}

	buf := NewLineBuffer(old)
	require.NoError(t, Apply(Compute(old, new), buf, 1, sink))

	assert.Equal(t, []string{
		"added g0 l2",
		"added g1 l4",
		"added g1 l5",
		"added g2 l8",
		"added g2 l9",
		"added g2 l10",
	}, sink.marks)
}

func TestApplyMismatchOnContext(t *testing.T) {
	script := Compute([]string{"a", "b", "c"}, []string{"a", "x", "c"})

	// buffer was modified externally after the diff was computed
	buf := NewLineBuffer([]string{"a", "b", "DIVERGED"})
	err := Apply(script, buf, 1, nil)

	var mismatch *ApplyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Line)
	assert.Equal(t, "c", mismatch.Expected)
	assert.Equal(t, "DIVERGED", mismatch.Actual)
}

func TestApplyMismatchOnDelete(t *testing.T) {
	script := []Record{
		{KindContext, "a"},
		{KindDelete, "b"},
	}

	buf := NewLineBuffer([]string{"a", "not b"})
	err := Apply(script, buf, 1, nil)

	var mismatch *ApplyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Line)
}

// insertFailBuffer simulates a live buffer whose inserts fail, as an RPC
// backed buffer does when the editor connection drops
type insertFailBuffer struct {
	*LineBuffer
	err error
}

func (b *insertFailBuffer) Insert(n int, text string) error { return b.err }

func TestApplyPropagatesInsertError(t *testing.T) {
	script := Compute([]string{"a"}, []string{"a", "b"})
	buf := &insertFailBuffer{
		LineBuffer: NewLineBuffer([]string{"a"}),
		err:        fmt.Errorf("connection lost"),
	}

	err := Apply(script, buf, 1, nil)
	require.ErrorIs(t, err, buf.err)
}
