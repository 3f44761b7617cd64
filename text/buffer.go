package text

// Buffer is the line-addressed view of a text buffer the engine mutates.
// Lines are 1-indexed. In an editor integration this is a thin wrapper over
// the editor's live buffer, owned by the editor and borrowed by the engine
// for the duration of a call; in tests and headless use it is a LineBuffer.
type Buffer interface {
	Len() int
	Line(n int) (string, error)
	Insert(n int, text string) error
	Delete(n int) (string, error)
}

// LineBuffer is a slice-backed Buffer
type LineBuffer struct {
	lines []string
}

var _ Buffer = (*LineBuffer)(nil)

// NewLineBuffer creates a LineBuffer holding a copy of lines
func NewLineBuffer(lines []string) *LineBuffer {
	b := &LineBuffer{lines: make([]string, len(lines))}
	copy(b.lines, lines)
	return b
}

func (b *LineBuffer) Len() int { return len(b.lines) }

// Line returns line n, failing with OutOfRangeError if n is not in [1, len]
func (b *LineBuffer) Line(n int) (string, error) {
	if n < 1 || n > len(b.lines) {
		return "", &OutOfRangeError{Line: n, Len: len(b.lines)}
	}
	return b.lines[n-1], nil
}

// Insert makes text line n, shifting subsequent lines down by one.
// n is clamped into [1, len+1], so appending past the end is valid.
func (b *LineBuffer) Insert(n int, text string) error {
	if n < 1 {
		n = 1
	}
	if n > len(b.lines)+1 {
		n = len(b.lines) + 1
	}
	b.lines = append(b.lines, "")
	copy(b.lines[n:], b.lines[n-1:])
	b.lines[n-1] = text
	return nil
}

// Delete removes and returns line n, shifting subsequent lines up by one
func (b *LineBuffer) Delete(n int) (string, error) {
	if n < 1 || n > len(b.lines) {
		return "", &OutOfRangeError{Line: n, Len: len(b.lines)}
	}
	text := b.lines[n-1]
	b.lines = append(b.lines[:n-1], b.lines[n:]...)
	return text, nil
}

// Lines returns a copy of the buffer content
func (b *LineBuffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}
