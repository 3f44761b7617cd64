package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineBufferLine(t *testing.T) {
	b := NewLineBuffer([]string{"a", "b", "c"})

	line, err := b.Line(2)
	require.NoError(t, err)
	assert.Equal(t, "b", line)

	_, err = b.Line(0)
	var oor *OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 0, oor.Line)

	_, err = b.Line(4)
	assert.ErrorAs(t, err, &oor)
}

func TestLineBufferInsert(t *testing.T) {
	b := NewLineBuffer([]string{"a", "c"})

	b.Insert(2, "b")
	assert.Equal(t, []string{"a", "b", "c"}, b.Lines())

	// append position
	b.Insert(4, "d")
	assert.Equal(t, []string{"a", "b", "c", "d"}, b.Lines())

	// out-of-range positions clamp instead of failing
	b.Insert(100, "tail")
	b.Insert(-5, "head")
	assert.Equal(t, []string{"head", "a", "b", "c", "d", "tail"}, b.Lines())
}

func TestLineBufferDelete(t *testing.T) {
	b := NewLineBuffer([]string{"a", "b", "c"})

	text, err := b.Delete(2)
	require.NoError(t, err)
	assert.Equal(t, "b", text)
	assert.Equal(t, []string{"a", "c"}, b.Lines())

	_, err = b.Delete(3)
	var oor *OutOfRangeError
	assert.ErrorAs(t, err, &oor)
	assert.Equal(t, 2, b.Len())
}

func TestLineBufferCopiesInput(t *testing.T) {
	src := []string{"a", "b"}
	b := NewLineBuffer(src)

	src[0] = "mutated"
	line, err := b.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "a", line)
}
