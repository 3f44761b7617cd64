package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimContextWindowNoTrimNeeded(t *testing.T) {
	pre := []string{"p1", "p2"}
	code := []string{"code"}
	post := []string{"s1", "s2"}

	gotPre, gotPost := TrimContextWindow(pre, code, post, 1000)

	assert.Equal(t, pre, gotPre)
	assert.Equal(t, post, gotPost)
}

func TestTrimContextWindowDisabled(t *testing.T) {
	pre := []string{strings.Repeat("x", 100)}
	post := []string{strings.Repeat("y", 100)}

	gotPre, gotPost := TrimContextWindow(pre, nil, post, 0)

	assert.Equal(t, pre, gotPre)
	assert.Equal(t, post, gotPost)
}

func TestTrimContextWindowDropsOutermostFirst(t *testing.T) {
	pre := []string{"far-pre", "near-pre"}
	code := []string{strings.Repeat("c", 20)}
	post := []string{"near-post", "far-post"}

	// budget fits code plus roughly the two near lines
	gotPre, gotPost := TrimContextWindow(pre, code, post, 21)

	assert.Equal(t, []string{"near-pre"}, gotPre)
	assert.Equal(t, []string{"near-post"}, gotPost)
}

func TestTrimContextWindowNeverTouchesCode(t *testing.T) {
	code := []string{strings.Repeat("c", 500)}

	gotPre, gotPost := TrimContextWindow([]string{"a"}, code, []string{"b"}, 10)

	assert.Empty(t, gotPre)
	assert.Empty(t, gotPost)
}

func TestContextRange(t *testing.T) {
	preStart, postEnd := ContextRange(15, 20, 10, 100)
	assert.Equal(t, 4, preStart)
	assert.Equal(t, 30, postEnd)

	// clamped at both ends
	preStart, postEnd = ContextRange(3, 98, 10, 100)
	assert.Equal(t, 0, preStart)
	assert.Equal(t, 100, postEnd)
}
