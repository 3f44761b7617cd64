package buffer

import (
	"fmt"

	"github.com/neovim/go-client/nvim"

	"ollamaedit/logger"
	"ollamaedit/text"
)

// NvimBuffer adapts a live Neovim buffer to the text.Buffer interface.
// Mutations go straight to the editor over RPC; the line count is cached
// and maintained locally so Len never needs a round-trip.
//
// All methods must run on the RPC handler goroutine that owns the buffer,
// matching the session model.
type NvimBuffer struct {
	client *nvim.Nvim
	id     nvim.Buffer
	count  int
}

var _ text.Buffer = (*NvimBuffer)(nil)

// Attach wraps the editor's current buffer, snapshotting its line count
func Attach(client *nvim.Nvim) (*NvimBuffer, error) {
	defer logger.Trace("buffer.Attach")()

	batch := client.NewBatch()
	var id nvim.Buffer
	var count int
	batch.CurrentBuffer(&id)
	batch.BufferLineCount(nvim.Buffer(0), &count)
	if err := batch.Execute(); err != nil {
		return nil, fmt.Errorf("attach current buffer: %w", err)
	}
	return &NvimBuffer{client: client, id: id, count: count}, nil
}

// ID returns the underlying nvim buffer handle
func (b *NvimBuffer) ID() nvim.Buffer { return b.id }

// Len returns the cached line count
func (b *NvimBuffer) Len() int { return b.count }

// Lines returns a full snapshot of the buffer's contents
func (b *NvimBuffer) Lines() ([]string, error) {
	raw, err := b.client.BufferLines(b.id, 0, -1, false)
	if err != nil {
		return nil, fmt.Errorf("read buffer lines: %w", err)
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	b.count = len(lines)
	return lines, nil
}

// Line returns the 1-indexed line n
func (b *NvimBuffer) Line(n int) (string, error) {
	if n < 1 || n > b.count {
		return "", &text.OutOfRangeError{Line: n, Len: b.count}
	}
	raw, err := b.client.BufferLines(b.id, n-1, n, true)
	if err != nil {
		return "", fmt.Errorf("read line %d: %w", n, err)
	}
	if len(raw) == 0 {
		return "", &text.OutOfRangeError{Line: n, Len: b.count}
	}
	return string(raw[0]), nil
}

// Insert places content as the new line n, shifting lines at and below n
// down. n is clamped into [1, Len()+1]; Len()+1 appends.
func (b *NvimBuffer) Insert(n int, content string) error {
	if n < 1 {
		n = 1
	}
	if n > b.count+1 {
		n = b.count + 1
	}
	err := b.client.SetBufferLines(b.id, n-1, n-1, false, [][]byte{[]byte(content)})
	if err != nil {
		return fmt.Errorf("insert line %d: %w", n, err)
	}
	b.count++
	return nil
}

// Delete removes the 1-indexed line n and returns its previous content
func (b *NvimBuffer) Delete(n int) (string, error) {
	content, err := b.Line(n)
	if err != nil {
		return "", err
	}
	if err := b.client.SetBufferLines(b.id, n-1, n, true, nil); err != nil {
		return "", fmt.Errorf("delete line %d: %w", n, err)
	}
	b.count--
	return content, nil
}

// FileType returns the buffer's filetype option, used to tag code blocks
// in prompts
func (b *NvimBuffer) FileType() string {
	var ft string
	if err := b.client.BufferOption(b.id, "filetype", &ft); err != nil {
		logger.Warn("read filetype: %v", err)
		return ""
	}
	return ft
}
