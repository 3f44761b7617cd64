package buffer

import (
	"github.com/neovim/go-client/nvim"

	"ollamaedit/logger"
	"ollamaedit/text"
)

// overlayNamespace names the extmark namespace all review rendering lives in
const overlayNamespace = "ollamaedit"

// NvimOverlay renders a proposal under review into the editor: inserted
// and changed lines get line highlights plus a sign, deleted lines are
// shown as virtual lines anchored to their neighbor. Marks are tracked per
// change group so resolving one group clears only its own rendering.
//
// Rendering failures are logged and swallowed; the overlay is cosmetic and
// must never fail a buffer mutation that already happened.
type NvimOverlay struct {
	client *nvim.Nvim
	buf    *NvimBuffer
	nsID   int
	marks  map[int][]int // group index -> extmark ids
}

// NewOverlay creates an overlay for buf, claiming the plugin's extmark
// namespace
func NewOverlay(client *nvim.Nvim, buf *NvimBuffer) (*NvimOverlay, error) {
	nsID, err := client.CreateNamespace(overlayNamespace)
	if err != nil {
		return nil, err
	}
	return &NvimOverlay{
		client: client,
		buf:    buf,
		nsID:   nsID,
		marks:  make(map[int][]int),
	}, nil
}

func (o *NvimOverlay) place(group, line int, opts map[string]interface{}) {
	id, err := o.client.SetBufferExtmark(o.buf.ID(), o.nsID, line-1, 0, opts)
	if err != nil {
		logger.Warn("place extmark at line %d: %v", line, err)
		return
	}
	o.marks[group] = append(o.marks[group], id)
}

// MarkAdded highlights an inserted line
func (o *NvimOverlay) MarkAdded(group, line int) {
	o.place(group, line, map[string]interface{}{
		"line_hl_group": "DiffAdd",
		"sign_text":     "+",
		"sign_hl_group": "DiffAdd",
	})
}

// MarkChanged highlights an inserted line that replaces a deleted one
func (o *NvimOverlay) MarkChanged(group, line int) {
	o.place(group, line, map[string]interface{}{
		"line_hl_group": "DiffChange",
		"sign_text":     "~",
		"sign_hl_group": "DiffChange",
	})
}

// MarkDeletedContext shows a deleted line's text as a virtual line above
// the given buffer line, or below it when the deletion fell past the end
// of the buffer
func (o *NvimOverlay) MarkDeletedContext(group, line int, content string, pos text.TextPosition) {
	o.place(group, line, map[string]interface{}{
		"virt_lines":       [][][2]string{{{content, "DiffDelete"}}},
		"virt_lines_above": pos == text.PosAbove,
		"sign_text":        "-",
		"sign_hl_group":    "DiffDelete",
	})
}

// Clear removes the rendering of one group
func (o *NvimOverlay) Clear(group int) {
	for _, id := range o.marks[group] {
		if _, err := o.client.DeleteBufferExtmark(o.buf.ID(), o.nsID, id); err != nil {
			logger.Warn("clear extmark %d: %v", id, err)
		}
	}
	delete(o.marks, group)
}

// ClearAll removes every mark in the namespace
func (o *NvimOverlay) ClearAll() {
	if err := o.client.ClearBufferNamespace(o.buf.ID(), o.nsID, 0, -1); err != nil {
		logger.Warn("clear overlay namespace: %v", err)
	}
	o.marks = make(map[int][]int)
}
