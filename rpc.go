package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/neovim/go-client/nvim"

	"ollamaedit/buffer"
	"ollamaedit/engine"
	"ollamaedit/logger"
	"ollamaedit/provider"
	"ollamaedit/types"
)

// service is the per-connection RPC surface the editor plugin calls. One
// edit is in flight at a time; the plugin polls edit_status on a timer and
// the proposal is applied to the buffer on the first poll that sees it
// done. All handlers run on the connection's RPC goroutine, which is the
// thread that owns the buffer.
type service struct {
	n      *nvim.Nvim
	engine *engine.Engine
	config Config

	buf     *buffer.NvimBuffer
	overlay *buffer.NvimOverlay
}

func newService(n *nvim.Nvim, p provider.Provider, config Config) *service {
	return &service{
		n:      n,
		engine: engine.New(p, config.providerConfig()),
		config: config,
	}
}

func (s *service) register() error {
	handlers := map[string]interface{}{
		"edit_code":          s.editCode,
		"edit_status":        s.editStatus,
		"accept_change":      s.acceptChange,
		"reject_change":      s.rejectChange,
		"accept_change_line": s.acceptChangeLine,
		"reject_change_line": s.rejectChangeLine,
		"accept_all_changes": s.acceptAll,
		"reject_all_changes": s.rejectAll,
	}
	for name, fn := range handlers {
		if err := s.n.RegisterHandler(name, fn); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

// editCode starts an edit over the given 1-indexed inclusive line range of
// the editor's current buffer
func (s *service) editCode(firstLine, lastLine int, instruction string) error {
	defer logger.Trace("rpc.edit_code")()

	buf, err := buffer.Attach(s.n)
	if err != nil {
		return err
	}
	lines, err := buf.Lines()
	if err != nil {
		return err
	}
	overlay, err := buffer.NewOverlay(s.n, buf)
	if err != nil {
		return err
	}
	// a fresh edit supersedes any review still on screen
	overlay.ClearAll()
	s.buf = buf
	s.overlay = overlay

	req := &types.EditRequest{
		Instruction:  instruction,
		FirstLine:    firstLine,
		LastLine:     lastLine,
		FileType:     buf.FileType(),
		ContextLines: s.config.ContextLines,
		InlineDiff:   s.config.InlineDiff,
	}
	return s.engine.StartEdit(context.Background(), req, lines)
}

// editStatus reports the in-flight edit's state. The first poll that sees
// the proposal done applies it to the buffer and renders the overlay.
func (s *service) editStatus() (map[string]interface{}, error) {
	status, err := s.engine.Poll()
	switch {
	case errors.Is(err, engine.ErrNoTask):
		// either never started or already materialized; report the session
		return s.sessionStatus(), nil
	case status == engine.TaskError:
		return map[string]interface{}{
			"status": status.String(),
			"error":  err.Error(),
		}, nil
	case status == engine.TaskInProgress:
		return map[string]interface{}{"status": status.String()}, nil
	}

	session, err := s.engine.Materialize(s.buf, s.overlay)
	if err != nil {
		return map[string]interface{}{
			"status": engine.TaskError.String(),
			"error":  err.Error(),
		}, nil
	}
	logger.Info("proposal applied: %d groups", len(session.Groups()))
	return s.sessionStatus(), nil
}

func (s *service) sessionStatus() map[string]interface{} {
	result := map[string]interface{}{"status": engine.TaskDone.String()}
	session := s.engine.Session()
	if session == nil {
		return result
	}

	spans := make([][2]int, 0, len(session.Groups()))
	for _, g := range session.Groups() {
		spans = append(spans, [2]int{g.StartLine, g.EndLine})
	}
	result["groups"] = spans
	result["pending"] = session.Pending()
	return result
}

// session returns the current review session or an RPC-friendly error
func (s *service) session() (*engine.Session, error) {
	session := s.engine.Session()
	if session == nil {
		return nil, fmt.Errorf("no edit under review")
	}
	return session, nil
}

func (s *service) acceptChange(index int) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.Accept(index)
}

func (s *service) rejectChange(index int) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.Reject(index)
}

func (s *service) acceptChangeLine(line int) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.AcceptAt(line)
}

func (s *service) rejectChangeLine(line int) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.RejectAt(line)
}

func (s *service) acceptAll() error {
	session, err := s.session()
	if err != nil {
		return err
	}
	session.AcceptAll()
	return nil
}

func (s *service) rejectAll() error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.RejectAll()
}
