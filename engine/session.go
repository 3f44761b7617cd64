package engine

import (
	"fmt"

	"ollamaedit/logger"
	"ollamaedit/text"
)

// Session is one applied proposal under review. It owns the group registry
// and exposes resolution by group index, by buffer line, and in bulk.
//
// A session, like the registry under it, must only be used from the thread
// that owns the buffer.
type Session struct {
	registry *text.Registry
}

// Begin segments the script, applies it to buf at startLine and returns a
// session for resolving the resulting groups. A nil overlay applies the
// proposal without rendering; the session then tracks groups invisibly,
// which the direct (non-review) mode uses to auto-accept.
//
// A mismatch during apply aborts: the overlay is cleared and the error is
// returned. Per the apply contract the buffer may be left partially
// modified, and the caller must discard the proposal.
func Begin(script []text.Record, buf text.Buffer, startLine int, overlay text.OverlaySink) (*Session, error) {
	groups := text.Segment(script, startLine)
	logger.Info("session: %d records, %d groups at line %d", len(script), len(groups), startLine)

	if err := text.Apply(script, buf, startLine, overlay); err != nil {
		if overlay != nil {
			overlay.ClearAll()
		}
		return nil, fmt.Errorf("apply proposal: %w", err)
	}
	return &Session{registry: text.NewRegistry(groups, buf, overlay)}, nil
}

// Groups returns the session's change groups in index order. Spans reflect
// shifts from earlier rejections.
func (s *Session) Groups() []*text.Group { return s.registry.Groups() }

// Pending returns how many groups are still unresolved
func (s *Session) Pending() int { return s.registry.PendingCount() }

// Done reports whether every group has been resolved
func (s *Session) Done() bool { return s.registry.PendingCount() == 0 }

// Accept resolves group index as accepted
func (s *Session) Accept(index int) error { return s.registry.Accept(index) }

// Reject resolves group index as rejected, restoring its original lines
func (s *Session) Reject(index int) error { return s.registry.Reject(index) }

// AcceptAt accepts the group starting at the given buffer line
func (s *Session) AcceptAt(line int) error {
	index, _, ok := s.registry.FindByLine(line)
	if !ok {
		return &text.GroupNotFoundError{Index: -1, Line: line}
	}
	return s.registry.Accept(index)
}

// RejectAt rejects the group starting at the given buffer line
func (s *Session) RejectAt(line int) error {
	index, _, ok := s.registry.FindByLine(line)
	if !ok {
		return &text.GroupNotFoundError{Index: -1, Line: line}
	}
	return s.registry.Reject(index)
}

// AcceptAll accepts every pending group
func (s *Session) AcceptAll() { s.registry.AcceptAll() }

// RejectAll rejects every pending group, restoring the original content
func (s *Session) RejectAll() error { return s.registry.RejectAll() }
