package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ollamaedit/logger"
	"ollamaedit/provider"
	"ollamaedit/text"
	"ollamaedit/types"
	"ollamaedit/utils"
)

// ErrNoTask is returned when the engine is polled with no edit in flight
var ErrNoTask = errors.New("no edit in flight")

// ErrBusy is returned when an edit is started while another is in flight
var ErrBusy = errors.New("an edit is already in progress")

// Engine runs edit proposals for one buffer. Proposal generation happens on
// a background goroutine because it blocks on the provider; the result comes
// back through a single-slot task cell that the owner polls. Everything
// else, applying the proposal and resolving groups, is synchronous and must
// run on the thread that owns the buffer. At most one task is in flight.
type Engine struct {
	provider provider.Provider
	config   *types.ProviderConfig

	task    *Task
	session *Session
}

// New creates an engine over the given provider
func New(p provider.Provider, config *types.ProviderConfig) *Engine {
	return &Engine{provider: p, config: config}
}

// StartEdit launches proposal generation for req against a snapshot of the
// buffer's lines. It returns immediately; the caller polls with Poll and
// materializes the session with Materialize once the task is Done.
// Starting a new edit discards any previous session still under review.
func (e *Engine) StartEdit(ctx context.Context, req *types.EditRequest, lines []string) error {
	if e.task != nil && e.task.Status() == TaskInProgress {
		return ErrBusy
	}

	if req.FirstLine < 1 || req.LastLine < req.FirstLine || req.LastLine > len(lines) {
		return fmt.Errorf("edit range [%d, %d] invalid for %d lines", req.FirstLine, req.LastLine, len(lines))
	}

	contextLines := req.ContextLines
	if contextLines <= 0 {
		contextLines = types.DefaultContextLines
	}
	preStart, postEnd := utils.ContextRange(req.FirstLine, req.LastLine, contextLines, len(lines))

	old := make([]string, req.LastLine-req.FirstLine+1)
	copy(old, lines[req.FirstLine-1:req.LastLine])
	pre, post := utils.TrimContextWindow(lines[preStart:req.FirstLine-1], old, lines[req.LastLine:postEnd], e.config.MaxTokens)

	preq := &provider.Request{
		Instruction: req.Instruction,
		Preamble:    strings.Join(pre, "\n"),
		Code:        strings.Join(old, "\n"),
		Postamble:   strings.Join(post, "\n"),
		FileType:    req.FileType,
	}

	task := newTask(req.FirstLine, req.InlineDiff)
	e.task = task
	e.session = nil

	logger.Info("edit started: lines %d-%d, %d+%d context, provider %s",
		req.FirstLine, req.LastLine, len(pre), len(post), e.provider.Name())

	go func() {
		defer logger.Trace("engine.propose")()
		proposed, err := e.provider.Propose(ctx, preq)
		if err != nil {
			logger.Error("proposal failed: %v", err)
			task.fail(err)
			return
		}
		task.complete(text.Compute(old, proposed))
	}()
	return nil
}

// Poll reports the in-flight task's status. A failed task is consumed: its
// error is returned once alongside TaskError and the slot is freed.
//
// Check the error before the status. With nothing in flight Poll returns
// ErrNoTask, and the TaskDone it carries describes the engine being idle,
// not a task awaiting Materialize.
func (e *Engine) Poll() (TaskStatus, error) {
	if e.task == nil {
		return TaskDone, ErrNoTask
	}
	status := e.task.Status()
	if status == TaskError {
		_, err := e.task.Result()
		e.task = nil
		return TaskError, err
	}
	return status, nil
}

// Materialize consumes a Done task: the proposal's edit script is applied
// to buf and the resulting session becomes the engine's current one. When
// the edit was requested without inline diff the proposal is applied
// directly, with no overlay, and every group is auto-accepted.
func (e *Engine) Materialize(buf text.Buffer, overlay text.OverlaySink) (*Session, error) {
	if e.task == nil {
		return nil, ErrNoTask
	}
	if status := e.task.Status(); status != TaskDone {
		return nil, fmt.Errorf("task is %s, not Done", status)
	}

	task := e.task
	e.task = nil
	script, _ := task.Result()

	if !task.inlineDiff {
		overlay = nil
	}
	session, err := Begin(script, buf, task.startLine, overlay)
	if err != nil {
		return nil, err
	}
	if !task.inlineDiff {
		session.AcceptAll()
	}
	e.session = session
	return session, nil
}

// Session returns the session currently under review, or nil
func (e *Engine) Session() *Session { return e.session }
