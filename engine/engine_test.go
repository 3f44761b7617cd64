package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ollamaedit/provider"
	"ollamaedit/text"
	"ollamaedit/types"
)

// countingSink records overlay activity without rendering anything
type countingSink struct {
	marks   int
	cleared []int
	allTime int
}

func (s *countingSink) MarkAdded(group, line int)   { s.marks++ }
func (s *countingSink) MarkChanged(group, line int) { s.marks++ }
func (s *countingSink) MarkDeletedContext(group, line int, content string, pos text.TextPosition) {
	s.marks++
}
func (s *countingSink) Clear(group int) { s.cleared = append(s.cleared, group) }
func (s *countingSink) ClearAll()       { s.allTime++ }

type failingProvider struct{ err error }

func (f *failingProvider) Name() string { return "failing" }
func (f *failingProvider) Propose(ctx context.Context, req *provider.Request) ([]string, error) {
	return nil, f.err
}

// blockingProvider holds Propose until released
type blockingProvider struct{ release chan struct{} }

func (b *blockingProvider) Name() string { return "blocking" }
func (b *blockingProvider) Propose(ctx context.Context, req *provider.Request) ([]string, error) {
	<-b.release
	return []string{"done"}, nil
}

func staticEngine(response string) *Engine {
	cfg := &types.ProviderConfig{SimulatedResponse: response}
	p, _ := provider.New(cfg)
	return New(p, cfg)
}

func waitDone(t *testing.T, e *Engine) {
	t.Helper()
	require.Eventually(t, func() bool {
		status, err := e.Poll()
		return err == nil && status == TaskDone
	}, time.Second, time.Millisecond)
}

func TestEditLifecycleInlineDiff(t *testing.T) {
	e := staticEngine("one\ntwo")
	lines := []string{"zero", "old", "three"}

	req := &types.EditRequest{FirstLine: 2, LastLine: 2, InlineDiff: true}
	require.NoError(t, e.StartEdit(context.Background(), req, lines))
	waitDone(t, e)

	buf := text.NewLineBuffer(lines)
	sink := &countingSink{}
	session, err := e.Materialize(buf, sink)
	require.NoError(t, err)
	require.Same(t, session, e.Session())

	assert.Equal(t, []string{"zero", "one", "two", "three"}, buf.Lines())
	require.Len(t, session.Groups(), 1)
	assert.Greater(t, sink.marks, 0)
	assert.False(t, session.Done())

	require.NoError(t, session.RejectAll())
	assert.Equal(t, []string{"zero", "old", "three"}, buf.Lines())
	assert.True(t, session.Done())
}

func TestEditLifecycleDirect(t *testing.T) {
	e := staticEngine("one\ntwo")
	lines := []string{"zero", "old", "three"}

	req := &types.EditRequest{FirstLine: 2, LastLine: 2}
	require.NoError(t, e.StartEdit(context.Background(), req, lines))
	waitDone(t, e)

	buf := text.NewLineBuffer(lines)
	sink := &countingSink{}
	session, err := e.Materialize(buf, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"zero", "one", "two", "three"}, buf.Lines())
	assert.Zero(t, sink.marks, "direct mode must not render an overlay")
	assert.True(t, session.Done(), "direct mode auto-accepts")
}

func TestStartEditWhileInProgress(t *testing.T) {
	p := &blockingProvider{release: make(chan struct{})}
	defer close(p.release)
	e := New(p, &types.ProviderConfig{})
	lines := []string{"a"}
	req := &types.EditRequest{FirstLine: 1, LastLine: 1}

	require.NoError(t, e.StartEdit(context.Background(), req, lines))
	assert.ErrorIs(t, e.StartEdit(context.Background(), req, lines), ErrBusy)

	status, err := e.Poll()
	require.NoError(t, err)
	assert.Equal(t, TaskInProgress, status)
}

func TestFailedTaskIsConsumedOnPoll(t *testing.T) {
	boom := fmt.Errorf("connection refused")
	e := New(&failingProvider{err: boom}, &types.ProviderConfig{})
	req := &types.EditRequest{FirstLine: 1, LastLine: 1}
	require.NoError(t, e.StartEdit(context.Background(), req, []string{"a"}))

	var status TaskStatus
	var err error
	require.Eventually(t, func() bool {
		status, err = e.Poll()
		return status != TaskInProgress
	}, time.Second, time.Millisecond)

	assert.Equal(t, TaskError, status)
	assert.ErrorIs(t, err, boom)

	// the slot is free again
	_, err = e.Poll()
	assert.ErrorIs(t, err, ErrNoTask)
	require.NoError(t, e.StartEdit(context.Background(), req, []string{"a"}))
}

func TestPollIdleEngine(t *testing.T) {
	e := staticEngine("x")

	status, err := e.Poll()
	assert.ErrorIs(t, err, ErrNoTask)
	assert.Equal(t, TaskDone, status)

	// idle is not "done awaiting materialize"
	_, err = e.Materialize(text.NewLineBuffer(nil), nil)
	assert.ErrorIs(t, err, ErrNoTask)
}

func TestStartEditInvalidRange(t *testing.T) {
	e := staticEngine("x")
	lines := []string{"a", "b"}

	for _, req := range []*types.EditRequest{
		{FirstLine: 0, LastLine: 1},
		{FirstLine: 2, LastLine: 1},
		{FirstLine: 1, LastLine: 3},
	} {
		err := e.StartEdit(context.Background(), req, lines)
		assert.Error(t, err, "range [%d, %d]", req.FirstLine, req.LastLine)
	}
}

func TestMaterializeRequiresDoneTask(t *testing.T) {
	e := staticEngine("x")
	_, err := e.Materialize(text.NewLineBuffer(nil), nil)
	assert.ErrorIs(t, err, ErrNoTask)

	p := &blockingProvider{release: make(chan struct{})}
	defer close(p.release)
	e = New(p, &types.ProviderConfig{})
	require.NoError(t, e.StartEdit(context.Background(), &types.EditRequest{FirstLine: 1, LastLine: 1}, []string{"a"}))

	_, err = e.Materialize(text.NewLineBuffer([]string{"a"}), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InProgress")
}

func TestEditSendsContextWindow(t *testing.T) {
	var got *provider.Request
	p := capturingProvider{req: &got}
	cfg := &types.ProviderConfig{}
	e := New(p, cfg)

	lines := []string{"p1", "p2", "code", "q1", "q2", "q3"}
	req := &types.EditRequest{
		Instruction:  "rename",
		FirstLine:    3,
		LastLine:     3,
		FileType:     "go",
		ContextLines: 2,
	}
	require.NoError(t, e.StartEdit(context.Background(), req, lines))
	waitDone(t, e)

	require.NotNil(t, got)
	assert.Equal(t, "p1\np2", got.Preamble)
	assert.Equal(t, "code", got.Code)
	assert.Equal(t, "q1\nq2", got.Postamble)
	assert.Equal(t, "rename", got.Instruction)
	assert.Equal(t, "go", got.FileType)
}

// capturingProvider records the request and echoes the code back
type capturingProvider struct{ req **provider.Request }

func (c capturingProvider) Name() string { return "capturing" }
func (c capturingProvider) Propose(ctx context.Context, req *provider.Request) ([]string, error) {
	*c.req = req
	return []string{req.Code}, nil
}
