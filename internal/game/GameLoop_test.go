package game

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type poll struct {
	after time.Duration
	event KeyEvent
	err   error
}

// scriptedTerminal plays back polls against a fake clock. Without a
// scripted poll it waits out the whole timeout, and once quitAfterFrames
// frames have been drawn it presses the quit key.
type scriptedTerminal struct {
	clock           *fakeClock
	columns, rows   int
	measureErr      error
	configureErr    error
	renderErr       error
	polls           []poll
	quitAfterFrames int

	configured TerminalSettings
	restored   int
	frames     []Frame
	timeouts   []time.Duration
}

func newScriptedTerminal() *scriptedTerminal {
	return &scriptedTerminal{clock: &fakeClock{now: time.Unix(0, 0)}, columns: 80, rows: 24}
}

func (st *scriptedTerminal) Measure() (int, int, error) {
	return st.columns, st.rows, st.measureErr
}

func (st *scriptedTerminal) Configure(settings TerminalSettings) error {
	st.configured = settings
	return st.configureErr
}

func (st *scriptedTerminal) Restore() error {
	st.restored++
	return nil
}

func (st *scriptedTerminal) Render(frame Frame) error {
	if st.renderErr != nil {
		return st.renderErr
	}
	st.frames = append(st.frames, frame)
	return nil
}

func (st *scriptedTerminal) PollInput(timeout time.Duration) (KeyEvent, bool, error) {
	st.timeouts = append(st.timeouts, timeout)

	if len(st.polls) > 0 {
		next := st.polls[0]
		st.polls = st.polls[1:]
		st.clock.now = st.clock.now.Add(min(next.after, timeout))
		if next.err != nil {
			return KeyEvent{}, false, next.err
		}
		return next.event, true, nil
	}

	if st.quitAfterFrames > 0 && len(st.frames) >= st.quitAfterFrames {
		return KeyEvent{Code: KeyQuit}, true, nil
	}

	st.clock.now = st.clock.now.Add(timeout)
	return KeyEvent{}, false, nil
}

func testSettings(width, height int) Settings {
	settings := DefaultSettings()
	settings.BoardWidth = width
	settings.BoardHeight = height
	return settings
}

func newTestSession(st *scriptedTerminal, settings Settings, rng Random, opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithClock(st.clock.Now), WithLogger(log.New(io.Discard))}, opts...)
	return NewSession(st, settings, rng, opts...)
}

func TestSessionThreeQuietTicks(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 4
	// heading Right, food in the corner
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	result, err := session.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, st.frames, 4)
	start := Point{X: 5, Y: 5}
	assert.Equal(t, start, st.frames[0].Body[0])
	assert.Equal(t, start.Translate(Right, 1).Translate(Right, 1).Translate(Right, 1), st.frames[3].Body[0])
	assert.Equal(t, ReasonQuit, result.Reason)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 3, result.Length)
	assert.Equal(t, 1, st.restored)
	assert.Equal(t, "Game Over! Your score is 0", result.String())
}

func TestSessionConfiguresTerminal(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 1
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	_, err := session.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, TerminalSettings{RawMode: true, Columns: 12, Rows: 13, Clear: true, HideCursor: true}, st.configured)
}

func TestSessionEatsFoodAhead(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 2
	// heading Right, first food at (6,5) right in front, next food at (0,0)
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 6, 5, 0, 0}})

	result, err := session.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, st.frames, 2)
	after := st.frames[1]
	assert.Equal(t, 1, after.Score)
	assert.Len(t, after.Body, 4)
	require.True(t, after.HasFood)
	assert.NotContains(t, after.Body, after.Food)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 4, result.Length)
}

func TestSessionTurnsOnKey(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 2
	st.polls = []poll{
		{after: 100 * time.Millisecond, event: KeyEvent{Code: KeyLeft}},
		{after: 100 * time.Millisecond, event: KeyEvent{Code: KeyUp}},
		{after: 100 * time.Millisecond, event: KeyEvent{Code: KeyOther, Rune: 'x'}},
	}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	_, err := session.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, st.frames, 2)
	assert.Equal(t, Up, st.frames[1].Heading)
	assert.Equal(t, Point{X: 5, Y: 4}, st.frames[1].Body[0])
}

func TestSessionPollsWithShrinkingBudget(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 2
	st.polls = []poll{
		{after: 300 * time.Millisecond, event: KeyEvent{Code: KeyOther, Rune: 'z'}},
	}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	_, err := session.Run(context.Background())

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(st.timeouts), 2)
	assert.Equal(t, MaxInterval, st.timeouts[0])
	assert.Equal(t, MaxInterval-300*time.Millisecond, st.timeouts[1])
}

func TestSessionQuitsOnCtrlC(t *testing.T) {
	st := newScriptedTerminal()
	st.polls = []poll{{event: KeyEvent{Code: KeyOther, Rune: 'c', Mods: ModCtrl}}}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	result, err := session.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ReasonQuit, result.Reason)
	assert.Len(t, st.frames, 1)
}

func TestSessionEndsAtWall(t *testing.T) {
	st := newScriptedTerminal()
	// heading Right from (5,5) on a 10 wide board: four moves reach x=9
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	result, err := session.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ReasonWall, result.Reason)
	assert.Len(t, st.frames, 5)
	assert.Equal(t, Point{X: 9, Y: 5}, st.frames[4].Body[0])
	assert.Equal(t, 1, st.restored)
}

func TestSessionToleratesTransientInputErrors(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 2
	flaky := errors.New("flaky read")
	st.polls = []poll{
		{after: 10 * time.Millisecond, err: flaky},
		{after: 10 * time.Millisecond, err: flaky},
		{after: 10 * time.Millisecond, event: KeyEvent{Code: KeyOther, Rune: 'x'}},
		{after: 10 * time.Millisecond, err: flaky},
	}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	result, err := session.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ReasonQuit, result.Reason)
}

func TestSessionAbortsOnRepeatedInputErrors(t *testing.T) {
	st := newScriptedTerminal()
	broken := errors.New("device gone")
	st.polls = []poll{{err: broken}, {err: broken}, {err: broken}}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	result, err := session.Run(context.Background())

	require.ErrorIs(t, err, broken)
	assert.Equal(t, ReasonAborted, result.Reason)
	assert.Equal(t, 1, st.restored)
}

func TestSessionAbortsWhenInputCloses(t *testing.T) {
	st := newScriptedTerminal()
	st.polls = []poll{{err: ErrInputClosed}}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	_, err := session.Run(context.Background())

	require.ErrorIs(t, err, ErrInputClosed)
	assert.Equal(t, 1, st.restored)
}

func TestSessionRejectsTinyTerminal(t *testing.T) {
	st := newScriptedTerminal()
	st.columns, st.rows = 6, 4
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{})

	_, err := session.Run(context.Background())

	require.ErrorIs(t, err, ErrTerminalTooSmall)
	assert.Equal(t, TerminalSettings{}, st.configured)
	assert.Equal(t, 0, st.restored)
}

func TestSessionRestoresAfterConfigureFailure(t *testing.T) {
	st := newScriptedTerminal()
	st.configureErr = errors.New("no tty")
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{})

	_, err := session.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, st.restored)
	assert.Empty(t, st.frames)
}

func TestSessionAbortsWhenFirstRenderFails(t *testing.T) {
	st := newScriptedTerminal()
	st.renderErr = errors.New("broken pipe")
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})

	result, err := session.Run(context.Background())

	require.ErrorIs(t, err, st.renderErr)
	assert.Equal(t, ReasonAborted, result.Reason)
	assert.Equal(t, 3, result.Length)
	assert.Equal(t, 1, st.restored)
	assert.Empty(t, st.timeouts)
}

func TestSessionStopsOnCancelledContext(t *testing.T) {
	st := newScriptedTerminal()
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := session.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, ReasonAborted, result.Reason)
	assert.Len(t, st.frames, 1)
}

type recordingRenderer struct {
	frames []Frame
}

func (r *recordingRenderer) Render(frame Frame) error {
	r.frames = append(r.frames, frame)
	return nil
}

func TestSessionFeedsObservers(t *testing.T) {
	st := newScriptedTerminal()
	st.quitAfterFrames = 3
	observer := &recordingRenderer{}
	session := newTestSession(st, testSettings(10, 10), &sequenceRandom{values: []int{1, 0, 0}}, WithObservers(observer))

	_, err := session.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, st.frames, observer.frames)
}

func TestFitBoard(t *testing.T) {
	width, height, err := FitBoard(40, 20, 80, 24)
	require.NoError(t, err)
	assert.Equal(t, 40, width)
	assert.Equal(t, 20, height)

	width, height, err = FitBoard(40, 20, 30, 15)
	require.NoError(t, err)
	assert.Equal(t, 28, width)
	assert.Equal(t, 12, height)

	_, _, err = FitBoard(40, 20, 9, 24)
	assert.ErrorIs(t, err, ErrTerminalTooSmall)
}

func TestIsQuit(t *testing.T) {
	assert.True(t, IsQuit(KeyEvent{Code: KeyQuit}))
	assert.True(t, IsQuit(KeyEvent{Code: KeyOther, Rune: 'C', Mods: ModCtrl}))
	assert.False(t, IsQuit(KeyEvent{Code: KeyOther, Rune: 'c'}))
	assert.False(t, IsQuit(KeyEvent{Code: KeyUp, Mods: ModCtrl}))
}
