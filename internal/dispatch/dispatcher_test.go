package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-platform/procurement-service/internal/domain"
)

// fakeListener records invocations into a shared call log
type fakeListener struct {
	name     string
	priority int
	stop     bool
	handles  func(event *domain.Event) bool
	err      error
	calls    *[]string
}

func (l *fakeListener) Name() string     { return l.name }
func (l *fakeListener) Priority() int    { return l.priority }
func (l *fakeListener) StopPropagation() bool { return l.stop }

func (l *fakeListener) ShouldHandle(event *domain.Event) bool {
	if l.handles == nil {
		return true
	}
	return l.handles(event)
}

func (l *fakeListener) Handle(ctx context.Context, event *domain.Event) error {
	if l.calls != nil {
		*l.calls = append(*l.calls, l.name)
	}
	return l.err
}

// recordingQueue counts Enqueue calls
type recordingQueue struct {
	events []*domain.Event
	err    error
}

func (q *recordingQueue) Enqueue(ctx context.Context, event *domain.Event) error {
	q.events = append(q.events, event)
	return q.err
}

func syncEvent(name string) *domain.Event {
	return domain.NewEvent(name, map[string]any{"orderId": "ORD-001"}, map[string]any{}, false, 0)
}

func asyncEvent(name string) *domain.Event {
	return domain.NewEvent(name, map[string]any{"orderId": "ORD-001"}, map[string]any{}, true, 10)
}

func TestDispatchPriorityOrder(t *testing.T) {
	var calls []string
	d := New(nil, nil, nil, nil)

	d.Listen("order.created", &fakeListener{name: "low", priority: 1, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "high", priority: 100, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "mid", priority: 50, calls: &calls})

	result, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 3, result.Invoked)
	assert.Equal(t, []string{"high", "mid", "low"}, calls)
}

func TestDispatchStableOrderOnEqualPriority(t *testing.T) {
	var calls []string
	d := New(nil, nil, nil, nil)

	for i := 0; i < 5; i++ {
		d.Listen("order.created", &fakeListener{
			name:     fmt.Sprintf("listener-%d", i),
			priority: 10,
			calls:    &calls,
		})
	}

	_, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	// Registration order must survive the priority sort
	expected := []string{"listener-0", "listener-1", "listener-2", "listener-3", "listener-4"}
	assert.Equal(t, expected, calls)
}

func TestDispatchStopPropagation(t *testing.T) {
	var calls []string
	d := New(nil, nil, nil, nil)

	d.Listen("order.created", &fakeListener{name: "first", priority: 100, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "stopper", priority: 50, stop: true, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "never", priority: 1, calls: &calls})

	result, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeStopped, result.Outcome)
	assert.Equal(t, "stopper", result.StoppedBy)
	assert.Equal(t, 2, result.Invoked)
	assert.Equal(t, []string{"first", "stopper"}, calls)
}

func TestDispatchListenerFailureFailsFast(t *testing.T) {
	var calls []string
	boom := errors.New("smtp unavailable")
	d := New(nil, nil, nil, nil)

	d.Listen("order.created", &fakeListener{name: "ok", priority: 100, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "broken", priority: 50, err: boom, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "skipped", priority: 1, calls: &calls})

	result, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.Error(t, err)

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, "broken", dispatchErr.Listener)
	assert.Equal(t, "order.created", dispatchErr.EventName)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Equal(t, "broken", result.FailedListener)
	assert.Equal(t, []string{"ok", "broken"}, calls)
}

func TestDispatchShouldHandleFilter(t *testing.T) {
	var calls []string
	d := New(nil, nil, nil, nil)

	d.Listen("order.created", &fakeListener{name: "picky", priority: 10, calls: &calls,
		handles: func(event *domain.Event) bool { return false }})
	d.Listen("order.created", &fakeListener{name: "open", priority: 5, calls: &calls})

	result, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Invoked)
	assert.Equal(t, []string{"open"}, calls)
}

func TestDispatchWildcardListeners(t *testing.T) {
	var calls []string
	d := New(nil, nil, nil, nil)

	d.Listen(Wildcard, &fakeListener{name: "audit", priority: 100, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "specific", priority: 50, calls: &calls})

	_, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, []string{"audit", "specific"}, calls)

	calls = calls[:0]
	_, err = d.Dispatch(context.Background(), syncEvent("inquiry.created"))
	require.NoError(t, err)
	assert.Equal(t, []string{"audit"}, calls)
}

func TestDispatchWildcardNotInvokedTwice(t *testing.T) {
	var calls []string
	shared := &fakeListener{name: "both", priority: 10, calls: &calls}

	d := New(nil, nil, nil, nil)
	d.Listen("order.created", shared)
	d.Listen(Wildcard, shared)

	result, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Invoked)
	assert.Equal(t, []string{"both"}, calls)
}

func TestDispatchAsyncEnqueuesExactlyOnce(t *testing.T) {
	var calls []string
	queue := &recordingQueue{}
	d := New(queue, nil, nil, nil)

	d.Listen("order.created", &fakeListener{name: "sync-only", priority: 10, calls: &calls})

	event := asyncEvent("order.created")
	result, err := d.Dispatch(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, OutcomeQueued, result.Outcome)
	require.Len(t, queue.events, 1)
	assert.Equal(t, event.ID(), queue.events[0].ID())

	// No listener runs inline for an async event
	assert.Empty(t, calls)
	assert.Equal(t, 0, result.Invoked)
}

func TestDispatchAsyncEnqueueFailure(t *testing.T) {
	queue := &recordingQueue{err: errors.New("broker unreachable")}
	d := New(queue, nil, nil, nil)

	result, err := d.Dispatch(context.Background(), asyncEvent("order.created"))
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Len(t, queue.events, 1)
}

func TestDispatchNoListeners(t *testing.T) {
	d := New(nil, nil, nil, nil)

	result, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 0, result.Invoked)
}

func TestHistoryBoundedFIFO(t *testing.T) {
	d := New(nil, nil, nil, &Config{MaxHistory: 3})

	for i := 0; i < 5; i++ {
		_, err := d.Dispatch(context.Background(), syncEvent(fmt.Sprintf("event-%d", i)))
		require.NoError(t, err)
	}

	history := d.History()
	require.Len(t, history, 3)
	assert.Equal(t, "event-2", history[0].Name)
	assert.Equal(t, "event-3", history[1].Name)
	assert.Equal(t, "event-4", history[2].Name)
}

func TestHistoryRecordsFailedDispatches(t *testing.T) {
	d := New(nil, nil, nil, nil)
	d.Listen("order.created", &fakeListener{name: "broken", priority: 1, err: errors.New("boom")})

	_, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.Error(t, err)

	// The event enters history before delivery is attempted
	require.Len(t, d.History(), 1)
}

func TestHistoryIsACopy(t *testing.T) {
	d := New(nil, nil, nil, nil)
	_, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	history := d.History()
	history[0].Name = "mutated"

	assert.Equal(t, "order.created", d.History()[0].Name)
}

func TestClearHistory(t *testing.T) {
	d := New(nil, nil, nil, nil)
	_, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)

	d.ClearHistory()
	assert.Empty(t, d.History())
}

func TestRemoveListener(t *testing.T) {
	var calls []string
	d := New(nil, nil, nil, nil)

	d.Listen("order.created", &fakeListener{name: "keep", priority: 10, calls: &calls})
	d.Listen("order.created", &fakeListener{name: "drop", priority: 5, calls: &calls})

	d.RemoveListener("order.created", "drop")

	_, err := d.Dispatch(context.Background(), syncEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, calls)

	d.RemoveListener("order.created", "keep")
	assert.False(t, d.HasListeners("order.created"))
}

func TestClearListeners(t *testing.T) {
	d := New(nil, nil, nil, nil)
	d.Listen("order.created", &fakeListener{name: "a", priority: 1})
	d.Listen(Wildcard, &fakeListener{name: "b", priority: 1})

	d.ClearListeners()

	assert.False(t, d.HasListeners("order.created"))
	assert.False(t, d.HasListeners(Wildcard))
}

func TestDefaultMaxHistoryApplied(t *testing.T) {
	d := New(nil, nil, nil, &Config{MaxHistory: 0})

	for i := 0; i < DefaultMaxHistory+10; i++ {
		_, err := d.Dispatch(context.Background(), syncEvent("event"))
		require.NoError(t, err)
	}

	assert.Len(t, d.History(), DefaultMaxHistory)
}
