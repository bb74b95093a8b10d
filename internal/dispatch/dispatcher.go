package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
	"github.com/b2b-platform/procurement-service/pkg/metrics"
)

// Wildcard registers a listener for every event name
const Wildcard = "*"

// DefaultMaxHistory bounds the dispatch history when no limit is configured
const DefaultMaxHistory = 100

// Outcome describes how a dispatch ended
type Outcome string

const (
	// OutcomeCompleted means every applicable listener ran
	OutcomeCompleted Outcome = "completed"
	// OutcomeQueued means the event was async and handed to the queue
	OutcomeQueued Outcome = "queued"
	// OutcomeStopped means a listener halted propagation
	OutcomeStopped Outcome = "stopped"
	// OutcomeFailed means a listener returned an error
	OutcomeFailed Outcome = "failed"
)

// Result reports the outcome of a single dispatch as data rather than
// control flow.
type Result struct {
	Outcome        Outcome
	EventID        string
	EventName      string
	Invoked        int
	StoppedBy      string
	FailedListener string
}

// DispatchError wraps a synchronous listener failure and identifies the
// offending listener. The dispatcher logs it and re-raises; it never
// retries.
type DispatchError struct {
	Listener  string
	EventName string
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("listener %s failed handling %s: %v", e.Listener, e.EventName, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// HistoryEntry is a summary of a dispatched event kept for introspection
type HistoryEntry struct {
	EventID   string         `json:"eventId"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata"`
	Async     bool           `json:"async"`
	Priority  int            `json:"priority"`
}

// Config holds dispatcher configuration
type Config struct {
	MaxHistory int
}

// DefaultConfig returns default dispatcher configuration
func DefaultConfig() *Config {
	return &Config{MaxHistory: DefaultMaxHistory}
}

// Dispatcher routes domain events to registered listeners (sync) or the
// queue collaborator (async) and keeps a bounded FIFO history of dispatched
// events. Instances own all their state; construct one per test when
// isolation matters. Listener registration is expected to finish before the
// first dispatch; the dispatcher is not safe for concurrent mutation.
type Dispatcher struct {
	listeners  map[string][]Listener
	history    []HistoryEntry
	maxHistory int
	queue      Queue
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// New creates a Dispatcher
func New(queue Queue, logger *logging.Logger, m *metrics.Metrics, config *Config) *Dispatcher {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxHistory <= 0 {
		config.MaxHistory = DefaultMaxHistory
	}
	if queue == nil {
		queue = NopQueue{}
	}
	return &Dispatcher{
		listeners:  make(map[string][]Listener),
		history:    make([]HistoryEntry, 0, config.MaxHistory),
		maxHistory: config.MaxHistory,
		queue:      queue,
		logger:     logger,
		metrics:    m,
	}
}

// Listen registers a listener for an event name. Use Wildcard to register a
// global listener. The per-name list stays sorted by priority, descending,
// preserving registration order on ties.
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.listeners[eventName] = append(d.listeners[eventName], listener)
	sort.SliceStable(d.listeners[eventName], func(i, j int) bool {
		return d.listeners[eventName][i].Priority() > d.listeners[eventName][j].Priority()
	})

	if d.logger != nil {
		d.logger.ListenerRegistered(eventName, listener.Name(), listener.Priority())
	}
}

// Dispatch records the event in the bounded history and delivers it. Async
// events are handed to the queue with exactly one Enqueue call and no
// inline listener invocation. Sync events run the applicable listeners in
// priority order until completion, a propagation stop, or the first
// failure. A listener failure is logged and returned wrapped in
// DispatchError; side effects of earlier listeners are the caller's concern.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.Event) (Result, error) {
	if d.logger != nil {
		d.logger.DispatchStarted(ctx, event.ID(), event.Name(), event.Async(), event.Priority())
	}

	d.appendHistory(event)

	result := Result{EventID: event.ID(), EventName: event.Name()}

	if event.Async() {
		if err := d.queue.Enqueue(ctx, event); err != nil {
			result.Outcome = OutcomeFailed
			d.recordOutcome(event.Name(), OutcomeFailed)
			return result, fmt.Errorf("enqueueing event %s: %w", event.ID(), err)
		}
		result.Outcome = OutcomeQueued
		d.recordOutcome(event.Name(), OutcomeQueued)
		return result, nil
	}

	for _, listener := range d.applicableListeners(event) {
		if d.metrics != nil {
			d.metrics.ListenerInvocations.WithLabelValues(listener.Name(), event.Name()).Inc()
		}

		if err := listener.Handle(ctx, event); err != nil {
			if d.logger != nil {
				d.logger.ListenerFailed(ctx, event.ID(), event.Name(), listener.Name(), err)
			}
			if d.metrics != nil {
				d.metrics.ListenerFailures.WithLabelValues(listener.Name(), event.Name()).Inc()
			}
			result.Outcome = OutcomeFailed
			result.FailedListener = listener.Name()
			d.recordOutcome(event.Name(), OutcomeFailed)
			return result, &DispatchError{Listener: listener.Name(), EventName: event.Name(), Err: err}
		}

		result.Invoked++

		if listener.StopPropagation() {
			if d.logger != nil {
				d.logger.PropagationStopped(ctx, event.ID(), event.Name(), listener.Name())
			}
			result.Outcome = OutcomeStopped
			result.StoppedBy = listener.Name()
			d.recordOutcome(event.Name(), OutcomeStopped)
			return result, nil
		}
	}

	result.Outcome = OutcomeCompleted
	d.recordOutcome(event.Name(), OutcomeCompleted)
	return result, nil
}

// applicableListeners builds the effective set for a sync dispatch: exact
// name registrations plus wildcard registrations that pass ShouldHandle,
// stable-sorted by priority descending.
func (d *Dispatcher) applicableListeners(event *domain.Event) []Listener {
	exact := d.listeners[event.Name()]
	global := d.listeners[Wildcard]

	applicable := make([]Listener, 0, len(exact)+len(global))
	for _, listener := range exact {
		if listener.ShouldHandle(event) {
			applicable = append(applicable, listener)
		}
	}
	for _, listener := range global {
		if containsListener(applicable, listener) {
			continue
		}
		if listener.ShouldHandle(event) {
			applicable = append(applicable, listener)
		}
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority() > applicable[j].Priority()
	})

	return applicable
}

// HasListeners reports whether any listener is registered for an event name
func (d *Dispatcher) HasListeners(eventName string) bool {
	return len(d.listeners[eventName]) > 0
}

// RemoveListener removes a listener (by name) from an event registration
func (d *Dispatcher) RemoveListener(eventName, listenerName string) {
	registered := d.listeners[eventName]
	kept := registered[:0]
	for _, listener := range registered {
		if listener.Name() != listenerName {
			kept = append(kept, listener)
		}
	}
	if len(kept) == 0 {
		delete(d.listeners, eventName)
		return
	}
	d.listeners[eventName] = kept
}

// ClearListeners removes every registration
func (d *Dispatcher) ClearListeners() {
	d.listeners = make(map[string][]Listener)
}

// History returns the dispatched-event summaries, oldest first
func (d *Dispatcher) History() []HistoryEntry {
	out := make([]HistoryEntry, len(d.history))
	copy(out, d.history)
	return out
}

// ClearHistory empties the dispatch history
func (d *Dispatcher) ClearHistory() {
	d.history = d.history[:0]
	if d.metrics != nil {
		d.metrics.DispatchHistorySize.Set(0)
	}
}

func (d *Dispatcher) appendHistory(event *domain.Event) {
	d.history = append(d.history, HistoryEntry{
		EventID:   event.ID(),
		Name:      event.Name(),
		Timestamp: event.Timestamp(),
		Data:      event.Data(),
		Metadata:  event.Metadata(),
		Async:     event.Async(),
		Priority:  event.Priority(),
	})
	if len(d.history) > d.maxHistory {
		d.history = d.history[len(d.history)-d.maxHistory:]
	}
	if d.metrics != nil {
		d.metrics.DispatchHistorySize.Set(float64(len(d.history)))
	}
}

func (d *Dispatcher) recordOutcome(eventName string, outcome Outcome) {
	if d.metrics != nil {
		d.metrics.EventsDispatched.WithLabelValues(eventName, string(outcome)).Inc()
	}
}

func containsListener(listeners []Listener, target Listener) bool {
	for _, listener := range listeners {
		if listener == target {
			return true
		}
	}
	return false
}
