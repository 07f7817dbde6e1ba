package audit

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// State is the orchestrator lifecycle position.
type State string

// Lifecycle states. Values double as statekit state IDs.
const (
	StateIdle          State = "idle"
	StateInitializing  State = "initializing"
	StateRunningChecks State = "running-checks"
	StateSummarizing   State = "summarizing"
	StateDone          State = "done"
)

func (s State) String() string { return string(s) }

// Lifecycle events.
const (
	eventInit      = "init"
	eventRun       = "run"
	eventSummarize = "summarize"
	eventFinish    = "finish"
	eventAbort     = "abort"
)

type lifecycleContext struct{}

// lifecycle enforces Idle -> Initializing -> RunningChecks -> Summarizing -> Done.
// A startup failure aborts back to Idle; a finished run may start again.
type lifecycle struct {
	mu          sync.Mutex
	interpreter *statekit.Interpreter[lifecycleContext]
}

func newLifecycle() (*lifecycle, error) {
	builder := statekit.NewMachine[lifecycleContext]("audit-lifecycle").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(lifecycleContext{})

	builder.State(statekit.StateID(StateIdle)).
		On(eventInit).Target(statekit.StateID(StateInitializing)).
		Done()

	builder.State(statekit.StateID(StateInitializing)).
		On(eventRun).Target(statekit.StateID(StateRunningChecks)).
		On(eventAbort).Target(statekit.StateID(StateIdle)).
		Done()

	builder.State(statekit.StateID(StateRunningChecks)).
		On(eventSummarize).Target(statekit.StateID(StateSummarizing)).
		Done()

	builder.State(statekit.StateID(StateSummarizing)).
		On(eventFinish).Target(statekit.StateID(StateDone)).
		On(eventAbort).Target(statekit.StateID(StateIdle)).
		Done()

	builder.State(statekit.StateID(StateDone)).
		On(eventInit).Target(statekit.StateID(StateInitializing)).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit lifecycle: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &lifecycle{interpreter: interpreter}, nil
}

func mustLifecycle() *lifecycle {
	l, err := newLifecycle()
	if err != nil {
		panic(err)
	}
	return l
}

// fire sends event and reports the transition. An event the current state
// does not accept leaves the state unchanged and returns an error.
func (l *lifecycle) fire(event string) (from, to State, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	from = l.currentLocked()
	l.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	to = l.currentLocked()
	if from == to {
		return from, to, fmt.Errorf("event %q not allowed in state %q", event, from)
	}
	return from, to, nil
}

func (l *lifecycle) current() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLocked()
}

func (l *lifecycle) currentLocked() State {
	return State(l.interpreter.State().Value)
}
