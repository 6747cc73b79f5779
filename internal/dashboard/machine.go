package dashboard

import (
	"errors"
	"fmt"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateIdle            State = "idle"
	StateFormOpen        State = "form-open"
	StateTimerIdle       State = "timer-idle"
	StateTimerRunning    State = "timer-running"
)

type FormMode string

const (
	FormNone   FormMode = ""
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

type Event string

const (
	EventSignedIn      Event = "signed-in"
	EventSignedOut     Event = "signed-out"
	EventLoaded        Event = "loaded"
	EventLoadFailed    Event = "load-failed"
	EventResumed       Event = "resumed"
	EventOpenCreate    Event = "open-create"
	EventOpenEdit      Event = "open-edit"
	EventCancelForm    Event = "cancel-form"
	EventSaved         Event = "saved"
	EventSelectProject Event = "select-project"
	EventDeselect      Event = "deselect"
	EventTimerStarted  Event = "timer-started"
	EventTimerStopped  Event = "timer-stopped"
)

var ErrInvalidTransition = errors.New("invalid transition")

var transitions = map[State]map[Event]State{
	StateUnauthenticated: {
		EventSignedIn: StateLoading,
	},
	StateLoading: {
		EventLoaded:     StateIdle,
		EventLoadFailed: StateIdle,
		EventResumed:    StateTimerRunning,
	},
	StateIdle: {
		EventOpenCreate:    StateFormOpen,
		EventOpenEdit:      StateFormOpen,
		EventSelectProject: StateTimerIdle,
		EventSaved:         StateLoading,
	},
	StateFormOpen: {
		EventCancelForm: StateIdle,
		EventSaved:      StateLoading,
	},
	StateTimerIdle: {
		EventTimerStarted: StateTimerRunning,
		EventDeselect:     StateIdle,
		EventOpenCreate:   StateFormOpen,
		EventOpenEdit:     StateFormOpen,
		EventSaved:        StateLoading,
	},
	StateTimerRunning: {
		EventTimerStopped: StateLoading,
		EventOpenCreate:   StateFormOpen,
		EventOpenEdit:     StateFormOpen,
		EventSaved:        StateLoading,
	},
}

// Machine tracks where the dashboard is. It holds no I/O; callers fire
// events as requests complete. A failed request leaves the state unchanged
// and sets Banner.
// A form opened over a timer state closes back into it; a save reloads and
// the reload resumes a running timer.
type Machine struct {
	state  State
	form   FormMode
	back   State
	Banner string
}

func NewMachine() *Machine {
	return &Machine{state: StateUnauthenticated}
}

func (m *Machine) State() State   { return m.state }
func (m *Machine) Form() FormMode { return m.form }

// Can reports whether ev is accepted in the current state.
func (m *Machine) Can(ev Event) bool {
	if ev == EventSignedOut {
		return true
	}
	_, ok := transitions[m.state][ev]
	return ok
}

// Fire applies ev. Signing out is accepted from every state.
func (m *Machine) Fire(ev Event) error {
	if ev == EventSignedOut {
		m.state, m.form, m.back, m.Banner = StateUnauthenticated, FormNone, "", ""
		return nil
	}

	next, ok := transitions[m.state][ev]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, m.state)
	}

	switch ev {
	case EventOpenCreate, EventOpenEdit:
		m.form = FormCreate
		if ev == EventOpenEdit {
			m.form = FormEdit
		}
		m.back = m.state
	case EventCancelForm:
		if m.back != "" {
			next = m.back
		}
		m.form, m.back = FormNone, ""
	case EventSaved:
		m.form, m.back = FormNone, ""
	case EventLoadFailed:
		if m.Banner == "" {
			m.Banner = "Failed to load projects"
		}
	case EventLoaded, EventResumed:
		m.Banner = ""
	}
	m.state = next
	return nil
}

// Fail records err for display without moving. An unauthenticated error signs out.
func (m *Machine) Fail(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		_ = m.Fire(EventSignedOut)
		return
	}
	m.Banner = err.Error()
}

// DismissBanner clears the error banner.
func (m *Machine) DismissBanner() { m.Banner = "" }
