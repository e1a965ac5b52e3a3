// Package session tracks each signed-in user's place in the application:
// which view they are on, which survey they selected, and whether a
// mutating operation is in flight. The guard is cooperative and scoped to
// this process; it does not serialize submissions from other sessions.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wesoda/anket/model"
)

type View string

const (
	ViewWelcome View = "welcome"
	ViewCreate  View = "create"
	ViewTake    View = "take"
	ViewResults View = "results"
)

var (
	// ErrBusy means a create/delete/submit operation is still in flight
	// for this session.
	ErrBusy = errors.New("operation in flight")
	// ErrForbidden means the caller's role does not permit the transition.
	ErrForbidden = errors.New("role not permitted")
)

type State struct {
	View     View   `json:"view"`
	SurveyID string `json:"surveyId,omitempty"`
	Busy     bool   `json:"busy"`
}

type Manager struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewManager() *Manager {
	return &Manager{states: make(map[string]*State)}
}

func (m *Manager) state(userID string) *State {
	s, ok := m.states[userID]
	if !ok {
		s = &State{View: ViewWelcome}
		m.states[userID] = s
	}
	return s
}

// Get returns a snapshot of the user's session state.
func (m *Manager) Get(userID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state(userID)
}

// Select routes a survey selection: managers always land on results;
// everyone else gets results once the survey is expired or already
// answered by them, and the take view otherwise.
func (m *Manager) Select(userID string, survey model.Survey, answered bool, role model.Role, now time.Time) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(userID)
	if s.Busy {
		return s.View, ErrBusy
	}

	s.SurveyID = survey.ID
	switch {
	case role == model.RoleManager:
		s.View = ViewResults
	case survey.Expired(now) || answered:
		s.View = ViewResults
	default:
		s.View = ViewTake
	}
	return s.View, nil
}

// StartCreate enters the authoring view; admin and manager only.
func (m *Manager) StartCreate(userID string, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(userID)
	if s.Busy {
		return ErrBusy
	}
	if !role.CanAuthor() {
		return ErrForbidden
	}
	s.View = ViewCreate
	s.SurveyID = ""
	return nil
}

// Welcome resets the session: selection cleared, busy flag dropped.
// Successful submissions from the create and take views end up here.
func (m *Manager) Welcome(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(userID)
	s.View = ViewWelcome
	s.SurveyID = ""
	s.Busy = false
}

// ClearSelection sends the session back to welcome if it currently has
// the given survey selected, e.g. after that survey was deleted.
func (m *Manager) ClearSelection(userID, surveyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(userID)
	if s.SurveyID == surveyID {
		s.View = ViewWelcome
		s.SurveyID = ""
	}
}

// BeginOp raises the busy flag for the session, refusing overlap with an
// operation already in flight. Callers must pair it with EndOp.
func (m *Manager) BeginOp(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(userID)
	if s.Busy {
		return ErrBusy
	}
	s.Busy = true
	return nil
}

func (m *Manager) EndOp(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(userID).Busy = false
}
