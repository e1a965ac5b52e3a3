package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesoda/anket/model"
)

func expiring(at time.Time) model.Survey {
	return model.Survey{ID: "s1", ExpiresAt: &at}
}

func TestSelectRouting(t *testing.T) {
	now := time.Now()
	open := model.Survey{ID: "s1"}

	tests := []struct {
		name     string
		survey   model.Survey
		answered bool
		role     model.Role
		want     View
	}{
		{"unanswered open survey goes to take", open, false, model.RoleUser, ViewTake},
		{"answered survey goes to results", open, true, model.RoleUser, ViewResults},
		{"expired survey goes to results", expiring(now.Add(-time.Minute)), false, model.RoleUser, ViewResults},
		{"running survey still goes to take", expiring(now.Add(time.Minute)), false, model.RoleUser, ViewTake},
		{"admin follows the same rules as users", open, false, model.RoleAdmin, ViewTake},
		{"manager always goes to results", open, false, model.RoleManager, ViewResults},
		{"manager override beats running expiry", expiring(now.Add(time.Minute)), false, model.RoleManager, ViewResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			view, err := m.Select("u1", tt.survey, tt.answered, tt.role, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view)

			state := m.Get("u1")
			assert.Equal(t, tt.want, state.View)
			assert.Equal(t, tt.survey.ID, state.SurveyID)
		})
	}
}

func TestManagerOverrideIsRoutingOnly(t *testing.T) {
	// the visibility gate itself ignores roles; only the routing differs
	now := time.Now()
	running := expiring(now.Add(time.Minute))

	m := NewManager()
	view, err := m.Select("mgr", running, false, model.RoleManager, now)
	require.NoError(t, err)
	assert.Equal(t, ViewResults, view)
	assert.False(t, running.ResultsVisible(now))
}

func TestStartCreate(t *testing.T) {
	m := NewManager()

	assert.ErrorIs(t, m.StartCreate("u1", model.RoleUser), ErrForbidden)

	require.NoError(t, m.StartCreate("u1", model.RoleAdmin))
	assert.Equal(t, ViewCreate, m.Get("u1").View)

	require.NoError(t, m.StartCreate("u2", model.RoleManager))
	assert.Equal(t, ViewCreate, m.Get("u2").View)
}

func TestBusyFlagBlocksTransitions(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.BeginOp("u1"))
	assert.True(t, m.Get("u1").Busy)

	// overlapping mutating operation refused
	assert.ErrorIs(t, m.BeginOp("u1"), ErrBusy)

	// selection and authoring disabled while busy
	_, err := m.Select("u1", model.Survey{ID: "s1"}, false, model.RoleUser, time.Now())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, m.StartCreate("u1", model.RoleAdmin), ErrBusy)

	// other sessions are unaffected
	require.NoError(t, m.BeginOp("u2"))

	m.EndOp("u1")
	require.NoError(t, m.BeginOp("u1"))
}

func TestWelcomeResetsSession(t *testing.T) {
	m := NewManager()

	_, err := m.Select("u1", model.Survey{ID: "s1"}, false, model.RoleUser, time.Now())
	require.NoError(t, err)
	require.NoError(t, m.BeginOp("u1"))

	m.Welcome("u1")

	state := m.Get("u1")
	assert.Equal(t, ViewWelcome, state.View)
	assert.Empty(t, state.SurveyID)
	assert.False(t, state.Busy)
}

func TestClearSelection(t *testing.T) {
	m := NewManager()

	_, err := m.Select("u1", model.Survey{ID: "s1"}, true, model.RoleUser, time.Now())
	require.NoError(t, err)

	// a different survey's deletion leaves the session alone
	m.ClearSelection("u1", "other")
	assert.Equal(t, "s1", m.Get("u1").SurveyID)

	m.ClearSelection("u1", "s1")
	state := m.Get("u1")
	assert.Equal(t, ViewWelcome, state.View)
	assert.Empty(t, state.SurveyID)
}
