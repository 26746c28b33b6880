package workspace_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/events"
	"github.com/johnwards/leaddesk/internal/session"
	"github.com/johnwards/leaddesk/internal/store"
	"github.com/johnwards/leaddesk/internal/workspace"
)

// MockLeadStore stands in for the SQLite lead store.
type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) ListForAgent(ctx context.Context, agentID string) ([]domain.Lead, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *MockLeadStore) Update(ctx context.Context, id string, u domain.LeadUpdate) (*domain.Lead, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadStore) Create(ctx context.Context, in domain.NewLead) (*domain.Lead, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

// MockPublisher records published lead events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}

var today = time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func agentLeads() []domain.Lead {
	due := domain.NewDate(2024, time.April, 1)
	later := domain.NewDate(2024, time.April, 9)
	return []domain.Lead{
		{ID: "1", Name: "Sarah Johnson", Company: "TechCorp", Email: "sarah@techcorp.com", Status: domain.StatusContacted,
			Source: "Website", AssignedAgent: "1", CreatedAt: today.AddDate(0, 0, -3), NextFollowUp: &due},
		{ID: "2", Name: "Michael Chen", Company: "Startup Inc", Email: "m.chen@startup.io", Status: domain.StatusQualified,
			Source: "LinkedIn", AssignedAgent: "1", CreatedAt: today.AddDate(0, 0, -1), NextFollowUp: &later},
		{ID: "3", Name: "Emily Davis", Company: "Global Solutions", Email: "emily@global.com", Status: domain.StatusConverted,
			Source: "Website", AssignedAgent: "1", CreatedAt: today.AddDate(0, 0, -5)},
	}
}

func newWorkspace(t *testing.T, m *MockLeadStore, pub events.Publisher) *workspace.Workspace {
	t.Helper()
	m.On("ListForAgent", mock.Anything, "1").Return(agentLeads(), nil).Once()
	w := workspace.New("1", m, pub, workspace.WithClock(fixedClock))
	require.NoError(t, w.Reload(context.Background()))
	return w
}

func viewIDs(v workspace.View) []string {
	out := make([]string, len(v.Leads))
	for i, l := range v.Leads {
		out[i] = l.ID
	}
	return out
}

func TestViewDefaults(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	v := w.View()
	assert.Equal(t, []string{"2", "1", "3"}, viewIDs(v))
	assert.Equal(t, 3, v.Shown)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, []string{"Website", "LinkedIn"}, v.Sources)
	assert.Empty(t, v.ActiveFilters)
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Equal(t, 1, v.Summary.FollowUpsToday)
	assert.Equal(t, 1, v.Summary.Converted)
}

func TestCriteriaIntents(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	v := w.SetSourceFilter("Website")
	assert.Equal(t, []string{"1", "3"}, viewIDs(v))
	assert.Equal(t, 2, v.Shown)
	assert.Equal(t, 3, v.Total)

	v = w.SetSort(domain.SortByName)
	assert.Equal(t, []string{"3", "1"}, viewIDs(v))

	v = w.SetSearch("SARAH")
	assert.Equal(t, []string{"1"}, viewIDs(v))
	assert.Len(t, v.ActiveFilters, 2)

	v = w.SetStatusFilter(domain.StatusLost)
	assert.Empty(t, v.Leads)
	assert.NotNil(t, v.Leads)

	v = w.SetCriteria(domain.FilterCriteria{})
	assert.Equal(t, domain.SortByDate, v.Criteria.Sort)
	assert.Len(t, v.Leads, 3)

	m.AssertNumberOfCalls(t, "ListForAgent", 1)
}

func TestSelectRequiresVisibleLead(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	w.SetSourceFilter("LinkedIn")
	_, err := w.Select("1")
	var notFound *session.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "1", notFound.ID)

	v, err := w.Select("2")
	require.NoError(t, err)
	assert.Equal(t, session.ModeDetail, v.Mode)
	require.NotNil(t, v.Selected)
	assert.Equal(t, "2", v.Selected.ID)
	require.NotNil(t, v.Draft)
	assert.Equal(t, "2024-04-09", v.Draft.FollowUp)
}

func TestModalIntents(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	_, err := w.Select("1")
	require.NoError(t, err)

	v := w.OpenAdd()
	assert.Equal(t, session.ModeAddNew, v.Mode)
	assert.Nil(t, v.Selected)
	require.NotNil(t, v.Form)
	assert.Equal(t, domain.StatusNew, v.Form.Status)

	_, err = w.EditDraft(func(d *session.Draft) { d.Notes = "x" })
	assert.ErrorIs(t, err, session.ErrNoSelection)

	v = w.Close()
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Nil(t, v.Form)

	_, err = w.EditForm(func(f *session.Form) {})
	assert.ErrorIs(t, err, session.ErrNoAddForm)

	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditDraftReportsNotesOverLimit(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)
	_, err := w.Select("1")
	require.NoError(t, err)

	long := make([]rune, session.MaxNotesLength+1)
	for i := range long {
		long[i] = 'a'
	}
	v, err := w.EditDraft(func(d *session.Draft) { d.Notes = string(long) })
	require.NoError(t, err)
	assert.True(t, v.NotesOverLimit)
	assert.Equal(t, session.ModeDetail, v.Mode)
}

func TestSaveReloadsAndPublishes(t *testing.T) {
	m := new(MockLeadStore)
	pub := new(MockPublisher)
	w := newWorkspace(t, m, pub)

	_, err := w.Select("1")
	require.NoError(t, err)
	_, err = w.EditDraft(func(d *session.Draft) {
		d.Status = domain.StatusQualified
		d.Notes = "Asked for pricing"
	})
	require.NoError(t, err)

	saved := agentLeads()[0]
	saved.Status = domain.StatusQualified
	m.On("Update", mock.Anything, "1", mock.MatchedBy(func(u domain.LeadUpdate) bool {
		return u.Status == domain.StatusQualified && u.NotesAppend == "Asked for pricing"
	})).Return(&saved, nil).Once()

	reloaded := agentLeads()
	reloaded[0] = saved
	m.On("ListForAgent", mock.Anything, "1").Return(reloaded, nil).Once()

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Kind == events.LeadUpdated && e.Lead.ID == "1" &&
			e.Notes == "Asked for pricing" && e.OccurredAt.Equal(today)
	})).Return(nil).Once()

	lead, v, err := w.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQualified, lead.Status)
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Equal(t, domain.StatusQualified, v.Leads[1].Status)

	m.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSaveValidationErrorKeepsModal(t *testing.T) {
	m := new(MockLeadStore)
	pub := new(MockPublisher)
	w := newWorkspace(t, m, pub)

	_, err := w.Select("1")
	require.NoError(t, err)
	_, err = w.EditDraft(func(d *session.Draft) { d.FollowUp = "not-a-date" })
	require.NoError(t, err)

	_, v, err := w.Save(context.Background())
	var verr *session.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nextFollowUp", verr.Field)
	assert.Equal(t, session.ModeDetail, v.Mode)
	assert.Equal(t, "not-a-date", v.Draft.FollowUp)

	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSaveMissingLeadClosesAndReloads(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	_, err := w.Select("3")
	require.NoError(t, err)

	m.On("Update", mock.Anything, "3", mock.Anything).
		Return(nil, fmt.Errorf("lead 3: %w", store.ErrNotFound)).Once()
	m.On("ListForAgent", mock.Anything, "1").Return(agentLeads()[:2], nil).Once()

	_, v, err := w.Save(context.Background())
	var notFound *session.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Equal(t, []string{"2", "1"}, viewIDs(v))
	m.AssertExpectations(t)
}

func TestSaveStoreUnavailableKeepsDraft(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	_, err := w.Select("1")
	require.NoError(t, err)
	_, err = w.EditDraft(func(d *session.Draft) { d.Notes = "keep me" })
	require.NoError(t, err)

	m.On("Update", mock.Anything, "1", mock.Anything).Return(nil, errors.New("disk I/O error")).Once()

	_, v, err := w.Save(context.Background())
	var unavailable *session.StoreUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, session.ModeDetail, v.Mode)
	assert.Equal(t, "keep me", v.Draft.Notes)
	m.AssertNumberOfCalls(t, "ListForAgent", 1)
}

func TestPublishFailureDoesNotFailSave(t *testing.T) {
	m := new(MockLeadStore)
	pub := new(MockPublisher)
	w := newWorkspace(t, m, pub)

	_, err := w.Select("2")
	require.NoError(t, err)

	saved := agentLeads()[1]
	m.On("Update", mock.Anything, "2", mock.Anything).Return(&saved, nil).Once()
	m.On("ListForAgent", mock.Anything, "1").Return(agentLeads(), nil).Once()
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()

	_, _, err = w.Save(context.Background())
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestReloadFailureAfterSaveStillReportsSave(t *testing.T) {
	m := new(MockLeadStore)
	pub := new(MockPublisher)
	w := newWorkspace(t, m, pub)

	_, err := w.Select("1")
	require.NoError(t, err)
	_, err = w.EditDraft(func(d *session.Draft) { d.Notes = "left a voicemail" })
	require.NoError(t, err)

	saved := agentLeads()[0]
	m.On("Update", mock.Anything, "1", mock.Anything).Return(&saved, nil).Once()
	m.On("ListForAgent", mock.Anything, "1").Return(nil, errors.New("database is locked")).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Kind == events.LeadUpdated && e.Lead.ID == "1" && e.Notes == "left a voicemail"
	})).Return(nil).Once()

	lead, v, err := w.Save(context.Background())
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "1", lead.ID)
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Len(t, v.Leads, 3)

	m.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmitAddPublishesCreated(t *testing.T) {
	m := new(MockLeadStore)
	pub := new(MockPublisher)
	w := newWorkspace(t, m, pub)

	w.OpenAdd()
	_, err := w.EditForm(func(f *session.Form) {
		f.Name = "Dana Scully"
		f.Email = "dana@fbi.gov"
		f.Source = "Referral"
	})
	require.NoError(t, err)

	created := domain.Lead{ID: "4", Name: "Dana Scully", Email: "dana@fbi.gov", Source: "Referral",
		Status: domain.StatusNew, AssignedAgent: "1", CreatedAt: today}
	m.On("Create", mock.Anything, mock.MatchedBy(func(in domain.NewLead) bool {
		return in.Name == "Dana Scully" && in.AssignedAgent == "1"
	})).Return(&created, nil).Once()
	m.On("ListForAgent", mock.Anything, "1").Return(append(agentLeads(), created), nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Kind == events.LeadCreated && e.Lead.ID == "4"
	})).Return(nil).Once()

	lead, v, err := w.SubmitAdd(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4", lead.ID)
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, []string{"Website", "LinkedIn", "Referral"}, v.Sources)
	pub.AssertExpectations(t)
}

func TestReloadClosesVanishedSelection(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	_, err := w.Select("3")
	require.NoError(t, err)

	m.On("ListForAgent", mock.Anything, "1").Return(agentLeads()[:2], nil).Once()
	require.NoError(t, w.Reload(context.Background()))

	v := w.View()
	assert.Equal(t, session.ModeIdle, v.Mode)
	assert.Nil(t, v.Selected)
}

func TestReloadReseedsSelection(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	_, err := w.Select("1")
	require.NoError(t, err)

	fresh := agentLeads()
	fresh[0].Status = domain.StatusNegotiation
	m.On("ListForAgent", mock.Anything, "1").Return(fresh, nil).Once()
	require.NoError(t, w.Reload(context.Background()))

	v := w.View()
	require.Equal(t, session.ModeDetail, v.Mode)
	assert.Equal(t, domain.StatusNegotiation, v.Selected.Status)
	assert.Equal(t, domain.StatusNegotiation, v.Draft.Status)
}

func TestUnrelatedReloadKeepsDraft(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	_, err := w.Select("1")
	require.NoError(t, err)
	_, err = w.EditDraft(func(d *session.Draft) {
		d.Notes = "typed by user"
		d.Status = domain.StatusLost
	})
	require.NoError(t, err)

	added := domain.Lead{ID: "9", Name: "Noah Brown", Status: domain.StatusNew, Source: "Referral",
		AssignedAgent: "1", CreatedAt: today}
	m.On("ListForAgent", mock.Anything, "1").Return(append(agentLeads(), added), nil).Once()
	require.NoError(t, w.Reload(context.Background()))

	v := w.View()
	require.Equal(t, session.ModeDetail, v.Mode)
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, "typed by user", v.Draft.Notes)
	assert.Equal(t, domain.StatusLost, v.Draft.Status)
	assert.Equal(t, "2024-04-01", v.Draft.FollowUp)
}

func TestReloadStoreFailure(t *testing.T) {
	m := new(MockLeadStore)
	w := newWorkspace(t, m, nil)

	m.On("ListForAgent", mock.Anything, "1").Return(nil, errors.New("database is locked")).Once()
	err := w.Reload(context.Background())
	var unavailable *session.StoreUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// The previous lead set is kept.
	assert.Len(t, w.View().Leads, 3)
}
