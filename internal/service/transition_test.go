package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/leadflowhq/leadflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

// memLeadStore is an in-memory LeadStore.
type memLeadStore struct {
	mu       sync.Mutex
	leads    map[string]*domain.Lead
	order    []string
	getAlls  int
	failFor  map[string]error // leadID -> error injected on UpdateStatus
	blockGet chan struct{}    // when set, GetAll blocks until closed
	entered  chan struct{}    // signalled when GetAll is entered
}

func newMemLeadStore(leads ...*domain.Lead) *memLeadStore {
	s := &memLeadStore{
		leads:   make(map[string]*domain.Lead),
		failFor: make(map[string]error),
	}
	for _, l := range leads {
		s.leads[l.ID] = l
		s.order = append(s.order, l.ID)
	}
	return s
}

func (s *memLeadStore) GetAll(ctx context.Context) ([]*domain.Lead, error) {
	s.mu.Lock()
	s.getAlls++
	entered := s.entered
	block := s.blockGet
	out := make([]*domain.Lead, 0, len(s.order))
	for _, id := range s.order {
		copied := *s.leads[id]
		out = append(out, &copied)
	}
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return out, nil
}

func (s *memLeadStore) GetByID(ctx context.Context, leadID string) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[leadID]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

func (s *memLeadStore) UpdateStatus(ctx context.Context, leadID, oldStatus, newStatus string, assignedTo *string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[leadID]; err != nil {
		return err
	}
	lead, ok := s.leads[leadID]
	if !ok {
		return domain.ErrLeadNotFound
	}
	lead.LastStatus = &oldStatus
	lead.CurrentStatus = newStatus
	lead.LastStatusUpdatedAt = at
	lead.AssignedTo = assignedTo
	return nil
}

// memGraphStore serves a fixed status graph.
type memGraphStore struct {
	graph *domain.StatusGraph
	loads int
}

func (s *memGraphStore) GetGraph(ctx context.Context) (*domain.StatusGraph, error) {
	s.loads++
	return s.graph, nil
}

// memDirectory is an in-memory UserDirectory.
type memDirectory struct {
	usersByRole map[domain.UserRole]*domain.User
}

func (d *memDirectory) FindFirstWithRole(ctx context.Context, role domain.UserRole) (*domain.User, error) {
	if user, ok := d.usersByRole[role]; ok {
		return user, nil
	}
	return nil, domain.ErrNoUserForRole
}

// memActivity is an in-memory append-only ActivityLog.
type memActivity struct {
	mu      sync.Mutex
	entries []*domain.ActivityEntry
}

func (a *memActivity) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *memActivity) AppendBatch(ctx context.Context, entries []*domain.ActivityEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entries...)
	return nil
}

func (a *memActivity) byAction(action domain.ActivityAction) []*domain.ActivityEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*domain.ActivityEntry
	for _, e := range a.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func testGraph(t *testing.T) *domain.StatusGraph {
	t.Helper()
	graph, err := domain.NewStatusGraph([]*domain.StatusDefinition{
		{Name: "New Lead", NextStatuses: []string{"Contacted", "RNR", "Final Reject"}, DaysLimit: intPtr(4), AutoMoveTo: strPtr("RNR")},
		{Name: "RNR", NextStatuses: []string{"Contacted", "Final Reject"}, DaysLimit: intPtr(6), AutoMoveTo: strPtr("Reject - RNR")},
		{Name: "Contacted", NextStatuses: []string{"Screening Pass", "Screening Fail"}},
		{Name: "Screening Pass", NextStatuses: []string{"Approved", "Final Reject"}},
		{Name: "Screening Fail", NextStatuses: []string{"Final Reject"}, DaysLimit: intPtr(7), AutoMoveTo: strPtr("Final Reject")},
		{Name: "Reject - RNR"},
		{Name: "Approved"},
		{Name: "Final Reject"},
	})
	require.NoError(t, err)
	return graph
}

func lead(id, status string, idle time.Duration) *domain.Lead {
	return &domain.Lead{
		ID:                  id,
		Name:                "Lead " + id,
		Email:               id + "@example.com",
		CurrentStatus:       status,
		LastStatusUpdatedAt: time.Now().Add(-idle),
	}
}

func newService(
	leads *memLeadStore,
	graph *domain.StatusGraph,
	dir *memDirectory,
	activity *memActivity,
) *service.TransitionService {
	if dir == nil {
		dir = &memDirectory{}
	}
	return service.NewTransitionService(leads, &memGraphStore{graph: graph}, dir, activity, nil)
}

const day = 24 * time.Hour

func TestValidateTransition(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemLeadStore(), testGraph(t), nil, &memActivity{})

	ok, err := svc.ValidateTransition(ctx, "New Lead", "Contacted")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ValidateTransition(ctx, "New Lead", "Approved")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown current status fails closed.
	ok, err = svc.ValidateTransition(ctx, "Ghost Status", "Contacted")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAvailableTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemLeadStore(), testGraph(t), nil, &memActivity{})

	first, err := svc.AvailableTransitions(ctx, "New Lead")
	require.NoError(t, err)
	second, err := svc.AvailableTransitions(ctx, "New Lead")
	require.NoError(t, err)

	assert.Equal(t, []string{"Contacted", "RNR", "Final Reject"}, first)
	assert.Equal(t, first, second)

	terminal, err := svc.AvailableTransitions(ctx, "Approved")
	require.NoError(t, err)
	assert.Empty(t, terminal)
}

func TestApplyManualTransition_Success(t *testing.T) {
	ctx := context.Background()
	leads := newMemLeadStore(lead("l1", "New Lead", 0))
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	updated, err := svc.ApplyManualTransition(ctx, "l1", "Contacted", "u1")
	require.NoError(t, err)

	assert.Equal(t, "Contacted", updated.CurrentStatus)
	require.NotNil(t, updated.LastStatus)
	assert.Equal(t, "New Lead", *updated.LastStatus)
	assert.WithinDuration(t, time.Now(), updated.LastStatusUpdatedAt, time.Minute)

	entries := activity.byAction(domain.ActionStatusChange)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, "u1", *entries[0].ActorID)
	assert.Contains(t, entries[0].Details, `"New Lead"`)
	assert.Contains(t, entries[0].Details, `"Contacted"`)
}

func TestApplyManualTransition_Errors(t *testing.T) {
	ctx := context.Background()
	leads := newMemLeadStore(lead("l1", "New Lead", 0))
	svc := newService(leads, testGraph(t), nil, &memActivity{})

	_, err := svc.ApplyManualTransition(ctx, "missing", "Contacted", "u1")
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)

	_, err = svc.ApplyManualTransition(ctx, "l1", "Approved", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// A self-transition is not listed, so it fails validation.
	_, err = svc.ApplyManualTransition(ctx, "l1", "New Lead", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApplyManualTransition_AutoAssignment(t *testing.T) {
	ctx := context.Background()
	manager := &domain.User{ID: "mgr-1", Name: "Mia", Role: domain.UserRoleManager}
	dir := &memDirectory{usersByRole: map[domain.UserRole]*domain.User{
		domain.UserRoleManager: manager,
	}}

	leads := newMemLeadStore(lead("l1", "Contacted", 0))
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), dir, activity)

	updated, err := svc.ApplyManualTransition(ctx, "l1", "Screening Pass", "u1")
	require.NoError(t, err)

	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "mgr-1", *updated.AssignedTo)

	// Exactly two entries: the auto-assign and the status change.
	assert.Len(t, activity.entries, 2)
	assigns := activity.byAction(domain.ActionAutoAssign)
	require.Len(t, assigns, 1)
	assert.Nil(t, assigns[0].ActorID, "auto-assign is a system entry")
	require.Len(t, activity.byAction(domain.ActionStatusChange), 1)
}

func TestApplyManualTransition_NoAssignmentOffTrigger(t *testing.T) {
	ctx := context.Background()
	dir := &memDirectory{usersByRole: map[domain.UserRole]*domain.User{
		domain.UserRoleManager: {ID: "mgr-1", Role: domain.UserRoleManager},
	}}

	prior := strPtr("ops-1")
	l := lead("l1", "Contacted", 0)
	l.AssignedTo = prior

	leads := newMemLeadStore(l)
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), dir, activity)

	updated, err := svc.ApplyManualTransition(ctx, "l1", "Screening Fail", "u1")
	require.NoError(t, err)

	// Prior assignment untouched, single audit entry.
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "ops-1", *updated.AssignedTo)
	assert.Len(t, activity.entries, 1)
	assert.Empty(t, activity.byAction(domain.ActionAutoAssign))
}

func TestApplyManualTransition_NoManagerAvailable(t *testing.T) {
	ctx := context.Background()
	leads := newMemLeadStore(lead("l1", "Contacted", 0))
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	updated, err := svc.ApplyManualTransition(ctx, "l1", "Screening Pass", "u1")
	require.NoError(t, err, "transition proceeds without an assignee")

	assert.Nil(t, updated.AssignedTo)
	assert.Len(t, activity.entries, 1)
	assert.Empty(t, activity.byAction(domain.ActionAutoAssign))
}

func TestRunIdleSweep_ThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	// RNR has a 6 day limit: 5d23h floors to 5 days (stays), 6d1h
	// floors to 6 days (moves).
	under := lead("under", "RNR", 5*day+23*time.Hour)
	over := lead("over", "RNR", 6*day+time.Hour)

	leads := newMemLeadStore(under, over)
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	moved, err := svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	got, err := leads.GetByID(ctx, "under")
	require.NoError(t, err)
	assert.Equal(t, "RNR", got.CurrentStatus)

	got, err = leads.GetByID(ctx, "over")
	require.NoError(t, err)
	assert.Equal(t, "Reject - RNR", got.CurrentStatus)
	require.NotNil(t, got.LastStatus)
	assert.Equal(t, "RNR", *got.LastStatus)

	entries := activity.byAction(domain.ActionAutoStatusChange)
	require.Len(t, entries, 1)
	assert.Equal(t, "over", entries[0].LeadID)
	assert.Nil(t, entries[0].ActorID)
	assert.Equal(t, `Automatically moved from "RNR" to "Reject - RNR" after 6 days`, entries[0].Details)
}

func TestRunIdleSweep_IdempotentAcrossPasses(t *testing.T) {
	ctx := context.Background()
	leads := newMemLeadStore(lead("l1", "RNR", 8*day))
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	moved, err := svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	// The move reset the idle clock; an immediate second pass is a no-op.
	moved, err = svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	assert.Len(t, activity.byAction(domain.ActionAutoStatusChange), 1)
}

func TestRunIdleSweep_UnknownStatusSkipped(t *testing.T) {
	ctx := context.Background()
	stray := lead("stray", "Legacy Status", 90*day)
	leads := newMemLeadStore(stray)
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	moved, err := svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	got, err := leads.GetByID(ctx, "stray")
	require.NoError(t, err)
	assert.Equal(t, "Legacy Status", got.CurrentStatus)
	assert.Empty(t, activity.entries)
}

func TestRunIdleSweep_NoTimedEdgeSkipped(t *testing.T) {
	ctx := context.Background()
	// Screening Pass has manual edges but no timed edge.
	leads := newMemLeadStore(lead("l1", "Screening Pass", 365*day))
	svc := newService(leads, testGraph(t), nil, &memActivity{})

	moved, err := svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}

func TestRunIdleSweep_AbortsOnPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	first := lead("a", "RNR", 10*day)
	second := lead("b", "RNR", 10*day)
	third := lead("c", "RNR", 10*day)

	leads := newMemLeadStore(first, second, third)
	leads.failFor["b"] = errors.New("disk full")

	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	moved, err := svc.RunIdleSweep(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, moved, "leads updated before the failure stay updated")

	got, _ := leads.GetByID(ctx, "a")
	assert.Equal(t, "Reject - RNR", got.CurrentStatus)
	got, _ = leads.GetByID(ctx, "c")
	assert.Equal(t, "RNR", got.CurrentStatus, "remainder of the pass is aborted")

	// The next pass picks up what the failed one missed.
	leads.mu.Lock()
	delete(leads.failFor, "b")
	leads.mu.Unlock()

	moved, err = svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
}

func TestRunIdleSweep_ReentrancyGuard(t *testing.T) {
	ctx := context.Background()
	leads := newMemLeadStore(lead("l1", "RNR", 10*day))
	leads.entered = make(chan struct{}, 1)
	leads.blockGet = make(chan struct{})

	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.RunIdleSweep(ctx)
		assert.NoError(t, err)
	}()

	// Wait until the first sweep is inside its bulk read.
	<-leads.entered

	// Concurrent invocation is a no-op, not queued.
	moved, err := svc.RunIdleSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	close(leads.blockGet)
	<-done

	leads.mu.Lock()
	getAlls := leads.getAlls
	leads.mu.Unlock()
	assert.Equal(t, 1, getAlls, "second invocation must not re-scan leads")
	assert.Len(t, activity.byAction(domain.ActionAutoStatusChange), 1, "no duplicate audit entries")
}

func TestLeadsRequiringAttention(t *testing.T) {
	ctx := context.Background()

	dueTomorrow := lead("due-tomorrow", "RNR", 5*day+time.Hour) // 5 days idle, limit 6
	overdue := lead("overdue", "RNR", 7*day)                    // past the limit
	fresh := lead("fresh", "RNR", 1*day)
	untimed := lead("untimed", "Screening Pass", 30*day)

	leads := newMemLeadStore(dueTomorrow, overdue, fresh, untimed)
	svc := newService(leads, testGraph(t), nil, &memActivity{})

	items, err := svc.LeadsRequiringAttention(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[string]service.AttentionItem)
	for _, item := range items {
		byID[item.Lead.ID] = item
	}

	soon, ok := byID["due-tomorrow"]
	require.True(t, ok)
	assert.Equal(t, 5, soon.DaysIdle)
	assert.Equal(t, `will be moved to "Reject - RNR" in 1 day(s)`, soon.SuggestedAction)

	late, ok := byID["overdue"]
	require.True(t, ok)
	assert.Equal(t, 7, late.DaysIdle)
	assert.Equal(t, `will be automatically moved to "Reject - RNR"`, late.SuggestedAction)

	_, ok = byID["fresh"]
	assert.False(t, ok)
	_, ok = byID["untimed"]
	assert.False(t, ok)
}

func TestLeadsRequiringAttention_NoMutation(t *testing.T) {
	ctx := context.Background()
	leads := newMemLeadStore(lead("l1", "RNR", 10*day))
	activity := &memActivity{}
	svc := newService(leads, testGraph(t), nil, activity)

	_, err := svc.LeadsRequiringAttention(ctx)
	require.NoError(t, err)

	got, err := leads.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "RNR", got.CurrentStatus)
	assert.Empty(t, activity.entries)
}
