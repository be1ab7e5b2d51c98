package domain_test

import (
	"testing"
	"time"

	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func pipelineDefs() []*domain.StatusDefinition {
	return []*domain.StatusDefinition{
		{Name: "New Lead", NextStatuses: []string{"Contacted", "RNR", "Final Reject"}, DaysLimit: intPtr(4), AutoMoveTo: strPtr("RNR")},
		{Name: "RNR", NextStatuses: []string{"Contacted", "Final Reject"}, DaysLimit: intPtr(6), AutoMoveTo: strPtr("Reject - RNR")},
		{Name: "Contacted", NextStatuses: []string{"Screening Pass", "Screening Fail"}},
		{Name: "Screening Pass", NextStatuses: []string{"Approved", "Final Reject"}},
		{Name: "Screening Fail", NextStatuses: []string{"Final Reject"}, DaysLimit: intPtr(7), AutoMoveTo: strPtr("Final Reject")},
		{Name: "Reject - RNR", NextStatuses: []string{}},
		{Name: "Approved", NextStatuses: []string{}},
		{Name: "Final Reject", NextStatuses: []string{}},
	}
}

func TestStatusGraph_CanTransition(t *testing.T) {
	graph, err := domain.NewStatusGraph(pipelineDefs())
	require.NoError(t, err)

	assert.True(t, graph.CanTransition("New Lead", "Contacted"))
	assert.True(t, graph.CanTransition("Contacted", "Screening Pass"))
	assert.False(t, graph.CanTransition("New Lead", "Approved"))
	assert.False(t, graph.CanTransition("Approved", "New Lead"), "terminal status has no outgoing edges")

	// Unknown current status fails closed.
	assert.False(t, graph.CanTransition("Ghost Status", "Contacted"))

	// Self-transition is invalid unless explicitly listed.
	assert.False(t, graph.CanTransition("Contacted", "Contacted"))

	// The automatic edge is not a manual transition.
	assert.False(t, graph.CanTransition("RNR", "Reject - RNR"))
}

func TestStatusGraph_ListParsing(t *testing.T) {
	// Destination lists historically came from a delimited string, so
	// whitespace and empty entries must be discarded, order kept.
	graph, err := domain.NewStatusGraph([]*domain.StatusDefinition{
		{Name: "  New Lead ", NextStatuses: []string{" Contacted", "", "  ", "Final Reject  "}},
		{Name: "Contacted"},
		{Name: "Final Reject"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Contacted", "Final Reject"}, graph.AvailableTransitions("New Lead"))
	assert.True(t, graph.CanTransition("New Lead", "Contacted"))
}

func TestStatusGraph_AvailableTransitions(t *testing.T) {
	graph, err := domain.NewStatusGraph(pipelineDefs())
	require.NoError(t, err)

	first := graph.AvailableTransitions("New Lead")
	second := graph.AvailableTransitions("New Lead")
	assert.Equal(t, []string{"Contacted", "RNR", "Final Reject"}, first)
	assert.Equal(t, first, second, "lookup is idempotent")

	assert.Empty(t, graph.AvailableTransitions("Approved"))
	assert.Empty(t, graph.AvailableTransitions("Ghost Status"))
	assert.NotNil(t, graph.AvailableTransitions("Ghost Status"))
}

func TestNewStatusGraph_Validation(t *testing.T) {
	tests := []struct {
		name string
		defs []*domain.StatusDefinition
	}{
		{
			name: "days limit without destination",
			defs: []*domain.StatusDefinition{
				{Name: "RNR", DaysLimit: intPtr(6)},
			},
		},
		{
			name: "destination without days limit",
			defs: []*domain.StatusDefinition{
				{Name: "RNR", AutoMoveTo: strPtr("Final Reject")},
				{Name: "Final Reject"},
			},
		},
		{
			name: "auto move to unknown status",
			defs: []*domain.StatusDefinition{
				{Name: "RNR", DaysLimit: intPtr(6), AutoMoveTo: strPtr("Nowhere")},
			},
		},
		{
			name: "non-positive days limit",
			defs: []*domain.StatusDefinition{
				{Name: "RNR", DaysLimit: intPtr(0), AutoMoveTo: strPtr("RNR")},
			},
		},
		{
			name: "duplicate status name",
			defs: []*domain.StatusDefinition{
				{Name: "RNR"},
				{Name: "RNR"},
			},
		},
		{
			name: "empty status name",
			defs: []*domain.StatusDefinition{
				{Name: "   "},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewStatusGraph(tt.defs)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrBadStatusGraph)
		})
	}
}

func TestStatusDefinition_IsTerminal(t *testing.T) {
	graph, err := domain.NewStatusGraph(pipelineDefs())
	require.NoError(t, err)

	assert.True(t, graph.Lookup("Approved").IsTerminal())
	assert.True(t, graph.Lookup("Final Reject").IsTerminal())
	assert.False(t, graph.Lookup("Contacted").IsTerminal())
	assert.False(t, graph.Lookup("RNR").IsTerminal())
}

func TestDaysIdle_WholeDayTruncation(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// 6 days and 1 hour ago floors to 6 days.
	assert.Equal(t, 6, domain.DaysIdle(now.Add(-6*24*time.Hour-time.Hour), now))

	// 5 days and 23 hours ago floors to 5 days.
	assert.Equal(t, 5, domain.DaysIdle(now.Add(-5*24*time.Hour-23*time.Hour), now))

	// Exactly 6 days is 6 days.
	assert.Equal(t, 6, domain.DaysIdle(now.Add(-6*24*time.Hour), now))

	// A timestamp in the future counts as zero idle days.
	assert.Equal(t, 0, domain.DaysIdle(now.Add(time.Hour), now))
}
