package domain

import (
	"fmt"
	"strings"
	"time"
)

// HoursPerDay is the clock basis for idle-time computation. Idle time
// is truncated to whole days; partial days never count.
const HoursPerDay = 24

// StatusDefinition is a node in the status graph. NextStatuses is the
// allow-list of manual transitions out of this status. A definition
// with DaysLimit set carries exactly one additional automatic edge to
// AutoMoveTo, fired by elapsed idle time rather than by a request.
type StatusDefinition struct {
	Name         string
	NextStatuses []string
	DaysLimit    *int
	AutoMoveTo   *string
	SortOrder    int
	CreatedAt    time.Time
}

// IsTerminal returns true if the status has no outgoing edges at all,
// manual or automatic.
func (d *StatusDefinition) IsTerminal() bool {
	return len(d.NextStatuses) == 0 && d.AutoMoveTo == nil
}

// HasAutoMove returns true if the status carries a timed automatic edge.
func (d *StatusDefinition) HasAutoMove() bool {
	return d.DaysLimit != nil && d.AutoMoveTo != nil
}

// StatusGraph is the parsed, indexed status graph. Built once from the
// stored definitions so lookups on the request path are map hits, not
// repeated list parsing.
type StatusGraph struct {
	byName  map[string]*StatusDefinition
	ordered []*StatusDefinition
}

// NewStatusGraph indexes the given definitions and validates the timed
// edges. A definition with a days limit but no destination, or with a
// destination that names an unknown status, is a configuration error:
// failing here keeps the sweep from ever force-moving a lead into a
// status that does not exist.
func NewStatusGraph(defs []*StatusDefinition) (*StatusGraph, error) {
	g := &StatusGraph{
		byName:  make(map[string]*StatusDefinition, len(defs)),
		ordered: make([]*StatusDefinition, 0, len(defs)),
	}

	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: status with empty name", ErrBadStatusGraph)
		}
		if _, exists := g.byName[name]; exists {
			return nil, fmt.Errorf("%w: duplicate status %q", ErrBadStatusGraph, name)
		}

		clean := *def
		clean.Name = name
		clean.NextStatuses = cleanStatusList(def.NextStatuses)

		g.byName[name] = &clean
		g.ordered = append(g.ordered, &clean)
	}

	for _, def := range g.ordered {
		if def.DaysLimit == nil && def.AutoMoveTo == nil {
			continue
		}
		if def.DaysLimit == nil || def.AutoMoveTo == nil {
			return nil, fmt.Errorf("%w: status %q must set days_limit and auto_move_to together", ErrBadStatusGraph, def.Name)
		}
		if *def.DaysLimit <= 0 {
			return nil, fmt.Errorf("%w: status %q has non-positive days_limit %d", ErrBadStatusGraph, def.Name, *def.DaysLimit)
		}
		if _, ok := g.byName[*def.AutoMoveTo]; !ok {
			return nil, fmt.Errorf("%w: status %q auto-moves to unknown status %q", ErrBadStatusGraph, def.Name, *def.AutoMoveTo)
		}
	}

	return g, nil
}

// Lookup returns the definition for a status name, or nil if unknown.
func (g *StatusGraph) Lookup(status string) *StatusDefinition {
	return g.byName[status]
}

// CanTransition reports whether newStatus is manually reachable from
// currentStatus. Fails closed when currentStatus is not in the graph.
// A self-transition is invalid unless the status explicitly lists itself.
func (g *StatusGraph) CanTransition(currentStatus, newStatus string) bool {
	def, ok := g.byName[currentStatus]
	if !ok {
		return false
	}
	for _, next := range def.NextStatuses {
		if next == newStatus {
			return true
		}
	}
	return false
}

// AvailableTransitions returns the ordered manual destinations from the
// given status. Unknown and terminal statuses yield an empty list, not
// an error: the "Change Status" menu simply renders empty.
func (g *StatusGraph) AvailableTransitions(currentStatus string) []string {
	def, ok := g.byName[currentStatus]
	if !ok {
		return []string{}
	}
	out := make([]string, len(def.NextStatuses))
	copy(out, def.NextStatuses)
	return out
}

// Definitions returns all definitions in their stored order.
func (g *StatusGraph) Definitions() []*StatusDefinition {
	out := make([]*StatusDefinition, len(g.ordered))
	copy(out, g.ordered)
	return out
}

// DaysIdle returns the whole days elapsed between the lead's last
// status change and now.
func DaysIdle(lastStatusUpdatedAt, now time.Time) int {
	if now.Before(lastStatusUpdatedAt) {
		return 0
	}
	return int(now.Sub(lastStatusUpdatedAt).Hours() / HoursPerDay)
}

// cleanStatusList trims whitespace and drops empty entries, preserving
// order. Statuses historically arrived as a semicolon-delimited string,
// so stray blanks in stored lists are expected.
func cleanStatusList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
