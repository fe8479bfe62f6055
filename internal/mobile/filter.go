package mobile

import "strings"

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusOpen      StatusFilter = "open"
	StatusCompleted StatusFilter = "completed"
)

func (s StatusFilter) Next() StatusFilter {
	switch s {
	case StatusAll, "":
		return StatusOpen
	case StatusOpen:
		return StatusCompleted
	}

	return StatusAll
}

// PriorityAll disables the priority filter.
const PriorityAll Priority = "all"

func NextPriorityFilter(p Priority) Priority {
	switch p {
	case PriorityAll, "":
		return PriorityHigh
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	}

	return PriorityAll
}

// TodoFilter narrows the list view. Empty fields match everything.
type TodoFilter struct {
	Status   StatusFilter
	Priority Priority
	Search   string
}

func (f TodoFilter) Match(t Todo) bool {
	switch f.Status {
	case StatusOpen:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if f.Priority != "" && f.Priority != PriorityAll && t.Priority != f.Priority {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}

	if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}

	for _, tag := range t.Tags {
		tag = strings.ToLower(tag)
		if strings.Contains(tag, q) || strings.Contains("#"+tag, q) {
			return true
		}
	}

	return false
}

func FilterTodos(todos []Todo, f TodoFilter) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}

	return out
}

type Stats struct {
	Total     int
	Completed int
	Active    int
	Synced    int
	ByNetwork map[string]int
}

func ComputeStats(todos []Todo) Stats {
	stats := Stats{Total: len(todos), ByNetwork: make(map[string]int)}

	for _, t := range todos {
		if t.Completed {
			stats.Completed++
		} else {
			stats.Active++
		}

		if t.IsSynced() {
			stats.Synced++
		}

		if t.BlockchainNetwork != "" {
			stats.ByNetwork[string(t.BlockchainNetwork)]++
		}
	}

	return stats
}
