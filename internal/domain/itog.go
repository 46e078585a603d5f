package domain

// ItogSession is the persisted evening-review checklist state. Items is a
// frozen snapshot of the day's plan taken at session start; edits to the live
// plan while the session runs do not perturb it. It lives inside Profile so the
// multi-message flow survives a process restart.
type ItogSession struct {
	Date              string       `json:"date"`     // DD.MM.YYYY, for display
	DayName           string       `json:"day_name"` // canonical weekday
	Items             []PlanItem   `json:"items"`
	Index             int          `json:"index"` // next item to ask; == len(Items) means exhausted
	Completed         map[int]bool `json:"completed,omitempty"`
	ListMessageID     int          `json:"list_message_id,omitempty"`
	QuestionMessageID int          `json:"question_message_id,omitempty"`
}

// NewItogSession snapshots the given plan for review. The snapshot is copied so
// later mutation of the live slice cannot reach it.
func NewItogSession(date, dayName string, plan []PlanItem) *ItogSession {
	items := make([]PlanItem, len(plan))
	copy(items, plan)
	return &ItogSession{
		Date:      date,
		DayName:   dayName,
		Items:     items,
		Completed: make(map[int]bool),
	}
}

// Done reports whether every item has been asked.
func (s *ItogSession) Done() bool {
	return s.Index >= len(s.Items)
}

// Current returns the item awaiting an answer. Only valid when !Done().
func (s *ItogSession) Current() PlanItem {
	return s.Items[s.Index]
}

// Answer records a yes/no for the current item and advances. It returns whether
// the answer marked the item completed.
func (s *ItogSession) Answer(yes bool) bool {
	if s.Done() {
		return false
	}
	if yes {
		if s.Completed == nil {
			s.Completed = make(map[int]bool)
		}
		s.Completed[s.Index] = true
	}
	s.Index++
	return yes
}

// CompletedCount returns how many items were answered yes.
func (s *ItogSession) CompletedCount() int {
	return len(s.Completed)
}

// Apply removes the completed snapshot positions from the live plan and returns
// the remainder. Removal is by position in the snapshot, never by text match,
// so identical-text items stay distinguishable. Items present in the live plan
// beyond the snapshot (added mid-session) are kept.
func (s *ItogSession) Apply(live []PlanItem) []PlanItem {
	var remaining []PlanItem
	for i := 0; i < len(live); i++ {
		if i < len(s.Items) && s.Completed[i] {
			continue
		}
		remaining = append(remaining, live[i])
	}
	return remaining
}
