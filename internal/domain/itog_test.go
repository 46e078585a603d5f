package domain

import "testing"

func TestItogSession_AnswerFlow(t *testing.T) {
	s := NewItogSession("12.05.2025", "Monday", []PlanItem{{Text: "A"}, {Text: "B"}})

	if s.Done() {
		t.Fatal("fresh session reports done")
	}
	if s.Current().Text != "A" {
		t.Fatalf("current: %+v", s.Current())
	}

	s.Answer(true) // A done
	if s.Current().Text != "B" {
		t.Fatalf("current after first answer: %+v", s.Current())
	}
	s.Answer(false) // B skipped

	if !s.Done() {
		t.Fatal("session not done after all answers")
	}
	if s.CompletedCount() != 1 {
		t.Fatalf("completed: %d", s.CompletedCount())
	}
}

func TestItogSession_ApplyRemovesByPosition(t *testing.T) {
	live := []PlanItem{{Text: "dup"}, {Text: "dup"}, {Text: "C"}}
	s := NewItogSession("12.05.2025", "Monday", live)
	s.Answer(true)  // first "dup"
	s.Answer(false) // second "dup"
	s.Answer(true)  // "C"

	got := s.Apply(live)
	if len(got) != 1 || got[0].Text != "dup" {
		t.Fatalf("apply: %+v", got)
	}
}

func TestItogSession_SnapshotFrozen(t *testing.T) {
	live := []PlanItem{{Text: "A"}}
	s := NewItogSession("12.05.2025", "Monday", live)
	live[0].Text = "mutated"
	if s.Items[0].Text != "A" {
		t.Fatal("snapshot shares backing array with live plan")
	}
}

func TestItogSession_ApplyKeepsMidSessionAdditions(t *testing.T) {
	s := NewItogSession("12.05.2025", "Monday", []PlanItem{{Text: "A"}, {Text: "B"}})
	s.Answer(true)
	s.Answer(false)

	live := []PlanItem{{Text: "A"}, {Text: "B"}, {Text: "added later"}}
	got := s.Apply(live)
	if len(got) != 2 || got[0].Text != "B" || got[1].Text != "added later" {
		t.Fatalf("apply: %+v", got)
	}
}
