package domain

import "strings"

// Canonical weekday names, Monday-first. Plan maps always carry all seven keys.
var Days = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DaysShort are the keyboard labels for day selection, index-aligned with Days.
var DaysShort = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// PlanItem is one task for a weekday. Time is an optional "HH:MM" local clock;
// items with a time are reminder-eligible, items without are display-only.
type PlanItem struct {
	Time string `json:"time,omitempty"`
	Text string `json:"text"`
}

// MessageRef identifies a sent Telegram message for later edit/delete.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Profile is the durable per-user record.
type Profile struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	Timezone      string                `json:"timezone"`
	NotifyTime    string                `json:"notify_time,omitempty"` // "HH:MM", empty until the user sets it
	SetupComplete bool                  `json:"setup_complete"`
	Plans         map[string][]PlanItem `json:"plans"`
	LastMessage   *MessageRef           `json:"last_message,omitempty"`
	LastBriefMsg  *MessageRef           `json:"last_brief_msg,omitempty"`    // most recent morning brief, replaced daily
	LastBriefDate string                `json:"last_brief_date,omitempty"`   // YYYY-MM-DD local
	LastSummary   string                `json:"last_summary_date,omitempty"` // YYYY-MM-DD local
	Fired         map[string]bool       `json:"fired_reminders,omitempty"`   // keys: "date|time|text"
	Itog          *ItogSession          `json:"itog,omitempty"`
}

// ReminderKey builds the dedup key for a timed item on a local date.
func ReminderKey(date string, it PlanItem) string {
	return date + "|" + it.Time + "|" + it.Text
}

// PruneFired drops reminder keys whose date component is older than cutoff
// (YYYY-MM-DD; lexicographic order matches chronological order). Stale keys are
// dead weight once their day has passed.
func (p *Profile) PruneFired(cutoff string) {
	for k := range p.Fired {
		if date, _, ok := strings.Cut(k, "|"); ok && date < cutoff {
			delete(p.Fired, k)
		}
	}
}

// NewProfile returns a profile with defaults: all seven days present and empty,
// setup not complete, no notification time.
func NewProfile(id int64, name, tz string) *Profile {
	return &Profile{
		ID:       id,
		Name:     name,
		Timezone: tz,
		Plans:    emptyWeek(),
		Fired:    make(map[string]bool),
	}
}

// Normalize repairs a profile loaded from storage: fills missing weekday keys
// and nil maps so callers never see a partial week.
func (p *Profile) Normalize(defaultTZ string) {
	if p.Timezone == "" {
		p.Timezone = defaultTZ
	}
	if p.Plans == nil {
		p.Plans = emptyWeek()
	} else {
		for _, d := range Days {
			if _, ok := p.Plans[d]; !ok {
				p.Plans[d] = nil
			}
		}
	}
	if p.Fired == nil {
		p.Fired = make(map[string]bool)
	}
}

func emptyWeek() map[string][]PlanItem {
	m := make(map[string][]PlanItem, len(Days))
	for _, d := range Days {
		m[d] = nil
	}
	return m
}
