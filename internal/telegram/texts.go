package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// Menu button labels. Handlers match on these exact strings.
const (
	btnConfigurePlans = "📋 Configure plans"
	btnGlobalPlans    = "🌍 Global plans"
	btnMyPlans        = "🗓 My plans"
	btnTimezone       = "🌐 Timezone"

	btnSkipAll   = "⏭️ Skip all"
	btnDone      = "✅ Done"
	btnDeleteDay = "🗑️ Delete a day"
	btnSkipDay   = "⏭️ Skip this day"
	btnCancel    = "❌ Cancel"

	btnAppend   = "➕ Add more"
	btnRewrite  = "✏️ Rewrite"
	btnContinue = "➡️ Continue"

	btnGlobalAdd     = "➕ Add"
	btnGlobalRewrite = "✏️ Rewrite"
	btnGlobalDelete  = "🗑️ Delete"
	btnBack          = "⬅️ Back"

	btnYes = "Yes"
	btnNo  = "No"
)

func welcomeText(name string) string {
	return fmt.Sprintf("🎯 Hi, %s!\n\n", name) +
		"I'm your personal diary planner. In the morning I help you focus, " +
		"in the evening I gently walk you through a review.\n\n" +
		"✨ What I can do:\n" +
		"• remind you about the day's plans and show your long-term goals;\n" +
		"• walk you through the evening review with /itog;\n" +
		"• show any day's plans with /day DD.MM.YYYY.\n\n" +
		"⏰ Use /plan to update the schedule at any time.\n" +
		"💬 No need to fill in every day — pick only what matters now.\n\n" +
		"Ready to start?"
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfigurePlans),
			tgbotapi.NewKeyboardButton(btnGlobalPlans),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyPlans),
			tgbotapi.NewKeyboardButton(btnTimezone),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// dayKeyboard lists the seven short day labels plus the given extra rows.
func dayKeyboard(extra ...string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(domain.DaysShort)+len(extra))
	for _, d := range domain.DaysShort {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(d)))
	}
	for _, label := range extra {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func reviewKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAppend),
			tgbotapi.NewKeyboardButton(btnRewrite),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnContinue),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func globalMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGlobalAdd),
			tgbotapi.NewKeyboardButton(btnGlobalRewrite),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGlobalDelete),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnYes),
			tgbotapi.NewKeyboardButton(btnNo),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func singleButtonKeyboard(label string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func timezoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(timezones))
	for _, tz := range timezones {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(tz)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// timezones offered on the /timezone keyboard.
var timezones = []string{
	"Asia/Irkutsk",
	"Europe/Moscow",
	"Europe/Kaliningrad",
	"Asia/Yekaterinburg",
	"Asia/Krasnoyarsk",
	"Asia/Vladivostok",
}

// --- Text builders ---

func weeklyPlansText(p *domain.Profile) string {
	lines := []string{"🗓️ Your week at a glance:", ""}
	for _, day := range domain.Days {
		items := p.Plans[day]
		if len(items) == 0 {
			lines = append(lines, day+": — rest or spontaneity", "")
			continue
		}
		lines = append(lines, day+":")
		for _, it := range items {
			lines = append(lines, "   • "+domain.FormatPlanLine(it))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func dayViewText(dateText, dayName string, items []domain.PlanItem, global []string) string {
	lines := []string{fmt.Sprintf("📅 %s — %s", dateText, dayName), ""}
	if len(items) > 0 {
		lines = append(lines, "📋 Plan for the day:")
		for _, it := range items {
			lines = append(lines, "• "+domain.FormatPlanLine(it))
		}
	} else {
		lines = append(lines, "📋 Nothing recorded yet — you can fill it in with /plan.")
	}
	if len(global) > 0 {
		lines = append(lines, "", "🌍 Long-term goals:")
		for _, g := range global {
			lines = append(lines, "• "+g)
		}
	}
	return strings.Join(lines, "\n")
}

func briefText(dayName, dateShort string, items []domain.PlanItem, global []string) string {
	lines := []string{
		fmt.Sprintf("🌞 %s, %s", dayName, dateShort),
		"",
		"Here's what's in focus today:",
		"",
	}
	if len(items) > 0 {
		lines = append(lines, "📋 Today's tasks:")
		for _, it := range items {
			lines = append(lines, "• "+domain.FormatPlanLine(it))
		}
	} else {
		lines = append(lines, "📋 No daily plans recorded — add some with /plan.")
	}
	if len(global) > 0 {
		lines = append(lines, "", "🌍 Long-term goals:")
		for _, g := range global {
			lines = append(lines, "• "+g)
		}
	}
	return strings.Join(lines, "\n")
}

func reminderText(it domain.PlanItem) string {
	return fmt.Sprintf("⏰ It's %s — %s", it.Time, it.Text)
}

func summaryText(dateText, dayName string, items []domain.PlanItem) string {
	lines := []string{
		fmt.Sprintf("🌙 %s • %s", dateText, dayName),
		"",
		"A good moment to gently review the day ✨",
		"",
	}
	if len(items) > 0 {
		lines = append(lines, "Here's what was planned:")
		for _, it := range items {
			lines = append(lines, "• "+domain.FormatPlanLine(it))
		}
	} else {
		lines = append(lines, "No tasks were recorded today — just note how you feel.")
	}
	lines = append(lines, "", "To walk through each item together, press /itog.")
	return strings.Join(lines, "\n")
}

// escapeHTML escapes user text for HTML parse mode.
func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// checklistText renders the numbered itog checklist in HTML, striking through
// completed items.
func checklistText(s *domain.ItogSession) string {
	lines := []string{fmt.Sprintf("📘 Review checklist: %s • %s", s.Date, s.DayName), ""}
	if len(s.Items) == 0 {
		lines = append(lines, "No plans for today.")
	} else {
		for i, it := range s.Items {
			text := escapeHTML(domain.FormatPlanLine(it))
			if s.Completed[i] {
				text = "<s>" + text + "</s>"
			}
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, text))
		}
		lines = append(lines, "", "Press Yes or No for each item below.")
	}
	return strings.Join(lines, "\n")
}

func questionText(index int, it domain.PlanItem) string {
	return fmt.Sprintf("How did item %d go?\n\n%s", index+1, domain.FormatPlanLine(it))
}

func reviewText(dayName string, pending []domain.PlanItem, existing []domain.PlanItem, skip bool) string {
	var body string
	switch {
	case skip && len(existing) > 0:
		var b strings.Builder
		b.WriteString("Keeping as is:\n")
		for i, it := range existing {
			fmt.Fprintf(&b, "%d. %s\n", i+1, domain.FormatPlanLine(it))
		}
		body = strings.TrimRight(b.String(), "\n")
	case skip:
		body = "This day stays free for now."
	case len(pending) > 0:
		var b strings.Builder
		for i, it := range pending {
			fmt.Fprintf(&b, "%d. %s\n", i+1, domain.FormatPlanLine(it))
		}
		body = strings.TrimRight(b.String(), "\n")
	default:
		body = "This day has no entries yet."
	}
	return fmt.Sprintf("✅ All set for %s!\n\n%s\n\nAnything to adjust, or shall we move on?", dayName, body)
}
