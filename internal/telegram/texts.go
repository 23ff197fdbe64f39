package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

// UI texts in English
const (
	startText = "⏰ I am an alarm clock that does not trust you.\n\n" +
		"Create an alarm with /new HH:MM and pick a wake-up task. " +
		"When it rings, the only way to shut it up is to send a photo proving you did the task.\n\n" +
		"/list - your alarms\n" +
		"/status - what's ringing\n" +
		"/toggle N - pause or resume alarm N\n" +
		"/edit N - change alarm N's time, task and repeat days\n" +
		"/delete N - remove alarm N\n" +
		"/stop - emergency dismiss (you coward)"
	newUsageText       = "Send /new HH:MM, e.g. /new 07:30"
	pickTaskText       = "What do you have to photograph to dismiss it?"
	pickRepeatText     = "When should it repeat?"
	customDaysText     = "Enter weekday numbers 0-6 (0=Sunday), comma-separated. Example: 1,2,3,4,5"
	noAlarmsText       = "No alarms yet. Create one with /new HH:MM"
	nothingRingingText = "Nothing is ringing right now."
	ringingFmt         = "🚨 Time to wake up!\nComplete your task: %s %s\nSend me a photo of it to stop the alarm."
	verifiedFmt        = "✅ %s verified. Alarm dismissed, good morning!"
	notVerifiedFmt     = "❌ That doesn't look like %s to me. The alarm keeps ringing, try another photo."
	verifyErrorText    = "⚠️ Couldn't check that photo, the alarm keeps ringing. Try again."
	statusRingingFmt   = "🚨 The %s alarm is ringing. Task: %s %s (state: %s)"
	overrideText       = "🔕 Alarm dismissed without proof. It happens."
	editTimeFmt        = "✏️ Editing the %s alarm. Send the new time as HH:MM."
	permissionWarning  = "🔇 Notification permission denied: alarms stay scheduled but may not ring."
)

// mainMenuKeyboard is the persistent reply keyboard.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/list"),
			tgbotapi.NewKeyboardButton("/stop"),
		),
	)
}

// taskKeyboard offers one button per verification task.
func taskKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(alarm.Tasks()))
	for _, task := range alarm.Tasks() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(task.Icon()+" "+task.DisplayName(), "task:"+string(task)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// repeatKeyboard offers repeat presets plus a custom entry.
func repeatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Once", "repeat:once"),
			tgbotapi.NewInlineKeyboardButtonData("Every day", "repeat:daily"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Weekdays", "repeat:weekdays"),
			tgbotapi.NewInlineKeyboardButtonData("Weekends", "repeat:weekends"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Custom…", "repeat:custom"),
		),
	)
}

var shortWeekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// repeatSummary renders an alarm's repeat set for the /list view.
func repeatSummary(a *alarm.Alarm) string {
	if !a.Repeats() {
		return "once"
	}
	if len(a.RepeatDays) == 7 {
		return "every day"
	}
	out := ""
	for i, d := range a.RepeatDays {
		if i > 0 {
			out += ","
		}
		out += shortWeekdays[d]
	}
	return out
}
