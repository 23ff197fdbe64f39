package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/ringing"
)

// ensureOwner resolves the chat to its owner id, creating the mapping on
// first contact.
func (r *Router) ensureOwner(ctx context.Context, chatID int64) (uuid.UUID, error) {
	return r.repo.EnsureUser(ctx, chatID)
}

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// withAdvisory appends non-fatal warnings: the latest sync advisory (one
// shot) and the delivery-permission state (persistent until granted). Neither
// ever blocks a mutation; they only get a banner.
func (r *Router) withAdvisory(text string) string {
	if adv := r.svc.Advisory(); adv != "" {
		text += "\n\n⚠️ " + adv
	}
	if !r.svc.PermissionGranted() {
		text += "\n\n" + permissionWarning
	}
	return text
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		r.log.Error("ensureOwner failed", zap.Error(err))
		r.sendText(chatID, "Profile initialization error. Please try again later.")
		return
	}

	// Pull any remote alarms for this owner. Advisory on failure.
	r.svc.SyncDown(ctx, owner)

	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleNew(ctx context.Context, chatID int64, arg string) {
	if _, err := r.ensureOwner(ctx, chatID); err != nil {
		r.log.Error("ensureOwner failed", zap.Error(err))
		r.sendText(chatID, "Error creating alarm. Please try again later.")
		return
	}

	at, err := alarm.ParseTimeOfDay(arg, r.loc)
	if err != nil {
		r.sendText(chatID, newUsageText)
		return
	}

	r.setDraft(chatID, &draft{at: at})
	msg := tgbotapi.NewMessage(chatID, pickTaskText)
	msg.ReplyMarkup = taskKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleList(ctx context.Context, chatID int64) {
	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		r.log.Error("ensureOwner failed", zap.Error(err))
		r.sendText(chatID, "Error reading your alarms.")
		return
	}

	alarms, err := r.svc.List(ctx, owner)
	if err != nil {
		r.log.Error("list alarms failed", zap.Error(err))
		r.sendText(chatID, "Error reading your alarms.")
		return
	}
	if len(alarms) == 0 {
		r.sendText(chatID, noAlarmsText)
		return
	}

	var b strings.Builder
	b.WriteString("🧾 Your alarms:\n")
	for i := range alarms {
		a := &alarms[i]
		status := "🔔"
		if !a.IsActive {
			status = "⏸"
		}
		fmt.Fprintf(&b, "%d. %s %s %s %s (%s)\n",
			i+1, status, a.TimeString(), a.Task.Icon(), a.Task.DisplayName(), repeatSummary(a))
	}
	b.WriteString("\n/toggle N - pause/resume, /delete N - remove")
	r.sendText(chatID, r.withAdvisory(b.String()))
}

// nthAlarm resolves a 1-based /list index to a record.
func (r *Router) nthAlarm(ctx context.Context, chatID int64, arg string) (*alarm.Alarm, bool) {
	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		r.log.Error("ensureOwner failed", zap.Error(err))
		return nil, false
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		r.sendText(chatID, "Give me the alarm number from /list.")
		return nil, false
	}
	alarms, err := r.svc.List(ctx, owner)
	if err != nil || n > len(alarms) {
		r.sendText(chatID, "No such alarm. Check /list.")
		return nil, false
	}
	return &alarms[n-1], true
}

func (r *Router) handleToggle(ctx context.Context, chatID int64, arg string) {
	a, ok := r.nthAlarm(ctx, chatID, arg)
	if !ok {
		return
	}
	toggled, err := r.svc.Toggle(ctx, a.ID)
	if err != nil {
		r.log.Error("toggle failed", zap.Error(err), zap.String("alarm", a.ID.String()))
		r.sendText(chatID, "Couldn't toggle that alarm.")
		return
	}
	if toggled.IsActive {
		r.sendText(chatID, r.withAdvisory(fmt.Sprintf("🔔 %s is back on.", toggled.TimeString())))
	} else {
		r.sendText(chatID, r.withAdvisory(fmt.Sprintf("⏸ %s is paused.", toggled.TimeString())))
	}
}

func (r *Router) handleDelete(ctx context.Context, chatID int64, arg string) {
	a, ok := r.nthAlarm(ctx, chatID, arg)
	if !ok {
		return
	}
	if err := r.svc.Delete(ctx, a.ID); err != nil {
		r.log.Error("delete failed", zap.Error(err), zap.String("alarm", a.ID.String()))
		r.sendText(chatID, "Couldn't delete that alarm.")
		return
	}
	r.sendText(chatID, r.withAdvisory(fmt.Sprintf("🗑 %s deleted.", a.TimeString())))
}

// handleStop is the override dismissal path: it silences the active session
// without verification. Kept for offline recovery and mercy.
func (r *Router) handleStop(ctx context.Context, chatID int64) {
	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		return
	}
	session, ok := r.sessions.Get(owner)
	if !ok || session.State() == ringing.StateDismissed {
		r.sendText(chatID, nothingRingingText)
		return
	}
	session.Dismiss()
	r.sessions.Remove(owner)
	r.sendText(chatID, overrideText)
}

// handleStatus reports whether an alarm is ringing for this chat.
func (r *Router) handleStatus(ctx context.Context, chatID int64) {
	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		return
	}
	session, ok := r.sessions.Get(owner)
	if !ok || session.State() == ringing.StateDismissed {
		r.sendText(chatID, r.withAdvisory(nothingRingingText))
		return
	}
	a := session.Alarm()
	r.sendText(chatID, r.withAdvisory(fmt.Sprintf(statusRingingFmt,
		a.TimeString(), a.Task.Icon(), a.Task.DisplayName(), session.State())))
}

// handleEdit starts a full edit of alarm N: new time, then task, then repeat
// days, through the same keyboards as /new.
func (r *Router) handleEdit(ctx context.Context, chatID int64, arg string) {
	a, ok := r.nthAlarm(ctx, chatID, arg)
	if !ok {
		return
	}
	r.setDraft(chatID, &draft{editID: a.ID})
	r.setPending(chatID, pendingEditTime)
	r.sendText(chatID, fmt.Sprintf(editTimeFmt, a.TimeString()))
}

// --- /new conversational flow ---

func (r *Router) handleTaskCallback(ctx context.Context, chatID int64, raw, cbID string) {
	_ = r.answerCallback(cbID, "")

	task := alarm.Task(raw)
	d := r.getDraft(chatID)
	if d == nil || !task.Valid() {
		r.sendText(chatID, newUsageText)
		return
	}
	d.task = task
	r.setDraft(chatID, d)

	msg := tgbotapi.NewMessage(chatID, pickRepeatText)
	msg.ReplyMarkup = repeatKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleRepeatCallback(ctx context.Context, chatID int64, preset, cbID string) {
	_ = r.answerCallback(cbID, "")

	d := r.getDraft(chatID)
	if d == nil || d.task == "" {
		r.sendText(chatID, newUsageText)
		return
	}

	var days []int
	switch preset {
	case "once":
		days = nil
	case "daily":
		days = []int{0, 1, 2, 3, 4, 5, 6}
	case "weekdays":
		days = []int{1, 2, 3, 4, 5}
	case "weekends":
		days = []int{0, 6}
	case "custom":
		r.sendText(chatID, customDaysText)
		r.setPending(chatID, pendingCustomDays)
		return
	default:
		return
	}

	r.commitDraft(ctx, chatID, d, days)
}

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	switch r.getPending(chatID) {
	case pendingEditTime:
		at, err := alarm.ParseTimeOfDay(text, r.loc)
		if err != nil {
			r.sendText(chatID, newUsageText)
			return
		}
		d := r.getDraft(chatID)
		if d == nil {
			r.clearPending(chatID)
			return
		}
		d.at = at
		r.setDraft(chatID, d)
		r.clearPending(chatID)

		msg := tgbotapi.NewMessage(chatID, pickTaskText)
		msg.ReplyMarkup = taskKeyboard()
		_, _ = r.bot.Send(msg)

	case pendingCustomDays:
		days, err := alarm.ParseRepeatDays(text)
		if err != nil {
			r.sendText(chatID, customDaysText)
			return
		}
		d := r.getDraft(chatID)
		if d == nil {
			r.clearPending(chatID)
			return
		}
		r.clearPending(chatID)
		r.commitDraft(ctx, chatID, d, days)
	}
}

// commitDraft finishes the /new or /edit flow once every field is collected.
func (r *Router) commitDraft(ctx context.Context, chatID int64, d *draft, days []int) {
	if d.editID != uuid.Nil {
		r.updateFromDraft(ctx, chatID, d, days)
		return
	}

	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		return
	}

	a, err := r.svc.Create(ctx, owner, d.at, d.task, days)
	if err != nil {
		r.log.Error("create alarm failed", zap.Error(err))
		r.sendText(chatID, "Couldn't create the alarm: "+err.Error())
		return
	}
	r.clearDraft(chatID)

	r.sendText(chatID, r.withAdvisory(fmt.Sprintf(
		"⏰ Alarm set for %s (%s). Task: %s %s",
		a.TimeString(), repeatSummary(a), a.Task.Icon(), a.Task.DisplayName(),
	)))
}

// updateFromDraft applies a full edit: time, task and repeat days replace the
// stored record in one update; active state is preserved.
func (r *Router) updateFromDraft(ctx context.Context, chatID int64, d *draft, days []int) {
	a, err := r.svc.Get(ctx, d.editID)
	if err != nil {
		r.log.Warn("edit target vanished", zap.Error(err), zap.String("alarm", d.editID.String()))
		r.clearDraft(chatID)
		r.sendText(chatID, "That alarm no longer exists. Check /list.")
		return
	}

	a.Time = d.at
	a.Task = d.task
	a.RepeatDays = days
	if err := r.svc.Update(ctx, a); err != nil {
		r.log.Error("edit alarm failed", zap.Error(err), zap.String("alarm", a.ID.String()))
		r.sendText(chatID, "Couldn't update the alarm: "+err.Error())
		return
	}
	r.clearDraft(chatID)

	r.sendText(chatID, r.withAdvisory(fmt.Sprintf(
		"✏️ Alarm updated: %s (%s). Task: %s %s",
		a.TimeString(), repeatSummary(a), a.Task.Icon(), a.Task.DisplayName(),
	)))
}

// --- Firing delivery and photo verification ---

// AnnounceFiring tells the chat its alarm went off. Satisfies app.Announcer.
func (r *Router) AnnounceFiring(chatID int64, a alarm.Alarm) error {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(ringingFmt, a.Task.Icon(), a.Task.DisplayName()))
	_, err := r.bot.Send(msg)
	return err
}

// handlePhoto feeds a captured photo into the owner's ringing session.
func (r *Router) handlePhoto(ctx context.Context, chatID int64, photos []tgbotapi.PhotoSize) {
	owner, err := r.ensureOwner(ctx, chatID)
	if err != nil {
		return
	}
	session, ok := r.sessions.Get(owner)
	if !ok || session.State() == ringing.StateDismissed {
		r.sendText(chatID, nothingRingingText)
		return
	}

	// Telegram sends several sizes; the last is the largest.
	image, err := r.downloadPhoto(ctx, photos[len(photos)-1].FileID)
	if err != nil {
		r.log.Warn("photo download failed", zap.Error(err))
		r.sendText(chatID, verifyErrorText)
		return
	}

	task := session.Alarm().Task
	verified, err := session.SubmitCapture(ctx, image)
	switch {
	case errors.Is(err, ringing.ErrSessionOver):
		r.sendText(chatID, nothingRingingText)
	case err != nil:
		// Verifier errors behave like a mismatch: still ringing, retry.
		r.sendText(chatID, verifyErrorText)
	case verified:
		r.sessions.Remove(owner)
		r.sendText(chatID, fmt.Sprintf(verifiedFmt, task.DisplayName()))
	default:
		r.sendText(chatID, fmt.Sprintf(notVerifiedFmt, task.DisplayName()))
	}
}

// downloadPhoto fetches the raw bytes of a Telegram photo.
func (r *Router) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("photo download: status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
