package telegram

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/ringing"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/service"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/store"
)

// Pending state keys used in conversational flows.
const (
	pendingCustomDays = "await_custom_days_text"
	pendingEditTime   = "await_edit_time_text"
)

// draft is an alarm being assembled by the /new flow, or re-assembled by the
// /edit flow when editID is set.
type draft struct {
	at     time.Time
	task   alarm.Task
	editID uuid.UUID
}

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	repo     store.Repo
	svc      *service.Alarms
	sessions *ringing.Registry
	loc      *time.Location
	httpc    *http.Client

	mu     sync.RWMutex
	state  map[int64]string // chatID -> pending state
	drafts map[int64]*draft // chatID -> alarm under construction
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, svc *service.Alarms, sessions *ringing.Registry, loc *time.Location) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		repo:     repo,
		svc:      svc,
		sessions: sessions,
		loc:      loc,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		state:    make(map[int64]string),
		drafts:   make(map[int64]*draft),
	}
}

// setPending sets a pending state for a chat (non-persistent, in-memory).
func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// getPending returns current pending state for a chat.
func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

// clearPending clears a pending state for a chat.
func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

func (r *Router) setDraft(chatID int64, d *draft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[chatID] = d
}

func (r *Router) getDraft(chatID int64) *draft {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.drafts[chatID]
}

func (r *Router) clearDraft(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, chatID)
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID

		// Photo captures feed the ringing session's verification gate.
		if len(msg.Photo) > 0 {
			r.handlePhoto(ctx, chatID, msg.Photo)
			return
		}

		text := strings.TrimSpace(msg.Text)
		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/new"):
			r.handleNew(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/new")))
		case strings.HasPrefix(text, "/list"):
			r.handleList(ctx, chatID)
		case strings.HasPrefix(text, "/toggle"):
			r.handleToggle(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/toggle")))
		case strings.HasPrefix(text, "/delete"):
			r.handleDelete(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/delete")))
		case strings.HasPrefix(text, "/edit"):
			r.handleEdit(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/edit")))
		case strings.HasPrefix(text, "/stop"):
			r.handleStop(ctx, chatID)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, chatID)
		default:
			// Free-form text used by the custom repeat-days flow.
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case strings.HasPrefix(data, "task:"):
			r.handleTaskCallback(ctx, chatID, strings.TrimPrefix(data, "task:"), cb.ID)
		case strings.HasPrefix(data, "repeat:"):
			r.handleRepeatCallback(ctx, chatID, strings.TrimPrefix(data, "repeat:"), cb.ID)
		default:
			// Unknown callback - ignore silently
		}
		return
	}
}
