package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/audio"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/backend"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/config"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/notify"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/ringing"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/schedule"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/service"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/store"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/telegram"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/verify"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server

	repo     store.Repo
	notifier *notify.Local
	svc      *service.Alarms
	sessions *ringing.Registry
	verifier *verify.Verifier
	router   *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting snooze-u-looze",
		zap.String("tz", a.cfg.DefaultTZ),
		zap.String("http", a.cfg.HTTPAddr),
	)

	loc, err := time.LoadLocation(a.cfg.DefaultTZ)
	if err != nil {
		a.log.Error("bad DEFAULT_TZ", zap.Error(err))
		return err
	}

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath, loc)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	// Remote sync is optional: without a Supabase URL the service runs
	// purely local. Pass a typed nil and the service would treat it as
	// present, so the interface is only assigned when configured.
	var remote service.Remote
	if a.cfg.SupabaseURL != "" {
		remote = backend.NewClient(a.cfg.SupabaseURL, a.cfg.SupabaseKey)
		a.log.Info("remote sync enabled", zap.String("url", a.cfg.SupabaseURL))
	}

	a.notifier = notify.NewLocal(a.log)
	coord := schedule.New(a.notifier, a.log)
	a.svc = service.New(a.repo, coord, remote, a.log)
	a.verifier = verify.New(verify.NewHTTPClassifier(a.cfg.ClassifierURL), a.log)
	a.sessions = ringing.NewRegistry()
	a.router = telegram.NewRouter(a.bot, a.log, a.repo, a.svc, a.sessions, loc)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.notifier.Run(ctx)
	go a.consumeFirings(ctx)

	// Re-arm active alarms that survived a restart.
	if err := a.svc.RestoreSchedules(ctx); err != nil {
		a.log.Warn("restore schedules failed", zap.Error(err))
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// consumeFirings opens a ringing session for every delivered firing and
// announces it in the owning chat.
func (a *App) consumeFirings(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-a.notifier.Firings():
			a.handleFiring(ctx, f)
		}
	}
}

func (a *App) handleFiring(ctx context.Context, f notify.Firing) {
	al, err := a.repo.GetAlarm(ctx, f.Payload.AlarmID)
	if err != nil {
		// Deleted between scheduling and delivery: nothing to ring.
		a.log.Warn("firing for unknown alarm", zap.String("entry", f.EntryID), zap.Error(err))
		return
	}
	if !al.IsActive {
		a.log.Info("firing for paused alarm, skipped", zap.String("alarm", al.ID.String()))
		return
	}

	chatID, err := a.repo.ChatForOwner(ctx, al.OwnerID)
	if err != nil {
		a.log.Error("no chat for owner", zap.String("owner", al.OwnerID.String()), zap.Error(err))
		return
	}

	session := ringing.NewSession(*al, audio.NewAlarmPlayer(a.log), a.verifier, a.log)
	a.sessions.Put(al.OwnerID, session)
	session.Start()

	a.log.Info("alarm ringing",
		zap.String("alarm", al.ID.String()),
		zap.String("task", string(al.Task)),
		zap.Int64("chat", chatID),
	)

	if err := a.router.AnnounceFiring(chatID, *al); err != nil {
		a.log.Warn("announce firing failed", zap.Error(err))
	}
}

func (a *App) shutdown() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	// Silence anything still ringing before the process dies.
	a.sessions.DismissAll()

	// Let in-flight remote sync attempts finish.
	a.svc.Wait()

	if a.repo != nil {
		_ = a.repo.Close()
	}
}
