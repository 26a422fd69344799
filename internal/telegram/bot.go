package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bmi-quickcalc/internal/config"
	"bmi-quickcalc/internal/form"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"
	"bmi-quickcalc/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Sender is the subset of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot runs the guided calculator form over Telegram chats.
type Bot struct {
	api      Sender
	sessions session.Store
	recorder *metrics.Recorder
	activity *metrics.Store
	cfg      *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, sessions session.Store, recorder *metrics.Recorder, activity *metrics.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("Authorized on account", zap.String("username", api.Self.UserName))

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	logger.Info("Webhook set", zap.String("response", resp.Description))

	return newBot(api, cfg, sessions, recorder, activity), nil
}

func newBot(api Sender, cfg *config.Config, sessions session.Store, recorder *metrics.Recorder, activity *metrics.Store) *Bot {
	return &Bot{
		api:      api,
		sessions: sessions,
		recorder: recorder,
		activity: activity,
		cfg:      cfg,
	}
}

// Routes returns the webhook, health and metrics endpoints.
func (b *Bot) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", b.HandleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// HandleWebhook decodes one update pushed by Telegram and processes it.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("Error parsing update", zap.Error(err))
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	b.HandleUpdate(ctx, update)

	w.WriteHeader(http.StatusOK)
}

// HandleUpdate routes a message or button press. Users outside the
// configured allow-list are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if q := update.CallbackQuery; q != nil {
		if q.From == nil || !b.cfg.IsAllowedTelegramUser(q.From.ID) {
			b.logUnauthorized(q.From)
			return
		}
		b.handleCallbackQuery(ctx, q)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.From == nil || !b.cfg.IsAllowedTelegramUser(msg.From.ID) {
		b.logUnauthorized(msg.From)
		return
	}
	b.processMessage(ctx, msg)
}

func (b *Bot) logUnauthorized(u *tgbotapi.User) {
	if u == nil {
		return
	}
	logger.Warn("Unauthorized access attempt", zap.Int64("user_id", u.ID), zap.String("username", u.UserName))
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	cmd, ok := command(text)
	if !ok {
		b.handleAnswer(ctx, chatID, text)
		return
	}

	switch cmd {
	case "start", "help":
		b.send(chatID, welcomeText, nil, 0)
	case "calculate":
		f := form.New()
		b.save(ctx, chatID, f)
		b.prompt(chatID, f, "", 0)
	case "about":
		b.send(chatID, aboutText(), nil, 0)
	case "reset":
		if err := b.sessions.Delete(ctx, sessionKey(chatID)); err != nil {
			logger.Warn("failed to delete session", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		b.send(chatID, "🧹 Form cleared. Send /calculate to start again.", nil, 0)
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.send(chatID, "⛔ *Access Denied*: Admin only.", nil, 0)
			return
		}
		b.handleMetricsCommand(ctx, chatID)
	default:
		b.send(chatID, "🤔 Unknown command.\n\n"+welcomeText, nil, 0)
	}
}

// command extracts the command name from "/name@bot args".
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text)[0][1:]
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), true
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	var days []metrics.DailyActivity
	if b.activity != nil {
		var err error
		days, err = b.activity.GetDailyActivity(ctx, 7)
		if err != nil {
			logger.Error("failed to fetch activity", zap.Error(err))
			b.send(chatID, "❌ Error fetching metrics.", nil, 0)
			return
		}
	}
	b.send(chatID, formatMetrics(days, metrics.GetSysHealth(b.cfg.DataDir)), nil, 0)
}

func (b *Bot) load(ctx context.Context, chatID int64) *form.Form {
	f, err := session.Load(ctx, b.sessions, sessionKey(chatID))
	if err != nil {
		logger.Error("failed to load session", zap.Int64("chat_id", chatID), zap.Error(err))
		return form.New()
	}
	return f
}

func (b *Bot) save(ctx context.Context, chatID int64, f *form.Form) {
	if err := b.sessions.Put(ctx, sessionKey(chatID), f); err != nil {
		logger.Warn("failed to save session", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

// send posts a Markdown message, or edits editID in place when it is set.
func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup, editID int) {
	var c tgbotapi.Chattable
	if editID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, editID, text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		edit.ReplyMarkup = markup
		c = edit
	} else {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			msg.ReplyMarkup = *markup
		}
		c = msg
	}
	if _, err := b.api.Send(c); err != nil {
		logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
