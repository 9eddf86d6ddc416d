package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// CacheClearer empties the shared cache.
type CacheClearer interface {
	ClearAll(ctx context.Context) error
}

const helpText = `Attorney hub admin bot
/status <complaint id> <status> - change a complaint's status
/clearcache - drop every cached entry
/help - this message`

// BotService answers commands and status buttons from the admin chat.
// Updates from any other chat are ignored.
type BotService struct {
	Bot         BotAPI
	AdminChatID int64
	Complaints  StatusSetter
	Cache       CacheClearer
	Log         *zap.Logger
}

// NewBotAPI authorizes token against Telegram.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorize: %w", err)
	}
	bot.Debug = false
	return bot, nil
}

func NewBotService(bot BotAPI, adminChatID int64, complaints StatusSetter, c CacheClearer, log *zap.Logger) *BotService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BotService{Bot: bot, AdminChatID: adminChatID, Complaints: complaints, Cache: c, Log: log}
}

// Run is the main loop for receiving Telegram updates. It returns when ctx
// is done.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.Bot.GetUpdatesChan(u)
	defer s.Bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update.
func (s *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		if update.Message.Chat.ID != s.AdminChatID {
			s.Log.Debug("ignoring message from foreign chat", zap.Int64("chat_id", update.Message.Chat.ID))
			return
		}
		if update.Message.IsCommand() {
			s.handleCommand(ctx, update.Message)
		}
	case update.CallbackQuery != nil:
		s.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (s *BotService) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var reply string
	switch msg.Command() {
	case "start", "help":
		reply = helpText
	case "status":
		reply = HandleStatusCommand(ctx, msg.CommandArguments(), s.Complaints)
	case "clearcache":
		reply = s.clearCache(ctx)
	default:
		reply = "Unknown command. Send /help for the list."
	}
	s.reply(reply)
}

func (s *BotService) clearCache(ctx context.Context) string {
	if s.Cache == nil {
		return "No cache configured."
	}
	if err := s.Cache.ClearAll(ctx); err != nil {
		s.Log.Error("clear cache from telegram", zap.Error(err))
		return "Failed to clear the cache."
	}
	s.Log.Info("cache cleared from telegram")
	return "Cache cleared."
}

func (s *BotService) handleCallbackQuery(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil || q.Message.Chat.ID != s.AdminChatID {
		return
	}

	// Respond to the callback query to remove the "loading" state
	if _, err := s.Bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		s.Log.Warn("failed to answer callback", zap.Error(err))
	}

	id, status, ok := parseStatusCallback(q.Data)
	if !ok {
		return
	}
	s.reply(applyStatus(ctx, s.Complaints, id, status))
}

func (s *BotService) reply(text string) {
	if _, err := s.Bot.Send(tgbotapi.NewMessage(s.AdminChatID, text)); err != nil {
		s.Log.Warn("telegram reply failed", zap.Error(err))
	}
}
