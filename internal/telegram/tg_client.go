// Package telegram connects the hub to an administrators' Telegram chat. New
// complaints are posted there with inline status buttons, and the same chat
// can drive a handful of admin commands.
package telegram

import (
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/notify"
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the package uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// statusCallbackPrefix starts the callback data of a status button:
// "status:<complaint id>:<status>".
const statusCallbackPrefix = "status:"

// AdminNotifier posts admin notices to one chat. It implements
// notify.AdminChannel.
type AdminNotifier struct {
	Bot    BotAPI
	ChatID int64
}

func NewAdminNotifier(bot BotAPI, chatID int64) *AdminNotifier {
	return &AdminNotifier{Bot: bot, ChatID: chatID}
}

var _ notify.AdminChannel = (*AdminNotifier)(nil)

func (n *AdminNotifier) NotifyAdmin(_ context.Context, notice notify.AdminNotice) error {
	text := notice.Subject + "\n\n" + notice.Body
	if notice.Link != "" && !strings.Contains(notice.Body, notice.Link) {
		text += "\n" + notice.Link
	}

	msg := tgbotapi.NewMessage(n.ChatID, text)
	if notice.ComplaintID != "" {
		msg.ReplyMarkup = statusKeyboard(notice.ComplaintID)
	}
	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func statusKeyboard(complaintID string) tgbotapi.InlineKeyboardMarkup {
	button := func(label string, status models.ComplaintStatus) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, statusCallbackData(complaintID, status))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("Under review", models.StatusUnderReview),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("Resolved", models.StatusResolved),
			button("Dismissed", models.StatusDismissed),
		),
	)
}

func statusCallbackData(complaintID string, status models.ComplaintStatus) string {
	return statusCallbackPrefix + complaintID + ":" + string(status)
}

func parseStatusCallback(data string) (complaintID, status string, ok bool) {
	rest, found := strings.CutPrefix(data, statusCallbackPrefix)
	if !found {
		return "", "", false
	}
	complaintID, status, ok = strings.Cut(rest, ":")
	if !ok || complaintID == "" || status == "" {
		return "", "", false
	}
	return complaintID, status, true
}
