package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Choice is one inline-keyboard option: a visible label and the action
// token delivered back as callback data when pressed.
type Choice struct {
	Label  string
	Action string
}

// MessageSender is the outbound half of the messaging transport.
type MessageSender interface {
	SendText(chatID int64, text string) error
	SendChoice(chatID int64, text string, options []Choice) error
}

// TelegramSender sends through the Bot API. It also serves the
// scheduler, which only needs SendText.
type TelegramSender struct {
	botAPI *tgbotapi.BotAPI
}

func NewTelegramSender(botAPI *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{
		botAPI: botAPI,
	}
}

func (t *TelegramSender) SendText(chatID int64, text string) error {
	if _, err := t.botAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("TelegramSender.SendText: %w", err)
	}

	return nil
}

func (t *TelegramSender) SendChoice(chatID int64, text string, options []Choice) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option.Label, option.Action),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)

	if _, err := t.botAPI.Send(msg); err != nil {
		return fmt.Errorf("TelegramSender.SendChoice: %w", err)
	}

	return nil
}
