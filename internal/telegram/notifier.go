// Package telegram pushes plans and shopping lists to a family's Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
)

// ErrNoChat is returned when no chat ID was configured for the recipient.
var ErrNoChat = errors.New("no telegram chat configured")

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends Markdown messages to Telegram chats.
type Notifier struct {
	api    Sender
	logger *zap.Logger
}

// NewNotifier authorizes the bot token and returns a notifier.
func NewNotifier(token string, logger *zap.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return NewNotifierWithSender(api, logger), nil
}

// NewNotifierWithSender builds a notifier over an existing sender.
func NewNotifierWithSender(api Sender, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{api: api, logger: logger}
}

// SendShoppingList sends the list to chatID.
func (n *Notifier) SendShoppingList(ctx context.Context, chatID int64, weekStart string, list shopping.CategorizedList) error {
	return n.send(ctx, chatID, FormatShoppingList(weekStart, list))
}

// SendPlan sends a plan summary to chatID.
func (n *Notifier) SendPlan(ctx context.Context, chatID int64, weekStart string, plan meal.MealPlan) error {
	return n.send(ctx, chatID, FormatPlan(weekStart, plan))
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return ErrNoChat
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Debug("telegram message sent", zap.Int64("chat_id", chatID), zap.Int("length", len(text)))
	return nil
}
