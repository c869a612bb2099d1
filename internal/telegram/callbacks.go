package telegram

import (
	"context"
	"log/slog"

	"ReadinessBot/internal/utils/logger/sl"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// handleCallbackQuery dispatches inline keyboard callbacks.
func (rb *Bot) handleCallbackQuery(ctx context.Context, callback *tgmodels.CallbackQuery) {
	op := "telegram.handleCallbackQuery()"
	log := rb.log.With(slog.String("op", op))

	msg := callback.Message.Message
	if msg == nil {
		rb.answerCallback(ctx, callback.ID, "This message is too old, send the command again.")
		return
	}
	chatID := msg.Chat.ID

	unlock := rb.locks.lock(chatID)
	defer unlock()

	cb, ok := parseCallbackData(callback.Data)
	if !ok {
		log.Warn("unknown callback data", slog.String("data", callback.Data))
		rb.answerCallback(ctx, callback.ID, "")
		return
	}

	var (
		notice string
		err    error
	)
	switch cb.scope {
	case "q":
		notice, err = rb.handleQuizCallback(ctx, chatID, callback.From.ID, msg.ID, cb)
	case "e":
		notice, err = rb.handleEvalCallback(ctx, chatID, callback.From.ID, msg.ID, cb)
	default:
		log.Warn("unknown callback scope", slog.String("data", callback.Data))
	}
	if err != nil {
		log.Error("callback handler error", sl.Err(err))
	}

	rb.answerCallback(ctx, callback.ID, notice)
}

// answerCallback acknowledges the callback, optionally with a short notice.
func (rb *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := rb.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		rb.log.Error("failed to ack callback", sl.Err(err))
	}
}
