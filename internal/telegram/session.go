package telegram

import (
	"context"
	"log/slog"

	"ReadinessBot/internal/sessionstore"
	"ReadinessBot/internal/utils/logger/sl"
)

// loadSession returns the chat's session, or a fresh one when there is none
// or the store fails.
func (rb *Bot) loadSession(ctx context.Context, chatID int64) *sessionstore.Session {
	op := "telegram.loadSession()"

	sess, ok, err := rb.sessions.Get(ctx, chatID)
	if err != nil {
		rb.log.Error("failed to load session",
			slog.String("op", op),
			slog.Int64("chat_id", chatID),
			sl.Err(err))
	}
	if err != nil || !ok {
		return &sessionstore.Session{Criterion: -1}
	}
	return sess
}

// saveSession stores the session and refreshes its expiry.
func (rb *Bot) saveSession(ctx context.Context, chatID int64, sess *sessionstore.Session) {
	op := "telegram.saveSession()"
	if err := rb.sessions.Set(ctx, chatID, sess); err != nil {
		rb.log.Error("failed to save session",
			slog.String("op", op),
			slog.Int64("chat_id", chatID),
			sl.Err(err))
	}
}

func (rb *Bot) clearStep(ctx context.Context, chatID int64) {
	sess := rb.loadSession(ctx, chatID)
	if sess.Step == sessionstore.StepNone {
		return
	}
	sess.Step = sessionstore.StepNone
	sess.Data = nil
	rb.saveSession(ctx, chatID, sess)
}
