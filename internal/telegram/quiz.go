package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	models "ReadinessBot/internal/models/repositories"
	"ReadinessBot/internal/qualifying"
	"ReadinessBot/internal/utils/logger/sl"

	tgmodels "github.com/go-telegram/bot/models"
)

// ─── /quiz ────────────────────────────────────────────────────────────────

func (rb *Bot) handleQuiz(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	op := "telegram.handleQuiz()"
	org, ok := rb.requireOrganization(ctx, chatID, msg.From.ID)
	if !ok {
		return nil
	}

	last, err := rb.repo.GetLatestAssessment(ctx, org.ID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			rb.log.Warn("failed to load last assessment", slog.String("op", op), sl.Err(err))
		}
		last = nil
	}

	q := qualifying.NewQuiz(rb.questions)
	sess := rb.loadSession(ctx, chatID)
	st := q.State()
	sess.Quiz = &st
	rb.saveSession(ctx, chatID, sess)

	text, kb := renderQuizWelcome(rb.questions, last)
	return rb.sendWithKeyboard(ctx, chatID, text, kb)
}

// handleQuizCallback applies one quiz button press and redraws the message.
func (rb *Bot) handleQuizCallback(ctx context.Context, chatID, telegramID int64, messageID int, cb callbackData) (string, error) {
	op := "telegram.handleQuizCallback()"
	log := rb.log.With(slog.String("op", op))

	sess := rb.loadSession(ctx, chatID)
	if sess.Quiz == nil {
		return "Session expired, send /quiz again.", nil
	}
	q := qualifying.Restore(rb.questions, *sess.Quiz)

	switch cb.action {
	case "s":
		if err := q.Start(); err != nil && !errors.Is(err, qualifying.ErrWrongStage) {
			return "", err
		}
	case "o":
		qid, ok1 := cb.intArg(0)
		oid, ok2 := cb.stringArg(1)
		if !ok1 || !ok2 {
			return "Unknown option.", nil
		}
		if err := q.SelectOption(qid, oid); err != nil {
			log.Warn("quiz selection rejected", sl.Err(err))
			return "This question is no longer active.", nil
		}
		if q.Stage() == qualifying.StageResult {
			rb.saveAssessment(ctx, telegramID, q)
		}
	case "b":
		q.Previous()
	case "r":
		q.Retake()
	default:
		return "Unknown action.", nil
	}

	st := q.State()
	sess.Quiz = &st
	rb.saveSession(ctx, chatID, sess)

	return "", rb.showQuiz(ctx, chatID, messageID, q)
}

func (rb *Bot) showQuiz(ctx context.Context, chatID int64, messageID int, q *qualifying.Quiz) error {
	var (
		text string
		kb   *tgmodels.InlineKeyboardMarkup
	)
	switch q.Stage() {
	case qualifying.StageWelcome:
		text, kb = renderQuizWelcome(rb.questions, nil)
	case qualifying.StageQuestions:
		text, kb = renderQuestion(q)
	default:
		text, kb = renderQuizResult(q.Result())
	}
	return rb.editWithKeyboard(ctx, chatID, messageID, text, kb)
}

// saveAssessment records the finished quiz. A failure is logged and the
// result is still shown.
func (rb *Bot) saveAssessment(ctx context.Context, telegramID int64, q *qualifying.Quiz) {
	op := "telegram.saveAssessment()"
	log := rb.log.With(slog.String("op", op))

	org, err := rb.repo.GetOrganizationByTelegramID(ctx, telegramID)
	if err != nil {
		log.Error("failed to find organization", sl.Err(err))
		return
	}

	rec, answers := q.Record(org.ID, time.Now())
	if _, err := rb.repo.SaveAssessment(ctx, rec, answers); err != nil {
		log.Error("failed to save assessment", sl.Err(err))
	}
}
