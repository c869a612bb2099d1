package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/utils/logger/sl"

	tgmodels "github.com/go-telegram/bot/models"
)

// ─── /evaluate ────────────────────────────────────────────────────────────

// handleEvaluate resumes the chat's unsaved evaluation or starts a new one.
func (rb *Bot) handleEvaluate(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	if _, ok := rb.requireOrganization(ctx, chatID, msg.From.ID); !ok {
		return nil
	}
	d, err := rb.domainOrReply(ctx, chatID)
	if err != nil {
		return nil
	}

	sess := rb.loadSession(ctx, chatID)
	var s *evaluation.Session
	if sess.Evaluation != nil && !sess.Evaluation.Saved {
		s, err = evaluation.Restore(d, *sess.Evaluation)
	} else {
		s, err = evaluation.NewSession(d)
	}
	if err != nil {
		return rb.sendReply(ctx, chatID, "ℹ️ No evaluation available.")
	}

	st := s.State()
	sess.Evaluation = &st
	sess.Criterion = -1
	rb.saveSession(ctx, chatID, sess)

	text, kb := renderElement(s)
	return rb.sendWithKeyboard(ctx, chatID, text, kb)
}

// handleEvalCallback applies one evaluation button press and redraws the message.
func (rb *Bot) handleEvalCallback(ctx context.Context, chatID, telegramID int64, messageID int, cb callbackData) (string, error) {
	op := "telegram.handleEvalCallback()"
	log := rb.log.With(slog.String("op", op))

	d, err := rb.catalog.Domain()
	if err != nil {
		return "The evaluation is unavailable right now.", nil
	}
	sess := rb.loadSession(ctx, chatID)
	if sess.Evaluation == nil {
		return "Session expired, send /evaluate again.", nil
	}
	s, err := evaluation.Restore(d, *sess.Evaluation)
	if err != nil {
		return "No evaluation available.", nil
	}

	store := func() {
		st := s.State()
		sess.Evaluation = &st
		rb.saveSession(ctx, chatID, sess)
	}
	showElement := func() error {
		sess.Criterion = -1
		store()
		text, kb := renderElement(s)
		return rb.editWithKeyboard(ctx, chatID, messageID, text, kb)
	}
	showCriterion := func(ci int) error {
		text, kb, ok := renderCriterion(s, ci)
		if !ok {
			return showElement()
		}
		sess.Criterion = ci
		store()
		return rb.editWithKeyboard(ctx, chatID, messageID, text, kb)
	}

	switch cb.action {
	case "v":
		return "", showElement()
	case "n":
		s.Next()
		return "", showElement()
	case "p":
		s.Previous()
		return "", showElement()
	case "g":
		i, ok := cb.intArg(0)
		if ok {
			s.GoTo(i)
		}
		return "", showElement()
	case "m":
		text, kb := renderElementMenu(s)
		return "", rb.editWithKeyboard(ctx, chatID, messageID, text, kb)
	case "c":
		ci, ok := cb.intArg(0)
		if !ok {
			return "Unknown criterion.", nil
		}
		return "", showCriterion(ci)
	case "o":
		ci, ok1 := cb.intArg(0)
		oi, ok2 := cb.intArg(1)
		criteria := s.CurrentElement().Criteria()
		if !ok1 || !ok2 || ci >= len(criteria) || oi >= len(criteria[ci].Options) {
			return "This option is no longer available.", showElement()
		}
		c := criteria[ci]
		if err := s.AnswerCriterion(c.ID, c.Options[oi].ID); err != nil {
			log.Warn("answer rejected", sl.Err(err))
			return "This option is no longer available.", showElement()
		}
		return "", showElement()
	case "x":
		ci, ok := cb.intArg(0)
		criteria := s.CurrentElement().Criteria()
		if ok && ci < len(criteria) {
			s.ClearCriterion(criteria[ci].ID)
		}
		return "", showCriterion(ci)
	case "f":
		if !s.IsLast() {
			return "Open the last section to finish.", nil
		}
		return rb.finishEvaluation(ctx, chatID, telegramID, messageID, s, store)
	default:
		return "Unknown action.", nil
	}
}

func (rb *Bot) finishEvaluation(
	ctx context.Context,
	chatID, telegramID int64,
	messageID int,
	s *evaluation.Session,
	store func(),
) (string, error) {
	op := "telegram.finishEvaluation()"
	log := rb.log.With(slog.String("op", op))

	org, ok := rb.requireOrganization(ctx, chatID, telegramID)
	if !ok {
		return "", nil
	}

	id, err := s.Finalize(ctx, rb.repo, org.ID)
	switch {
	case errors.Is(err, evaluation.ErrAlreadySaved):
		return "Already saved.", nil
	case errors.Is(err, evaluation.ErrSaveInProgress):
		return "Saving, please wait.", nil
	case err != nil:
		log.Error("failed to save evaluation", sl.Err(err))
		return "Saving failed, please try again.", nil
	}
	store()

	log.Info("evaluation finished",
		slog.String("evaluation_id", id.String()),
		slog.String("organization_id", org.ID.String()))

	text := fmt.Sprintf("%s\n\n💾 Evaluation saved. /report writes a readiness report, "+
		"/evaluate starts a new evaluation.", renderScores(s.Domain(), s.Scores(), s.Progress()))
	return "", rb.editWithKeyboard(ctx, chatID, messageID, text, nil)
}
