package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/models/domain"
	models "ReadinessBot/internal/models/repositories"
	"ReadinessBot/internal/scoring"
	"ReadinessBot/internal/sessionstore"
	"ReadinessBot/internal/utils/logger/sl"

	tgmodels "github.com/go-telegram/bot/models"
)

const maxOrgNameLength = 200

// ─── Command dispatcher ────────────────────────────────────────────────────

func (rb *Bot) commandHandler(ctx context.Context, msg *tgmodels.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	// Starting a new command cancels any pending text input.
	rb.clearStep(ctx, chatID)

	cmd, _ := parseCommand(msg)
	switch cmd {
	case "start":
		return rb.handleStart(ctx, chatID, msg)
	case "help":
		return rb.handleHelp(ctx, chatID, msg)
	case "quiz":
		return rb.handleQuiz(ctx, chatID, msg)
	case "evaluate":
		return rb.handleEvaluate(ctx, chatID, msg)
	case "progress":
		return rb.handleProgress(ctx, chatID, msg)
	case "report":
		return rb.handleReport(ctx, chatID, msg)
	case "cancel":
		return rb.sendReply(ctx, chatID, "👌 Cancelled.")
	case "reload":
		return rb.handleReload(ctx, chatID, msg)
	default:
		return rb.sendReply(ctx, chatID,
			fmt.Sprintf("❓ Unknown command: /%s\nUse /help to list commands.", cmd))
	}
}

// ─── /start ───────────────────────────────────────────────────────────────

func (rb *Bot) handleStart(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	op := "telegram.handleStart()"

	if _, name := parseCommand(msg); name != "" {
		return rb.registerOrganization(ctx, chatID, msg.From.ID, name)
	}

	org, err := rb.repo.GetOrganizationByTelegramID(ctx, msg.From.ID)
	switch {
	case err == nil:
		return rb.sendReply(ctx, chatID, fmt.Sprintf("👋 Welcome back, %s!\n\n"+
			"/quiz takes the qualifying assessment, /evaluate continues the evaluation.", org.Name))
	case !errors.Is(err, models.ErrNotFound):
		rb.log.Error("failed to find organization", slog.String("op", op), sl.Err(err))
		return rb.sendReply(ctx, chatID, "❌ Something went wrong, please try again later.")
	}

	sess := rb.loadSession(ctx, chatID)
	sess.Step = sessionstore.StepRegisterOrgName
	rb.saveSession(ctx, chatID, sess)

	return rb.sendReply(ctx, chatID, "👋 Hello! I help organizations measure their readiness "+
		"for an excellence assessment.\n\nWhat is the name of your organization?")
}

// handleSessionInput handles free text while a step is waiting for it.
func (rb *Bot) handleSessionInput(ctx context.Context, msg *tgmodels.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	sess := rb.loadSession(ctx, chatID)

	switch sess.Step {
	case sessionstore.StepRegisterOrgName:
		sess.Step = sessionstore.StepNone
		rb.saveSession(ctx, chatID, sess)
		return rb.registerOrganization(ctx, chatID, msg.From.ID, strings.TrimSpace(msg.Text))
	default:
		return rb.sendReply(ctx, chatID, "Use /help to list commands.")
	}
}

func (rb *Bot) registerOrganization(ctx context.Context, chatID, telegramID int64, name string) error {
	op := "telegram.registerOrganization()"

	if name == "" || len([]rune(name)) > maxOrgNameLength {
		sess := rb.loadSession(ctx, chatID)
		sess.Step = sessionstore.StepRegisterOrgName
		rb.saveSession(ctx, chatID, sess)
		return rb.sendReply(ctx, chatID,
			fmt.Sprintf("❌ Please send a name of 1 to %d characters.", maxOrgNameLength))
	}

	org, err := rb.repo.CreateOrganization(ctx, name, telegramID)
	if err != nil {
		rb.log.Error("failed to register organization", slog.String("op", op), sl.Err(err))
		return rb.sendReply(ctx, chatID, "❌ Could not register the organization, please try again.")
	}

	rb.log.Info("organization registered",
		slog.String("op", op),
		slog.String("organization_id", org.ID.String()),
		slog.Int64("telegram_id", telegramID))

	return rb.sendReply(ctx, chatID, fmt.Sprintf("✅ %s is registered.\n\n"+
		"Start with /quiz to check whether you qualify, or go straight to /evaluate.", org.Name))
}

// requireOrganization returns the sender's organization or tells them to register.
func (rb *Bot) requireOrganization(ctx context.Context, chatID, telegramID int64) (*domain.Organization, bool) {
	op := "telegram.requireOrganization()"
	org, err := rb.repo.GetOrganizationByTelegramID(ctx, telegramID)
	if err == nil {
		return org, true
	}
	if errors.Is(err, models.ErrNotFound) {
		_ = rb.sendReply(ctx, chatID, "ℹ️ Register your organization first with /start.")
		return nil, false
	}
	rb.log.Error("failed to find organization", slog.String("op", op), sl.Err(err))
	_ = rb.sendReply(ctx, chatID, "❌ Something went wrong, please try again later.")
	return nil, false
}

// ─── /help ────────────────────────────────────────────────────────────────

func (rb *Bot) handleHelp(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	text := `📋 Commands

/start — register your organization
/quiz — qualifying assessment
/evaluate — excellence evaluation
/progress — current scores
/report — written readiness report
/cancel — cancel the current input`
	if rb.isAdmin(msg.From) {
		text += "\n\n🔧 Admin:\n/reload — reload the evaluation definition"
	}
	return rb.sendReply(ctx, chatID, text)
}

// ─── /reload ──────────────────────────────────────────────────────────────

func (rb *Bot) handleReload(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	op := "telegram.handleReload()"
	if !rb.isAdmin(msg.From) {
		return rb.sendReply(ctx, chatID, "⛔ This command is for administrators.")
	}

	if err := rb.catalog.Reload(ctx); err != nil {
		rb.log.Warn("definition reload failed", slog.String("op", op), sl.Err(err))
		return rb.sendReply(ctx, chatID, fmt.Sprintf("❌ Reload failed: %v", err))
	}

	d, err := rb.catalog.Domain()
	if err != nil {
		return rb.sendReply(ctx, chatID, fmt.Sprintf("❌ Reload failed: %v", err))
	}
	return rb.sendReply(ctx, chatID, fmt.Sprintf("✅ Reloaded %q: %d sections, %d criteria.",
		d.Name, len(d.MainElements), d.CriteriaCount()))
}

// ─── /progress and /report ────────────────────────────────────────────────

// currentSession returns the chat's evaluation over the loaded domain. A live
// session with answers wins; otherwise the organization's latest stored
// evaluation is used, then an empty live session.
func (rb *Bot) currentSession(ctx context.Context, chatID, telegramID int64) (*evaluation.Session, bool) {
	op := "telegram.currentSession()"
	d, err := rb.domainOrReply(ctx, chatID)
	if err != nil {
		return nil, false
	}

	var live *evaluation.Session
	if sess := rb.loadSession(ctx, chatID); sess.Evaluation != nil {
		live, _ = evaluation.Restore(d, *sess.Evaluation)
	}
	if live != nil && len(live.Answers()) > 0 {
		return live, true
	}

	stored, err := rb.storedSession(ctx, telegramID, d)
	if err != nil {
		rb.log.Error("failed to load stored evaluation", slog.String("op", op), sl.Err(err))
	}
	switch {
	case stored != nil:
		return stored, true
	case live != nil:
		return live, true
	case err != nil:
		_ = rb.sendReply(ctx, chatID, "❌ Something went wrong, please try again later.")
	default:
		_ = rb.sendReply(ctx, chatID, "ℹ️ No evaluation in progress. Start one with /evaluate.")
	}
	return nil, false
}

// storedSession rebuilds the latest saved evaluation of the sender's
// organization. It returns nil without error when there is none.
func (rb *Bot) storedSession(ctx context.Context, telegramID int64, d *domain.Domain) (*evaluation.Session, error) {
	op := "telegram.storedSession()"

	org, err := rb.repo.GetOrganizationByTelegramID(ctx, telegramID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ev, err := rb.repo.GetLatestEvaluation(ctx, org.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := rb.repo.GetEvaluationAnswers(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st := evaluation.State{
		DomainID:     ev.DomainID,
		Answers:      make(domain.Answers, len(rows)),
		Saved:        true,
		EvaluationID: ev.ID,
	}
	for _, a := range rows {
		st.Answers[a.CriterionID] = domain.Answer{SelectedOptionID: a.SelectedOptionID}
	}
	s, err := evaluation.Restore(d, st)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (rb *Bot) handleProgress(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	s, ok := rb.currentSession(ctx, chatID, msg.From.ID)
	if !ok {
		return nil
	}
	return rb.sendReply(ctx, chatID, renderScores(s.Domain(), s.Scores(), s.Progress()))
}

func (rb *Bot) handleReport(ctx context.Context, chatID int64, msg *tgmodels.Message) error {
	op := "telegram.handleReport()"
	s, ok := rb.currentSession(ctx, chatID, msg.From.ID)
	if !ok {
		return nil
	}

	summary := scoring.Summarize(s.Domain(), s.Scores(), s.Progress())
	text, err := rb.narrator.Generate(ctx, summary)
	if err != nil {
		rb.log.Error("failed to generate report", slog.String("op", op), sl.Err(err))
		return rb.sendReply(ctx, chatID, "❌ The report could not be generated, please try again later.")
	}
	return rb.sendReply(ctx, chatID, "📝 Readiness report\n\n"+text)
}

// domainOrReply returns the loaded domain or explains to the user why there is none.
func (rb *Bot) domainOrReply(ctx context.Context, chatID int64) (*domain.Domain, error) {
	d, err := rb.catalog.Domain()
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, definition.ErrLoading):
		_ = rb.sendReply(ctx, chatID, "⏳ The evaluation is still loading, please try again in a moment.")
	case errors.Is(err, definition.ErrNoEvaluation):
		_ = rb.sendReply(ctx, chatID, "ℹ️ No evaluation available.")
	default:
		_ = rb.sendReply(ctx, chatID, "❌ The evaluation is unavailable right now.")
	}
	return nil, err
}
