package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"ReadinessBot/internal/models/domain"
	models "ReadinessBot/internal/models/repositories"

	"github.com/google/uuid"
)

// SaveEvaluation stores a finalized evaluation and its answers in one
// transaction and returns the evaluation id.
func (r *Repository) SaveEvaluation(ctx context.Context, ev domain.Evaluation, answers []domain.EvaluationAnswer) (uuid.UUID, error) {
	op := "Repository.SaveEvaluation"

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO evaluations
		(id, organization_id, domain_id, total_score, max_score, is_completed, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(ctx, query,
		ev.ID, ev.OrganizationID, ev.DomainID,
		ev.TotalScore, ev.MaxScore, ev.IsCompleted, ev.CompletedAt); err != nil {
		return uuid.Nil, fmt.Errorf("%s: insert evaluation: %w", op, err)
	}

	answerQuery := `INSERT INTO evaluation_answers
		(id, evaluation_id, criterion_id, selected_option_id, score)
		VALUES ($1, $2, $3, $4, $5)`
	for _, a := range answers {
		if _, err = tx.ExecContext(ctx, answerQuery,
			uuid.New(), ev.ID, a.CriterionID, a.SelectedOptionID, a.Score); err != nil {
			return uuid.Nil, fmt.Errorf("%s: insert answer %s: %w", op, a.CriterionID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	r.log.Info("evaluation saved",
		slog.String("op", op),
		slog.String("evaluationID", ev.ID.String()),
		slog.String("organizationID", ev.OrganizationID.String()),
		slog.Float64("totalScore", ev.TotalScore),
		slog.Int("answers", len(answers)))

	return ev.ID, nil
}

// GetLatestEvaluation returns the most recent evaluation of an organization.
func (r *Repository) GetLatestEvaluation(ctx context.Context, organizationID uuid.UUID) (*domain.Evaluation, error) {
	op := "Repository.GetLatestEvaluation"
	var ev domain.Evaluation
	query := `SELECT id, organization_id, domain_id, total_score, max_score,
		is_completed, completed_at
		FROM evaluations WHERE organization_id = $1
		ORDER BY completed_at DESC LIMIT 1`
	err := r.DB.QueryRowContext(ctx, query, organizationID).
		Scan(&ev.ID, &ev.OrganizationID, &ev.DomainID, &ev.TotalScore,
			&ev.MaxScore, &ev.IsCompleted, &ev.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &ev, nil
}

// GetEvaluationAnswers returns the stored answers of an evaluation.
func (r *Repository) GetEvaluationAnswers(ctx context.Context, evaluationID uuid.UUID) ([]domain.EvaluationAnswer, error) {
	op := "Repository.GetEvaluationAnswers"
	query := `SELECT evaluation_id, criterion_id, selected_option_id, score
		FROM evaluation_answers WHERE evaluation_id = $1`
	rows, err := r.DB.QueryContext(ctx, query, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var answers []domain.EvaluationAnswer
	for rows.Next() {
		var a domain.EvaluationAnswer
		if err := rows.Scan(&a.EvaluationID, &a.CriterionID, &a.SelectedOptionID, &a.Score); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return answers, nil
}
