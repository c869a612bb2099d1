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

// SaveAssessment stores a qualifying assessment and its answers in one transaction.
func (r *Repository) SaveAssessment(ctx context.Context, a domain.Assessment, answers []domain.AssessmentAnswer) (uuid.UUID, error) {
	op := "Repository.SaveAssessment"

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
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

	query := `INSERT INTO qualifying_assessments
		(id, organization_id, total_score, max_score, is_qualified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, query,
		a.ID, a.OrganizationID, a.TotalScore, a.MaxScore, a.IsQualified, a.CreatedAt); err != nil {
		return uuid.Nil, fmt.Errorf("%s: insert assessment: %w", op, err)
	}

	answerQuery := `INSERT INTO qualifying_answers
		(id, assessment_id, question_id, selected_option_id, score)
		VALUES ($1, $2, $3, $4, $5)`
	for _, ans := range answers {
		if _, err = tx.ExecContext(ctx, answerQuery,
			uuid.New(), a.ID, ans.QuestionID, ans.SelectedOptionID, ans.Score); err != nil {
			return uuid.Nil, fmt.Errorf("%s: insert answer %d: %w", op, ans.QuestionID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	r.log.Info("qualifying assessment saved",
		slog.String("op", op),
		slog.String("assessmentID", a.ID.String()),
		slog.Float64("totalScore", a.TotalScore),
		slog.Bool("qualified", a.IsQualified))

	return a.ID, nil
}

// GetLatestAssessment returns the most recent qualifying assessment of an organization.
func (r *Repository) GetLatestAssessment(ctx context.Context, organizationID uuid.UUID) (*domain.Assessment, error) {
	op := "Repository.GetLatestAssessment"
	var a domain.Assessment
	query := `SELECT id, organization_id, total_score, max_score, is_qualified, created_at
		FROM qualifying_assessments WHERE organization_id = $1
		ORDER BY created_at DESC LIMIT 1`
	err := r.DB.QueryRowContext(ctx, query, organizationID).
		Scan(&a.ID, &a.OrganizationID, &a.TotalScore, &a.MaxScore, &a.IsQualified, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}
