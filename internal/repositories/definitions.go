package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	models "ReadinessBot/internal/models/repositories"

	"github.com/google/uuid"
)

// FetchActiveDomain returns the single active evaluation domain.
func (r *Repository) FetchActiveDomain(ctx context.Context) (*models.DomainRow, error) {
	op := "Repository.FetchActiveDomain"
	var row models.DomainRow
	query := `SELECT id, name, description
		FROM domains WHERE is_active = true
		ORDER BY created_at LIMIT 1`
	if err := r.DB.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &row, nil
}

// FetchMainElements returns the active main elements of a domain.
func (r *Repository) FetchMainElements(ctx context.Context, domainID uuid.UUID) ([]models.MainElementRow, error) {
	op := "Repository.FetchMainElements"
	var rows []models.MainElementRow
	query := `SELECT id, domain_id, name, description, weight_percentage, display_order
		FROM main_elements
		WHERE domain_id = $1 AND is_active = true
		ORDER BY display_order`
	if err := r.DB.SelectContext(ctx, &rows, query, domainID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// FetchSubElements returns the active sub elements under the domain's main elements.
func (r *Repository) FetchSubElements(ctx context.Context, domainID uuid.UUID) ([]models.SubElementRow, error) {
	op := "Repository.FetchSubElements"
	var rows []models.SubElementRow
	query := `SELECT se.id, se.main_element_id, se.name, se.display_order
		FROM sub_elements se
		JOIN main_elements me ON me.id = se.main_element_id
		WHERE me.domain_id = $1 AND se.is_active = true
		ORDER BY se.display_order`
	if err := r.DB.SelectContext(ctx, &rows, query, domainID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// FetchCriteria returns the active criteria of the domain.
func (r *Repository) FetchCriteria(ctx context.Context, domainID uuid.UUID) ([]models.CriterionRow, error) {
	op := "Repository.FetchCriteria"
	var rows []models.CriterionRow
	query := `SELECT c.id, c.sub_element_id, c.name, c.description, c.weight_percentage, c.display_order
		FROM criteria c
		JOIN sub_elements se ON se.id = c.sub_element_id
		JOIN main_elements me ON me.id = se.main_element_id
		WHERE me.domain_id = $1 AND c.is_active = true
		ORDER BY c.display_order`
	if err := r.DB.SelectContext(ctx, &rows, query, domainID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// FetchCriteriaOptions returns the options of the domain's criteria.
func (r *Repository) FetchCriteriaOptions(ctx context.Context, domainID uuid.UUID) ([]models.CriterionOptionRow, error) {
	op := "Repository.FetchCriteriaOptions"
	var rows []models.CriterionOptionRow
	query := `SELECT o.id, o.criterion_id, o.label, o.score_percentage, o.display_order
		FROM criteria_options o
		JOIN criteria c ON c.id = o.criterion_id
		JOIN sub_elements se ON se.id = c.sub_element_id
		JOIN main_elements me ON me.id = se.main_element_id
		WHERE me.domain_id = $1
		ORDER BY o.display_order`
	if err := r.DB.SelectContext(ctx, &rows, query, domainID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}
