package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ReadinessBot/internal/models/domain"
	models "ReadinessBot/internal/models/repositories"

	"github.com/google/uuid"
)

// CreateOrganization registers an organization for a Telegram user.
// Registering again renames the existing organization.
func (r *Repository) CreateOrganization(ctx context.Context, name string, telegramID int64) (*domain.Organization, error) {
	op := "Repository.CreateOrganization"
	org := &domain.Organization{
		ID:         uuid.New(),
		Name:       name,
		TelegramID: telegramID,
	}

	query := `INSERT INTO organizations (id, name, telegram_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE SET name = $2, updated_at = now()
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, org.ID, org.Name, org.TelegramID).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return org, nil
}

// GetOrganizationByTelegramID returns the organization registered by a Telegram user.
func (r *Repository) GetOrganizationByTelegramID(ctx context.Context, telegramID int64) (*domain.Organization, error) {
	op := "Repository.GetOrganizationByTelegramID"
	var row models.OrganizationRow
	query := `SELECT id, name, telegram_id, created_at, updated_at
		FROM organizations WHERE telegram_id = $1`
	if err := r.DB.GetContext(ctx, &row, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &domain.Organization{
		ID:         row.ID,
		Name:       row.Name,
		TelegramID: row.TelegramID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
