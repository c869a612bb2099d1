package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by data sources when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type BaseModel struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DomainRow is an active evaluation domain.
type DomainRow struct {
	ID          uuid.UUID `db:"id" yaml:"id"`
	Name        string    `db:"name" yaml:"name"`
	Description string    `db:"description" yaml:"description"`
}

type MainElementRow struct {
	ID               uuid.UUID `db:"id" yaml:"id"`
	DomainID         uuid.UUID `db:"domain_id" yaml:"domainId"`
	Name             string    `db:"name" yaml:"name"`
	Description      string    `db:"description" yaml:"description"`
	WeightPercentage float64   `db:"weight_percentage" yaml:"weightPercentage"`
	DisplayOrder     int       `db:"display_order" yaml:"displayOrder"`
}

type SubElementRow struct {
	ID            uuid.UUID `db:"id" yaml:"id"`
	MainElementID uuid.UUID `db:"main_element_id" yaml:"mainElementId"`
	Name          string    `db:"name" yaml:"name"`
	DisplayOrder  int       `db:"display_order" yaml:"displayOrder"`
}

type CriterionRow struct {
	ID               uuid.UUID `db:"id" yaml:"id"`
	SubElementID     uuid.UUID `db:"sub_element_id" yaml:"subElementId"`
	Name             string    `db:"name" yaml:"name"`
	Description      string    `db:"description" yaml:"description"`
	WeightPercentage float64   `db:"weight_percentage" yaml:"weightPercentage"`
	DisplayOrder     int       `db:"display_order" yaml:"displayOrder"`
}

type CriterionOptionRow struct {
	ID              uuid.UUID `db:"id" yaml:"id"`
	CriterionID     uuid.UUID `db:"criterion_id" yaml:"criterionId"`
	Label           string    `db:"label" yaml:"label"`
	ScorePercentage float64   `db:"score_percentage" yaml:"scorePercentage"`
	DisplayOrder    int       `db:"display_order" yaml:"displayOrder"`
}

type OrganizationRow struct {
	BaseModel
	Name       string `db:"name"`
	TelegramID int64  `db:"telegram_id"`
}
