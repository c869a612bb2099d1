package domain

import (
	"time"

	"github.com/google/uuid"
)

// Domain is the root of the evaluation hierarchy used for one session.
type Domain struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	MainElements []MainElement `json:"mainElements"`
}

// MainElement is a top-level weighted category. WeightPercentage is its
// share of the 100-point total.
type MainElement struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	WeightPercentage float64      `json:"weightPercentage"`
	DisplayOrder     int          `json:"displayOrder"`
	SubElements      []SubElement `json:"subElements"`
}

// SubElement groups criteria for display. It carries no weight.
type SubElement struct {
	ID            uuid.UUID   `json:"id"`
	MainElementID uuid.UUID   `json:"mainElementId"`
	Name          string      `json:"name"`
	DisplayOrder  int         `json:"displayOrder"`
	Criteria      []Criterion `json:"criteria"`
}

// Criterion is the smallest independently answerable unit.
type Criterion struct {
	ID               uuid.UUID         `json:"id"`
	SubElementID     uuid.UUID         `json:"subElementId"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	WeightPercentage float64           `json:"weightPercentage"`
	DisplayOrder     int               `json:"displayOrder"`
	Options          []CriterionOption `json:"options"`
}

// CriterionOption is one selectable choice. ScorePercentage (0–100) is the
// fraction of the criterion weight earned when it is selected.
type CriterionOption struct {
	ID              uuid.UUID `json:"id"`
	CriterionID     uuid.UUID `json:"criterionId"`
	Label           string    `json:"label"`
	ScorePercentage float64   `json:"scorePercentage"`
	DisplayOrder    int       `json:"displayOrder"`
}

// CriteriaCount returns the number of criteria across the whole tree.
func (d *Domain) CriteriaCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, me := range d.MainElements {
		n += me.CriteriaCount()
	}
	return n
}

// CriteriaCount returns the number of criteria under the main element.
func (me MainElement) CriteriaCount() int {
	n := 0
	for _, se := range me.SubElements {
		n += len(se.Criteria)
	}
	return n
}

// Criteria returns the main element's criteria flattened in display order.
func (me MainElement) Criteria() []Criterion {
	out := make([]Criterion, 0, me.CriteriaCount())
	for _, se := range me.SubElements {
		out = append(out, se.Criteria...)
	}
	return out
}

// Criterion finds a criterion anywhere in the tree.
func (d *Domain) Criterion(id uuid.UUID) (Criterion, bool) {
	if d == nil {
		return Criterion{}, false
	}
	for _, me := range d.MainElements {
		for _, se := range me.SubElements {
			for _, c := range se.Criteria {
				if c.ID == id {
					return c, true
				}
			}
		}
	}
	return Criterion{}, false
}

// Option finds an option of the given criterion.
func (c Criterion) Option(id uuid.UUID) (CriterionOption, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return CriterionOption{}, false
}

// Answer is the selected option for one criterion.
type Answer struct {
	SelectedOptionID uuid.UUID `json:"selectedOptionId"`
	ScorePercentage  float64   `json:"scorePercentage"`
}

// Answers maps criterion id to its answer. At most one entry per criterion.
type Answers map[uuid.UUID]Answer

// Clone returns an independent copy of the map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// QuestionType is descriptive only; scoring does not branch on it.
type QuestionType string

const (
	QuestionBinary   QuestionType = "binary"
	QuestionMultiple QuestionType = "multiple"
)

// Question is one item of the qualifying assessment.
type Question struct {
	ID      int              `json:"id"`
	Text    string           `json:"text"`
	Weight  float64          `json:"weight"`
	Type    QuestionType     `json:"type"`
	Options []QuestionOption `json:"options"`
}

// QuestionOption is a single-choice answer to a qualifying question.
type QuestionOption struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	ScorePercentage float64 `json:"scorePercentage"`
}

// Option finds an option of the question.
func (q Question) Option(id string) (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return QuestionOption{}, false
}

// AssessmentAnswer is the stored answer to one qualifying question.
// AssessmentID stays zero until the assessment is persisted.
type AssessmentAnswer struct {
	AssessmentID     uuid.UUID `json:"assessmentId"`
	QuestionID       int       `json:"questionId"`
	SelectedOptionID string    `json:"selectedOptionId"`
	Score            float64   `json:"score"`
}

// AssessmentResult is the outcome of the qualifying assessment.
type AssessmentResult struct {
	TotalScore  float64 `json:"totalScore"`
	MaxScore    float64 `json:"maxScore"`
	IsQualified bool    `json:"isQualified"`
}

// Organization is a registered participant.
type Organization struct {
	ID         uuid.UUID
	Name       string
	TelegramID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Evaluation is the persisted record of a finalized evaluation session.
type Evaluation struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	DomainID       uuid.UUID
	TotalScore     float64
	MaxScore       float64
	IsCompleted    bool
	CompletedAt    time.Time
}

// EvaluationAnswer is the persisted answer to one criterion.
// Score is the points earned: weight × scorePercentage / 100.
type EvaluationAnswer struct {
	EvaluationID     uuid.UUID
	CriterionID      uuid.UUID
	SelectedOptionID uuid.UUID
	Score            float64
}

// Assessment is the persisted record of a qualifying assessment.
type Assessment struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	TotalScore     float64
	MaxScore       float64
	IsQualified    bool
	CreatedAt      time.Time
}
