package scoring

import (
	"math"

	"ReadinessBot/internal/models/domain"

	"github.com/google/uuid"
)

// MaxScore is the total of all main element weights by construction.
const MaxScore = 100

// ElementScore is the score of one main element against its weight.
type ElementScore struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
	Max   float64   `json:"max"`
}

// Percentage returns the element score as an integer percent of its max.
func (e ElementScore) Percentage() int {
	if e.Max == 0 {
		return 0
	}
	return int(math.Round(e.Score / e.Max * 100))
}

// Snapshot is derived from a domain and an answer map and is never stored.
type Snapshot struct {
	Total         float64                    `json:"total"`
	Max           float64                    `json:"max"`
	Percentage    int                        `json:"percentage"`
	ByMainElement map[uuid.UUID]ElementScore `json:"byMainElement"`
	// Elements holds the same scores in main element display order.
	Elements []ElementScore `json:"elements"`
}

// ElementPercentage returns the percent earned by one main element, 0 if unknown.
func (s Snapshot) ElementPercentage(id uuid.UUID) int {
	e, ok := s.ByMainElement[id]
	if !ok {
		return 0
	}
	return e.Percentage()
}

// Calculate computes criterion, main element and total scores.
// Formula per criterion: weight × scorePercentage / 100.
// Unanswered criteria earn 0; every element keeps its full weight as max.
func Calculate(d *domain.Domain, answers domain.Answers) Snapshot {
	snap := Snapshot{
		Max:           MaxScore,
		ByMainElement: make(map[uuid.UUID]ElementScore),
	}
	if d == nil {
		return snap
	}

	snap.Elements = make([]ElementScore, 0, len(d.MainElements))

	var total float64
	for _, me := range d.MainElements {
		var elementScore float64
		for _, se := range me.SubElements {
			for _, c := range se.Criteria {
				if a, ok := answers[c.ID]; ok {
					elementScore += CriterionScore(c, a)
				}
			}
		}
		total += elementScore

		es := ElementScore{
			ID:    me.ID,
			Name:  me.Name,
			Score: round2(elementScore),
			Max:   me.WeightPercentage,
		}
		snap.ByMainElement[me.ID] = es
		snap.Elements = append(snap.Elements, es)
	}

	snap.Total = round2(total)
	snap.Percentage = int(math.Round(snap.Total))

	return snap
}

// CriterionScore is the points one answer earns for its criterion.
func CriterionScore(c domain.Criterion, a domain.Answer) float64 {
	return c.WeightPercentage * a.ScorePercentage / 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
