package scoring

import (
	"ReadinessBot/internal/models/domain"
)

// Summary is the input handed to the narrative generator.
type Summary struct {
	DomainName string
	Total      float64
	Percentage int
	Band       Band
	Progress   Progress
	Elements   []ElementScore
	Strongest  *ElementScore
	Weakest    *ElementScore
}

// Summarize condenses a snapshot for text generation. Strongest and weakest
// compare element percentages; ties keep the earlier element. Elements with
// zero weight are ignored for both.
func Summarize(d *domain.Domain, snap Snapshot, progress Progress) Summary {
	s := Summary{
		Total:      snap.Total,
		Percentage: snap.Percentage,
		Band:       snap.Band(),
		Progress:   progress,
		Elements:   snap.Elements,
	}
	if d != nil {
		s.DomainName = d.Name
	}

	for i := range snap.Elements {
		e := &snap.Elements[i]
		if e.Max == 0 {
			continue
		}
		if s.Strongest == nil || e.Percentage() > s.Strongest.Percentage() {
			s.Strongest = e
		}
		if s.Weakest == nil || e.Percentage() < s.Weakest.Percentage() {
			s.Weakest = e
		}
	}

	return s
}
