package scoring

import (
	"math"

	"ReadinessBot/internal/models/domain"
)

// Progress is the completion state of an answer map.
type Progress struct {
	Current    int  `json:"current"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Complete   bool `json:"isComplete"`
}

// ComputeProgress counts answered criteria against the leaf count of the
// tree. Criterion ids are assumed unique across the whole tree.
func ComputeProgress(d *domain.Domain, answers domain.Answers) Progress {
	p := Progress{
		Current: len(answers),
		Total:   d.CriteriaCount(),
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Current) / float64(p.Total) * 100))
	}
	p.Complete = p.Total > 0 && p.Current == p.Total
	return p
}

// ElementProgress counts answered criteria of a single main element.
func ElementProgress(me domain.MainElement, answers domain.Answers) Progress {
	p := Progress{Total: me.CriteriaCount()}
	for _, se := range me.SubElements {
		for _, c := range se.Criteria {
			if _, ok := answers[c.ID]; ok {
				p.Current++
			}
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Current) / float64(p.Total) * 100))
	}
	p.Complete = p.Total > 0 && p.Current == p.Total
	return p
}
