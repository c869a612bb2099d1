// Package definitiontest provides a small, well-formed evaluation definition
// for tests across packages. It mirrors definition/testdata/domain.yml.
package definitiontest

import (
	"fmt"

	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/models/repositories"

	"github.com/google/uuid"
)

var (
	DomainID = id("0", 1)

	Leadership = id("1", 1)
	Processes  = id("1", 2)
	Results    = id("1", 3)

	// Criteria in tree order after sorting.
	StrategyDocumented  = id("3", 1) // Leadership, weight 20
	LeadersSponsor      = id("3", 2) // Leadership, weight 20
	ImprovementCycle    = id("3", 4) // Processes, weight 20
	ProcessesDocumented = id("3", 3) // Processes, weight 15
	FeedbackAnalyzed    = id("3", 6) // Results, weight 15
	KPIsDefined         = id("3", 5) // Results, weight 10
)

const (
	CriteriaCount = 6

	OptionFully      = 1
	OptionPartially  = 2
	OptionNotStarted = 3
)

// Source returns the sample definition as flat rows.
func Source() *definition.MemorySource {
	dom := &repositories.DomainRow{
		ID:          DomainID,
		Name:        "Organizational Excellence",
		Description: "Readiness for an excellence award",
	}

	mains := []repositories.MainElementRow{
		{ID: Leadership, DomainID: DomainID, Name: "Leadership", Description: "Direction and sponsorship of the organization", WeightPercentage: 40, DisplayOrder: 1},
		{ID: Processes, DomainID: DomainID, Name: "Processes", Description: "How work is designed and improved", WeightPercentage: 35, DisplayOrder: 2},
		{ID: Results, DomainID: DomainID, Name: "Results", Description: "How outcomes are measured", WeightPercentage: 25, DisplayOrder: 3},
	}

	subs := []repositories.SubElementRow{
		{ID: id("2", 1), MainElementID: Leadership, Name: "Vision and Strategy", DisplayOrder: 1},
		{ID: id("2", 2), MainElementID: Processes, Name: "Documentation", DisplayOrder: 2},
		{ID: id("2", 3), MainElementID: Processes, Name: "Continuous Improvement", DisplayOrder: 1},
		{ID: id("2", 4), MainElementID: Results, Name: "Measurement", DisplayOrder: 1},
	}

	criteria := []repositories.CriterionRow{
		{ID: StrategyDocumented, SubElementID: id("2", 1), Name: "Strategy is documented", WeightPercentage: 20, DisplayOrder: 1},
		{ID: LeadersSponsor, SubElementID: id("2", 1), Name: "Leaders sponsor improvement", WeightPercentage: 20, DisplayOrder: 2},
		{ID: ProcessesDocumented, SubElementID: id("2", 2), Name: "Core processes are documented", WeightPercentage: 15, DisplayOrder: 1},
		{ID: ImprovementCycle, SubElementID: id("2", 3), Name: "Improvement cycle is in place", WeightPercentage: 20, DisplayOrder: 1},
		{ID: KPIsDefined, SubElementID: id("2", 4), Name: "KPIs are defined", WeightPercentage: 10, DisplayOrder: 2},
		{ID: FeedbackAnalyzed, SubElementID: id("2", 4), Name: "Customer feedback is analyzed", WeightPercentage: 15, DisplayOrder: 1},
	}

	var options []repositories.CriterionOptionRow
	for n := 1; n <= CriteriaCount; n++ {
		crit := id("3", n)
		options = append(options,
			repositories.CriterionOptionRow{ID: OptionID(crit, OptionFully), CriterionID: crit, Label: "Fully in place", ScorePercentage: 100, DisplayOrder: 1},
			repositories.CriterionOptionRow{ID: OptionID(crit, OptionPartially), CriterionID: crit, Label: "Partially in place", ScorePercentage: 50, DisplayOrder: 2},
			repositories.CriterionOptionRow{ID: OptionID(crit, OptionNotStarted), CriterionID: crit, Label: "Not started", ScorePercentage: 0, DisplayOrder: 3},
		)
	}

	return &definition.MemorySource{
		Domain:       dom,
		MainElements: mains,
		SubElements:  subs,
		Criteria:     criteria,
		Options:      options,
	}
}

// Domain returns the sample definition as a built tree.
func Domain() *domain.Domain {
	src := Source()
	return definition.BuildTree(*src.Domain, src.MainElements, src.SubElements, src.Criteria, src.Options)
}

// OptionID returns the id of the k-th option (1-based) of a sample criterion.
func OptionID(criterionID uuid.UUID, k int) uuid.UUID {
	var n int
	for i := 1; i <= CriteriaCount; i++ {
		if id("3", i) == criterionID {
			n = i
		}
	}
	return id("4", n*10+k)
}

func id(prefix string, n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("%s0000000-0000-0000-0000-%012d", prefix, n))
}
