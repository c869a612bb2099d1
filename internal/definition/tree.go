package definition

import (
	"cmp"
	"slices"

	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/models/repositories"

	"github.com/google/uuid"
)

// BuildTree joins the four flat collections on their parent ids into an
// ordered tree. Each level is stably sorted by its own display order.
// Children whose parent is missing are dropped. Empty levels are kept.
func BuildTree(
	root repositories.DomainRow,
	mains []repositories.MainElementRow,
	subs []repositories.SubElementRow,
	criteria []repositories.CriterionRow,
	options []repositories.CriterionOptionRow,
) *domain.Domain {
	optionsByCriterion := groupBy(options, func(o repositories.CriterionOptionRow) uuid.UUID { return o.CriterionID })
	criteriaBySub := groupBy(criteria, func(c repositories.CriterionRow) uuid.UUID { return c.SubElementID })
	subsByMain := groupBy(subs, func(s repositories.SubElementRow) uuid.UUID { return s.MainElementID })

	sortedMains := slices.Clone(mains)
	slices.SortStableFunc(sortedMains, func(a, b repositories.MainElementRow) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})

	d := &domain.Domain{
		ID:           root.ID,
		Name:         root.Name,
		Description:  root.Description,
		MainElements: make([]domain.MainElement, 0, len(sortedMains)),
	}

	for _, m := range sortedMains {
		me := domain.MainElement{
			ID:               m.ID,
			Name:             m.Name,
			Description:      m.Description,
			WeightPercentage: m.WeightPercentage,
			DisplayOrder:     m.DisplayOrder,
		}

		mainSubs := subsByMain[m.ID]
		slices.SortStableFunc(mainSubs, func(a, b repositories.SubElementRow) int {
			return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
		})
		me.SubElements = make([]domain.SubElement, 0, len(mainSubs))

		for _, s := range mainSubs {
			se := domain.SubElement{
				ID:            s.ID,
				MainElementID: m.ID,
				Name:          s.Name,
				DisplayOrder:  s.DisplayOrder,
			}

			subCriteria := criteriaBySub[s.ID]
			slices.SortStableFunc(subCriteria, func(a, b repositories.CriterionRow) int {
				return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
			})
			se.Criteria = make([]domain.Criterion, 0, len(subCriteria))

			for _, c := range subCriteria {
				crit := domain.Criterion{
					ID:               c.ID,
					SubElementID:     s.ID,
					Name:             c.Name,
					Description:      c.Description,
					WeightPercentage: c.WeightPercentage,
					DisplayOrder:     c.DisplayOrder,
				}

				critOptions := optionsByCriterion[c.ID]
				slices.SortStableFunc(critOptions, func(a, b repositories.CriterionOptionRow) int {
					return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
				})
				crit.Options = make([]domain.CriterionOption, 0, len(critOptions))

				for _, o := range critOptions {
					crit.Options = append(crit.Options, domain.CriterionOption{
						ID:              o.ID,
						CriterionID:     c.ID,
						Label:           o.Label,
						ScorePercentage: o.ScorePercentage,
						DisplayOrder:    o.DisplayOrder,
					})
				}
				se.Criteria = append(se.Criteria, crit)
			}
			me.SubElements = append(me.SubElements, se)
		}
		d.MainElements = append(d.MainElements, me)
	}

	return d
}

// groupBy buckets rows by key, keeping input order inside each bucket.
func groupBy[T any](rows []T, key func(T) uuid.UUID) map[uuid.UUID][]T {
	out := make(map[uuid.UUID][]T)
	for _, r := range rows {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}
