package definition

import (
	"errors"
	"fmt"
	"math"

	"ReadinessBot/internal/models/domain"

	"github.com/google/uuid"
)

// weightTolerance absorbs rounding in hand-authored weights such as 33.33.
const weightTolerance = 0.01

type IssueKind string

const (
	IssueMainWeightSum      IssueKind = "main_weight_sum"
	IssueCriterionWeightSum IssueKind = "criterion_weight_sum"
	IssueDuplicateCriterion IssueKind = "duplicate_criterion"
	IssueNoOptions          IssueKind = "no_options"
	IssueOptionRange        IssueKind = "option_range"
)

// Issue is one problem found in an otherwise loadable definition.
type Issue struct {
	Kind    IssueKind
	ID      uuid.UUID
	Message string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// Issues is the result of Validate.
type Issues []Issue

// Err joins all issues into one error, or nil when there are none.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	errs := make([]error, 0, len(is))
	for _, i := range is {
		errs = append(errs, i)
	}
	return errors.Join(errs...)
}

// HasWeightIssues reports whether any weight-sum issue was found.
func (is Issues) HasWeightIssues() bool {
	for _, i := range is {
		if i.Kind == IssueMainWeightSum || i.Kind == IssueCriterionWeightSum {
			return true
		}
	}
	return false
}

// Validate checks the authoring conventions that scoring relies on but does
// not enforce: main weights sum to 100, criterion weights sum to their main
// element's weight, criterion ids are unique, options are scored in [0,100].
func Validate(d *domain.Domain) Issues {
	var issues Issues
	if d == nil {
		return issues
	}

	seen := make(map[uuid.UUID]bool)
	var mainSum float64

	for _, me := range d.MainElements {
		mainSum += me.WeightPercentage

		var critSum float64
		for _, se := range me.SubElements {
			for _, c := range se.Criteria {
				critSum += c.WeightPercentage

				if seen[c.ID] {
					issues = append(issues, Issue{
						Kind:    IssueDuplicateCriterion,
						ID:      c.ID,
						Message: fmt.Sprintf("criterion %q appears more than once", c.Name),
					})
				}
				seen[c.ID] = true

				if len(c.Options) == 0 {
					issues = append(issues, Issue{
						Kind:    IssueNoOptions,
						ID:      c.ID,
						Message: fmt.Sprintf("criterion %q has no options", c.Name),
					})
				}
				for _, o := range c.Options {
					if o.ScorePercentage < 0 || o.ScorePercentage > 100 {
						issues = append(issues, Issue{
							Kind:    IssueOptionRange,
							ID:      o.ID,
							Message: fmt.Sprintf("option %q of %q scores %.2f, outside [0,100]", o.Label, c.Name, o.ScorePercentage),
						})
					}
				}
			}
		}

		if math.Abs(critSum-me.WeightPercentage) > weightTolerance {
			issues = append(issues, Issue{
				Kind:    IssueCriterionWeightSum,
				ID:      me.ID,
				Message: fmt.Sprintf("criteria of %q sum to %.2f, element weight is %.2f", me.Name, critSum, me.WeightPercentage),
			})
		}
	}

	if math.Abs(mainSum-100) > weightTolerance {
		issues = append(issues, Issue{
			Kind:    IssueMainWeightSum,
			ID:      d.ID,
			Message: fmt.Sprintf("main element weights sum to %.2f, must sum to 100", mainSum),
		})
	}

	return issues
}
