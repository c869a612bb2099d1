package qualifying

import (
	"fmt"

	"ReadinessBot/internal/models/domain"
)

// Score is the points an option earns for its question.
func Score(q domain.Question, o domain.QuestionOption) float64 {
	return o.ScorePercentage / 100 * q.Weight
}

// MaxFor sums the weights of a question set.
func MaxFor(questions []domain.Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.Weight
	}
	return total
}

// Evaluate totals the answers against the qualification threshold. The max
// score does not depend on how many questions were answered.
func Evaluate(questions []domain.Question, answers map[int]domain.AssessmentAnswer) domain.AssessmentResult {
	var total float64
	for _, a := range answers {
		total += a.Score
	}
	return domain.AssessmentResult{
		TotalScore:  total,
		MaxScore:    MaxFor(questions),
		IsQualified: total >= QualificationThreshold,
	}
}

// ScoreAnswers scores a set of selections keyed by question id without
// running the quiz. Unknown questions or options fail the whole set.
func ScoreAnswers(questions []domain.Question, selections map[int]string) (domain.AssessmentResult, []domain.AssessmentAnswer, error) {
	op := "qualifying.ScoreAnswers"

	byID := make(map[int]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answers := make(map[int]domain.AssessmentAnswer, len(selections))
	for qid, oid := range selections {
		q, ok := byID[qid]
		if !ok {
			return domain.AssessmentResult{}, nil, fmt.Errorf("%s: %w: %d", op, ErrUnknownQuestion, qid)
		}
		o, ok := q.Option(oid)
		if !ok {
			return domain.AssessmentResult{}, nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownOption, oid)
		}
		answers[qid] = domain.AssessmentAnswer{
			QuestionID:       qid,
			SelectedOptionID: o.ID,
			Score:            Score(q, o),
		}
	}

	ordered := make([]domain.AssessmentAnswer, 0, len(answers))
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok {
			ordered = append(ordered, a)
		}
	}
	return Evaluate(questions, answers), ordered, nil
}
