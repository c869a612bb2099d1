package qualifying

import "ReadinessBot/internal/models/domain"

const (
	// MaxScore is the sum of all question weights.
	MaxScore = 20
	// QualificationThreshold is the total needed to qualify. It is an
	// absolute score, not a share of MaxScore.
	QualificationThreshold = 12
)

var yesNo = []domain.QuestionOption{
	{ID: "yes", Label: "Yes", ScorePercentage: 100},
	{ID: "no", Label: "No", ScorePercentage: 0},
}

var fullPartialNone = []domain.QuestionOption{
	{ID: "full", Label: "Yes, fully", ScorePercentage: 100},
	{ID: "partial", Label: "Partially", ScorePercentage: 50},
	{ID: "none", Label: "No", ScorePercentage: 0},
}

// Questions is the fixed qualifying question set, in display order.
var Questions = []domain.Question{
	{
		ID:      1,
		Text:    "Does your organization have a documented strategy with measurable objectives?",
		Weight:  4,
		Type:    domain.QuestionBinary,
		Options: yesNo,
	},
	{
		ID:      2,
		Text:    "Is there a team or person accountable for quality and excellence initiatives?",
		Weight:  3,
		Type:    domain.QuestionBinary,
		Options: yesNo,
	},
	{
		ID:      3,
		Text:    "Are your core processes documented and reviewed periodically?",
		Weight:  4,
		Type:    domain.QuestionMultiple,
		Options: fullPartialNone,
	},
	{
		ID:      4,
		Text:    "Does senior leadership actively sponsor improvement programs?",
		Weight:  6,
		Type:    domain.QuestionMultiple,
		Options: fullPartialNone,
	},
	{
		ID:      5,
		Text:    "Do you collect and analyze feedback from customers or beneficiaries?",
		Weight:  3,
		Type:    domain.QuestionBinary,
		Options: yesNo,
	},
}
