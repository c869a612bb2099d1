package qualifying

import (
	"errors"
	"fmt"
	"time"

	"ReadinessBot/internal/models/domain"

	"github.com/google/uuid"
)

// Stage is the position of a quiz in its linear flow.
type Stage string

const (
	StageWelcome   Stage = "welcome"
	StageQuestions Stage = "questions"
	StageResult    Stage = "result"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("unknown option")
	ErrWrongStage      = errors.New("operation not allowed at this stage")
)

// Quiz walks a question set: welcome → questions → result.
// A Quiz is not safe for concurrent use.
type Quiz struct {
	questions []domain.Question
	stage     Stage
	index     int
	answers   map[int]domain.AssessmentAnswer
}

// NewQuiz starts a quiz at the welcome stage.
func NewQuiz(questions []domain.Question) *Quiz {
	return &Quiz{
		questions: questions,
		stage:     StageWelcome,
		answers:   make(map[int]domain.AssessmentAnswer),
	}
}

// Start moves from welcome to the first question.
func (q *Quiz) Start() error {
	if q.stage != StageWelcome {
		return fmt.Errorf("Quiz.Start: %w", ErrWrongStage)
	}
	q.stage = StageQuestions
	q.index = 0
	return nil
}

func (q *Quiz) Stage() Stage { return q.stage }

func (q *Quiz) Index() int { return q.index }

func (q *Quiz) Len() int { return len(q.questions) }

// Current returns the question being shown.
func (q *Quiz) Current() (domain.Question, bool) {
	if q.stage != StageQuestions || q.index < 0 || q.index >= len(q.questions) {
		return domain.Question{}, false
	}
	return q.questions[q.index], true
}

// Selected returns the stored option of the current question, if any.
func (q *Quiz) Selected() (string, bool) {
	cur, ok := q.Current()
	if !ok {
		return "", false
	}
	a, ok := q.answers[cur.ID]
	return a.SelectedOptionID, ok
}

// SelectOption stores the answer to a question, replacing any earlier one,
// then advances past it or to the result after the last question.
func (q *Quiz) SelectOption(questionID int, optionID string) error {
	op := "Quiz.SelectOption"

	if q.stage != StageQuestions {
		return fmt.Errorf("%s: %w", op, ErrWrongStage)
	}

	idx := -1
	for i, question := range q.questions {
		if question.ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%s: %w: %d", op, ErrUnknownQuestion, questionID)
	}

	question := q.questions[idx]
	option, ok := question.Option(optionID)
	if !ok {
		return fmt.Errorf("%s: %w: %q", op, ErrUnknownOption, optionID)
	}

	q.answers[question.ID] = domain.AssessmentAnswer{
		QuestionID:       question.ID,
		SelectedOptionID: option.ID,
		Score:            Score(question, option),
	}

	if idx >= len(q.questions)-1 {
		q.stage = StageResult
		q.index = len(q.questions) - 1
		return nil
	}
	q.index = idx + 1
	return nil
}

// Previous steps back one question, keeping stored answers.
// It reports false on the first question or outside the questions stage.
func (q *Quiz) Previous() bool {
	if q.stage != StageQuestions || q.index == 0 {
		return false
	}
	q.index--
	return true
}

// Result totals the answers given so far.
func (q *Quiz) Result() domain.AssessmentResult {
	return Evaluate(q.questions, q.answers)
}

// Answers returns the stored answers in question order.
func (q *Quiz) Answers() []domain.AssessmentAnswer {
	out := make([]domain.AssessmentAnswer, 0, len(q.answers))
	for _, question := range q.questions {
		if a, ok := q.answers[question.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Retake clears the answers and returns to the first question.
func (q *Quiz) Retake() {
	q.answers = make(map[int]domain.AssessmentAnswer)
	q.stage = StageQuestions
	q.index = 0
}

// Reset returns to the welcome stage with no answers.
func (q *Quiz) Reset() {
	q.answers = make(map[int]domain.AssessmentAnswer)
	q.stage = StageWelcome
	q.index = 0
}

// Record builds the persistence shape of the current result.
func (q *Quiz) Record(organizationID uuid.UUID, now time.Time) (domain.Assessment, []domain.AssessmentAnswer) {
	res := q.Result()
	rec := domain.Assessment{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		TotalScore:     res.TotalScore,
		MaxScore:       res.MaxScore,
		IsQualified:    res.IsQualified,
		CreatedAt:      now,
	}

	answers := q.Answers()
	for i := range answers {
		answers[i].AssessmentID = rec.ID
	}
	return rec, answers
}

// State is the serializable form of a quiz.
type State struct {
	Stage   Stage                     `json:"stage"`
	Index   int                       `json:"index"`
	Answers []domain.AssessmentAnswer `json:"answers"`
}

// State captures the quiz so it can be stored between interactions.
func (q *Quiz) State() State {
	return State{
		Stage:   q.stage,
		Index:   q.index,
		Answers: q.Answers(),
	}
}

// Restore rebuilds a quiz over questions from a stored state. Answers to
// questions that no longer exist are dropped.
func Restore(questions []domain.Question, st State) *Quiz {
	q := NewQuiz(questions)
	if st.Stage != "" {
		q.stage = st.Stage
	}
	if st.Index >= 0 && st.Index < len(questions) {
		q.index = st.Index
	}
	for _, a := range st.Answers {
		for _, question := range questions {
			if question.ID == a.QuestionID {
				q.answers[a.QuestionID] = a
			}
		}
	}
	return q
}
