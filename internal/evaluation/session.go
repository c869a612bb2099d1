package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/scoring"

	"github.com/google/uuid"
)

var (
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrUnknownOption    = errors.New("unknown option")
	ErrAlreadySaved     = errors.New("evaluation already saved")
	ErrSaveInProgress   = errors.New("evaluation save in progress")
)

// Saver persists a finalized evaluation and returns its id.
type Saver interface {
	SaveEvaluation(ctx context.Context, ev domain.Evaluation, answers []domain.EvaluationAnswer) (uuid.UUID, error)
}

// SaveStatus lets callers avoid duplicate submissions.
type SaveStatus struct {
	Saving bool
	Saved  bool
}

// Session is one organization's walk through a domain. The answer map and
// the current main element index are its only mutable state; scores and
// progress are recomputed from them on every read.
type Session struct {
	domain *domain.Domain
	now    func() time.Time

	mu           sync.Mutex
	current      int
	answers      domain.Answers
	saving       bool
	saved        bool
	evaluationID uuid.UUID
}

// NewSession starts at the first main element with no answers.
func NewSession(d *domain.Domain) (*Session, error) {
	if d == nil || len(d.MainElements) == 0 {
		return nil, fmt.Errorf("evaluation.NewSession: %w", definition.ErrNoEvaluation)
	}
	return &Session{
		domain:  d,
		now:     time.Now,
		answers: make(domain.Answers),
	}, nil
}

func (s *Session) Domain() *domain.Domain { return s.domain }

// AnswerCriterion selects an option for a criterion. The option score comes
// from the definition. A new option replaces the previous answer.
func (s *Session) AnswerCriterion(criterionID, optionID uuid.UUID) error {
	op := "Session.AnswerCriterion"

	c, ok := s.domain.Criterion(criterionID)
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrUnknownCriterion, criterionID)
	}
	o, ok := c.Option(optionID)
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrUnknownOption, optionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.answers.Clone()
	next[criterionID] = domain.Answer{
		SelectedOptionID: o.ID,
		ScorePercentage:  o.ScorePercentage,
	}
	s.answers = next
	return nil
}

// ClearCriterion removes an answer. It reports whether one existed.
func (s *Session) ClearCriterion(criterionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[criterionID]; !ok {
		return false
	}
	next := s.answers.Clone()
	delete(next, criterionID)
	s.answers = next
	return true
}

// Answers returns a copy of the answer map.
func (s *Session) Answers() domain.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Answer returns the answer to one criterion.
func (s *Session) Answer(criterionID uuid.UUID) (domain.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[criterionID]
	return a, ok
}

// Scores recomputes the score snapshot.
func (s *Session) Scores() scoring.Snapshot {
	return scoring.Calculate(s.domain, s.snapshotAnswers())
}

// Progress recomputes the completion counts.
func (s *Session) Progress() scoring.Progress {
	return scoring.ComputeProgress(s.domain, s.snapshotAnswers())
}

// IsComplete reports whether every criterion has an answer.
func (s *Session) IsComplete() bool {
	return s.Progress().Complete
}

// snapshotAnswers returns the committed map. Maps are replaced, never
// mutated, so the returned value is safe to read without the lock.
func (s *Session) snapshotAnswers() domain.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers
}

// Reset clears answers, navigation and the save guard.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = make(domain.Answers)
	s.current = 0
	s.saving = false
	s.saved = false
	s.evaluationID = uuid.Nil
}

// Status reports the save guard.
func (s *Session) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveStatus{Saving: s.saving, Saved: s.saved}
}

// EvaluationID is the id assigned by the store once saved.
func (s *Session) EvaluationID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluationID
}

// Finalize sends the evaluation and its answers to saver at most once.
// A failed save leaves the session untouched and may be retried by the
// caller. Local scores stay valid whatever the outcome.
func (s *Session) Finalize(ctx context.Context, saver Saver, organizationID uuid.UUID) (uuid.UUID, error) {
	op := "Session.Finalize"

	s.mu.Lock()
	switch {
	case s.saved:
		s.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrAlreadySaved)
	case s.saving:
		s.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrSaveInProgress)
	}
	s.saving = true
	answers := s.answers
	s.mu.Unlock()

	ev, records := s.buildRecords(organizationID, answers)

	id, err := saver.SaveEvaluation(ctx, ev, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	s.saved = true
	s.evaluationID = id
	return id, nil
}

func (s *Session) buildRecords(organizationID uuid.UUID, answers domain.Answers) (domain.Evaluation, []domain.EvaluationAnswer) {
	snap := scoring.Calculate(s.domain, answers)

	ev := domain.Evaluation{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		DomainID:       s.domain.ID,
		TotalScore:     snap.Total,
		MaxScore:       snap.Max,
		IsCompleted:    true,
		CompletedAt:    s.now(),
	}

	records := make([]domain.EvaluationAnswer, 0, len(answers))
	for _, me := range s.domain.MainElements {
		for _, c := range me.Criteria() {
			a, ok := answers[c.ID]
			if !ok {
				continue
			}
			records = append(records, domain.EvaluationAnswer{
				EvaluationID:     ev.ID,
				CriterionID:      c.ID,
				SelectedOptionID: a.SelectedOptionID,
				Score:            scoring.CriterionScore(c, a),
			})
		}
	}

	return ev, records
}
