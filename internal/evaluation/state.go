package evaluation

import (
	"fmt"

	"ReadinessBot/internal/models/domain"

	"github.com/google/uuid"
)

// State is the serializable form of a session. The domain is not part of
// it; it is supplied again on Restore.
type State struct {
	DomainID     uuid.UUID      `json:"domainId"`
	Current      int            `json:"current"`
	Answers      domain.Answers `json:"answers"`
	Saved        bool           `json:"saved"`
	EvaluationID uuid.UUID      `json:"evaluationId"`
}

// State captures the session between interactions. An in-flight save is
// not captured.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		DomainID:     s.domain.ID,
		Current:      s.current,
		Answers:      s.answers.Clone(),
		Saved:        s.saved,
		EvaluationID: s.evaluationID,
	}
}

// Restore rebuilds a session over d. State recorded against another domain
// is discarded. Answers whose criterion or option no longer exists in d are
// dropped, and the index is clamped into range.
func Restore(d *domain.Domain, st State) (*Session, error) {
	s, err := NewSession(d)
	if err != nil {
		return nil, fmt.Errorf("evaluation.Restore: %w", err)
	}
	if st.DomainID != uuid.Nil && st.DomainID != d.ID {
		return s, nil
	}

	for cid, a := range st.Answers {
		c, ok := d.Criterion(cid)
		if !ok {
			continue
		}
		o, ok := c.Option(a.SelectedOptionID)
		if !ok {
			continue
		}
		s.answers[cid] = domain.Answer{SelectedOptionID: o.ID, ScorePercentage: o.ScorePercentage}
	}

	s.current = min(max(st.Current, 0), len(d.MainElements)-1)
	s.saved = st.Saved
	s.evaluationID = st.EvaluationID
	return s, nil
}
