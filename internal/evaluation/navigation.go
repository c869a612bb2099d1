package evaluation

import "ReadinessBot/internal/models/domain"

// CurrentIndex is the position of the current main element.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentElement returns the main element being answered.
func (s *Session) CurrentElement() domain.MainElement {
	return s.domain.MainElements[s.CurrentIndex()]
}

// Len is the number of main elements.
func (s *Session) Len() int {
	return len(s.domain.MainElements)
}

// Next moves forward; it does nothing on the last element.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.domain.MainElements)-1 {
		s.current++
	}
}

// Previous moves back; it does nothing on the first element.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
}

// GoTo jumps to index. Out of range indexes are ignored.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.domain.MainElements) {
		return
	}
	s.current = index
}

func (s *Session) IsFirst() bool {
	return s.CurrentIndex() == 0
}

func (s *Session) IsLast() bool {
	return s.CurrentIndex() == len(s.domain.MainElements)-1
}
