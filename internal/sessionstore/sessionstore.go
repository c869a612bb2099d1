package sessionstore

import (
	"context"
	"time"

	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/qualifying"
)

// DefaultTTL is the inactivity timeout for a chat session.
const DefaultTTL = 30 * time.Minute

// Step identifies which free-text input a chat is waiting for.
type Step string

const (
	StepNone            Step = ""
	StepRegisterOrgName Step = "register_org_name"
)

// Session is everything a chat keeps between updates.
type Session struct {
	Step       Step              `json:"step,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	Quiz       *qualifying.State `json:"quiz,omitempty"`
	Evaluation *evaluation.State `json:"evaluation,omitempty"`
	// Criterion is the index, within the current main element, of the
	// criterion whose options are on screen. -1 means the element overview.
	Criterion int       `json:"criterion"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store keeps sessions keyed by chat id.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, bool, error)
	Set(ctx context.Context, chatID int64, sess *Session) error
	Clear(ctx context.Context, chatID int64) error
}
