package definition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/utils/logger/sl"
)

// Status is the lifecycle of the loaded definition.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusUnavailable
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusUnavailable:
		return "unavailable"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrLoading is returned while the first load has not finished.
	ErrLoading = errors.New("evaluation definition is still loading")
	// ErrInvalidWeights is returned in strict mode when weights do not add up.
	ErrInvalidWeights = errors.New("evaluation weights are inconsistent")
)

// Catalog holds the active domain, loaded once and shared read-only by all
// sessions.
type Catalog struct {
	src    Source
	strict bool
	log    *slog.Logger

	// reload serializes Reload so a source is read by one load at a time.
	reload sync.Mutex

	mu     sync.RWMutex
	status Status
	domain *domain.Domain
	err    error
}

// NewCatalog creates a catalog in StatusLoading. With strict set, a domain
// whose weights fail validation is refused.
func NewCatalog(logger *slog.Logger, src Source, strict bool) *Catalog {
	return &Catalog{
		src:    src,
		strict: strict,
		log:    logger.With(slog.String("component", "definition")),
		status: StatusLoading,
	}
}

// Reload fetches the active domain again and replaces the cached one. A
// failed reload of a ready catalog keeps serving the cached domain.
func (c *Catalog) Reload(ctx context.Context) error {
	op := "Catalog.Reload"
	log := c.log.With(slog.String("op", op))

	c.reload.Lock()
	defer c.reload.Unlock()

	d, err := Load(ctx, c.src)
	if err == nil {
		issues := Validate(d)
		for _, issue := range issues {
			log.Warn("definition issue",
				slog.String("kind", string(issue.Kind)),
				slog.String("id", issue.ID.String()),
				slog.String("message", issue.Message))
		}
		if c.strict && issues.HasWeightIssues() {
			err = fmt.Errorf("%s: %w: %w", op, ErrInvalidWeights, issues.Err())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err != nil && c.status == StatusReady:
		log.Error("reload failed, keeping cached evaluation definition",
			slog.String("domain", c.domain.Name), sl.Err(err))
	case err == nil:
		c.status, c.domain, c.err = StatusReady, d, nil
		log.Info("evaluation definition ready",
			slog.String("domain", d.Name),
			slog.Int("criteria", d.CriteriaCount()))
	case errors.Is(err, ErrNoEvaluation):
		c.status, c.domain, c.err = StatusUnavailable, nil, err
		log.Warn("no evaluation available")
	default:
		c.status, c.domain, c.err = StatusFailed, nil, err
		log.Error("failed to load evaluation definition", sl.Err(err))
	}

	return err
}

// Domain returns the cached domain or the reason it is not available.
func (c *Catalog) Domain() (*domain.Domain, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.status {
	case StatusLoading:
		return nil, ErrLoading
	case StatusReady:
		return c.domain, nil
	default:
		return nil, c.err
	}
}

// Status reports the current load status.
func (c *Catalog) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
