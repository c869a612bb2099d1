package definition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/models/repositories"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrNoEvaluation means there is no active domain, or the active domain has
// no main elements. Navigation and scoring cannot start without one.
var ErrNoEvaluation = errors.New("no evaluation available")

// Source is the external definition store. Every collection is expected to
// be filtered to active rows already.
type Source interface {
	FetchActiveDomain(ctx context.Context) (*repositories.DomainRow, error)
	FetchMainElements(ctx context.Context, domainID uuid.UUID) ([]repositories.MainElementRow, error)
	FetchSubElements(ctx context.Context, domainID uuid.UUID) ([]repositories.SubElementRow, error)
	FetchCriteria(ctx context.Context, domainID uuid.UUID) ([]repositories.CriterionRow, error)
	FetchCriteriaOptions(ctx context.Context, domainID uuid.UUID) ([]repositories.CriterionOptionRow, error)
}

// Load fetches the active domain from src and builds its tree.
func Load(ctx context.Context, src Source) (*domain.Domain, error) {
	op := "definition.Load"

	root, err := src.FetchActiveDomain(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoEvaluation)
		}
		return nil, fmt.Errorf("%s: fetch domain: %w", op, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoEvaluation)
	}

	mains, err := src.FetchMainElements(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch main elements: %w", op, err)
	}
	subs, err := src.FetchSubElements(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch sub elements: %w", op, err)
	}
	criteria, err := src.FetchCriteria(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch criteria: %w", op, err)
	}
	options, err := src.FetchCriteriaOptions(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch options: %w", op, err)
	}

	d := BuildTree(*root, mains, subs, criteria, options)
	if len(d.MainElements) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoEvaluation)
	}

	slog.Debug("definition loaded",
		slog.String("op", op),
		slog.String("domain", d.Name),
		slog.Int("mainElements", len(d.MainElements)),
		slog.Int("criteria", d.CriteriaCount()))

	return d, nil
}

// MemorySource serves a definition held in memory. The YAML file source
// decodes into it.
type MemorySource struct {
	Domain       *repositories.DomainRow           `yaml:"domain"`
	MainElements []repositories.MainElementRow     `yaml:"mainElements"`
	SubElements  []repositories.SubElementRow      `yaml:"subElements"`
	Criteria     []repositories.CriterionRow       `yaml:"criteria"`
	Options      []repositories.CriterionOptionRow `yaml:"options"`
}

func (m *MemorySource) FetchActiveDomain(_ context.Context) (*repositories.DomainRow, error) {
	if m.Domain == nil {
		return nil, repositories.ErrNotFound
	}
	root := *m.Domain
	return &root, nil
}

func (m *MemorySource) FetchMainElements(_ context.Context, domainID uuid.UUID) ([]repositories.MainElementRow, error) {
	var out []repositories.MainElementRow
	for _, me := range m.MainElements {
		if me.DomainID == uuid.Nil || me.DomainID == domainID {
			out = append(out, me)
		}
	}
	return out, nil
}

func (m *MemorySource) FetchSubElements(_ context.Context, _ uuid.UUID) ([]repositories.SubElementRow, error) {
	return m.SubElements, nil
}

func (m *MemorySource) FetchCriteria(_ context.Context, _ uuid.UUID) ([]repositories.CriterionRow, error) {
	return m.Criteria, nil
}

func (m *MemorySource) FetchCriteriaOptions(_ context.Context, _ uuid.UUID) ([]repositories.CriterionOptionRow, error) {
	return m.Options, nil
}

// LoadFile reads a YAML definition file.
func LoadFile(path string) (*MemorySource, error) {
	op := "definition.LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", op, err)
	}

	var src MemorySource
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	return &src, nil
}

// FileSource serves a YAML definition file, re-reading it on every
// FetchActiveDomain so a catalog reload sees edits to the file.
type FileSource struct {
	Path string

	mu      sync.Mutex
	current *MemorySource
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) FetchActiveDomain(ctx context.Context) (*repositories.DomainRow, error) {
	src, err := LoadFile(f.Path)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.current = src
	f.mu.Unlock()
	return src.FetchActiveDomain(ctx)
}

func (f *FileSource) loaded() *MemorySource {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return &MemorySource{}
	}
	return f.current
}

func (f *FileSource) FetchMainElements(ctx context.Context, domainID uuid.UUID) ([]repositories.MainElementRow, error) {
	return f.loaded().FetchMainElements(ctx, domainID)
}

func (f *FileSource) FetchSubElements(ctx context.Context, domainID uuid.UUID) ([]repositories.SubElementRow, error) {
	return f.loaded().FetchSubElements(ctx, domainID)
}

func (f *FileSource) FetchCriteria(ctx context.Context, domainID uuid.UUID) ([]repositories.CriterionRow, error) {
	return f.loaded().FetchCriteria(ctx, domainID)
}

func (f *FileSource) FetchCriteriaOptions(ctx context.Context, domainID uuid.UUID) ([]repositories.CriterionOptionRow, error) {
	return f.loaded().FetchCriteriaOptions(ctx, domainID)
}
