package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ReadinessBot/internal/scoring"
	"ReadinessBot/internal/utils/logger/sl"
)

var bandText = map[scoring.Band]string{
	scoring.BandAdvanced:   "The organization shows advanced excellence practices.",
	scoring.BandReady:      "The organization is ready for a formal excellence assessment.",
	scoring.BandDeveloping: "The organization is developing its excellence practices.",
	scoring.BandInitial:    "The organization is at an early stage of its excellence journey.",
}

// StubGenerator builds the report from templates without any network call.
type StubGenerator struct{}

func (StubGenerator) Generate(_ context.Context, s scoring.Summary) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d%% (%.2f of %d).\n", s.DomainName, s.Percentage, s.Total, scoring.MaxScore)
	b.WriteString(bandText[s.Band])
	if !s.Progress.Complete {
		fmt.Fprintf(&b, " %d of %d criteria are still unanswered.",
			s.Progress.Total-s.Progress.Current, s.Progress.Total)
	}
	if s.Strongest != nil {
		fmt.Fprintf(&b, "\nStrongest area: %s (%d%%).", s.Strongest.Name, s.Strongest.Percentage())
	}
	if s.Weakest != nil && s.Weakest != s.Strongest {
		fmt.Fprintf(&b, "\nFocus next on: %s (%d%%).", s.Weakest.Name, s.Weakest.Percentage())
	}
	return b.String(), nil
}

// Fallback uses Primary and falls back to Secondary when it fails.
type Fallback struct {
	Primary   Generator
	Secondary Generator
	log       *slog.Logger
}

func NewFallback(logger *slog.Logger, primary, secondary Generator) *Fallback {
	return &Fallback{
		Primary:   primary,
		Secondary: secondary,
		log:       logger.With(slog.String("component", "narrative")),
	}
}

func (f *Fallback) Generate(ctx context.Context, s scoring.Summary) (string, error) {
	op := "Fallback.Generate"
	text, err := f.Primary.Generate(ctx, s)
	if err == nil {
		return text, nil
	}
	f.logger().Warn("primary generator failed, using fallback",
		slog.String("op", op), sl.Err(err))

	fallback, ferr := f.Secondary.Generate(ctx, s)
	if ferr != nil {
		return "", fmt.Errorf("%s: %w", op, errors.Join(err, ferr))
	}
	return fallback, nil
}

func (f *Fallback) logger() *slog.Logger {
	if f.log == nil {
		return slog.Default()
	}
	return f.log
}
