package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ReadinessBot/internal/definition/definitiontest"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() scoring.Summary {
	d := definitiontest.Domain()
	answers := domain.Answers{
		definitiontest.StrategyDocumented: {
			SelectedOptionID: definitiontest.OptionID(definitiontest.StrategyDocumented, definitiontest.OptionFully),
			ScorePercentage:  100,
		},
		definitiontest.ImprovementCycle: {
			SelectedOptionID: definitiontest.OptionID(definitiontest.ImprovementCycle, definitiontest.OptionPartially),
			ScorePercentage:  50,
		},
	}
	snap := scoring.Calculate(d, answers)
	return scoring.Summarize(d, snap, scoring.ComputeProgress(d, answers))
}

func TestPrompt(t *testing.T) {
	p := Prompt(sampleSummary())
	assert.Contains(t, p, "Domain: Organizational Excellence")
	assert.Contains(t, p, "Total score: 30.00 of 100 (30%, band initial)")
	assert.Contains(t, p, "Answered criteria: 2 of 6")
	assert.Contains(t, p, "- Leadership: 20.00 of 40.00 (50%)")
	assert.Contains(t, p, "Weakest: Results")
}

func TestStubGenerator(t *testing.T) {
	text, err := StubGenerator{}.Generate(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Contains(t, text, "Organizational Excellence: 30%")
	assert.Contains(t, text, "4 of 6 criteria are still unanswered")
	assert.Contains(t, text, "Strongest area: Leadership (50%)")
	assert.Contains(t, text, "Focus next on: Results (0%)")
}

func TestOpenRouterGenerator(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","model":"test/model",
			"choices":[{"index":0,"finish_reason":"stop",
			"message":{"role":"assistant","content":"  Solid leadership, weak results.  "}}]}`)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := NewOpenRouterGenerator(log, "sk-test", "test/model", time.Second, WithBaseURL(srv.URL))

	text, err := g.Generate(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, "Solid leadership, weak results.", text)
	assert.Equal(t, "test/model", got["model"])
	assert.Len(t, got["messages"], 2)
}

func TestOpenRouterGeneratorEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","choices":[]}`)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := NewOpenRouterGenerator(log, "sk-test", "test/model", time.Second, WithBaseURL(srv.URL))

	_, err := g.Generate(context.Background(), sampleSummary())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

type failing struct{}

func (failing) Generate(context.Context, scoring.Summary) (string, error) {
	return "", assert.AnError
}

func TestFallback(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	f := NewFallback(log, failing{}, StubGenerator{})
	text, err := f.Generate(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Contains(t, text, "Organizational Excellence")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), assert.AnError.Error())

	_, err = NewFallback(log, failing{}, failing{}).Generate(context.Background(), sampleSummary())
	assert.ErrorIs(t, err, assert.AnError)
}
