package api

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ReadinessBot/internal/config"
	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/definition/definitiontest"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/qualifying"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func newServer(t *testing.T, load bool) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := definition.NewCatalog(log, definitiontest.Source(), false)
	if load {
		require.NoError(t, catalog.Reload(context.Background()))
	}
	return NewServer(log, config.HttpServerConfig{}, catalog, qualifying.Questions)
}

func do(t *testing.T, s *Server, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestHealthAndReady(t *testing.T) {
	code, env := do(t, newServer(t, false), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = do(t, newServer(t, false), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "loading", env.Error.Code)

	code, _ = do(t, newServer(t, true), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestGetDomain(t *testing.T) {
	code, env := do(t, newServer(t, true), http.MethodGet, "/api/v1/domain", "")
	require.Equal(t, http.StatusOK, code)

	var d struct {
		Name         string `json:"name"`
		MainElements []struct {
			Name string `json:"name"`
		} `json:"mainElements"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "Organizational Excellence", d.Name)
	require.Len(t, d.MainElements, 3)
	assert.Equal(t, "Leadership", d.MainElements[0].Name)
}

func TestScoreEvaluation(t *testing.T) {
	body := `{"answers":{"` + definitiontest.StrategyDocumented.String() + `":"` +
		definitiontest.OptionID(definitiontest.StrategyDocumented, definitiontest.OptionFully).String() + `","` +
		definitiontest.KPIsDefined.String() + `":"` +
		definitiontest.OptionID(definitiontest.KPIsDefined, definitiontest.OptionPartially).String() + `"}}`

	code, env := do(t, newServer(t, true), http.MethodPost, "/api/v1/evaluations/score", body)
	require.Equal(t, http.StatusOK, code, string(env.Data))

	var res struct {
		Scores struct {
			Total      float64 `json:"total"`
			Percentage int     `json:"percentage"`
		} `json:"scores"`
		Progress struct {
			Current    int  `json:"current"`
			Total      int  `json:"total"`
			IsComplete bool `json:"isComplete"`
		} `json:"progress"`
		Band string `json:"band"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 25.0, res.Scores.Total, 1e-9)
	assert.Equal(t, 25, res.Scores.Percentage)
	assert.Equal(t, 2, res.Progress.Current)
	assert.Equal(t, definitiontest.CriteriaCount, res.Progress.Total)
	assert.False(t, res.Progress.IsComplete)
	assert.Equal(t, "initial", res.Band)
}

func TestScoreEvaluationRejectsUnknownIDs(t *testing.T) {
	s := newServer(t, true)
	body := `{"answers":{"` + definitiontest.StrategyDocumented.String() +
		`":"99999999-0000-0000-0000-000000000000"}}`
	code, env := do(t, s, http.MethodPost, "/api/v1/evaluations/score", body)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_answer", env.Error.Code)

	code, _ = do(t, s, http.MethodPost, "/api/v1/evaluations/score", `{"answers":{"nope":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestScoreEvaluationBeforeLoad(t *testing.T) {
	code, _ := do(t, newServer(t, false), http.MethodPost, "/api/v1/evaluations/score", `{"answers":{}}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

type brokenCatalog struct{}

func (brokenCatalog) Domain() (*domain.Domain, error) {
	return nil, errors.New(`pq: password authentication failed for user "bot"`)
}

func TestDomainLoadErrorIsNotExposed(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewServer(log, config.HttpServerConfig{}, brokenCatalog{}, qualifying.Questions)

	for _, path := range []string{"/ready", "/api/v1/domain"} {
		code, env := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, code, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, "unavailable", env.Error.Code)
		assert.Equal(t, "evaluation is unavailable", env.Error.Message)
	}
	assert.Contains(t, buf.String(), "password authentication failed")
}

func TestAssessmentEndpoints(t *testing.T) {
	s := newServer(t, false)

	code, env := do(t, s, http.MethodGet, "/api/v1/assessment/questions", "")
	require.Equal(t, http.StatusOK, code)
	var qs struct {
		Questions []json.RawMessage `json:"questions"`
		MaxScore  float64           `json:"maxScore"`
		Threshold float64           `json:"threshold"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &qs))
	assert.Len(t, qs.Questions, len(qualifying.Questions))
	assert.InDelta(t, 20.0, qs.MaxScore, 1e-9)
	assert.InDelta(t, 12.0, qs.Threshold, 1e-9)

	code, env = do(t, s, http.MethodPost, "/api/v1/assessment/score",
		`{"answers":{"1":"yes","2":"yes","3":"full","4":"none","5":"no"}}`)
	require.Equal(t, http.StatusOK, code)
	var res struct {
		TotalScore  float64 `json:"totalScore"`
		MaxScore    float64 `json:"maxScore"`
		IsQualified bool    `json:"isQualified"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 11.0, res.TotalScore, 1e-9)
	assert.InDelta(t, 20.0, res.MaxScore, 1e-9)
	assert.False(t, res.IsQualified)

	code, _ = do(t, s, http.MethodPost, "/api/v1/assessment/score", `{"answers":{"x":"yes"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodPost, "/api/v1/assessment/score", `{"answers":{"1":"maybe"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStartShutdown(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := definition.NewCatalog(log, definitiontest.Source(), false)
	s := NewServer(log, config.HttpServerConfig{Address: "127.0.0.1", Port: "0"}, catalog, qualifying.Questions)

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-errc)
}
