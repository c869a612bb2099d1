package sessionstore

import (
	"context"
	"testing"
	"time"

	"ReadinessBot/internal/definition/definitiontest"
	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/qualifying"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession(t *testing.T) *Session {
	t.Helper()

	ev, err := evaluation.NewSession(definitiontest.Domain())
	require.NoError(t, err)
	require.NoError(t, ev.AnswerCriterion(definitiontest.KPIsDefined,
		definitiontest.OptionID(definitiontest.KPIsDefined, definitiontest.OptionFully)))
	ev.Next()
	evState := ev.State()

	quiz := qualifying.NewQuiz(qualifying.Questions)
	require.NoError(t, quiz.Start())
	require.NoError(t, quiz.SelectOption(1, "yes"))
	quizState := quiz.State()

	return &Session{
		Step:       StepRegisterOrgName,
		Data:       map[string]string{"name": "Acme"},
		Quiz:       &quizState,
		Evaluation: &evState,
		Criterion:  -1,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, 1, sampleSession(t)))
	got, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StepRegisterOrgName, got.Step)
	assert.Equal(t, 1, got.Evaluation.Current)

	now = now.Add(2 * time.Minute)
	_, ok, _ = store.Get(ctx, 1)
	assert.False(t, ok, "expired session")
	assert.Equal(t, 1, store.Sweep())

	require.NoError(t, store.Set(ctx, 2, &Session{}))
	require.NoError(t, store.Clear(ctx, 2))
	_, ok, _ = store.Get(ctx, 2)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	_, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleSession(t)
	require.NoError(t, store.Set(ctx, 7, want))
	assert.True(t, mr.Exists("readiness:session:7"))

	got, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Step, got.Step)
	assert.Equal(t, want.Data, got.Data)
	assert.Equal(t, *want.Quiz, *got.Quiz)
	assert.Equal(t, want.Evaluation.Answers, got.Evaluation.Answers)
	assert.Equal(t, -1, got.Criterion)

	restored, err := evaluation.Restore(definitiontest.Domain(), *got.Evaluation)
	require.NoError(t, err)
	assert.Equal(t, 10.0, restored.Scores().Total)

	mr.FastForward(2 * time.Minute)
	_, ok, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, 8, &Session{}))
	require.NoError(t, store.Clear(ctx, 8))
	assert.False(t, mr.Exists("readiness:session:8"))
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), addr, "", 0, time.Minute)
	assert.Error(t, err)
}
