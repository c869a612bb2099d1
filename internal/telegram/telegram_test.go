package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"ReadinessBot/internal/config"
	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/definition/definitiontest"
	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/models/domain"
	models "ReadinessBot/internal/models/repositories"
	"ReadinessBot/internal/narrative"
	"ReadinessBot/internal/sessionstore"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	texts    []string
	keyboard *tgmodels.InlineKeyboardMarkup
	notices  []string
}

func (f *fakeSender) record(text string, markup tgmodels.ReplyMarkup) {
	f.texts = append(f.texts, text)
	f.keyboard = nil
	if kb, ok := markup.(*tgmodels.InlineKeyboardMarkup); ok {
		f.keyboard = kb
	}
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(p.Text, p.ReplyMarkup)
	return &tgmodels.Message{}, nil
}

func (f *fakeSender) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(p.Text, p.ReplyMarkup)
	return &tgmodels.Message{}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, p.Text)
	return true, nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func (f *fakeSender) lastNotice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notices) == 0 {
		return ""
	}
	return f.notices[len(f.notices)-1]
}

func (f *fakeSender) buttons() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var data []string
	if f.keyboard == nil {
		return data
	}
	for _, row := range f.keyboard.InlineKeyboard {
		for _, b := range row {
			data = append(data, b.CallbackData)
		}
	}
	return data
}

type fakeRepo struct {
	mu          sync.Mutex
	orgs        map[int64]*domain.Organization
	evaluations []domain.Evaluation
	evAnswers   [][]domain.EvaluationAnswer
	assessments []domain.Assessment
	saveErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orgs: make(map[int64]*domain.Organization)}
}

func (r *fakeRepo) CreateOrganization(_ context.Context, name string, telegramID int64) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org := &domain.Organization{ID: uuid.New(), Name: name, TelegramID: telegramID}
	r.orgs[telegramID] = org
	return org, nil
}

func (r *fakeRepo) GetOrganizationByTelegramID(_ context.Context, telegramID int64) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[telegramID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return org, nil
}

func (r *fakeRepo) SaveEvaluation(_ context.Context, ev domain.Evaluation, answers []domain.EvaluationAnswer) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return uuid.Nil, r.saveErr
	}
	r.evaluations = append(r.evaluations, ev)
	r.evAnswers = append(r.evAnswers, answers)
	return ev.ID, nil
}

func (r *fakeRepo) SaveAssessment(_ context.Context, a domain.Assessment, _ []domain.AssessmentAnswer) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assessments = append(r.assessments, a)
	return a.ID, nil
}

func (r *fakeRepo) GetLatestEvaluation(_ context.Context, organizationID uuid.UUID) (*domain.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.evaluations) - 1; i >= 0; i-- {
		if r.evaluations[i].OrganizationID == organizationID {
			ev := r.evaluations[i]
			return &ev, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeRepo) GetEvaluationAnswers(_ context.Context, evaluationID uuid.UUID) ([]domain.EvaluationAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ev := range r.evaluations {
		if ev.ID == evaluationID {
			return r.evAnswers[i], nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetLatestAssessment(_ context.Context, organizationID uuid.UUID) (*domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.assessments) - 1; i >= 0; i-- {
		if r.assessments[i].OrganizationID == organizationID {
			a := r.assessments[i]
			return &a, nil
		}
	}
	return nil, models.ErrNotFound
}

const (
	chatID = int64(100)
	userID = int64(7)
)

type harness struct {
	rb       *Bot
	api      *fakeSender
	repo     *fakeRepo
	sessions *sessionstore.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := definition.NewCatalog(log, definitiontest.Source(), false)
	require.NoError(t, catalog.Reload(context.Background()))

	cfg := &config.Config{BotConfig: config.BotConfig{Admins: []string{"@root"}}}
	repo := newFakeRepo()
	sessions := sessionstore.NewMemoryStore(sessionstore.DefaultTTL)

	rb := newBot(log, cfg, repo, catalog, sessions, narrative.StubGenerator{})
	api := &fakeSender{}
	rb.api = api
	return &harness{rb: rb, api: api, repo: repo, sessions: sessions}
}

func (h *harness) command(text string, username string) {
	cmd := strings.Fields(text)[0]
	h.rb.handleUpdate(context.Background(), &tgmodels.Update{Message: &tgmodels.Message{
		ID:   1,
		Chat: tgmodels.Chat{ID: chatID},
		From: &tgmodels.User{ID: userID, Username: username},
		Text: text,
		Entities: []tgmodels.MessageEntity{
			{Type: tgmodels.MessageEntityTypeBotCommand, Offset: 0, Length: len([]rune(cmd))},
		},
	}})
}

func (h *harness) text(text string) {
	h.rb.handleUpdate(context.Background(), &tgmodels.Update{Message: &tgmodels.Message{
		ID:   2,
		Chat: tgmodels.Chat{ID: chatID},
		From: &tgmodels.User{ID: userID},
		Text: text,
	}})
}

func (h *harness) press(data string) {
	h.rb.handleUpdate(context.Background(), &tgmodels.Update{CallbackQuery: &tgmodels.CallbackQuery{
		ID:   "cb",
		From: tgmodels.User{ID: userID},
		Data: data,
		Message: tgmodels.MaybeInaccessibleMessage{
			Message: &tgmodels.Message{ID: 10, Chat: tgmodels.Chat{ID: chatID}},
		},
	}})
}

func (h *harness) register(t *testing.T) {
	t.Helper()
	_, err := h.repo.CreateOrganization(context.Background(), "Acme", userID)
	require.NoError(t, err)
}

func TestParseCallbackData(t *testing.T) {
	cb, ok := parseCallbackData("e:o:2:1")
	require.True(t, ok)
	assert.Equal(t, "e", cb.scope)
	assert.Equal(t, "o", cb.action)
	ci, ok := cb.intArg(0)
	assert.True(t, ok)
	assert.Equal(t, 2, ci)
	_, ok = cb.intArg(2)
	assert.False(t, ok)

	cb, ok = parseCallbackData("q:o:3:partial")
	require.True(t, ok)
	oid, ok := cb.stringArg(1)
	assert.True(t, ok)
	assert.Equal(t, "partial", oid)

	for _, bad := range []string{"", "q", ":x", "e:"} {
		_, ok := parseCallbackData(bad)
		assert.False(t, ok, bad)
	}

	cb, _ = parseCallbackData("e:c:-1")
	_, ok = cb.intArg(0)
	assert.False(t, ok)
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	assert.LessOrEqual(t, len(optionData(999, 999)), 64)
	assert.LessOrEqual(t, len(quizOptionData(99, "partial")), 64)
}

func TestCommandParsing(t *testing.T) {
	msg := &tgmodels.Message{
		Text:     "/start@ReadinessBot Acme Corp",
		Entities: []tgmodels.MessageEntity{{Type: tgmodels.MessageEntityTypeBotCommand, Offset: 0, Length: 19}},
	}
	assert.True(t, isCommand(msg))
	cmd, args := parseCommand(msg)
	assert.Equal(t, "start", cmd)
	assert.Equal(t, "Acme Corp", args)

	cmd, args = parseCommand(&tgmodels.Message{
		Text:     "/help",
		Entities: []tgmodels.MessageEntity{{Type: tgmodels.MessageEntityTypeBotCommand, Offset: 0, Length: 5}},
	})
	assert.Equal(t, "help", cmd)
	assert.Empty(t, args)

	assert.False(t, isCommand(&tgmodels.Message{Text: "hello"}))
}

func TestChatLocksAreReleased(t *testing.T) {
	var l chatLocks

	unlock := l.lock(chatID)
	assert.Equal(t, 1, l.size())

	acquired := make(chan struct{})
	go func() {
		release := l.lock(chatID)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second handler entered a locked chat")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	<-acquired

	assert.Eventually(t, func() bool { return l.size() == 0 }, time.Second, 5*time.Millisecond)

	for id := int64(0); id < 100; id++ {
		l.lock(id)()
	}
	assert.Zero(t, l.size())
}

func TestSplitTextIntoChunks(t *testing.T) {
	chunks := splitTextIntoChunks(strings.Repeat("я", 10), 4)
	assert.Equal(t, []string{"яяяя", "яяяя", "яя"}, chunks)
}

func TestRenderElement(t *testing.T) {
	s, err := evaluation.NewSession(definitiontest.Domain())
	require.NoError(t, err)
	require.NoError(t, s.AnswerCriterion(definitiontest.StrategyDocumented,
		definitiontest.OptionID(definitiontest.StrategyDocumented, definitiontest.OptionFully)))

	text, kb := renderElement(s)
	assert.Contains(t, text, "Leadership (1/3)")
	assert.Contains(t, text, "✅ Strategy is documented: Fully in place")
	assert.Contains(t, text, "Answered 1 of 6 criteria (17%)")

	// two criteria, navigation without Back on the first element, no finish
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, criterionData(1), kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, cbEvalMenu, kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, cbEvalNext, kb.InlineKeyboard[2][1].CallbackData)

	s.GoTo(s.Len() - 1)
	_, kb = renderElement(s)
	last := kb.InlineKeyboard[len(kb.InlineKeyboard)-1]
	require.Len(t, last, 1)
	assert.Equal(t, cbEvalFinish, last[0].CallbackData)

	_, _, ok := renderCriterion(s, 5)
	assert.False(t, ok)
	text, kb, ok = renderCriterion(s, 0)
	require.True(t, ok)
	assert.Contains(t, text, "Weight: 20 points")
	assert.True(t, strings.HasPrefix(kb.InlineKeyboard[0][0].Text, "✅ "))
}

func TestRegistrationFlow(t *testing.T) {
	h := newHarness(t)

	h.command("/start", "alice")
	assert.Contains(t, h.api.last(), "name of your organization")

	h.text("   ")
	assert.Contains(t, h.api.last(), "Please send a name")

	h.text("Acme")
	assert.Contains(t, h.api.last(), "Acme is registered")
	org, err := h.repo.GetOrganizationByTelegramID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	h.text("anything")
	assert.Contains(t, h.api.last(), "/help")

	h.command("/start", "alice")
	assert.Contains(t, h.api.last(), "Welcome back, Acme")
}

func TestEvaluateRequiresRegistration(t *testing.T) {
	h := newHarness(t)
	h.command("/evaluate", "alice")
	assert.Contains(t, h.api.last(), "Register your organization")
}

func TestEvaluationFlow(t *testing.T) {
	h := newHarness(t)
	h.register(t)

	h.command("/evaluate", "alice")
	assert.Contains(t, h.api.last(), "Leadership (1/3)")

	h.press(criterionData(0))
	assert.Contains(t, h.api.last(), "Strategy is documented")
	assert.Contains(t, h.api.buttons(), optionData(0, 0))

	h.press(optionData(0, 0))
	assert.Contains(t, h.api.last(), "✅ Strategy is documented: Fully in place")

	h.press(cbEvalNext)
	assert.Contains(t, h.api.last(), "Processes (2/3)")
	h.press(cbEvalNext)
	h.press(cbEvalNext)
	assert.Contains(t, h.api.last(), "Results (3/3)")
	assert.NotContains(t, h.api.buttons(), cbEvalNext)

	h.press(gotoData(0))
	assert.Contains(t, h.api.last(), "Leadership (1/3)")

	// resumes from the stored session
	h.command("/evaluate", "alice")
	assert.Contains(t, h.api.last(), "Answered 1 of 6")
	assert.NotContains(t, h.api.buttons(), cbEvalFinish)

	h.command("/progress", "alice")
	assert.Contains(t, h.api.last(), "Total: 20.00 / 100 (20%)")

	h.press(cbEvalFinish)
	assert.Equal(t, "Open the last section to finish.", h.api.lastNotice())
	assert.Empty(t, h.repo.evaluations)

	h.press(gotoData(2))
	assert.Contains(t, h.api.buttons(), cbEvalFinish)
	h.press(cbEvalFinish)
	assert.Contains(t, h.api.last(), "Evaluation saved")
	require.Len(t, h.repo.evaluations, 1)
	assert.InDelta(t, 20.0, h.repo.evaluations[0].TotalScore, 1e-9)
	require.Len(t, h.repo.evAnswers[0], 1)

	h.press(cbEvalFinish)
	assert.Equal(t, "Already saved.", h.api.lastNotice())
	assert.Len(t, h.repo.evaluations, 1)

	h.command("/report", "alice")
	assert.Contains(t, h.api.last(), "Readiness report")
	assert.Contains(t, h.api.last(), "Organizational Excellence: 20%")

	// a saved evaluation is not resumed
	h.command("/evaluate", "alice")
	assert.Contains(t, h.api.last(), "Answered 0 of 6")
}

func TestReportFromStoredEvaluation(t *testing.T) {
	h := newHarness(t)
	h.register(t)

	h.command("/report", "alice")
	assert.Contains(t, h.api.last(), "No evaluation in progress")

	h.command("/evaluate", "alice")
	h.press(criterionData(0))
	h.press(optionData(0, 0))
	h.press(gotoData(2))
	h.press(cbEvalFinish)
	require.Len(t, h.repo.evaluations, 1)

	// session expired or lost on restart
	require.NoError(t, h.sessions.Clear(context.Background(), chatID))

	h.command("/report", "alice")
	assert.Contains(t, h.api.last(), "Readiness report")
	assert.Contains(t, h.api.last(), "Organizational Excellence: 20%")

	h.command("/progress", "alice")
	assert.Contains(t, h.api.last(), "Total: 20.00 / 100 (20%)")

	// a new, still empty evaluation does not hide the stored one
	h.command("/evaluate", "alice")
	assert.Contains(t, h.api.last(), "Answered 0 of 6")
	h.command("/progress", "alice")
	assert.Contains(t, h.api.last(), "Total: 20.00 / 100 (20%)")
}

func TestEvaluationSaveFailureCanRetry(t *testing.T) {
	h := newHarness(t)
	h.register(t)
	h.repo.saveErr = assert.AnError

	h.command("/evaluate", "alice")
	h.press(gotoData(2))
	h.press(cbEvalFinish)
	assert.Equal(t, "Saving failed, please try again.", h.api.lastNotice())
	assert.Empty(t, h.repo.evaluations)

	h.repo.saveErr = nil
	h.press(cbEvalFinish)
	assert.Len(t, h.repo.evaluations, 1)
}

func TestStaleCallbacks(t *testing.T) {
	h := newHarness(t)
	h.register(t)

	h.press(cbEvalNext)
	assert.Contains(t, h.api.lastNotice(), "Session expired")

	h.command("/evaluate", "alice")
	h.press(optionData(9, 0))
	assert.Equal(t, "This option is no longer available.", h.api.lastNotice())

	h.press("z:z")
	assert.Equal(t, "", h.api.lastNotice())
}

func TestQuizFlow(t *testing.T) {
	h := newHarness(t)
	h.register(t)

	h.command("/quiz", "alice")
	assert.Contains(t, h.api.last(), "Qualifying assessment")

	h.press(cbQuizStart)
	assert.Contains(t, h.api.last(), "Question 1/5")

	h.press(quizOptionData(1, "yes"))
	assert.Contains(t, h.api.last(), "Question 2/5")
	h.press(cbQuizBack)
	assert.Contains(t, h.api.last(), "Question 1/5")
	assert.Contains(t, h.api.buttons(), quizOptionData(1, "yes"))

	h.press(quizOptionData(1, "yes"))
	h.press(quizOptionData(2, "yes"))
	h.press(quizOptionData(3, "full"))
	h.press(quizOptionData(4, "partial"))
	h.press(quizOptionData(5, "no"))
	assert.Contains(t, h.api.last(), "14.0 of 20 points")
	assert.Contains(t, h.api.last(), "qualifies")
	require.Len(t, h.repo.assessments, 1)
	assert.True(t, h.repo.assessments[0].IsQualified)

	h.press(quizOptionData(5, "yes"))
	assert.Equal(t, "This question is no longer active.", h.api.lastNotice())
	assert.Len(t, h.repo.assessments, 1)

	h.press(cbQuizRetake)
	assert.Contains(t, h.api.last(), "Question 1/5")

	h.command("/quiz", "alice")
	assert.Contains(t, h.api.last(), "Your last result: 14.0 of 20, qualified.")
}

func TestAdminReload(t *testing.T) {
	h := newHarness(t)

	h.command("/reload", "alice")
	assert.Contains(t, h.api.last(), "administrators")

	h.command("/reload", "root")
	assert.Contains(t, h.api.last(), `Reloaded "Organizational Excellence": 3 sections, 6 criteria`)

	h.command("/help", "root")
	assert.Contains(t, h.api.last(), "/reload")
	h.command("/help", "alice")
	assert.NotContains(t, h.api.last(), "/reload")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	h.command("/bogus", "alice")
	assert.Contains(t, h.api.last(), "Unknown command: /bogus")
}
