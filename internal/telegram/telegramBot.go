package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"ReadinessBot/internal/config"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/narrative"
	"ReadinessBot/internal/qualifying"
	"ReadinessBot/internal/sessionstore"
	"ReadinessBot/internal/utils/logger/sl"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// Repository is the persistence the bot needs.
type Repository interface {
	CreateOrganization(ctx context.Context, name string, telegramID int64) (*domain.Organization, error)
	GetOrganizationByTelegramID(ctx context.Context, telegramID int64) (*domain.Organization, error)
	SaveEvaluation(ctx context.Context, ev domain.Evaluation, answers []domain.EvaluationAnswer) (uuid.UUID, error)
	SaveAssessment(ctx context.Context, a domain.Assessment, answers []domain.AssessmentAnswer) (uuid.UUID, error)
	GetLatestEvaluation(ctx context.Context, organizationID uuid.UUID) (*domain.Evaluation, error)
	GetEvaluationAnswers(ctx context.Context, evaluationID uuid.UUID) ([]domain.EvaluationAnswer, error)
	GetLatestAssessment(ctx context.Context, organizationID uuid.UUID) (*domain.Assessment, error)
}

// Catalog serves the active evaluation domain.
type Catalog interface {
	Domain() (*domain.Domain, error)
	Reload(ctx context.Context) error
}

// sender is the part of the Telegram client the handlers call.
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Bot is the Telegram front end of the readiness evaluation.
type Bot struct {
	b         *bot.Bot
	api       sender
	cfg       *config.Config
	repo      Repository
	catalog   Catalog
	sessions  sessionstore.Store
	narrator  narrative.Generator
	questions []domain.Question
	locks     chatLocks
	ctx       context.Context
	cancel    context.CancelFunc
	log       *slog.Logger
}

// New creates a new Bot instance.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	repo Repository,
	catalog Catalog,
	sessions sessionstore.Store,
	narrator narrative.Generator,
) (*Bot, error) {
	op := "telegram.New()"
	log := logger.With(slog.String("op", op))

	rb := newBot(logger, cfg, repo, catalog, sessions, narrator)

	b, err := bot.New(cfg.BotConfig.TgbotApiToken,
		bot.WithDefaultHandler(rb.defaultHandler),
	)
	if err != nil {
		log.Error("error auth telegram bot", sl.Err(err))
		rb.cancel()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rb.b = b
	rb.api = b

	log.Info("telegram bot created")
	return rb, nil
}

func newBot(
	logger *slog.Logger,
	cfg *config.Config,
	repo Repository,
	catalog Catalog,
	sessions sessionstore.Store,
	narrator narrative.Generator,
) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		cfg:       cfg,
		repo:      repo,
		catalog:   catalog,
		sessions:  sessions,
		narrator:  narrator,
		questions: qualifying.Questions,
		ctx:       ctx,
		cancel:    cancel,
		log:       logger.With(slog.String("component", "telegram")),
	}
}

// defaultHandler is the single entry point for all updates from go-telegram/bot.
func (rb *Bot) defaultHandler(ctx context.Context, _ *bot.Bot, update *models.Update) {
	rb.handleUpdate(ctx, update)
}

func (rb *Bot) handleUpdate(ctx context.Context, update *models.Update) {
	op := "telegram.handleUpdate()"
	log := rb.log.With(slog.String("op", op))

	if update.Message != nil && update.Message.From != nil {
		log.Info("input message",
			slog.String("user_id", strconv.FormatInt(update.Message.From.ID, 10)),
			slog.String("user_name", update.Message.From.Username),
			slog.String("text", update.Message.Text),
		)
	}
	if update.CallbackQuery != nil {
		log.Info("input callback",
			slog.String("user_id", strconv.FormatInt(update.CallbackQuery.From.ID, 10)),
			slog.String("user_name", update.CallbackQuery.From.Username),
			slog.String("data", update.CallbackQuery.Data),
		)
	}

	switch {
	case update.Message != nil && isCommand(update.Message):
		unlock := rb.locks.lock(update.Message.Chat.ID)
		defer unlock()
		if err := rb.commandHandler(ctx, update.Message); err != nil {
			log.Error("command handler error", sl.Err(err))
		}
	case update.CallbackQuery != nil:
		rb.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		unlock := rb.locks.lock(update.Message.Chat.ID)
		defer unlock()
		if err := rb.handleSessionInput(ctx, update.Message); err != nil {
			log.Error("session input error", sl.Err(err))
		}
	}
}

// chatLocks serializes updates of the same chat so a session is never
// loaded and stored by two handlers at once. An entry lives only while a
// handler holds or waits for it.
type chatLocks struct {
	mu sync.Mutex
	m  map[int64]*chatLock
}

type chatLock struct {
	sync.Mutex
	refs int
}

func (l *chatLocks) lock(chatID int64) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[int64]*chatLock)
	}
	cl, ok := l.m[chatID]
	if !ok {
		cl = &chatLock{}
		l.m[chatID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.Lock()
	return func() {
		cl.Unlock()
		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.m, chatID)
		}
		l.mu.Unlock()
	}
}

func (l *chatLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// commandEntity returns the bot_command entity that opens msg.
func commandEntity(msg *models.Message) (models.MessageEntity, bool) {
	if msg == nil {
		return models.MessageEntity{}, false
	}
	for _, e := range msg.Entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return e, true
		}
	}
	return models.MessageEntity{}, false
}

func isCommand(msg *models.Message) bool {
	_, ok := commandEntity(msg)
	return ok
}

// parseCommand splits "/cmd@botname args" into "cmd" and "args".
// Entity offsets count UTF-16 units; commands are ASCII so runes suffice.
func parseCommand(msg *models.Message) (cmd, args string) {
	e, ok := commandEntity(msg)
	if !ok {
		return "", ""
	}
	runes := []rune(msg.Text)
	end := min(e.Offset+e.Length, len(runes))
	cmd = strings.TrimPrefix(string(runes[:end]), "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, strings.TrimSpace(string(runes[end:]))
}

// Start begins polling for Telegram updates and blocks until Shutdown.
func (rb *Bot) Start() {
	rb.log.Info("starting telegram bot polling")
	rb.b.Start(rb.ctx)
	rb.log.Info("telegram bot polling stopped")
}

// sendReply sends a plain-text reply, split into Telegram sized chunks.
func (rb *Bot) sendReply(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitTextIntoChunks(text, 4096) {
		if _, err := rb.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
		}); err != nil {
			return fmt.Errorf("sendReply: %w", err)
		}
	}
	return nil
}

// sendWithKeyboard sends a plain-text reply with an inline keyboard.
func (rb *Bot) sendWithKeyboard(ctx context.Context, chatID int64, text string, kb *models.InlineKeyboardMarkup) error {
	p := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if kb != nil {
		p.ReplyMarkup = kb
	}
	if _, err := rb.api.SendMessage(ctx, p); err != nil {
		return fmt.Errorf("sendWithKeyboard: %w", err)
	}
	return nil
}

// editWithKeyboard replaces the text and keyboard of a sent message. A zero
// messageID sends a new message instead.
func (rb *Bot) editWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, kb *models.InlineKeyboardMarkup) error {
	if messageID == 0 {
		return rb.sendWithKeyboard(ctx, chatID, text, kb)
	}
	p := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
	if kb != nil {
		p.ReplyMarkup = kb
	}
	if _, err := rb.api.EditMessageText(ctx, p); err != nil {
		return fmt.Errorf("editWithKeyboard: %w", err)
	}
	return nil
}

// inlineKeyboard builds an InlineKeyboardMarkup from rows of buttons.
func inlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// inlineRow builds a single row of inline keyboard buttons.
func inlineRow(btns ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return btns
}

// inlineBtn creates an inline keyboard button with callback data.
func inlineBtn(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

// splitTextIntoChunks splits text into chunks of the specified size.
func splitTextIntoChunks(text string, chunkSize int) []string {
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += chunkSize {
		end := min(i+chunkSize, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// Shutdown stops polling.
func (rb *Bot) Shutdown(_ context.Context) error {
	rb.cancel()
	return nil
}
