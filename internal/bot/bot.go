package bot

import (
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/dictionary"
	"github.com/example/lingobot/internal/excel"
	"github.com/example/lingobot/internal/practice"
	"github.com/example/lingobot/internal/srs"
	"github.com/example/lingobot/pkg/models"
)

// Deps are the services the bot is wired with.
type Deps struct {
	Users       *database.UserRepository
	Words       *database.WordRepository
	Topics      *database.TopicRepository
	Progress    *database.ProgressRepository
	Credentials *database.CredentialRepository
	Stats       *database.StatisticsRepository
	Results     *database.PracticeResultRepository

	Router     *ai.Router
	Registry   *ai.StatusRegistry
	Dictionary *dictionary.Client
	Importer   *excel.Importer
}

// reviewSession tracks one user's ongoing /review run.
type reviewSession struct {
	Records   []models.ReviewRecord
	Words     map[int64]models.Word
	Index     int
	Correct   int
	StartedAt time.Time
}

// quizSession tracks one user's ongoing /quiz run.
type quizSession struct {
	Questions []practice.Question
	Index     int
	Correct   int
	StartedAt time.Time
}

// Bot is the Telegram surface of the application.
type Bot struct {
	api    *tgbotapi.BotAPI
	config *Config
	deps   Deps

	srs        *srs.Scheduler
	stories    *practice.Stories
	translator *practice.Translator
	quiz       *practice.Quiz

	mu             sync.Mutex
	reviewSessions map[int64]*reviewSession
	quizSessions   map[int64]*quizSession
	translations   map[int64]*practice.TranslationExercise
	awaitingImport map[int64]bool

	stopped chan struct{}
}

// New creates the bot and verifies the Telegram token.
func New(config *Config, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Bot{
		api:            api,
		config:         config,
		deps:           deps,
		srs:            srs.New(),
		stories:        practice.NewStories(deps.Router),
		translator:     practice.NewTranslator(deps.Router),
		quiz:           practice.NewQuiz(deps.Words, deps.Results),
		reviewSessions: make(map[int64]*reviewSession),
		quizSessions:   make(map[int64]*quizSession),
		translations:   make(map[int64]*practice.TranslationExercise),
		awaitingImport: make(map[int64]bool),
		stopped:        make(chan struct{}),
	}, nil
}

// Start runs the update loop until Stop is called.
func (b *Bot) Start() error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		case <-b.stopped:
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}

// Stop terminates the update loop.
func (b *Bot) Stop() {
	close(b.stopped)
}

// SendReminder notifies a user about due reviews. The scheduler calls it.
func (b *Bot) SendReminder(userID int64, dueCount int) error {
	text := fmt.Sprintf("⏰ You have %d word(s) ready for review. Send /review to practice them!", dueCount)
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.AdminUserIDs[userID]
}

// send delivers a plain text message, logging delivery failures.
func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}

// sendMarkdown delivers a Markdown-formatted message.
func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}

// sendWithKeyboard delivers a message with an inline keyboard.
func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}
