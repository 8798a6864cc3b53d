// Package bot is the Telegram front end driving review sessions over the
// core engine.
package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/example/leitbox/internal/ai"
	"github.com/example/leitbox/internal/review"
	"github.com/example/leitbox/internal/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram review application
type Bot struct {
	api    *tgbotapi.BotAPI
	svc    *review.Service
	store  *storage.Store
	config *BotConfig

	// Per-chat state, in memory only. A lost session loses nothing but its
	// unsent summary: card state is persisted after every answer.
	// The scheduler goroutine reads activeLessons while the update loop
	// writes it, so both maps go through mu.
	mu            sync.Mutex
	sessions      map[int64]*review.Runner
	activeLessons map[int64]string

	aiEnabled bool
	aiClient  *ai.Client
}

// New creates a new bot instance from the environment
func New(svc *review.Service, store *storage.Store) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}

	b := &Bot{
		api:           api,
		svc:           svc,
		store:         store,
		config:        DefaultConfig(),
		sessions:      make(map[int64]*review.Runner),
		activeLessons: make(map[int64]string),
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		client, err := ai.New()
		if err != nil {
			log.Printf("Warning: unable to initialize OpenAI client: %v", err)
		} else {
			b.aiClient = client
			b.aiEnabled = true
		}
	}

	return b, nil
}

// Start runs the update loop until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	log.Printf("Authorized on account %s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				log.Printf("Error handling update: %v", err)
			}
		}
	}
}

// Stop shuts down the update channel
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		return nil
	case update.Message.Document != nil:
		return b.handleDocument(update.Message)
	case update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	default:
		return nil
	}
}

// SendReminder implements scheduler.Notifier: every chat currently attached
// to the lesson gets a due-count nudge. Called from the scheduler goroutine,
// so the chat list is copied out under the lock before any sends.
func (b *Bot) SendReminder(lessonID string, dueCount int) error {
	b.mu.Lock()
	var chats []int64
	for chatID, lesson := range b.activeLessons {
		if lesson == lessonID {
			chats = append(chats, chatID)
		}
	}
	b.mu.Unlock()

	for _, chatID := range chats {
		text := fmt.Sprintf("⏰ %d card(s) in lesson \"%s\" are due for review. Send /review to start.", dueCount, lessonID)
		if err := b.sendMessage(tgbotapi.NewMessage(chatID, text)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	_, err := b.api.Send(msg)
	return err
}

// lessonFor returns the lesson a chat is working on
func (b *Bot) lessonFor(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lesson, ok := b.activeLessons[chatID]; ok {
		return lesson
	}
	return b.config.DefaultLesson
}

func (b *Bot) setActiveLesson(chatID int64, lesson string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeLessons[chatID] = lesson
}

func (b *Bot) setSession(chatID int64, runner *review.Runner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[chatID] = runner
}

func (b *Bot) session(chatID int64) (*review.Runner, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	runner, ok := b.sessions[chatID]
	return runner, ok
}

func (b *Bot) dropSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}
