package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/leitbox/internal/deck"
	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/internal/progress"
	"github.com/example/leitbox/internal/review"
	"github.com/example/leitbox/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data for the review keyboard
const (
	callbackReveal  = "reveal"
	callbackCorrect = "answer_correct"
	callbackWrong   = "answer_wrong"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(message)
	case "help":
		return b.handleHelp(message)
	case "lessons":
		return b.handleLessons(message)
	case "lesson":
		return b.handleSelectLesson(message)
	case "review":
		return b.handleReview(message)
	case "stats":
		return b.handleStats(message)
	case "reset":
		return b.handleReset(message)
	case "example":
		return b.handleExample(message)
	default:
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Send /help for the command list."))
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	text := "👋 Welcome to the Leitner flashcard trainer!\n\n" +
		"Cards move through five boxes: answer correctly and a card climbs to a longer interval, " +
		"answer wrong and it starts over at box 1.\n\n" +
		"🔹 Getting started:\n" +
		"1. Upload a deck file (.xlsx or .csv) or pick a lesson with /lesson\n" +
		"2. Send /review to go through today's due cards\n" +
		"3. Check /stats to follow your streak and achievements"
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "📖 Commands\n\n" +
		"/review — review today's due cards\n" +
		"/lessons — list lessons and their due counts\n" +
		"/lesson <name> — switch to a lesson\n" +
		"/stats — progress, streak and achievements\n" +
		"/example — generate an example sentence for the current card\n" +
		"/reset <name> — erase a lesson's cards and history\n\n" +
		"🔄 Review intervals per box: 0, 1, 3, 7 and 15 days.\n" +
		"📤 Upload an .xlsx or .csv file to import cards into the current lesson."
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, text))
}

func (b *Bot) handleLessons(message *tgbotapi.Message) error {
	lessons, err := b.store.Lessons()
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "No lessons yet. Upload a deck file to create one."))
	}

	var sb strings.Builder
	sb.WriteString("📚 Lessons:\n")
	for _, lesson := range lessons {
		due, err := b.svc.DueCount(lesson)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "• %s — %d due\n", lesson, due)
	}
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, sb.String()))
}

func (b *Bot) handleSelectLesson(message *tgbotapi.Message) error {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Usage: /lesson <name>"))
	}
	b.setActiveLesson(message.Chat.ID, name)
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Switched to lesson \"%s\".", name)))
}

func (b *Bot) handleReview(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	lesson := b.lessonFor(chatID)

	runner, err := b.svc.Begin(lesson)
	if err == review.ErrNoLesson {
		return b.sendMessage(tgbotapi.NewMessage(chatID,
			fmt.Sprintf("Lesson \"%s\" has no cards yet. Upload a deck file to fill it.", lesson)))
	}
	if err != nil {
		return err
	}

	if runner.Session.Complete() {
		return b.sendMessage(tgbotapi.NewMessage(chatID,
			fmt.Sprintf("🎉 Nothing due in \"%s\" today. Come back tomorrow!", lesson)))
	}

	b.setSession(chatID, runner)
	b.setActiveLesson(chatID, lesson)

	intro := tgbotapi.NewMessage(chatID,
		fmt.Sprintf("📅 %d card(s) due in \"%s\". Let's go!", runner.Session.DueCount(), lesson))
	if err := b.sendMessage(intro); err != nil {
		return err
	}
	return b.sendCardFront(chatID, runner)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Stale callbacks can arrive without their originating message
	if query.Message == nil {
		return nil
	}

	// Always answer the callback so the client stops the spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return err
	}

	chatID := query.Message.Chat.ID
	runner, ok := b.session(chatID)
	if !ok {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "No active session. Send /review to start one."))
	}

	switch query.Data {
	case callbackReveal:
		runner.Session.Reveal()
		return b.sendCardBack(chatID, runner)
	case callbackCorrect:
		return b.recordAnswer(chatID, runner, true)
	case callbackWrong:
		return b.recordAnswer(chatID, runner, false)
	default:
		return nil
	}
}

func (b *Bot) recordAnswer(chatID int64, runner *review.Runner, correct bool) error {
	res, err := runner.Answer(correct)
	if err != nil {
		return err
	}
	if res == session.ResultAlreadyComplete {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "This session is already finished. Send /review to start a new one."))
	}
	if runner.Session.Complete() {
		return b.finishSession(chatID, runner)
	}
	return b.sendCardFront(chatID, runner)
}

func (b *Bot) sendCardFront(chatID int64, runner *review.Runner) error {
	card := runner.Session.Current()
	current, total := runner.Session.Progress()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Card %d/%d\n\n❓ %s", current+1, total, card.Question)
	if card.Phonetic != "" {
		fmt.Fprintf(&sb, "\n🔤 %s", card.Phonetic)
	}
	if card.Category != "" {
		fmt.Fprintf(&sb, "\n🏷 %s", card.Category)
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "👁 Show answer", CallbackData: callbackReveal}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) sendCardBack(chatID int64, runner *review.Runner) error {
	card := runner.Session.Current()
	if card == nil {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "❓ %s\n💡 %s", card.Question, card.Answer)
	if card.Example != "" {
		fmt.Fprintf(&sb, "\n\n📝 %s", card.Example)
	}
	fmt.Fprintf(&sb, "\n\n📦 Box %d", card.Box)

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "✅ I knew it", CallbackData: callbackCorrect},
			{Text: "❌ I didn't", CallbackData: callbackWrong},
		},
	})
	return b.sendMessage(msg)
}

func (b *Bot) finishSession(chatID int64, runner *review.Runner) error {
	b.dropSession(chatID)

	outcome, err := runner.Finish()
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("🏁 Session complete!\n\n")
	fmt.Fprintf(&sb, "Reviewed: %d\n✅ Correct: %d\n❌ Wrong: %d\n🎯 Accuracy: %d%%\n",
		outcome.Stats.Reviewed, outcome.Stats.Correct, outcome.Stats.Incorrect, outcome.Accuracy)
	fmt.Fprintf(&sb, "⭐ Points: %d (level %d)\n", outcome.Points, outcome.Level)
	for _, a := range outcome.NewAchievements {
		fmt.Fprintf(&sb, "\n%s Achievement unlocked: %s — %s", a.Icon, a.Title, a.Description)
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) handleStats(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	lesson := b.lessonFor(chatID)

	cards, err := b.svc.Cards(lesson)
	if err == review.ErrNoLesson {
		return b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("Lesson \"%s\" has no cards yet.", lesson)))
	}
	if err != nil {
		return err
	}

	tracker, err := progress.Load(b.store, lesson)
	if err != nil {
		return err
	}
	today := leitner.Today()
	sum := tracker.Summary(cards, today)
	due := len(b.svc.Engine().DueCards(cards, today))

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Lesson \"%s\"\n\n", lesson)
	fmt.Fprintf(&sb, "Cards: %d (%d due today)\n", len(cards), due)
	fmt.Fprintf(&sb, "Total reviews: %d\n", sum.TotalReviews)
	fmt.Fprintf(&sb, "Accuracy: %.0f%%\n", sum.Accuracy)
	fmt.Fprintf(&sb, "🔥 Streak: %d day(s)\n", sum.Streak)
	fmt.Fprintf(&sb, "📦 Mastered (box 5): %d\n", sum.MasteredCards)
	return b.sendMessage(tgbotapi.NewMessage(chatID, sb.String()))
}

func (b *Bot) handleReset(message *tgbotapi.Message) error {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, "Usage: /reset <lesson>. This erases the lesson's cards and history."))
	}
	if err := b.svc.ResetLesson(name); err != nil {
		return err
	}
	b.dropSession(message.Chat.ID)
	return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Lesson \"%s\" has been reset.", name)))
}

func (b *Bot) handleExample(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	if !b.aiEnabled {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Example generation is not configured."))
	}
	runner, ok := b.session(chatID)
	if !ok || runner.Session.Current() == nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "No card under review. Send /review first."))
	}
	example := b.aiClient.GenerateExampleWithFallback(runner.Session.Current())
	if err := runner.AttachExample(example); err != nil {
		return err
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, "📝 "+example))
}

// handleDocument imports an uploaded deck file into the chat's lesson
func (b *Bot) handleDocument(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	lesson := b.lessonFor(chatID)

	ext := strings.ToLower(filepath.Ext(message.Document.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Please upload an .xlsx or .csv deck file."))
	}

	url, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		return fmt.Errorf("failed to resolve file URL: %v", err)
	}
	path, err := downloadTemp(url, ext)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	config := deck.DefaultImportConfig()
	config.FilePath = path
	result, err := deck.Import(b.store, lesson, config)
	if err != nil {
		return fmt.Errorf("import failed: %v", err)
	}

	b.setActiveLesson(chatID, lesson)
	text := fmt.Sprintf("📥 Imported into \"%s\": %d new, %d updated, %d skipped.",
		lesson, result.Created, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		text += fmt.Sprintf("\n⚠️ %d row(s) had problems.", len(result.Errors))
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func downloadTemp(url, ext string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp("", "deck-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to save file: %v", err)
	}
	return f.Name(), nil
}
