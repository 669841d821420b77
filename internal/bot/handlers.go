package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/internal/dictionary"
	"github.com/example/lingobot/internal/excel"
	"github.com/example/lingobot/internal/srs"
	"github.com/example/lingobot/pkg/models"
)

const handlerTimeout = 2 * time.Minute

// handleUpdate dispatches one Telegram update.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		return
	case update.Message.Document != nil:
		b.handleDocument(ctx, update.Message)
	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	default:
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.send(chatID, helpText)
	case "learn":
		b.handleLearn(ctx, userID, chatID)
	case "review":
		b.handleReview(ctx, userID, chatID)
	case "story":
		b.handleStory(ctx, userID, chatID)
	case "quiz":
		b.handleQuiz(ctx, userID, chatID)
	case "translate":
		b.handleTranslate(ctx, userID, chatID)
	case "define":
		b.handleDefine(ctx, chatID, message.CommandArguments())
	case "stats":
		b.handleStats(ctx, userID, chatID)
	case "keys":
		b.handleKeys(ctx, userID, chatID)
	case "addkey":
		b.handleAddKey(ctx, userID, chatID, message.CommandArguments())
	case "delkey":
		b.handleDelKey(ctx, userID, chatID, message.CommandArguments())
	case "togglekey":
		b.handleToggleKey(ctx, userID, chatID, message.CommandArguments())
	case "import":
		b.handleImport(userID, chatID)
	default:
		b.send(chatID, "Unknown command. Send /help for the list of commands.")
	}
}

const helpText = `Available commands:
/learn — add new words to your review rotation
/review — practice words that are due
/story — read a short story built from your words
/quiz — take a multiple-choice vocabulary quiz
/translate — translate a sentence using a word you are learning
/define <word> — look up a dictionary definition
/stats — your learning statistics
/keys — list your AI provider keys
/addkey <provider> <api_key> [label] — add an OpenAI or Gemini key
/delkey <number> — delete a key from the /keys list
/togglekey <number> — enable or disable a key
/import — upload a vocabulary file (admins)`

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user := &models.User{
		ID:                  message.From.ID,
		Username:            message.From.UserName,
		FirstName:           message.From.FirstName,
		LastName:            message.From.LastName,
		NotificationEnabled: true,
		NotificationHour:    9,
		WordsPerDay:         10,
	}
	if _, err := b.deps.Users.GetOrCreate(ctx, user); err != nil {
		log.Printf("Error registering user %d: %v", message.From.ID, err)
		b.send(message.Chat.ID, "Something went wrong, please try again.")
		return
	}

	b.send(message.Chat.ID, fmt.Sprintf(
		"Welcome, %s! I will help you learn English vocabulary with spaced repetition.\n\n%s",
		message.From.FirstName, helpText))
}

// --- learning flow ---

// handleLearn puts fresh words into the user's rotation. New records are
// immediately due, so /review picks them right up.
func (b *Bot) handleLearn(ctx context.Context, userID, chatID int64) {
	user, err := b.deps.Users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}

	limit := user.WordsPerDay
	if limit <= 0 {
		limit = 10
	}

	candidates, err := b.deps.Words.GetRandom(ctx, limit*3)
	if err != nil {
		log.Printf("Error picking words for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}

	now := time.Now().UTC()
	added := 0
	for _, word := range candidates {
		if added >= limit {
			break
		}
		if _, err := b.deps.Progress.GetByUserAndWord(ctx, userID, word.ID); err == nil {
			continue // already in rotation
		}
		rec := srs.NewRecord(userID, word.ID, now)
		if err := b.deps.Progress.Upsert(ctx, &rec); err != nil {
			log.Printf("Error adding word %d for user %d: %v", word.ID, userID, err)
			continue
		}
		added++
	}

	if added == 0 {
		b.send(chatID, "No new words to add right now. All the vocabulary is already in your rotation!")
		return
	}
	b.send(chatID, fmt.Sprintf("Added %d new word(s) to your rotation. Send /review to start practicing!", added))
}

// --- review flow ---

func (b *Bot) handleReview(ctx context.Context, userID, chatID int64) {
	now := time.Now().UTC()
	records, err := b.deps.Progress.ListDueForUser(ctx, userID, now)
	if err != nil {
		log.Printf("Error loading due reviews for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}

	due := b.srs.SelectDue(records, now, b.config.ReviewBatchSize)
	if len(due) == 0 {
		b.send(chatID, "🎉 Nothing to review right now. Come back later!")
		return
	}

	wordIDs := make([]int64, 0, len(due))
	for _, rec := range due {
		wordIDs = append(wordIDs, rec.WordID)
	}
	words, err := b.deps.Words.GetByIDs(ctx, wordIDs)
	if err != nil {
		log.Printf("Error loading words for review: %v", err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}

	b.mu.Lock()
	b.reviewSessions[userID] = &reviewSession{
		Records:   due,
		Words:     words,
		StartedAt: now,
	}
	b.mu.Unlock()

	b.sendReviewCard(userID, chatID)
}

func (b *Bot) sendReviewCard(userID, chatID int64) {
	b.mu.Lock()
	session := b.reviewSessions[userID]
	b.mu.Unlock()
	if session == nil || session.Index >= len(session.Records) {
		return
	}

	rec := session.Records[session.Index]
	word := session.Words[rec.WordID]

	text := fmt.Sprintf("*%s*", word.Word)
	if word.Pronunciation != "" {
		text += fmt.Sprintf(" %s", word.Pronunciation)
	}
	text += fmt.Sprintf("\n%s", word.Translation)
	if word.Context != "" {
		text += fmt.Sprintf("\n\n_%s_", word.Context)
	}
	text += fmt.Sprintf("\n\nWord %d of %d. How well did you remember it?",
		session.Index+1, len(session.Records))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Again", fmt.Sprintf("review:%d", srs.ButtonAgain)),
			tgbotapi.NewInlineKeyboardButtonData("Hard", fmt.Sprintf("review:%d", srs.ButtonHard)),
			tgbotapi.NewInlineKeyboardButtonData("Good", fmt.Sprintf("review:%d", srs.ButtonGood)),
			tgbotapi.NewInlineKeyboardButtonData("Easy", fmt.Sprintf("review:%d", srs.ButtonEasy)),
		),
	)
	b.sendWithKeyboard(chatID, text, keyboard)
}

func (b *Bot) handleReviewAnswer(ctx context.Context, userID, chatID int64, data string) {
	buttonVal, err := strconv.Atoi(data)
	if err != nil {
		return
	}
	quality, err := srs.QualityForButton(srs.Button(buttonVal))
	if err != nil {
		return
	}

	b.mu.Lock()
	session := b.reviewSessions[userID]
	b.mu.Unlock()
	if session == nil || session.Index >= len(session.Records) {
		b.send(chatID, "No review in progress. Send /review to start one.")
		return
	}

	now := time.Now().UTC()
	rec := session.Records[session.Index]
	graded, err := b.srs.Grade(rec, quality, now)
	if err != nil {
		log.Printf("Error grading review for user %d: %v", userID, err)
		return
	}
	if err := b.deps.Progress.Upsert(ctx, &graded); err != nil {
		log.Printf("Error saving review for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong saving your answer.")
		return
	}

	b.mu.Lock()
	session.Index++
	if quality >= b.srs.PassThreshold {
		session.Correct++
	}
	finished := session.Index >= len(session.Records)
	if finished {
		delete(b.reviewSessions, userID)
	}
	b.mu.Unlock()

	if !finished {
		b.sendReviewCard(userID, chatID)
		return
	}

	total := len(session.Records)
	duration := now.Sub(session.StartedAt)
	if err := b.deps.Results.Create(ctx, &models.PracticeResult{
		UserID:       userID,
		PracticeType: "review",
		TotalWords:   total,
		CorrectWords: session.Correct,
		Duration:     int(duration.Seconds()),
	}); err != nil {
		log.Printf("Error saving review result for user %d: %v", userID, err)
	}

	b.send(chatID, fmt.Sprintf(
		"✅ Review finished: %d of %d remembered. See you at the next session!",
		session.Correct, total))
}

// --- story ---

func (b *Bot) handleStory(ctx context.Context, userID, chatID int64) {
	words, err := b.storyWords(ctx, userID)
	if err != nil {
		log.Printf("Error picking story words for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}
	if len(words) == 0 {
		b.send(chatID, "No vocabulary to build a story from yet. Review some words first!")
		return
	}

	b.send(chatID, "✍️ Writing a story with your words...")
	story, err := b.stories.Generate(ctx, userID, words)
	if err != nil {
		b.send(chatID, aiErrorMessage(err))
		return
	}

	text := fmt.Sprintf("*%s*\n\n%s", story.Title, story.Text)
	if len(story.WordsUsed) > 0 {
		text += "\n\nWords used: " + strings.Join(story.WordsUsed, ", ")
	}
	b.sendMarkdown(chatID, text)
}

// storyWords prefers words the user is actively learning, topped up with
// random vocabulary.
func (b *Bot) storyWords(ctx context.Context, userID int64) ([]models.Word, error) {
	records, err := b.deps.Progress.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, b.config.StoryWords)
	for _, rec := range records {
		if rec.Status == models.StatusKnown {
			continue
		}
		ids = append(ids, rec.WordID)
		if len(ids) >= b.config.StoryWords {
			break
		}
	}

	var words []models.Word
	if len(ids) > 0 {
		byID, err := b.deps.Words.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if w, ok := byID[id]; ok {
				words = append(words, w)
			}
		}
	}

	if len(words) < b.config.StoryWords {
		random, err := b.deps.Words.GetRandom(ctx, b.config.StoryWords-len(words))
		if err != nil {
			return nil, err
		}
		seen := make(map[int64]bool, len(words))
		for _, w := range words {
			seen[w.ID] = true
		}
		for _, w := range random {
			if !seen[w.ID] {
				words = append(words, w)
			}
		}
	}
	return words, nil
}

// --- quiz ---

func (b *Bot) handleQuiz(ctx context.Context, userID, chatID int64) {
	words, err := b.deps.Words.GetRandom(ctx, b.config.QuizQuestions*2)
	if err != nil {
		log.Printf("Error loading quiz words: %v", err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}

	questions, err := b.quiz.Build(ctx, words, b.config.QuizQuestions)
	if err != nil {
		b.send(chatID, "Not enough vocabulary for a quiz yet. Ask an admin to /import some words!")
		return
	}

	b.mu.Lock()
	b.quizSessions[userID] = &quizSession{
		Questions: questions,
		StartedAt: time.Now().UTC(),
	}
	b.mu.Unlock()

	b.sendQuizQuestion(userID, chatID)
}

func (b *Bot) sendQuizQuestion(userID, chatID int64) {
	b.mu.Lock()
	session := b.quizSessions[userID]
	b.mu.Unlock()
	if session == nil || session.Index >= len(session.Questions) {
		return
	}

	q := session.Questions[session.Index]
	text := fmt.Sprintf("Question %d of %d\n\nWhat does *%s* mean?",
		session.Index+1, len(session.Questions), q.Word.Word)

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, option := range q.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, fmt.Sprintf("quiz:%d", i)),
		))
	}
	b.sendWithKeyboard(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleQuizAnswer(ctx context.Context, userID, chatID int64, data string) {
	chosen, err := strconv.Atoi(data)
	if err != nil {
		return
	}

	b.mu.Lock()
	session := b.quizSessions[userID]
	b.mu.Unlock()
	if session == nil || session.Index >= len(session.Questions) {
		b.send(chatID, "No quiz in progress. Send /quiz to start one.")
		return
	}

	q := session.Questions[session.Index]
	correct := q.Check(chosen)
	if correct {
		b.send(chatID, "✅ Correct!")
	} else {
		b.send(chatID, fmt.Sprintf("❌ Not quite. %s means \"%s\".", q.Word.Word, q.Options[q.CorrectIndex]))
	}

	b.gradeQuizWord(ctx, userID, q.Word.ID, correct)

	b.mu.Lock()
	session.Index++
	if correct {
		session.Correct++
	}
	finished := session.Index >= len(session.Questions)
	if finished {
		delete(b.quizSessions, userID)
	}
	b.mu.Unlock()

	if !finished {
		b.sendQuizQuestion(userID, chatID)
		return
	}

	total := len(session.Questions)
	duration := time.Now().UTC().Sub(session.StartedAt)
	if err := b.quiz.RecordResult(ctx, userID, total, session.Correct, duration); err != nil {
		log.Printf("Error saving quiz result for user %d: %v", userID, err)
	}
	b.send(chatID, fmt.Sprintf("🏁 Quiz finished: %d of %d correct.", session.Correct, total))
}

// gradeQuizWord feeds a quiz answer into the review schedule when the word
// is already being tracked.
func (b *Bot) gradeQuizWord(ctx context.Context, userID, wordID int64, correct bool) {
	rec, err := b.deps.Progress.GetByUserAndWord(ctx, userID, wordID)
	if err != nil {
		return
	}

	quality := srs.QualityIncorrect
	if correct {
		quality = srs.QualityCorrectHesitation
	}
	graded, err := b.srs.Grade(*rec, quality, time.Now().UTC())
	if err != nil {
		return
	}
	if err := b.deps.Progress.Upsert(ctx, &graded); err != nil {
		log.Printf("Error saving quiz grade for user %d: %v", userID, err)
	}
}

// --- translation ---

func (b *Bot) handleTranslate(ctx context.Context, userID, chatID int64) {
	words, err := b.deps.Words.GetRandom(ctx, 1)
	if err != nil || len(words) == 0 {
		b.send(chatID, "No vocabulary available yet.")
		return
	}

	ex, err := b.translator.Exercise(ctx, userID, words[0])
	if err != nil {
		b.send(chatID, aiErrorMessage(err))
		return
	}

	b.mu.Lock()
	b.translations[userID] = ex
	b.mu.Unlock()

	text := fmt.Sprintf("Translate into English using *%s*:\n\n%s", ex.Word, ex.Sentence)
	if ex.Hint != "" {
		text += fmt.Sprintf("\n\nHint: %s", ex.Hint)
	}
	b.sendMarkdown(chatID, text)
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	b.mu.Lock()
	ex := b.translations[userID]
	if ex != nil {
		delete(b.translations, userID)
	}
	b.mu.Unlock()
	if ex == nil {
		b.send(message.Chat.ID, "Send /help for the list of commands.")
		return
	}

	check, err := b.translator.Check(ctx, userID, *ex, message.Text)
	if err != nil {
		b.send(message.Chat.ID, aiErrorMessage(err))
		return
	}
	if check.Correct {
		b.send(message.Chat.ID, "✅ "+check.Feedback)
	} else {
		b.send(message.Chat.ID, "❌ "+check.Feedback)
	}
}

// --- dictionary ---

func (b *Bot) handleDefine(ctx context.Context, chatID int64, args string) {
	word := strings.TrimSpace(args)
	if word == "" {
		b.send(chatID, "Usage: /define <word>")
		return
	}

	entry, err := b.deps.Dictionary.Lookup(ctx, word)
	if errors.Is(err, dictionary.ErrNotFound) {
		b.send(chatID, fmt.Sprintf("No dictionary entry found for \"%s\".", word))
		return
	}
	if err != nil {
		log.Printf("Error looking up %q: %v", word, err)
		b.send(chatID, "Dictionary lookup failed, please try again.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*", entry.Word)
	if entry.Phonetic != "" {
		fmt.Fprintf(&sb, " %s", entry.Phonetic)
	}
	limit := len(entry.Definitions)
	if limit > 5 {
		limit = 5
	}
	for _, def := range entry.Definitions[:limit] {
		fmt.Fprintf(&sb, "\n\n_%s_: %s", def.PartOfSpeech, def.Meaning)
		if def.Example != "" {
			fmt.Fprintf(&sb, "\nExample: %s", def.Example)
		}
	}
	b.sendMarkdown(chatID, sb.String())
}

// --- statistics ---

func (b *Bot) handleStats(ctx context.Context, userID, chatID int64) {
	stats, err := b.deps.Stats.GetForUser(ctx, userID, time.Now().UTC())
	if err != nil {
		log.Printf("Error loading stats for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		"*Your progress*\n\nWords in rotation: %d\nDue now: %d\nKnown: %d\nLearning: %d\nAverage ease: %.2f",
		stats.TotalWords, stats.DueToday, stats.KnownWords, stats.LearningWords, stats.AvgEaseFactor)

	recent, err := b.deps.Results.GetRecentForUser(ctx, userID, 3)
	if err != nil {
		log.Printf("Error loading recent sessions for user %d: %v", userID, err)
	}
	if len(recent) > 0 {
		sb.WriteString("\n\nRecent sessions:")
		for _, r := range recent {
			fmt.Fprintf(&sb, "\n%s — %d/%d (%s)",
				r.PracticeType, r.CorrectWords, r.TotalWords, r.CreatedAt.Format("Jan 2"))
		}
	}
	b.sendMarkdown(chatID, sb.String())
}

// --- credential management ---

func (b *Bot) handleKeys(ctx context.Context, userID, chatID int64) {
	creds, err := b.deps.Credentials.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("Error listing credentials for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}
	if len(creds) == 0 {
		b.send(chatID, "You have no AI provider keys yet. Add one with:\n/addkey openai sk-... [label]")
		return
	}

	now := time.Now().UTC()
	snapshot := b.deps.Registry.Snapshot()

	var sb strings.Builder
	sb.WriteString("Your AI provider keys:\n")
	for i, cred := range creds {
		state := "active"
		switch {
		case !cred.Enabled:
			state = "disabled"
		case !cred.Usable(now):
			state = fmt.Sprintf("cooling down until %s", cred.DisabledUntil.Format("15:04"))
		}
		label := cred.Label
		if label == "" {
			label = "(no label)"
		}
		fmt.Fprintf(&sb, "%d. %s %s — %s\n", i+1, cred.Provider, label, state)
	}

	for _, providerType := range models.ProviderOrder {
		if status, ok := snapshot[providerType]; ok && status.LastError != "" {
			fmt.Fprintf(&sb, "\n%s last error: %s", providerType, status.LastError)
		}
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleAddKey(ctx context.Context, userID, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.send(chatID, "Usage: /addkey <openai|gemini> <api_key> [label]")
		return
	}

	cred := &models.Credential{
		UserID:   userID,
		Provider: models.ProviderType(strings.ToLower(fields[0])),
		APIKey:   fields[1],
		Enabled:  true,
	}
	if len(fields) > 2 {
		cred.Label = strings.Join(fields[2:], " ")
	}

	if err := b.deps.Credentials.Create(ctx, cred); err != nil {
		if !cred.Provider.Valid() {
			b.send(chatID, "Unknown provider. Supported: openai, gemini.")
			return
		}
		log.Printf("Error creating credential for user %d: %v", userID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}
	b.send(chatID, fmt.Sprintf("Added %s key. It will be used for /story and /translate.", cred.Provider))
}

// credentialByIndex resolves a 1-based index from the /keys listing.
func (b *Bot) credentialByIndex(ctx context.Context, userID int64, arg string) (*models.Credential, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return nil, fmt.Errorf("not a number")
	}
	creds, err := b.deps.Credentials.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if idx < 1 || idx > len(creds) {
		return nil, fmt.Errorf("no key with number %d", idx)
	}
	return &creds[idx-1], nil
}

func (b *Bot) handleDelKey(ctx context.Context, userID, chatID int64, args string) {
	if strings.TrimSpace(args) == "" {
		b.send(chatID, "Usage: /delkey <number> (see /keys)")
		return
	}
	cred, err := b.credentialByIndex(ctx, userID, args)
	if err != nil {
		b.send(chatID, "Key not found. Check the number in /keys.")
		return
	}
	if err := b.deps.Credentials.Delete(ctx, cred.ID); err != nil {
		log.Printf("Error deleting credential %s: %v", cred.ID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}
	b.send(chatID, fmt.Sprintf("Deleted %s key.", cred.Provider))
}

func (b *Bot) handleToggleKey(ctx context.Context, userID, chatID int64, args string) {
	if strings.TrimSpace(args) == "" {
		b.send(chatID, "Usage: /togglekey <number> (see /keys)")
		return
	}
	cred, err := b.credentialByIndex(ctx, userID, args)
	if err != nil {
		b.send(chatID, "Key not found. Check the number in /keys.")
		return
	}
	if err := b.deps.Credentials.SetEnabled(ctx, cred.ID, !cred.Enabled); err != nil {
		log.Printf("Error toggling credential %s: %v", cred.ID, err)
		b.send(chatID, "Something went wrong, please try again.")
		return
	}
	if cred.Enabled {
		b.send(chatID, fmt.Sprintf("Disabled %s key.", cred.Provider))
	} else {
		b.send(chatID, fmt.Sprintf("Enabled %s key.", cred.Provider))
	}
}

// --- vocabulary import ---

func (b *Bot) handleImport(userID, chatID int64) {
	if !b.isAdmin(userID) {
		b.send(chatID, "Only admins can import vocabulary.")
		return
	}

	b.mu.Lock()
	b.awaitingImport[userID] = true
	b.mu.Unlock()

	b.send(chatID, "Send me an Excel (.xlsx) or CSV file with the vocabulary.")
}

func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	b.mu.Lock()
	awaiting := b.awaitingImport[userID]
	delete(b.awaitingImport, userID)
	b.mu.Unlock()
	if !awaiting || !b.isAdmin(userID) {
		return
	}

	path, err := b.downloadDocument(ctx, message.Document)
	if err != nil {
		log.Printf("Error downloading import file: %v", err)
		b.send(chatID, "Could not download the file, please try again.")
		return
	}
	defer os.Remove(path)

	config := excel.DefaultConfig()
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		config.StartRow = 1
	}

	result, err := b.deps.Importer.ImportFile(ctx, path, config)
	if err != nil {
		log.Printf("Error importing vocabulary: %v", err)
		b.send(chatID, "Import failed: "+err.Error())
		return
	}

	text := fmt.Sprintf("Import finished: %d processed, %d created, %d updated, %d skipped.",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		limit := len(result.Errors)
		if limit > 5 {
			limit = 5
		}
		text += "\n\nProblems:\n" + strings.Join(result.Errors[:limit], "\n")
	}
	b.send(chatID, text)
}

func (b *Bot) downloadDocument(ctx context.Context, doc *tgbotapi.Document) (string, error) {
	fileURL, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	out, err := os.CreateTemp("", "import-*"+filepath.Ext(doc.FileName))
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// --- callbacks ---

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// acknowledge so the button stops spinning
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error acknowledging callback: %v", err)
	}

	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	action, data, _ := strings.Cut(callback.Data, ":")
	switch action {
	case "review":
		b.handleReviewAnswer(ctx, userID, chatID, data)
	case "quiz":
		b.handleQuizAnswer(ctx, userID, chatID, data)
	}
}

// aiErrorMessage maps router failures to distinct user-facing messages.
func aiErrorMessage(err error) string {
	switch {
	case errors.Is(err, ai.ErrNoCredentials):
		return "You have no AI provider keys configured. Add one with /addkey to use this feature."
	case errors.Is(err, ai.ErrProvidersExhausted):
		return "All AI providers are temporarily unavailable. Please try again in a few minutes."
	default:
		return "Something went wrong generating a response, please try again."
	}
}
