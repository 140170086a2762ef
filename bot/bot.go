package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/c2p-community/c2pbot/ai"
	"github.com/c2p-community/c2pbot/config"
	"github.com/c2p-community/c2pbot/database"
	"github.com/c2p-community/c2pbot/models"
	"github.com/c2p-community/c2pbot/quiz"
)

const (
	cmdStart    = "start"
	cmdQuiz     = "quiz"
	cmdAsk      = "ask"
	cmdStat     = "stat"
	cmdSessions = "sessions"
	cmdHelp     = "help"

	// reminderWindow is how far ahead of a session its reminder goes out.
	reminderWindow = 24 * time.Hour
)

// pendingQuiz is a delivered quiz awaiting the member's answer reply.
type pendingQuiz struct {
	quizID int64
	quiz   *models.Quiz
}

// Bot represents the Telegram bot
type Bot struct {
	api       *tgbotapi.BotAPI
	db        *database.DB
	claude    *ai.Client
	generator *quiz.Generator
	topics    []string

	// pendingQuizzes maps chat IDs to the quiz each member is answering.
	// Only touched from the update loop goroutine.
	pendingQuizzes map[int64]pendingQuiz
}

// New creates a new bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create bot API
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	// Set bot debugging mode
	botAPI.Debug = os.Getenv("DEBUG") == "true"

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	claude := ai.NewClient(cfg.ClaudeAPIKey, cfg.ClaudeModel)

	return &Bot{
		api:            botAPI,
		db:             db,
		claude:         claude,
		generator:      quiz.NewGenerator(claude),
		topics:         cfg.QuizTopics,
		pendingQuizzes: make(map[int64]pendingQuiz),
	}, nil
}

// Start starts the bot and listens for updates
func (b *Bot) Start() {
	log.Println("Starting bot polling...")

	go b.reminderLoop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleMessage(update.Message)
		}
	}
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	userID := message.From.ID
	log.Printf("Received message from %s (ID: %d): %s", message.From.UserName, userID, message.Text)

	switch {
	case strings.HasPrefix(message.Text, "/"+cmdStart):
		b.handleStartCommand(message)
	case strings.HasPrefix(message.Text, "/"+cmdQuiz):
		b.handleQuizCommand(message)
	case strings.HasPrefix(message.Text, "/"+cmdAsk):
		b.handleAskCommand(message)
	case strings.HasPrefix(message.Text, "/"+cmdStat):
		b.handleStatCommand(message)
	case strings.HasPrefix(message.Text, "/"+cmdSessions):
		b.handleSessionsCommand(message)
	case strings.HasPrefix(message.Text, "/"+cmdHelp):
		b.handleHelpCommand(message)
	default:
		b.handleFreeText(message)
	}
}

// handleStartCommand handles the /start command
func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	name := strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
	if _, err := b.db.CreateMember(message.Chat.ID, name); err != nil {
		log.Printf("Error creating member profile: %v", err)
	}

	welcomeText := `👋 Welcome to the C2P (C First Steps) community!

I am the group's assistant bot. I can help you learn the C language:

/quiz [topic] - Get a multiple-choice quiz (e.g. /quiz pointers)
/ask <question> - Ask me anything about the C language
/sessions - See the upcoming learning sessions
/stat - View your quiz statistics
/help - Show this list again

To personalize your experience, introduce yourself on separate lines: your name, country, school, study level, and what you want to learn! 🚀`

	b.sendMessage(message.Chat.ID, welcomeText)
}

// handleQuizCommand handles the /quiz command. It generates a quiz on the
// requested (or a random) topic, stores it, delivers it, and remembers it
// as the member's pending quiz. When generation fails the bot falls back
// to a previously stored quiz rather than retrying.
func (b *Bot) handleQuizCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	topic := strings.TrimSpace(strings.TrimPrefix(message.Text, "/"+cmdQuiz))
	if topic == "" {
		topic = b.topics[rand.Intn(len(b.topics))]
	}

	b.sendMessage(chatID, fmt.Sprintf("⏳ Preparing a quiz on %s, one moment...", topic))

	quizID, q := b.obtainQuiz(topic)
	if q == nil {
		b.sendMessage(chatID, "Sorry, I could not generate a quiz right now. Please try again later.")
		return
	}

	b.pendingQuizzes[chatID] = pendingQuiz{quizID: quizID, quiz: q}
	b.sendMessage(chatID, quiz.RenderQuiz(q))

	if err := b.db.TouchMemberActivity(chatID); err != nil {
		log.Printf("Error updating member activity: %v", err)
	}
}

// obtainQuiz generates a fresh quiz, falling back to the curated store on
// a generation failure. Returns a nil quiz when neither path produced one.
func (b *Bot) obtainQuiz(topic string) (int64, *models.Quiz) {
	q, err := b.generator.Generate(context.Background(), topic, 0, "")
	if err == nil {
		quizID, saveErr := b.db.SaveQuiz(q)
		if saveErr != nil {
			log.Printf("Error storing generated quiz: %v", saveErr)
			return 0, nil
		}
		return quizID, q
	}

	var genErr *quiz.GenerationError
	if errors.As(err, &genErr) {
		log.Printf("Quiz generation failed at %s stage: %v, falling back to stored quiz", genErr.Stage, genErr.Err)
	} else {
		log.Printf("Quiz generation failed: %v, falling back to stored quiz", err)
	}

	quizID, stored, err := b.db.GetQuizByTopic(topic)
	if err != nil {
		log.Printf("Error loading stored quiz for topic %q: %v", topic, err)
	}
	if stored == nil {
		quizID, stored, err = b.db.GetRandomQuiz()
		if err != nil {
			log.Printf("Error loading random stored quiz: %v", err)
		}
	}
	if stored == nil {
		return 0, nil
	}
	return quizID, stored
}

// handleFreeText handles non-command messages. If the member has a pending
// quiz and the text looks like a quiz reply, it is graded; a multi-line
// message from a member who has not introduced themselves yet fills their
// profile; otherwise the member is pointed at the commands.
func (b *Bot) handleFreeText(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	pending, hasPending := b.pendingQuizzes[chatID]
	if hasPending {
		if answers := quiz.ParseQuizReply(message.Text); len(answers) > 0 {
			b.gradePendingQuiz(chatID, pending, answers)
			return
		}
	}

	member, err := b.db.GetMemberByChatID(chatID)
	if err != nil {
		log.Printf("Error loading member profile: %v", err)
	}
	if member != nil && member.Country == "" && applyIntroduction(member, message.Text) {
		if err := b.db.UpdateMemberProfile(chatID, member); err != nil {
			log.Printf("Error saving member introduction: %v", err)
			b.sendMessage(chatID, "Sorry, I couldn't save your introduction. Please try again later.")
			return
		}
		log.Printf("Saved introduction for member %d (%s)", member.ID, member.Name)
		b.sendMessage(chatID, fmt.Sprintf("Thanks for introducing yourself, %s! Use /quiz to test your knowledge or /ask whenever you have a question. 🚀", member.Name))
		return
	}

	b.sendMessage(chatID, "Unknown command. Use /quiz for a quiz, /ask to ask a question, or /help for assistance.")
}

// gradePendingQuiz scores a reply against the member's pending quiz, sends
// the rendered result, and records the completion on the member's profile.
func (b *Bot) gradePendingQuiz(chatID int64, pending pendingQuiz, answers []string) {
	result := quiz.Grade(pending.quiz, answers)
	delete(b.pendingQuizzes, chatID)

	b.sendMessage(chatID, quiz.RenderResult(&result))

	if err := b.db.AddQuizCompletion(chatID, pending.quizID, result.ScorePercent); err != nil {
		log.Printf("Error recording quiz completion: %v", err)
	}
	if err := b.db.TouchMemberActivity(chatID); err != nil {
		log.Printf("Error updating member activity: %v", err)
	}

	log.Printf("Graded quiz %d for chat %d: %.0f%% (%d/%d)",
		pending.quizID, chatID, result.ScorePercent, result.CorrectCount, result.TotalCount)
}

// handleAskCommand handles the /ask command by passing the question to the
// tutor with the member's level as context.
func (b *Bot) handleAskCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	question := strings.TrimSpace(strings.TrimPrefix(message.Text, "/"+cmdAsk))
	if question == "" {
		b.sendMessage(chatID, "Please include your question, for example: /ask What is a dangling pointer?")
		return
	}

	member, err := b.db.GetMemberByChatID(chatID)
	if err != nil {
		log.Printf("Error loading member profile: %v", err)
	}
	if member == nil {
		member, err = b.db.CreateMember(chatID, strings.TrimSpace(message.From.FirstName+" "+message.From.LastName))
		if err != nil {
			log.Printf("Error creating member profile: %v", err)
		}
	}

	level := "beginner"
	var history []string
	if member != nil {
		level = member.Level

		// Collect the history before recording the new question so the
		// context does not repeat what is being asked.
		recent, err := b.db.GetRecentMemberQuestions(member.ID)
		if err != nil {
			log.Printf("Error loading recent member questions: %v", err)
		}
		for _, q := range recent {
			history = append(history, q.Text)
		}

		if err := b.db.RecordMemberQuestion(member.ID, question); err != nil {
			log.Printf("Error recording member question: %v", err)
		}
	}

	b.sendMessage(chatID, "🤔 Let me think about that...")

	answer, err := b.claude.AnswerQuestion(context.Background(), question, level, history)
	if err != nil {
		log.Printf("Error answering question: %v", err)
		b.sendMessage(chatID, "Sorry, I couldn't answer that right now. Please try again later.")
		return
	}

	b.sendMessage(chatID, answer)

	if err := b.db.TouchMemberActivity(chatID); err != nil {
		log.Printf("Error updating member activity: %v", err)
	}
}

// handleStatCommand handles the /stat command
func (b *Bot) handleStatCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	completed, avgScore, err := b.db.GetQuizStats(chatID)
	if err != nil {
		log.Printf("Error getting quiz stats: %v", err)
		b.sendMessage(chatID, "Sorry, I couldn't retrieve your statistics. Please try again later.")
		return
	}

	if completed == 0 {
		b.sendMessage(chatID, "You haven't completed any quizzes yet. Use /quiz to get started!")
		return
	}

	statMessage := fmt.Sprintf(`📊 Your Statistics:

Quizzes completed: %d
Average score: %.1f%%`, completed, avgScore)

	recent, err := b.db.GetQuizCompletions(chatID, 3)
	if err != nil {
		log.Printf("Error getting recent completions: %v", err)
	}
	if len(recent) > 0 {
		statMessage += "\n\nRecent quizzes:\n"
		for i, c := range recent {
			statMessage += fmt.Sprintf("%d. %.0f%% on %s\n",
				i+1, c.Score, time.Unix(c.CompletedAt, 0).Format("2 Jan 2006"))
		}
	}

	b.sendMessage(chatID, statMessage)
}

// handleSessionsCommand handles the /sessions command
func (b *Bot) handleSessionsCommand(message *tgbotapi.Message) {
	sessions, err := b.db.GetUpcomingSessions(3)
	if err != nil {
		log.Printf("Error loading upcoming sessions: %v", err)
		b.sendMessage(message.Chat.ID, "Sorry, I couldn't load the session schedule. Please try again later.")
		return
	}

	if len(sessions) == 0 {
		b.sendMessage(message.Chat.ID, "No upcoming sessions are scheduled yet. Stay tuned!")
		return
	}

	for i := range sessions {
		b.sendMessage(message.Chat.ID, quiz.RenderSessionReminder(&sessions[i]))
	}
}

// handleHelpCommand handles the /help command
func (b *Bot) handleHelpCommand(message *tgbotapi.Message) {
	helpText := `Here is what I can do:

/quiz [topic] - Get a multiple-choice quiz on a C topic
/ask <question> - Ask a question about the C language
/sessions - See the upcoming learning sessions
/stat - View your quiz statistics

After a quiz, reply with your answers like: Q1-C, Q2-A, Q3-B`

	b.sendMessage(message.Chat.ID, helpText)
}

// reminderLoop periodically sends reminders for sessions starting within
// the reminder window.
func (b *Bot) reminderLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		sessions, err := b.db.GetUpcomingSessions(10)
		if err != nil {
			log.Printf("Error loading sessions for reminders: %v", err)
			continue
		}

		for i := range sessions {
			s := &sessions[i]
			if s.ReminderSent || time.Until(s.Date) > reminderWindow {
				continue
			}

			chatIDs, err := b.db.GetAllMemberChatIDs()
			if err != nil {
				log.Printf("Error loading member chat IDs: %v", err)
				break
			}

			text := quiz.RenderSessionReminder(s)
			for _, chatID := range chatIDs {
				b.sendMessage(chatID, text)
			}

			if err := b.db.MarkReminderSent(s.ID); err != nil {
				log.Printf("Error marking reminder sent for session %d: %v", s.ID, err)
			}
			log.Printf("Sent reminder for session %d to %d members", s.ID, len(chatIDs))
		}
	}
}

// sendMessage sends a text message. Blocks are delivered verbatim; if
// Telegram rejects the markdown variant the plain text is sent unchanged.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)

	// Check if the text appears to be markdown by looking for markdown syntax
	if strings.Contains(text, "```") ||
		strings.Contains(text, "*") ||
		strings.Contains(text, "`") {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)

		// If sending fails with markdown, try without formatting
		if msg.ParseMode != "" {
			log.Printf("Markdown rendering failed, falling back to plain text")
			plainMsg := tgbotapi.NewMessage(chatID, text)
			if _, err := b.api.Send(plainMsg); err != nil {
				log.Printf("Plain text fallback also failed: %v", err)
			}
		}
	}
}
