package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/c2p-community/c2pbot/models"
	_ "github.com/mattn/go-sqlite3"
)

// recentQuestionLimit is how many of a member's tutor questions are kept.
const recentQuestionLimit = 10

// DB handles all database operations
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes tables
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err = createTables(db); err != nil {
		return nil, err
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			school TEXT NOT NULL DEFAULT '',
			study_level TEXT NOT NULL DEFAULT '',
			motivation TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT 'beginner',
			joined_at INTEGER NOT NULL,
			last_active INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS member_questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			member_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			asked_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			quiz_id INTEGER NOT NULL,
			score REAL NOT NULL,
			completed_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date INTEGER NOT NULL,
			duration_minutes INTEGER NOT NULL,
			topics TEXT NOT NULL DEFAULT '',
			prep_exercises TEXT NOT NULL DEFAULT '[]',
			reminder_sent INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ── Members ──────────────────────────────────────────────────────────

// CreateMember inserts a member profile if none exists for the chat ID and
// returns the stored profile either way.
func (db *DB) CreateMember(chatID int64, name string) (*models.Member, error) {
	existing, err := db.GetMemberByChatID(chatID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().Unix()
	res, err := db.conn.Exec(
		"INSERT INTO members (chat_id, name, joined_at, last_active) VALUES (?, ?, ?, ?)",
		chatID, name, now, now,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Member{
		ID:         id,
		ChatID:     chatID,
		Name:       name,
		Level:      "beginner",
		JoinedAt:   now,
		LastActive: now,
	}, nil
}

// GetMemberByChatID retrieves a member profile, or nil when none exists.
func (db *DB) GetMemberByChatID(chatID int64) (*models.Member, error) {
	var m models.Member
	err := db.conn.QueryRow(
		`SELECT id, chat_id, name, country, school, study_level, motivation, level, joined_at, last_active
		 FROM members WHERE chat_id = ?`,
		chatID,
	).Scan(&m.ID, &m.ChatID, &m.Name, &m.Country, &m.School, &m.StudyLevel, &m.Motivation, &m.Level, &m.JoinedAt, &m.LastActive)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMemberProfile updates the introduction fields of a member.
func (db *DB) UpdateMemberProfile(chatID int64, m *models.Member) error {
	_, err := db.conn.Exec(
		`UPDATE members SET name = ?, country = ?, school = ?, study_level = ?, motivation = ?, level = ?
		 WHERE chat_id = ?`,
		m.Name, m.Country, m.School, m.StudyLevel, m.Motivation, m.Level, chatID,
	)
	return err
}

// GetAllMemberChatIDs returns the chat IDs of every registered member.
func (db *DB) GetAllMemberChatIDs() ([]int64, error) {
	rows, err := db.conn.Query("SELECT chat_id FROM members")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chatIDs []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, err
		}
		chatIDs = append(chatIDs, chatID)
	}
	return chatIDs, rows.Err()
}

// TouchMemberActivity updates a member's last-active timestamp.
func (db *DB) TouchMemberActivity(chatID int64) error {
	_, err := db.conn.Exec(
		"UPDATE members SET last_active = ? WHERE chat_id = ?",
		time.Now().Unix(), chatID,
	)
	return err
}

// RecordMemberQuestion appends a tutor question to the member's history,
// keeping only the most recent entries.
func (db *DB) RecordMemberQuestion(memberID int64, text string) error {
	_, err := db.conn.Exec(
		"INSERT INTO member_questions (member_id, text, asked_at) VALUES (?, ?, ?)",
		memberID, text, time.Now().Unix(),
	)
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(`
		DELETE FROM member_questions
		WHERE member_id = ? AND id NOT IN (
			SELECT id FROM member_questions WHERE member_id = ? ORDER BY id DESC LIMIT ?
		)`,
		memberID, memberID, recentQuestionLimit,
	)
	return err
}

// GetRecentMemberQuestions returns the member's most recent tutor
// questions, newest first.
func (db *DB) GetRecentMemberQuestions(memberID int64) ([]models.MemberQuestion, error) {
	rows, err := db.conn.Query(
		"SELECT member_id, text, asked_at FROM member_questions WHERE member_id = ? ORDER BY id DESC LIMIT ?",
		memberID, recentQuestionLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.MemberQuestion
	for rows.Next() {
		var q models.MemberQuestion
		if err := rows.Scan(&q.MemberID, &q.Text, &q.AskedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ── Quizzes ──────────────────────────────────────────────────────────

// SaveQuiz stores a quiz as JSON and returns its ID. Both generated and
// curated quizzes go through here; stored quizzes double as the fallback
// pool when generation fails.
func (db *DB) SaveQuiz(q *models.Quiz) (int64, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return 0, err
	}

	res, err := db.conn.Exec(
		"INSERT INTO quizzes (topic, payload, created_at) VALUES (?, ?, ?)",
		q.Topic, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetQuizByTopic returns the most recently stored quiz for a topic, or a
// nil quiz when none exists.
func (db *DB) GetQuizByTopic(topic string) (int64, *models.Quiz, error) {
	return db.queryQuiz(
		"SELECT id, payload FROM quizzes WHERE topic = ? ORDER BY id DESC LIMIT 1",
		topic,
	)
}

// GetRandomQuiz returns a randomly chosen stored quiz, or a nil quiz when
// the store is empty.
func (db *DB) GetRandomQuiz() (int64, *models.Quiz, error) {
	return db.queryQuiz("SELECT id, payload FROM quizzes ORDER BY RANDOM() LIMIT 1")
}

func (db *DB) queryQuiz(query string, args ...interface{}) (int64, *models.Quiz, error) {
	var id int64
	var payload string
	err := db.conn.QueryRow(query, args...).Scan(&id, &payload)
	if err == sql.ErrNoRows {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}

	var q models.Quiz
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		return 0, nil, fmt.Errorf("stored quiz %d is corrupt: %w", id, err)
	}
	return id, &q, nil
}

// ── Quiz completions ─────────────────────────────────────────────────

// AddQuizCompletion appends a completion record for a member. A member may
// complete the same quiz any number of times; no deduplication is applied.
func (db *DB) AddQuizCompletion(chatID int64, quizID int64, score float64) error {
	_, err := db.conn.Exec(
		"INSERT INTO quiz_completions (chat_id, quiz_id, score, completed_at) VALUES (?, ?, ?, ?)",
		chatID, quizID, score, time.Now().Unix(),
	)
	return err
}

// GetQuizStats returns how many quizzes a member completed and their
// average score.
func (db *DB) GetQuizStats(chatID int64) (completed int, avgScore float64, err error) {
	err = db.conn.QueryRow(
		"SELECT COUNT(*), COALESCE(AVG(score), 0) FROM quiz_completions WHERE chat_id = ?",
		chatID,
	).Scan(&completed, &avgScore)
	return completed, avgScore, err
}

// GetQuizCompletions returns a member's completion history, newest first.
func (db *DB) GetQuizCompletions(chatID int64, limit int) ([]models.QuizCompletion, error) {
	rows, err := db.conn.Query(
		"SELECT quiz_id, score, completed_at FROM quiz_completions WHERE chat_id = ? ORDER BY id DESC LIMIT ?",
		chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.QuizCompletion
	for rows.Next() {
		var c models.QuizCompletion
		if err := rows.Scan(&c.QuizID, &c.Score, &c.CompletedAt); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// ── Sessions ─────────────────────────────────────────────────────────

// AddSession stores a scheduled session and returns its ID.
func (db *DB) AddSession(s *models.Session) (int64, error) {
	exercises, err := json.Marshal(s.PrepExercises)
	if err != nil {
		return 0, err
	}

	res, err := db.conn.Exec(
		`INSERT INTO sessions (title, description, date, duration_minutes, topics, prep_exercises, reminder_sent)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		s.Title, s.Description, s.Date.Unix(), s.DurationMinutes, strings.Join(s.Topics, ","), string(exercises),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetUpcomingSessions returns sessions scheduled after now, soonest first.
func (db *DB) GetUpcomingSessions(limit int) ([]models.Session, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, description, date, duration_minutes, topics, prep_exercises, reminder_sent
		 FROM sessions WHERE date > ? ORDER BY date ASC LIMIT ?`,
		time.Now().Unix(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var date int64
		var topics, exercises string
		var reminderSent int
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &date, &s.DurationMinutes, &topics, &exercises, &reminderSent); err != nil {
			return nil, err
		}
		s.Date = time.Unix(date, 0)
		if topics != "" {
			s.Topics = strings.Split(topics, ",")
		}
		if err := json.Unmarshal([]byte(exercises), &s.PrepExercises); err != nil {
			return nil, fmt.Errorf("stored session %d has corrupt exercises: %w", s.ID, err)
		}
		s.ReminderSent = reminderSent != 0
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MarkReminderSent records that the reminder for a session went out.
func (db *DB) MarkReminderSent(sessionID int64) error {
	_, err := db.conn.Exec("UPDATE sessions SET reminder_sent = 1 WHERE id = ?", sessionID)
	return err
}
