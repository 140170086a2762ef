package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/c2p-community/c2pbot/database"
	"github.com/c2p-community/c2pbot/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateMember_Idempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.CreateMember(42, "Ada")
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	second, err := db.CreateMember(42, "Someone Else")
	if err != nil {
		t.Fatalf("second CreateMember failed: %v", err)
	}

	if second.ID != first.ID || second.Name != "Ada" {
		t.Errorf("expected existing profile back, got %+v", second)
	}
}

func TestGetMemberByChatID_MissingReturnsNil(t *testing.T) {
	db := openTestDB(t)

	m, err := db.GetMemberByChatID(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil for unknown member, got %+v", m)
	}
}

func TestUpdateMemberProfile(t *testing.T) {
	db := openTestDB(t)

	m, err := db.CreateMember(9, "Joan")
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	m.Name = "Joan Clarke"
	m.Country = "UK"
	m.School = "Cambridge"
	m.StudyLevel = "Postgraduate"
	m.Motivation = "learn systems programming"
	m.Level = "intermediate"

	if err := db.UpdateMemberProfile(9, m); err != nil {
		t.Fatalf("UpdateMemberProfile failed: %v", err)
	}

	got, err := db.GetMemberByChatID(9)
	if err != nil {
		t.Fatalf("GetMemberByChatID failed: %v", err)
	}
	if got.Name != "Joan Clarke" || got.Country != "UK" || got.School != "Cambridge" ||
		got.StudyLevel != "Postgraduate" || got.Motivation != "learn systems programming" ||
		got.Level != "intermediate" {
		t.Errorf("profile not persisted: %+v", got)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	db := openTestDB(t)

	q := &models.Quiz{
		Title: "Quiz on arrays",
		Topic: "arrays",
		Questions: []models.Question{{
			Text: "How are arrays indexed in C?",
			Options: []models.Option{
				{Text: "From zero", IsCorrect: true},
				{Text: "From one", IsCorrect: false},
			},
			Explanation: "C arrays are zero-indexed.",
		}},
		EstimatedDurationMinutes: 5,
	}

	id, err := db.SaveQuiz(q)
	if err != nil {
		t.Fatalf("SaveQuiz failed: %v", err)
	}

	gotID, got, err := db.GetQuizByTopic("arrays")
	if err != nil {
		t.Fatalf("GetQuizByTopic failed: %v", err)
	}
	if got == nil || gotID != id {
		t.Fatalf("expected stored quiz %d back, got id %d quiz %+v", id, gotID, got)
	}
	if got.Title != q.Title || len(got.Questions) != 1 || !got.Questions[0].Options[0].IsCorrect {
		t.Errorf("stored quiz does not match: %+v", got)
	}

	_, missing, err := db.GetQuizByTopic("no-such-topic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown topic, got %+v", missing)
	}
}

func TestQuizCompletions_NoDeduplication(t *testing.T) {
	db := openTestDB(t)

	// The same member completing the same quiz twice keeps both records.
	if err := db.AddQuizCompletion(7, 1, 50); err != nil {
		t.Fatalf("AddQuizCompletion failed: %v", err)
	}
	if err := db.AddQuizCompletion(7, 1, 100); err != nil {
		t.Fatalf("second AddQuizCompletion failed: %v", err)
	}

	completed, avg, err := db.GetQuizStats(7)
	if err != nil {
		t.Fatalf("GetQuizStats failed: %v", err)
	}
	if completed != 2 {
		t.Errorf("expected 2 completions, got %d", completed)
	}
	if avg != 75 {
		t.Errorf("expected average 75, got %v", avg)
	}
}

func TestGetQuizStats_EmptyHistory(t *testing.T) {
	db := openTestDB(t)

	completed, avg, err := db.GetQuizStats(1)
	if err != nil {
		t.Fatalf("GetQuizStats failed: %v", err)
	}
	if completed != 0 || avg != 0 {
		t.Errorf("expected 0 completions and 0 average, got %d and %v", completed, avg)
	}
}

func TestRecordMemberQuestion_KeepsRecentOnly(t *testing.T) {
	db := openTestDB(t)

	m, err := db.CreateMember(5, "Brian")
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	for i := 0; i < 15; i++ {
		if err := db.RecordMemberQuestion(m.ID, "question "+string(rune('a'+i))); err != nil {
			t.Fatalf("RecordMemberQuestion failed: %v", err)
		}
	}

	questions, err := db.GetRecentMemberQuestions(m.ID)
	if err != nil {
		t.Fatalf("GetRecentMemberQuestions failed: %v", err)
	}
	if len(questions) != 10 {
		t.Errorf("expected only 10 questions retained, got %d", len(questions))
	}
	if questions[0].Text != "question o" {
		t.Errorf("expected newest question first, got %q", questions[0].Text)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	s := &models.Session{
		Title:           "Memory allocation workshop",
		Description:     "malloc and friends",
		Date:            time.Now().Add(48 * time.Hour),
		DurationMinutes: 90,
		Topics:          []string{"malloc", "free"},
		PrepExercises: []models.Exercise{
			{Title: "Read the malloc man page", Link: "https://example.org/malloc"},
		},
	}

	id, err := db.AddSession(s)
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	sessions, err := db.GetUpcomingSessions(5)
	if err != nil {
		t.Fatalf("GetUpcomingSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 upcoming session, got %d", len(sessions))
	}

	got := sessions[0]
	if got.ID != id || got.Title != s.Title || got.DurationMinutes != 90 {
		t.Errorf("stored session does not match: %+v", got)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "malloc" {
		t.Errorf("topics not preserved: %v", got.Topics)
	}
	if len(got.PrepExercises) != 1 || got.PrepExercises[0].Title != "Read the malloc man page" {
		t.Errorf("exercises not preserved: %v", got.PrepExercises)
	}
	if got.ReminderSent {
		t.Error("new session must not be marked reminded")
	}

	if err := db.MarkReminderSent(id); err != nil {
		t.Fatalf("MarkReminderSent failed: %v", err)
	}

	sessions, err = db.GetUpcomingSessions(5)
	if err != nil {
		t.Fatalf("GetUpcomingSessions failed: %v", err)
	}
	if !sessions[0].ReminderSent {
		t.Error("expected reminder flag set after MarkReminderSent")
	}
}
