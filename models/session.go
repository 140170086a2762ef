package models

import "time"

// Exercise is a preparation exercise attached to a session.
type Exercise struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Session is a scheduled community learning session.
type Session struct {
	ID              int64
	Title           string
	Description     string
	Date            time.Time
	DurationMinutes int
	Topics          []string
	PrepExercises   []Exercise
	ReminderSent    bool
}
