package models

// Member is a community member profile, built up from their introduction
// message and their activity with the bot.
type Member struct {
	ID         int64
	ChatID     int64
	Name       string
	Country    string
	School     string
	StudyLevel string
	Motivation string
	Level      string // beginner, intermediate, advanced
	JoinedAt   int64
	LastActive int64
}

// MemberQuestion is one question a member asked the tutor, kept for
// prompt context. Only the most recent ten are retained per member.
type MemberQuestion struct {
	MemberID int64
	Text     string
	AskedAt  int64
}
