package bot

import (
	"regexp"
	"strings"

	"github.com/c2p-community/c2pbot/models"
)

// introLinePrefix strips the numbering members copy from the welcome
// message, e.g. "1." / "2)" / "3️⃣".
var introLinePrefix = regexp.MustCompile(`^[0-9]+[\x{FE0F}\x{20E3}]*[.):\-]*\s*`)

// applyIntroduction interprets a free-text message as a member
// introduction: one field per line in the order the welcome message asks
// for them (name, country, school, study level, motivation). It fills the
// member profile and reports whether the text was usable; anything shorter
// than two lines is not treated as an introduction.
func applyIntroduction(m *models.Member, text string) bool {
	var fields []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(introLinePrefix.ReplaceAllString(line, ""))
		if line != "" {
			fields = append(fields, line)
		}
	}

	if len(fields) < 2 {
		return false
	}

	m.Name = fields[0]
	m.Country = fields[1]
	if len(fields) > 2 {
		m.School = fields[2]
	}
	if len(fields) > 3 {
		m.StudyLevel = fields[3]
	}
	if len(fields) > 4 {
		m.Motivation = strings.Join(fields[4:], " ")
	}

	return true
}
