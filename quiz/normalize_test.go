package quiz_test

import (
	"testing"

	"github.com/c2p-community/c2pbot/quiz"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		token       string
		optionCount int
		wantIndex   int
		wantOK      bool
	}{
		{"c", 4, 2, true},
		{"C", 4, 2, true},
		{"a", 4, 0, true},
		{"d", 4, 3, true},
		{"e", 4, 0, false}, // letter beyond option count
		{"", 4, 0, false},
		{"1", 4, 1, true}, // numeric tokens are already zero-based
		{"0", 4, 0, true},
		{"3", 4, 3, true},
		{"4", 4, 0, false}, // numeric beyond option count
		{"-1", 4, 0, false},
		{"AB", 4, 0, false}, // neither single letter nor number
		{"?", 4, 0, false},
		{" b ", 4, 1, true}, // surrounding whitespace tolerated
		{"10", 12, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			index, ok := quiz.NormalizeAnswer(tt.token, tt.optionCount)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeAnswer(%q, %d) ok = %v, want %v", tt.token, tt.optionCount, ok, tt.wantOK)
			}
			if ok && index != tt.wantIndex {
				t.Errorf("NormalizeAnswer(%q, %d) = %d, want %d", tt.token, tt.optionCount, index, tt.wantIndex)
			}
		})
	}
}
