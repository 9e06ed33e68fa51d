package vtscreen

import "testing"

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'A', 1},
		{'0', 1},
		{' ', 1},
		{'世', 2},
		{'界', 2},
		{'あ', 2},
		{'한', 2},
		{0x0301, 0}, // combining acute accent
		{0x200B, 0}, // zero width space
	}
	for _, tt := range tests {
		if got := runeWidth(tt.r); got != tt.want {
			t.Errorf("runeWidth(%q) = %d, expected %d", tt.r, got, tt.want)
		}
	}
}

func TestIsWideRune(t *testing.T) {
	if isWideRune('a') {
		t.Error("expected 'a' narrow")
	}
	if !isWideRune('世') {
		t.Error("expected '世' wide")
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("hello"); got != 5 {
		t.Errorf("expected width 5, got %d", got)
	}
	if got := StringWidth("世界"); got != 4 {
		t.Errorf("expected width 4, got %d", got)
	}
	if got := StringWidth("a世b"); got != 4 {
		t.Errorf("expected width 4, got %d", got)
	}
}
