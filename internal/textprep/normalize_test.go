package textprep

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"fullwidth to halfwidth", "合計　１，１００円", "合計 1,100円"},
		{"period becomes comma", "¥1.140", "¥1,140"},
		{"split thousands comma space", "¥1, 140", "¥1,140"},
		{"split thousands space comma", "¥1 , 140", "¥1,140"},
		{"split thousands bare space", "¥1 140", "¥1,140"},
		{"carriage returns stripped", "合計\r\n1,100円", "合計\n1,100円"},
		{"blank lines dropped", "合計\n\n\n1,100円", "合計\n1,100円"},
		{"edges trimmed", "  合計 1,100円  ", "合計 1,100円"},
		{"paren annotation merged", "(外 8% 対象\n¥962)", "(外 8% 対象 ¥962)"},
		{"closed annotation untouched", "(外 10% 対象 ¥420)", "(外 10% 対象 ¥420)"},
		{"unclosed annotation flushed", "(外 8% 対象\n¥962", "(外 8% 対象 ¥962"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"株式会社テスト\n2024年1月15日\n合計 1,100円",
		"(外 8% 対象\n¥962)\n(外 10% 対象 ¥420)",
		"¥1. 140\n内 8%（¥708）(税額 ¥52)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not a fixed point:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}
