package ocr

import (
	"strings"
	"testing"
)

func TestIsTextSufficient(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"receipt text", "株式会社テスト 御中 2024年1月15日 ご請求金額 合計 1,100円", true},
		{"too short", "合計 1,100円", false},
		{"no japanese", strings.Repeat("INVOICE TOTAL 1,100 JPY ", 4), false},
		{"no accounting marker", strings.Repeat("これはただのメモです。", 5), false},
		{"empty", "", false},
		{"garbage scan layer", strings.Repeat(".", 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTextSufficient(tt.text); got != tt.expected {
				t.Errorf("IsTextSufficient(%q) = %v, expected %v", tt.text, got, tt.expected)
			}
		})
	}
}
