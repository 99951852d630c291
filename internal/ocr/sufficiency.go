package ocr

import (
	"regexp"
	"unicode/utf8"
)

var (
	reJapanese   = regexp.MustCompile(`[一-龥ぁ-んァ-ン]`)
	reAccounting = regexp.MustCompile(`\d{4}年|\d{1,2}月|\d{1,2}日|円|合計|金額`)
)

// IsTextSufficient reports whether a PDF text layer carries usable receipt
// content: long enough, Japanese script present, and at least one
// date-or-amount marker. Anything else is treated as a scan and re-OCRed.
func IsTextSufficient(text string) bool {
	if utf8.RuneCountInString(text) < 30 {
		return false
	}
	if !reJapanese.MatchString(text) {
		return false
	}
	return reAccounting.MatchString(text)
}
