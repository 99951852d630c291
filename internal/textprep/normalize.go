// Package textprep normalizes raw OCR text from Japanese receipts into the
// canonical form the extraction engine operates on.
package textprep

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// OCR often splits the thousands separator: "¥1, 140", "¥1 , 140", "¥1 140".
	yenCommaSpace = regexp.MustCompile(`¥([0-9]+),\s*([0-9]{3})`)
	yenSpaceComma = regexp.MustCompile(`¥([0-9]+)\s*,\s*([0-9]{3})`)
	yenBareSpace  = regexp.MustCompile(`¥([0-9]+)\s+([0-9]{3})`)

	// Opening of a parenthesized 外8%/外10% annotation whose closing paren may
	// land on a later line.
	parenTaxOpen = regexp.MustCompile(`^\(外\s*[810]{1,2}[%％]`)
)

// Normalize converts full-width characters to half-width (NFKC), repairs
// amount punctuation the OCR mangles, merges multi-line parenthetical tax
// annotations into single lines, and drops blank lines. It never fails and is
// a fixed point after one pass.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r", "")
	// Receipts frequently mis-OCR the thousands separator as a period.
	text = strings.ReplaceAll(text, ".", ",")
	text = yenCommaSpace.ReplaceAllString(text, "¥$1,$2")
	text = yenSpaceComma.ReplaceAllString(text, "¥$1,$2")
	text = yenBareSpace.ReplaceAllString(text, "¥$1,$2")
	text = mergeParenLines(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// mergeParenLines joins any run of lines opening with "(外 8%"/"(外 10%" whose
// closing parenthesis appears on a later line.
func mergeParenLines(text string) string {
	lines := strings.Split(text, "\n")
	merged := make([]string, 0, len(lines))
	var buf []string
	inside := false
	for _, line := range lines {
		switch {
		case !inside && parenTaxOpen.MatchString(line):
			if strings.Contains(line, ")") {
				// annotation already closed on this line
				merged = append(merged, line)
				continue
			}
			inside = true
			buf = append(buf, line)
		case inside:
			buf = append(buf, line)
			if strings.Contains(line, ")") {
				merged = append(merged, strings.Join(buf, " "))
				buf = nil
				inside = false
			}
		default:
			merged = append(merged, line)
		}
	}
	if len(buf) > 0 {
		merged = append(merged, strings.Join(buf, " "))
	}
	return strings.Join(merged, "\n")
}
