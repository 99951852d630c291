package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ryo-ito/shiwakegen/constants"
)

// Amount resolution works label-first: the bottom-most amount on a line
// carrying a total label is authoritative, candidates from excluded lines
// (change given, cash tendered) never win, and the AI hint is a cross-check,
// never a sole authority.

var (
	reLabelKeywords    = regexp.MustCompile(`合計|小計|総額|ご請求金額|請求金額|合計金額`)
	reExcludeKeywords  = regexp.MustCompile(`お預り|お預かり|お釣り|現金|釣銭|つり銭`)
	reTaxLabelKeywords = regexp.MustCompile(`内消費税|消費税等|消費税|税率|内税|外税|税額`)

	reAmountYen  = regexp.MustCompile(`([0-9,]+)円`)
	reAmountMark = regexp.MustCompile(`¥([0-9,]+)`)
	reAmountBare = regexp.MustCompile(`([0-9,]+)`)

	reYearHints = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}年`),
		regexp.MustCompile(`\d{4}/`),
		regexp.MustCompile(`\d{4}-`),
		regexp.MustCompile(`年度`),
		regexp.MustCompile(`(?i)FY\d{4}`),
		regexp.MustCompile(`(?i)fiscal.*\d{4}`),
	}

	reExclusiveMark = regexp.MustCompile(`外税|別途消費税|tax out|tax-out|taxout|税抜|本体価格`)
	reInclusiveMark = regexp.MustCompile(`内税|税込|消費税込|tax in|tax-in|taxin`)
	reTaxWordMark   = regexp.MustCompile(`消費税|税額`)
	reZeroAmount    = regexp.MustCompile(`0円|¥0|0$`)

	// Receipt footers print "内 8%（¥708）(税額 ¥52)"; the 税額 group is the
	// explicit tax figure that overrides the formula.
	reBottomTax8  = regexp.MustCompile(`内[\s　]*8[%％][^\d]*(?:[¥\\]?[0-9,]+)[^\d]*(?:税額[\s　]*[¥\\]?([0-9,]+))`)
	reBottomTax10 = regexp.MustCompile(`内[\s　]*10[%％][^\d]*(?:[¥\\]?[0-9,]+)[^\d]*(?:税額[\s　]*[¥\\]?([0-9,]+))`)
)

const (
	amountMin = 1
	amountMax = 10_000_000
)

// isYearNumber rejects 4-digit values in the plausible fiscal-year range when
// the surrounding text looks date-like ("2025年のご利用金額" must not yield 2025).
func isYearNumber(val int, context string) bool {
	if val < 2020 || val > 2030 {
		return false
	}
	for _, re := range reYearHints {
		if re.MatchString(context) {
			return true
		}
	}
	return false
}

// parseCandidate converts a comma-grouped digit capture to a validated value.
// Returns -1 when the candidate must be rejected.
func parseCandidate(raw, line string) int {
	s := strings.ReplaceAll(raw, ",", "")
	if s == "" {
		return -1
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	if len(s) >= 10 {
		return -1 // registration/account numbers
	}
	if isYearNumber(val, line) {
		return -1
	}
	if val < amountMin || val > amountMax {
		return -1
	}
	return val
}

// resolveAmount picks the most probable total from the normalized lines,
// cross-checked against the AI hint. A nil result means no confident amount.
func resolveAmount(lines []string, aiHint *int) *int {
	// Label-carrying lines, bottom-most candidate wins. Exclusion and
	// tax-label sets beat a label match on the same line.
	var labelAmounts []int
	for _, line := range lines {
		if !reLabelKeywords.MatchString(line) ||
			reExcludeKeywords.MatchString(line) ||
			reTaxLabelKeywords.MatchString(line) {
			continue
		}
		for _, re := range []*regexp.Regexp{reAmountYen, reAmountMark, reAmountBare} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if val := parseCandidate(m[1], line); val > 0 {
					labelAmounts = append(labelAmounts, val)
				}
			}
		}
	}
	var labelAmount *int
	if len(labelAmounts) > 0 {
		v := labelAmounts[len(labelAmounts)-1]
		labelAmount = &v
	}

	// Site-wide currency-marked candidates, same exclusions.
	var candidates []int
	for _, line := range lines {
		if reExcludeKeywords.MatchString(line) || reTaxLabelKeywords.MatchString(line) {
			continue
		}
		for _, re := range []*regexp.Regexp{reAmountYen, reAmountMark} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if val := parseCandidate(m[1], line); val > 0 {
					candidates = append(candidates, val)
				}
			}
		}
	}

	// Validate the AI hint before letting it vote.
	if aiHint != nil {
		v := *aiHint
		switch {
		case isYearNumber(v, strings.Join(lines, "\n")):
			aiHint = nil
		case onExcludedLine(v, lines):
			aiHint = nil
		case v < amountMin || v > amountMax:
			aiHint = nil
		}
	}

	// Precedence: corroborated AI hint, AI hint with no label competitor,
	// label amount, max of remaining candidates.
	if aiHint != nil {
		if labelAmount != nil && *aiHint == *labelAmount {
			return aiHint
		}
		if labelAmount == nil {
			return aiHint
		}
	}
	if labelAmount != nil {
		return labelAmount
	}
	if len(candidates) > 0 {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c > best {
				best = c
			}
		}
		return &best
	}
	return nil
}

// onExcludedLine reports whether the value appears verbatim on a line carrying
// an exclusion keyword (change given, cash tendered).
func onExcludedLine(val int, lines []string) bool {
	s := strconv.Itoa(val)
	for _, line := range lines {
		if strings.Contains(line, s) && reExcludeKeywords.MatchString(line) {
			return true
		}
	}
	return false
}

// bottomTaxOverrides extracts explicit 税額 figures near 内8%/内10% footer
// annotations. These take precedence over the computed tax.
func bottomTaxOverrides(text string) (tax8, tax10 *int) {
	if m := reBottomTax8.FindStringSubmatch(text); m != nil && m[1] != "" {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			tax8 = &v
		}
	}
	if m := reBottomTax10.FindStringSubmatch(text); m != nil && m[1] != "" {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			tax10 = &v
		}
	}
	return tax8, tax10
}

// defaultInclusive decides the document-wide tax convention when the caller
// asked for 自動判定. Explicit 外税/内税 phrasing wins; a tax label next to a
// zero amount implies tax-in; Japanese retail convention defaults to tax-in.
func defaultInclusive(text string) bool {
	lower := strings.ToLower(text)
	if reExclusiveMark.MatchString(lower) {
		return false
	}
	if reInclusiveMark.MatchString(lower) {
		return true
	}
	if reTaxWordMark.MatchString(text) && reZeroAmount.MatchString(text) {
		return true
	}
	return true
}

// resolveAutoMode maps 自動判定 to a concrete mode from document context: the
// inclusive/exclusive convention plus whichever rate the text mentions.
func resolveAutoMode(text string) constants.TaxMode {
	has8 := strings.Contains(text, "8%") || strings.Contains(text, "８％")
	if defaultInclusive(text) {
		if has8 {
			return constants.TaxModeInclusive8
		}
		return constants.TaxModeInclusive10
	}
	if has8 {
		return constants.TaxModeExclusive8
	}
	return constants.TaxModeExclusive10
}
