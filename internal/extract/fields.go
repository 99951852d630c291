package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ryo-ito/shiwakegen/constants"
)

var (
	legalEntityTokens = []string{"株式会社", "有限会社", "合同会社", "Studio", "Inc", "Corp"}
	honorifics        = []string{"御中", "様", "殿", "さん", "君", "ちゃん"}

	// "4月分…株式会社X" and similar period prefixes in front of the name.
	reCompanyPrefix = regexp.MustCompile(`(集計期間|期間|\d{1,2}月分|[0-9]{4}/[0-9]{2}/[0-9]{2}～[0-9]{4}/[0-9]{2}/[0-9]{2}|[0-9]{4}年[0-9]{1,2}月分).*?(株式会社|有限会社|合同会社|Studio|Inc|Corp)`)
	reCompanyName   = regexp.MustCompile(`(株式会社|有限会社|合同会社|Studio|Inc|Corp)[^\s]*.*`)

	// Date patterns in order of specificity. Lines that look like phone,
	// register, or receipt numbers are skipped before testing these.
	reDateFull  = regexp.MustCompile(`(20[0-9]{2})[年/\-.](1[0-2]|0?[1-9])[月/\-.](3[01]|[12][0-9]|0?[1-9])日?`)
	reDateSlash = regexp.MustCompile(`(20[0-9]{2})[/-](1[0-2]|0?[1-9])[/-](3[01]|[12][0-9]|0?[1-9])`)
	reDateMD    = regexp.MustCompile(`(1[0-2]|0?[1-9])[月/\-.](3[01]|[12][0-9]|0?[1-9])日?`)
	reDateSkip  = regexp.MustCompile(`(?i)(電話|TEL|No\.|NO\.|レジ|会計|店|\d{4,}-\d{2,}-\d{2,}|\d{2,}-\d{4,}-\d{4,})`)

	rePeriodHint = regexp.MustCompile(`([0-9]{1,2}月分|上期分|下期分)`)

	// Rule-based account fallback keyword sets.
	reBeverage  = regexp.MustCompile(`飲料|食品|お菓子|ペットボトル|弁当|パン|コーヒー|お茶|水|ジュース`)
	reSales     = regexp.MustCompile(`売上|請求|納品`)
	reTraining  = regexp.MustCompile(`講義|研修`)
	reTransport = regexp.MustCompile(`交通|タクシー`)
	reTelecom   = regexp.MustCompile(`通信|電話`)
	reSupplies  = regexp.MustCompile(`事務用品|文具`)
)

// extractCompany finds the counterparty name: first line carrying a
// legal-entity token, stripped of leading period annotations and trailing
// honorifics. A bare legal-entity token with no name attached is discarded.
func extractCompany(lines []string) string {
	for _, line := range lines {
		if !containsAny(line, legalEntityTokens) {
			continue
		}
		name := strings.TrimSpace(line)
		name = reCompanyPrefix.ReplaceAllString(name, "$2")
		if m := reCompanyName.FindString(name); m != "" {
			name = m
		}
		for _, h := range honorifics {
			if strings.HasSuffix(name, h) {
				name = strings.TrimSuffix(name, h)
				break
			}
		}
		name = strings.TrimSpace(name)
		for _, tok := range legalEntityTokens {
			if name == tok {
				return ""
			}
		}
		return name
	}
	return ""
}

// extractDate tries the three date patterns in specificity order across all
// lines, skipping number-noise lines. Month/day-only dates assume the current
// year. Returns "" when nothing matches.
func extractDate(lines []string, now time.Time) string {
	for _, re := range []*regexp.Regexp{reDateFull, reDateSlash, reDateMD} {
		for _, line := range lines {
			if reDateSkip.MatchString(line) {
				continue
			}
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if len(m) == 4 {
				return fmt.Sprintf("%s/%s/%s", m[1], pad2(m[2]), pad2(m[3]))
			}
			return fmt.Sprintf("%d/%s/%s", now.Year(), pad2(m[1]), pad2(m[2]))
		}
	}
	return ""
}

// extractPeriodHint pulls billing-period wording ("4月分", "上期分") used to
// seed the description prompt.
func extractPeriodHint(text string) string {
	return rePeriodHint.FindString(text)
}

// fallbackAccount is the rule-based decision tree used when the AI classifier
// yields nothing. Order is load-bearing: the beverage check runs before the
// stance branch, so an issued food-service invoice still classifies as 会議費.
func fallbackAccount(text string, stance constants.Stance) string {
	if reBeverage.MatchString(text) {
		return "会議費"
	}
	if stance == constants.StanceIssued {
		if reSales.MatchString(text) {
			return "売上高"
		}
		return "雑収入"
	}
	switch {
	case reTraining.MatchString(text):
		return "研修費"
	case reTransport.MatchString(text):
		return "旅費交通費"
	case reTelecom.MatchString(text):
		return "通信費"
	case reSupplies.MatchString(text):
		return "消耗品費"
	}
	return constants.AccountSuspense
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
