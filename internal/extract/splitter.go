package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/llm"
	"github.com/ryo-ito/shiwakegen/internal/textprep"
)

// TaxBlock is one tax-rate segment detected inside a receipt. Zero or more
// per document; each becomes its own journal entry.
type TaxBlock struct {
	Mode        constants.TaxMode
	Amount      int
	TaxOverride *int   // explicit 税額 printed on the receipt, wins over the formula
	Label       string // description annotation, e.g. "10%対象" or "課税仕入 8%"
	Source      string // the matched line(s), kept for logging
}

// A strategy scans the full normalized text for tax blocks. Strategies are
// mutually exclusive and tried in priority order; the first one producing at
// least one block wins.
type strategy struct {
	name string
	scan func(text string) []TaxBlock
}

// Request is one extraction run over a single document's normalized text.
type Request struct {
	Text        string
	Stance      constants.Stance
	TaxMode     constants.TaxMode // caller's selection; 自動判定 resolves from context
	ExtraPrompt string
	Corrections []llm.Correction // pre-fetched similar past corrections for the account prompt
}

// Engine runs the strategy cascade and per-block field resolution. It is
// stateless apart from its collaborators; a nil Advisor means AI disabled and
// every guess falls through to the rules.
type Engine struct {
	logger  *slog.Logger
	advisor llm.Advisor
	now     func() time.Time
}

func NewEngine(advisor llm.Advisor, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, advisor: advisor, now: time.Now}
}

var strategies = []strategy{
	{"labeled-block", scanLabeledBlocks},
	{"paren-exclusive", scanParenExclusive},
	{"multiline-inclusive", scanMultilineInclusive},
	{"bottom-block", scanBottomBlocks},
	{"line-items", scanLineItems},
}

// Extract normalizes the text, finds tax blocks via the cascade, and resolves
// one entry per block. With no block match it falls back to a single entry,
// which is dropped when either amount or account is empty. Split amounts are
// deliberately not validated against a receipt-wide total: recall is worth
// more than cross-checking here.
func (e *Engine) Extract(ctx context.Context, req Request) []Entry {
	text := textprep.Normalize(req.Text)
	if req.TaxMode == "" {
		req.TaxMode = constants.TaxModeAuto
	}

	for _, s := range strategies {
		blocks := s.scan(text)
		if len(blocks) == 0 {
			continue
		}
		e.logger.Info("split.strategy_hit", "strategy", s.name, "blocks", len(blocks))
		entries := make([]Entry, 0, len(blocks))
		for _, b := range blocks {
			entry := e.extractOne(ctx, text, req, b.Mode)
			entry.Amount = strconv.Itoa(b.Amount)
			entry.Tax = strconv.Itoa(computeTax(b.Amount, b.Mode, b.TaxOverride))
			entry.Description = fmt.Sprintf("%s（%s）", entry.Description, b.Label)
			entries = append(entries, entry)
		}
		return entries
	}

	// No block-level pattern matched: single entry under the caller's mode.
	entry := e.extractOne(ctx, text, req, req.TaxMode)
	if entry.Amount == "" || entry.Account == "" {
		e.logger.Info("split.no_usable_entry", "amount_empty", entry.Amount == "", "account_empty", entry.Account == "")
		return nil
	}
	return []Entry{entry}
}

// --- strategy 1: 課税計(10%)/課税計(8%)/非課税計 labels, amount on the next line ---

var (
	reBlockLabel10 = regexp.MustCompile(`課税計\s*[\(（]10[%％][\)）]`)
	reBlockLabel8  = regexp.MustCompile(`課税計\s*[\(（]8[%％][\)）]`)
	reBlockExempt  = regexp.MustCompile(`非課[税稅]計`)
	reBlockAmount  = regexp.MustCompile(`¥?([0-9,]+)`)
)

func scanLabeledBlocks(text string) []TaxBlock {
	lines := strings.Split(text, "\n")
	var blocks []TaxBlock
	appendBlock := func(i int, mode constants.TaxMode, label string) {
		if i+1 >= len(lines) {
			return
		}
		next := lines[i+1]
		m := reBlockAmount.FindStringSubmatch(next)
		if m == nil {
			return
		}
		val, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return
		}
		// require a currency marker on the amount line; 0 and 1 yen are noise
		if val <= 1 || (!strings.Contains(next, "¥") && !strings.Contains(next, "円")) {
			return
		}
		blocks = append(blocks, TaxBlock{
			Mode:   mode,
			Amount: val,
			Label:  label,
			Source: lines[i] + " / " + next,
		})
	}
	for i, line := range lines {
		if reBlockLabel10.MatchString(line) {
			appendBlock(i, constants.TaxModeExclusive10, "課税仕入 10%")
		}
		if reBlockLabel8.MatchString(line) {
			appendBlock(i, constants.TaxModeExclusive8, "課税仕入 8%")
		}
		if reBlockExempt.MatchString(line) {
			appendBlock(i, constants.TaxModeExempt, "非課税")
		}
	}
	return blocks
}

// --- strategy 2: parenthetical "(外8% 対象 ¥962)" captures, all occurrences ---

var (
	reParenOut8  = regexp.MustCompile(`(?is)外\s*8[%％][^\d\n]*?対象[^\d\n]*?¥?([0-9,]+)`)
	reParenOut10 = regexp.MustCompile(`(?is)外\s*10[%％][^\d\n]*?対象[^\d\n]*?¥?([0-9,]+)`)
)

func scanParenExclusive(text string) []TaxBlock {
	var blocks []TaxBlock
	collect := func(re *regexp.Regexp, mode constants.TaxMode, label string) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			val, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err != nil || val <= 10 {
				continue
			}
			blocks = append(blocks, TaxBlock{Mode: mode, Amount: val, Label: label, Source: m[0]})
		}
	}
	collect(reParenOut8, constants.TaxModeExclusive8, "8%対象")
	collect(reParenOut10, constants.TaxModeExclusive10, "10%対象")
	return blocks
}

// --- strategy 3: multi-line 内N% subtotal + second-occurrence tax amount ---

var (
	reIn8Sub  = regexp.MustCompile(`(?i)内\s*8[%％][^\d\n]*[\(（\[｢]?(?:タイショウ)?[\s　]*\n?¥?([0-9,]+)[\)）\]｣]?`)
	reIn8Tax  = regexp.MustCompile(`(?i)内\s*8[%％][^\d\n]*\n?¥?([0-9,]+)[\)）\]｣]?`)
	reIn10Sub = regexp.MustCompile(`(?i)内\s*10[%％][^\d\n]*[\(（\[｢]?(?:タイショウ)?[\s　]*\n?¥?([0-9,]+)[\)）\]｣]?`)
	reIn10Tax = regexp.MustCompile(`(?i)内\s*10[%％][^\d\n]*\n?¥?([0-9,]+)[\)）\]｣]?`)
)

func scanMultilineInclusive(text string) []TaxBlock {
	var blocks []TaxBlock
	scanRate := func(sub, taxRe *regexp.Regexp, markers []string, incl, excl constants.TaxMode, label string) {
		m := sub.FindStringSubmatch(text)
		if m == nil {
			return
		}
		amount, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil || amount <= 10 {
			return
		}
		// Receipts print subtotal then tax under the same 内N% label, so a
		// second capture is the tax amount, not a duplicate subtotal.
		var taxOverride *int
		if all := taxRe.FindAllStringSubmatch(text, -1); len(all) > 1 {
			if v, err := strconv.Atoi(strings.ReplaceAll(all[1][1], ",", "")); err == nil {
				taxOverride = &v
			}
		}
		mode := excl
		for _, marker := range markers {
			if strings.Contains(text, marker) {
				mode = incl
				break
			}
		}
		blocks = append(blocks, TaxBlock{Mode: mode, Amount: amount, TaxOverride: taxOverride, Label: label, Source: m[0]})
	}
	scanRate(reIn8Sub, reIn8Tax, []string{"内8%", "内 8%"},
		constants.TaxModeInclusive8, constants.TaxModeExclusive8, "8%対象")
	scanRate(reIn10Sub, reIn10Tax, []string{"内10%", "内 10%"},
		constants.TaxModeInclusive10, constants.TaxModeExclusive10, "10%対象")
	return blocks
}

// --- strategy 4: footer "内8%（¥708）(税額¥52)" blocks ---

var (
	reBottom8  = regexp.MustCompile(`内[\s　]*8[%％][^\d]*(?:[¥\\]?([0-9,]+))[^\d]*(?:税額[\s　]*[¥\\]?([0-9,]+))?`)
	reBottom10 = regexp.MustCompile(`内[\s　]*10[%％][^\d]*(?:[¥\\]?([0-9,]+))[^\d]*(?:税額[\s　]*[¥\\]?([0-9,]+))?`)
)

func scanBottomBlocks(text string) []TaxBlock {
	inclusive := defaultInclusive(text)
	var blocks []TaxBlock
	scan := func(re *regexp.Regexp, incl, excl constants.TaxMode, label string) {
		m := re.FindStringSubmatch(text)
		if m == nil || m[1] == "" {
			return
		}
		amount, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil || amount == 0 {
			return
		}
		var taxOverride *int
		if m[2] != "" {
			if v, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", "")); err == nil {
				taxOverride = &v
			}
		}
		mode := excl
		if inclusive {
			mode = incl
		}
		blocks = append(blocks, TaxBlock{Mode: mode, Amount: amount, TaxOverride: taxOverride, Label: label, Source: m[0]})
	}
	scan(reBottom10, constants.TaxModeInclusive10, constants.TaxModeExclusive10, "10%対象")
	scan(reBottom8, constants.TaxModeInclusive8, constants.TaxModeExclusive8, "8%対象")
	return blocks
}

// --- strategy 5: per-line item aggregation when both rates are tagged ---

var (
	reHas10      = regexp.MustCompile(`10%|１０％|消費税.*10|税率.*10`)
	reHas8       = regexp.MustCompile(`8%|８％|消費税.*8|税率.*8`)
	reItemLine   = regexp.MustCompile(`[0-9,]+円.*[0-9]+[%％]`)
	reItemAmount = regexp.MustCompile(`([0-9,]+)円`)
	reItemRate8  = regexp.MustCompile(`8[%％]|８％`)
)

func scanLineItems(text string) []TaxBlock {
	if !reHas10.MatchString(text) || !reHas8.MatchString(text) {
		return nil
	}
	var total8, total10, count int
	for _, line := range strings.Split(text, "\n") {
		if !reItemLine.MatchString(line) {
			continue
		}
		m := reItemAmount.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		val, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		count++
		if reItemRate8.MatchString(line) {
			total8 += val
		} else {
			total10 += val
		}
	}
	if count <= 1 {
		return nil
	}
	inclusive := defaultInclusive(text)
	pick := func(incl, excl constants.TaxMode) constants.TaxMode {
		if inclusive {
			return incl
		}
		return excl
	}
	var blocks []TaxBlock
	if total10 > 0 {
		blocks = append(blocks, TaxBlock{
			Mode: pick(constants.TaxModeInclusive10, constants.TaxModeExclusive10), Amount: total10, Label: "10%対象",
		})
	}
	if total8 > 0 {
		blocks = append(blocks, TaxBlock{
			Mode: pick(constants.TaxModeInclusive8, constants.TaxModeExclusive8), Amount: total8, Label: "8%対象",
		})
	}
	return blocks
}

// extractOne resolves all fields of a single entry from the full text under
// one concrete (or auto) tax mode. Advisor failures degrade to rules; nothing
// here returns an error.
func (e *Engine) extractOne(ctx context.Context, text string, req Request, mode constants.TaxMode) Entry {
	lines := strings.Split(text, "\n")
	entry := Entry{OCRText: text}

	entry.Company = extractCompany(lines)
	entry.Date = extractDate(lines, e.now())
	periodHint := extractPeriodHint(text)

	// Amount: label-driven resolution cross-checked against the AI hint.
	var aiHint *int
	if e.advisor != nil {
		hint, err := e.advisor.GuessAmount(ctx, text)
		if err != nil {
			e.logger.Warn("extract.amount_hint_failed", "error", err)
		} else {
			aiHint = hint
		}
	}
	tax8, tax10 := bottomTaxOverrides(text)
	if amount := resolveAmount(lines, aiHint); amount != nil {
		if mode == constants.TaxModeAuto {
			mode = resolveAutoMode(text)
		}
		override := tax10
		if mode.Rate() == 0.08 {
			override = tax8
		}
		entry.Amount = strconv.Itoa(*amount)
		entry.Tax = strconv.Itoa(computeTax(*amount, mode, override))
	}

	// Description comes from the AI only; absence is a valid empty value.
	if e.advisor != nil {
		desc, err := e.advisor.GuessDescription(ctx, llm.DescriptionRequest{
			Text: text, PeriodHint: periodHint, ExtraPrompt: req.ExtraPrompt,
		})
		if err != nil {
			e.logger.Warn("extract.description_failed", "error", err)
		} else {
			entry.Description = desc
		}
	}

	// Account: AI first, rule tree otherwise. Never empty.
	var account string
	if e.advisor != nil {
		got, err := e.advisor.GuessAccount(ctx, llm.AccountRequest{
			Text: text, Stance: req.Stance, ExtraPrompt: req.ExtraPrompt, Corrections: req.Corrections,
		})
		if err != nil {
			e.logger.Warn("extract.account_guess_failed", "error", err)
		} else {
			account = got
		}
	}
	if account != "" {
		entry.Account = account
		entry.AccountSource = constants.AccountSourceAI
	} else {
		entry.Account = fallbackAccount(text, req.Stance)
		entry.AccountSource = constants.AccountSourceRule
	}
	return entry
}
