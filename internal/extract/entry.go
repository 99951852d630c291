// Package extract turns normalized receipt text into journal-entry records.
// It is the deterministic heart of the system: amount/tax resolution, field
// extraction, and the mixed-tax-rate splitter all live here.
package extract

import (
	"math"

	"github.com/ryo-ito/shiwakegen/constants"
)

// Entry is the resolved output record for one journal line. It is a pure
// value: created once here, then consumed read-only by exporters and review
// storage. Fields stay string-encoded because "unknown" is a legitimate value
// for most of them and downstream layers must render exactly what was
// resolved, not a zero.
type Entry struct {
	Company       string                  // 取引先; possibly empty
	Date          string                  // "YYYY/MM/DD"; possibly empty
	Amount        string                  // integer yen; possibly empty
	Tax           string                  // integer yen; non-empty whenever Amount is
	Description   string                  // 摘要
	Account       string                  // 勘定科目; never empty
	AccountSource constants.AccountSource // AI or ルール
	OCRText       string                  // full normalized text, kept for tax-category re-derivation
}

// computeTax derives the consumption tax for an amount under a concrete mode.
// An explicit override (a 税額 figure printed on the receipt) wins over the
// formula. Inclusive: amount - round(amount/(1+r)). Exclusive: trunc(amount*r),
// matching how receipts themselves truncate the added tax.
func computeTax(amount int, mode constants.TaxMode, override *int) int {
	if override != nil {
		return *override
	}
	if mode == constants.TaxModeExempt {
		return 0
	}
	r := mode.Rate()
	if r == 0 {
		return 0
	}
	if mode.Inclusive() {
		return amount - int(math.Round(float64(amount)/(1+r)))
	}
	return int(float64(amount) * r)
}
