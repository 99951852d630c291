package constants

// TaxMode is the caller-facing tax handling selection. The Japanese values are
// stable: they round-trip through the UI layer and appear in export labels.
type TaxMode string

const (
	TaxModeAuto        TaxMode = "自動判定"
	TaxModeInclusive10 TaxMode = "内税10%"
	TaxModeExclusive10 TaxMode = "外税10%"
	TaxModeInclusive8  TaxMode = "内税8%"
	TaxModeExclusive8  TaxMode = "外税8%"
	TaxModeExempt      TaxMode = "非課税"
)

// Rate returns the consumption-tax rate for the mode, or 0 for 非課税/自動判定.
func (m TaxMode) Rate() float64 {
	switch m {
	case TaxModeInclusive10, TaxModeExclusive10:
		return 0.10
	case TaxModeInclusive8, TaxModeExclusive8:
		return 0.08
	}
	return 0
}

// Inclusive reports whether the mode treats amounts as tax-included.
func (m TaxMode) Inclusive() bool {
	return m == TaxModeInclusive10 || m == TaxModeInclusive8
}
