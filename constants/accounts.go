package constants

// Stance distinguishes which side of the document we are booking from.
type Stance string

const (
	// StanceReceived: we received the invoice/receipt and book the expense side.
	StanceReceived Stance = "received"
	// StanceIssued: we issued the invoice and book the revenue side.
	StanceIssued Stance = "issued"
)

// AccountSource records how the 勘定科目 was decided.
type AccountSource string

const (
	AccountSourceAI   AccountSource = "AI"
	AccountSourceRule AccountSource = "ルール"
)

// AccountSuspense is the terminal fallback when no rule matches.
const AccountSuspense = "仮払金"

// ExpenseAccounts is the fixed expense-side (借方) vocabulary offered to the
// classifier for StanceReceived and used for debit/credit selection on export.
var ExpenseAccounts = []string{
	"研修費", "教育研修費", "旅費交通費", "通信費", "消耗品費", "会議費", "交際費",
	"広告宣伝費", "外注費", "支払手数料", "仮払金", "修繕費", "仕入高", "減価償却費",
}

// RevenueAccounts is the fixed revenue-side (貸方) vocabulary for StanceIssued.
var RevenueAccounts = []string{"売上高", "雑収入", "受取手形", "売掛金"}

func IsExpenseAccount(name string) bool {
	for _, a := range ExpenseAccounts {
		if a == name {
			return true
		}
	}
	return false
}

func IsRevenueAccount(name string) bool {
	for _, a := range RevenueAccounts {
		if a == name {
			return true
		}
	}
	return false
}

// AccountVocabulary returns the classifier vocabulary for a stance.
func AccountVocabulary(stance Stance) []string {
	if stance == StanceIssued {
		return RevenueAccounts
	}
	return ExpenseAccounts
}
