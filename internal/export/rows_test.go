package export

import (
	"testing"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/extract"
)

var expenseEntry = extract.Entry{
	Company:       "株式会社カフェ",
	Date:          "2024/01/15",
	Amount:        "1100",
	Tax:           "100",
	Description:   "打合せ飲料（10%対象）",
	Account:       "会議費",
	AccountSource: constants.AccountSourceAI,
	OCRText:       "株式会社カフェ 2024年1月15日 合計 1,100円 内消費税 100円",
}

var revenueEntry = extract.Entry{
	Company:       "株式会社クライアント",
	Date:          "2024/02/01",
	Amount:        "55000",
	Tax:           "5000",
	Description:   "2月分請求",
	Account:       "売上高",
	AccountSource: constants.AccountSourceRule,
	OCRText:       "請求書 ご請求金額 55,000円 消費税 5,000円",
}

func TestGenericRow(t *testing.T) {
	got := GenericRow(expenseEntry)
	want := []string{"2024/01/15", "会議費", "AI", "1100", "100", "株式会社カフェ", "打合せ飲料（10%対象）"}
	if len(got) != len(GenericColumns) {
		t.Fatalf("row has %d columns, expected %d", len(got), len(GenericColumns))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("col %s = %q, expected %q", GenericColumns[i], got[i], want[i])
		}
	}
}

func TestMFRowExpense(t *testing.T) {
	got := MFRow(expenseEntry)
	if len(got) != len(MFColumns) {
		t.Fatalf("row has %d columns, expected %d", len(got), len(MFColumns))
	}
	checks := map[string]string{
		"取引日":    "2024/01/15",
		"借方勘定科目": "会議費",
		"借方税区分":  "課税仕入 10%",
		"借方金額(円)": "1100",
		"借方税額":   "100",
		"貸方勘定科目": "現金",
		"貸方金額(円)": "1100",
		"貸方税額":   "0",
		"摘要":     "打合せ飲料（10%対象）",
		"タグ":     "AI推測",
	}
	assertColumns(t, MFColumns, got, checks)
}

func TestMFRowRevenue(t *testing.T) {
	got := MFRow(revenueEntry)
	checks := map[string]string{
		"借方勘定科目": "現金",
		"貸方勘定科目": "売上高",
		"借方税区分":  "課税売上 10%", // 消費税 in the text counts as a 10% signal
		"タグ":     "ルール推測",
	}
	assertColumns(t, MFColumns, got, checks)
}

func TestFreeeRow(t *testing.T) {
	got := FreeeRow(expenseEntry)
	if len(got) != len(FreeeColumns) {
		t.Fatalf("row has %d columns, expected %d", len(got), len(FreeeColumns))
	}
	checks := map[string]string{
		"[表題行]":  "仕訳",
		"日付":     "2024/01/15",
		"借方勘定科目": "会議費",
		"借方金額":   "1100",
		"借方税区分":  "課税仕入10%",
		"借方税額":   "100",
		"貸方勘定科目": "現金",
		"貸方金額":   "1100",
		"貸方税区分":  "",
		"摘要":     "打合せ飲料（10%対象）",
	}
	assertColumns(t, FreeeColumns, got, checks)
}

func TestFreeeImportRowExpense(t *testing.T) {
	got := FreeeImportRow(expenseEntry)
	if len(got) != len(FreeeImportColumns) {
		t.Fatalf("row has %d columns, expected %d", len(got), len(FreeeImportColumns))
	}
	checks := map[string]string{
		"収支区分":  "支出",
		"発生日":   "2024/01/15",
		"取引先":   "株式会社カフェ",
		"勘定科目":  "会議費",
		"税区分":   "課対仕入10%",
		"金額":    "1100",
		"税計算区分": "内税",
		"税額":    "100",
		"備考":    "打合せ飲料（10%対象）",
	}
	assertColumns(t, FreeeImportColumns, got, checks)
}

func TestFreeeImportRowReducedRate(t *testing.T) {
	e := expenseEntry
	e.Description = "軽減対象（8%対象）"
	got := FreeeImportRow(e)
	checks := map[string]string{
		"税区分": "課対仕入8%（軽）",
	}
	assertColumns(t, FreeeImportColumns, got, checks)
}

func TestFreeeImportRowRevenue(t *testing.T) {
	got := FreeeImportRow(revenueEntry)
	checks := map[string]string{
		"収支区分": "収入",
		"税区分":  "課税売上10%",
	}
	assertColumns(t, FreeeImportColumns, got, checks)
}

func assertColumns(t *testing.T, columns, row []string, checks map[string]string) {
	t.Helper()
	index := map[string]int{}
	for i, c := range columns {
		index[c] = i
	}
	for col, want := range checks {
		i, ok := index[col]
		if !ok {
			t.Fatalf("unknown column %q", col)
		}
		if row[i] != want {
			t.Errorf("col %s = %q, expected %q", col, row[i], want)
		}
	}
}
