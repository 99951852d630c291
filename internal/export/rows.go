// Package export renders extracted journal entries into the row layouts the
// downstream accounting tools import: a generic review sheet, MoneyForward
// journal CSV, and the two freee formats (manual journal and 取引 import).
package export

import (
	"strconv"
	"strings"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/extract"
)

var GenericColumns = []string{"取引日", "勘定科目", "推測方法", "金額", "消費税", "取引先", "摘要"}

var MFColumns = []string{
	"取引No", "取引日", "借方勘定科目", "借方補助科目", "借方部門", "借方取引先", "借方税区分", "借方インボイス", "借方金額(円)", "借方税額",
	"貸方勘定科目", "貸方補助科目", "貸方部門", "貸方取引先", "貸方税区分", "貸方インボイス", "貸方金額(円)", "貸方税額",
	"摘要", "仕訳メモ", "タグ", "MF仕訳タイプ", "決算整理仕訳", "作成日時", "作成者", "最終更新日時", "最終更新者",
}

var FreeeColumns = []string{
	"[表題行]", "日付", "伝票番号", "決算整理仕訳",
	"借方勘定科目", "借方科目コード", "借方補助科目", "借方取引先", "借方取引先コード", "借方部門", "借方品目", "借方メモタグ",
	"借方セグメント1", "借方セグメント2", "借方セグメント3", "借方金額", "借方税区分", "借方税額",
	"貸方勘定科目", "貸方科目コード", "貸方補助科目", "貸方取引先", "貸方取引先コード", "貸方部門", "貸方品目", "貸方メモタグ",
	"貸方セグメント1", "貸方セグメント2", "貸方セグメント3", "貸方金額", "貸方税区分", "貸方税額", "摘要",
}

var FreeeImportColumns = []string{
	"収支区分", "管理番号", "発生日", "決済期日", "取引先コード", "取引先", "勘定科目", "税区分", "金額",
	"税計算区分", "税額", "備考", "品目", "部門", "メモタグ（複数指定可、カンマ区切り）",
	"セグメント1", "セグメント2", "セグメント3", "決済日", "決済口座", "決済金額",
}

// GenericRow is the plain review layout, one column per extracted field.
func GenericRow(e extract.Entry) []string {
	return []string{e.Date, e.Account, string(e.AccountSource), e.Amount, e.Tax, e.Company, e.Description}
}

// postingSides resolves the double-entry sides from the account. Cash is the
// counter account; unknown accounts are treated as expenses.
func postingSides(account string) (debit, credit string, stance constants.Stance) {
	switch {
	case constants.IsRevenueAccount(account):
		return "現金", account, constants.StanceIssued
	default:
		return account, "現金", constants.StanceReceived
	}
}

func amountValue(e extract.Entry) int {
	v, err := strconv.Atoi(e.Amount)
	if err != nil {
		return 0
	}
	return v
}

// mfTaxCategory derives the MoneyForward 税区分 from the receipt text. The
// 消費税 word counts as a 10% signal, which matches how these receipts are
// printed in practice.
func mfTaxCategory(text, account string) string {
	sales := strings.Contains(account, "売上")
	var rate string
	switch {
	case strings.Contains(text, "10%") || strings.Contains(text, "消費税"):
		rate = " 10%"
	case strings.Contains(text, "8%"):
		rate = " 8%"
	case strings.Contains(text, "非課税"):
		return "非課税"
	case strings.Contains(text, "免税"):
		return "免税"
	default:
		return "対象外"
	}
	if sales {
		return "課税売上" + rate
	}
	return "課税仕入" + rate
}

// MFRow builds one MoneyForward journal line. The タグ column records whether
// the account came from the AI or the rule fallback.
func MFRow(e extract.Entry) []string {
	amount := strconv.Itoa(amountValue(e))
	debit, credit, _ := postingSides(e.Account)

	tag := "ルール推測"
	if e.AccountSource == constants.AccountSourceAI {
		tag = "AI推測"
	}
	debitTax := mfTaxCategory(e.OCRText, e.Account)
	creditTax := mfTaxCategory(e.OCRText, e.Account)

	row := []string{
		"", e.Date,
		debit, "", "", "", debitTax, "", amount, e.Tax,
		credit, "", "", "", creditTax, "", amount, "0",
		e.Description, "", tag, "", "", "", "", "", "",
	}
	return pad(row, len(MFColumns))
}

// rateFromDescription picks the tax rate the splitter annotated on the entry.
func rateFromDescription(desc string) string {
	switch {
	case strings.Contains(desc, "10%") || strings.Contains(desc, "１０％"):
		return "10%"
	case strings.Contains(desc, "8%") || strings.Contains(desc, "８％"):
		return "8%"
	case strings.Contains(desc, "5%") || strings.Contains(desc, "５％"):
		return "5%"
	}
	return ""
}

func freeeTaxCategory(e extract.Entry, stance constants.Stance) string {
	desc := e.Description
	switch {
	case strings.Contains(desc, "非課税"):
		return "非課税"
	case strings.Contains(desc, "対象外"):
		return "対象外"
	case strings.Contains(desc, "免税"):
		return "免税"
	case strings.Contains(desc, "不課税"):
		return "不課税"
	}
	rate := rateFromDescription(desc)
	if rate == "" {
		rate = "10%"
	}
	if stance == constants.StanceIssued {
		return "課税売上" + rate
	}
	return "課税仕入" + rate
}

// FreeeRow builds one line of the freee manual-journal (仕訳形式) CSV.
func FreeeRow(e extract.Entry) []string {
	amount := strconv.Itoa(amountValue(e))
	debit, credit, stance := postingSides(e.Account)

	row := []string{
		"仕訳", e.Date, "", "",
		debit, "", "", "", "", "", "", "", "", "", "",
		amount, freeeTaxCategory(e, stance), e.Tax,
		credit, "", "", "", "", "", "", "", "", "", "",
		amount, "", "",
		e.Description,
	}
	return pad(row, len(FreeeColumns))
}

func freeeImportTaxCategory(e extract.Entry, stance constants.Stance) string {
	desc := e.Description
	switch {
	case strings.Contains(desc, "非課税"):
		return "非課税"
	case strings.Contains(desc, "対象外"):
		return "対象外"
	case strings.Contains(desc, "免税"):
		return "免税"
	case strings.Contains(desc, "不課税"):
		return "不課税"
	}
	reduced := strings.Contains(desc, "軽") || strings.Contains(desc, "8%") || strings.Contains(desc, "８％")
	deduct80 := strings.Contains(desc, "控80")
	if stance == constants.StanceIssued {
		if reduced {
			return "課税売上8%（軽）"
		}
		return "課税売上10%"
	}
	switch {
	case deduct80 && reduced:
		return "課対仕入（控80）8%（軽）"
	case deduct80:
		return "課対仕入（控80）10%"
	case reduced:
		return "課対仕入8%（軽）"
	default:
		return "課対仕入10%"
	}
}

func freeeImportTaxCalcMode(desc string) string {
	switch {
	case strings.Contains(desc, "内税"):
		return "内税"
	case strings.Contains(desc, "外税"):
		return "外税"
	case strings.Contains(desc, "非課税"):
		return "非課税"
	case strings.Contains(desc, "対象外"):
		return "対象外"
	}
	return "内税"
}

// FreeeImportRow builds one line of the freee 取引インポート CSV.
func FreeeImportRow(e extract.Entry) []string {
	amount := strconv.Itoa(amountValue(e))
	_, _, stance := postingSides(e.Account)

	incomeExpense := "支出"
	if stance == constants.StanceIssued {
		incomeExpense = "収入"
	}

	row := []string{
		incomeExpense, "", e.Date, "", "", e.Company, e.Account, freeeImportTaxCategory(e, stance), amount,
		freeeImportTaxCalcMode(e.Description), e.Tax, e.Description, "", "", "", "", "", "", "", "", "",
	}
	return pad(row, len(FreeeImportColumns))
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row[:n]
}
