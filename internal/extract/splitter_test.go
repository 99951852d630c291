package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/llm"
)

// stubAdvisor returns canned guesses, or fails every call when err is set.
type stubAdvisor struct {
	account     string
	description string
	amount      *int
	err         error
}

func (s *stubAdvisor) GuessAccount(_ context.Context, _ llm.AccountRequest) (string, error) {
	return s.account, s.err
}

func (s *stubAdvisor) GuessDescription(_ context.Context, _ llm.DescriptionRequest) (string, error) {
	return s.description, s.err
}

func (s *stubAdvisor) GuessAmount(_ context.Context, _ string) (*int, error) {
	return s.amount, s.err
}

func TestExtractSingleReceipt(t *testing.T) {
	e := NewEngine(nil, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "株式会社テスト\n2024年1月15日\n合計 1,100円",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(entries))
	}
	got := entries[0]
	if got.Company != "株式会社テスト" {
		t.Errorf("Company = %q", got.Company)
	}
	if got.Date != "2024/01/15" {
		t.Errorf("Date = %q", got.Date)
	}
	if got.Amount != "1100" || got.Tax != "100" {
		t.Errorf("Amount/Tax = %s/%s, expected 1100/100", got.Amount, got.Tax)
	}
	if got.Account != "仮払金" || got.AccountSource != constants.AccountSourceRule {
		t.Errorf("Account = %s (%s), expected 仮払金 (rule)", got.Account, got.AccountSource)
	}
}

func TestExtractParenExclusiveSplit(t *testing.T) {
	e := NewEngine(nil, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "株式会社スーパー\n2024/03/05\n(外 8% 対象 ¥962)\n(外 10% 対象 ¥420)\n合計 1,496円",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 2 {
		t.Fatalf("got %d entries, expected 2", len(entries))
	}
	if entries[0].Amount != "962" || entries[0].Tax != "76" {
		t.Errorf("8%% block = %s/%s, expected 962/76", entries[0].Amount, entries[0].Tax)
	}
	if entries[1].Amount != "420" || entries[1].Tax != "42" {
		t.Errorf("10%% block = %s/%s, expected 420/42", entries[1].Amount, entries[1].Tax)
	}
	if entries[0].Description != "（8%対象）" || entries[1].Description != "（10%対象）" {
		t.Errorf("descriptions = %q, %q", entries[0].Description, entries[1].Description)
	}
}

func TestExtractLabeledBlocks(t *testing.T) {
	e := NewEngine(nil, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "領収書\n課税計(10%)\n¥1,000\n課税計(8%)\n¥500\n非課税計\n¥200",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(entries))
	}
	checks := []struct{ amount, tax, desc string }{
		{"1000", "100", "（課税仕入 10%）"},
		{"500", "40", "（課税仕入 8%）"},
		{"200", "0", "（非課税）"},
	}
	for i, c := range checks {
		if entries[i].Amount != c.amount || entries[i].Tax != c.tax || entries[i].Description != c.desc {
			t.Errorf("block %d = %s/%s %q, expected %s/%s %q",
				i, entries[i].Amount, entries[i].Tax, entries[i].Description, c.amount, c.tax, c.desc)
		}
	}
}

func TestExtractMultilineInclusive(t *testing.T) {
	e := NewEngine(nil, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "合計 ¥1,128\n内8%（¥708）\n内8% 税額（¥52）",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(entries))
	}
	if entries[0].Amount != "708" || entries[0].Tax != "52" {
		t.Errorf("got %s/%s, expected 708/52 (explicit 税額)", entries[0].Amount, entries[0].Tax)
	}
}

func TestExtractLineItemAggregation(t *testing.T) {
	e := NewEngine(nil, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "コーヒー 450円 8%\nノート 550円 10%",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 2 {
		t.Fatalf("got %d entries, expected 2", len(entries))
	}
	// 10% total first, then 8%; default convention is tax-in.
	if entries[0].Amount != "550" || entries[0].Tax != "50" {
		t.Errorf("10%% total = %s/%s, expected 550/50", entries[0].Amount, entries[0].Tax)
	}
	if entries[1].Amount != "450" || entries[1].Tax != "33" {
		t.Errorf("8%% total = %s/%s, expected 450/33", entries[1].Amount, entries[1].Tax)
	}
}

func TestExtractNoUsableEntry(t *testing.T) {
	e := NewEngine(nil, nil)
	entries := e.Extract(context.Background(), Request{Text: "メモのみ", Stance: constants.StanceReceived})
	if entries != nil {
		t.Errorf("got %d entries, expected none", len(entries))
	}
}

func TestExtractAdvisorFailureFallsBackToRules(t *testing.T) {
	adv := &stubAdvisor{err: errors.New("api down")}
	e := NewEngine(adv, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "タクシー利用\n合計 3,300円",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(entries))
	}
	if entries[0].Account != "旅費交通費" || entries[0].AccountSource != constants.AccountSourceRule {
		t.Errorf("Account = %s (%s), expected 旅費交通費 (rule)", entries[0].Account, entries[0].AccountSource)
	}
}

func TestExtractAdvisorResults(t *testing.T) {
	adv := &stubAdvisor{account: "会議費", description: "打合せ飲料", amount: intp(1100)}
	e := NewEngine(adv, nil)
	entries := e.Extract(context.Background(), Request{
		Text:   "株式会社カフェ\n合計 1,100円",
		Stance: constants.StanceReceived,
	})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(entries))
	}
	got := entries[0]
	if got.Account != "会議費" || got.AccountSource != constants.AccountSourceAI {
		t.Errorf("Account = %s (%s), expected 会議費 (AI)", got.Account, got.AccountSource)
	}
	if got.Description != "打合せ飲料" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Amount != "1100" {
		t.Errorf("Amount = %s, expected corroborated 1100", got.Amount)
	}
}
