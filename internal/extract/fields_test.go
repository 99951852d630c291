package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/ryo-ito/shiwakegen/constants"
)

func TestExtractCompany(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"kabushiki", "株式会社テスト\n領収書", "株式会社テスト"},
		{"honorific stripped", "株式会社サンプル 御中\n請求書", "株式会社サンプル"},
		{"sama stripped", "有限会社ヤマダ様", "有限会社ヤマダ"},
		{"period prefix stripped", "4月分ご請求 株式会社アオイ", "株式会社アオイ"},
		{"first entity line wins", "領収書\n合同会社ミドリ\n株式会社アカ", "合同会社ミドリ"},
		{"bare token discarded", "株式会社\n領収書", ""},
		{"no entity", "領収書\n合計 1,100円", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCompany(strings.Split(tt.text, "\n"))
			if got != tt.expected {
				t.Errorf("extractCompany(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"kanji date", "2024年1月15日", "2024/01/15"},
		{"slash date", "2024/01/15", "2024/01/15"},
		{"dash date", "2024-1-5", "2024/01/05"},
		{"month day assumes current year", "1月15日 お買上げ", "2026/01/15"},
		{"phone line skipped", "TEL 03-1234-5678\n2024年2月3日", "2024/02/03"},
		{"receipt number skipped", "No.20240115\n2024年1月15日", "2024/01/15"},
		{"full date beats month day", "1月1日\n2024年12月31日", "2024/12/31"},
		{"nothing", "領収書", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDate(strings.Split(tt.text, "\n"), now)
			if got != tt.expected {
				t.Errorf("extractDate(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractPeriodHint(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"4月分ご請求", "4月分"},
		{"上期分まとめ", "上期分"},
		{"合計 1,100円", ""},
	}
	for _, tt := range tests {
		if got := extractPeriodHint(tt.text); got != tt.expected {
			t.Errorf("extractPeriodHint(%q) = %q, expected %q", tt.text, got, tt.expected)
		}
	}
}

func TestFallbackAccount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		stance   constants.Stance
		expected string
	}{
		{"beverage received", "コーヒー 450円", constants.StanceReceived, "会議費"},
		{"beverage wins even when issued", "お弁当の請求書", constants.StanceIssued, "会議費"},
		{"issued sales", "請求書 ご請求金額", constants.StanceIssued, "売上高"},
		{"issued misc income", "雑収入のお知らせ", constants.StanceIssued, "雑収入"},
		{"training", "研修のご案内", constants.StanceReceived, "研修費"},
		{"transport", "タクシー利用", constants.StanceReceived, "旅費交通費"},
		{"telecom", "電話料金", constants.StanceReceived, "通信費"},
		{"supplies", "文具一式", constants.StanceReceived, "消耗品費"},
		{"suspense default", "領収書", constants.StanceReceived, "仮払金"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackAccount(tt.text, tt.stance)
			if got != tt.expected {
				t.Errorf("fallbackAccount(%q, %s) = %q, expected %q", tt.text, tt.stance, got, tt.expected)
			}
		})
	}
}
