package llm

import (
	"fmt"
	"strings"

	"github.com/ryo-ito/shiwakegen/constants"
)

// The prompts are Japanese by design: the documents are Japanese receipts and
// the answers must come back in the fixed Japanese account vocabulary. Each
// builder returns (system, user) message contents for a chat/completions call
// whose answer contract is a single line of plain text.

const (
	stancePromptReceived = "あなたは請求書を受領した側（費用計上側）の経理担当者です。費用・仕入・販管費に該当する勘定科目のみを選んでください。"
	stancePromptIssued   = "あなたは請求書を発行した側（売上計上側）の経理担当者です。売上・収入に該当する勘定科目のみを選んでください。"
)

// BuildAccountPrompt composes the stance-specific classification prompt with
// the fixed vocabulary, few-shot examples, the receipt text, and optional
// learning hints from past corrections.
func BuildAccountPrompt(req AccountRequest) (system, user string) {
	if req.Stance == constants.StanceIssued {
		system = stancePromptIssued
	} else {
		system = stancePromptReceived
	}
	vocabulary := strings.Join(constants.AccountVocabulary(req.Stance), "、")

	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n以下のテキストは領収書や請求書から抽出されたものです。\n")
	b.WriteString("必ず下記の勘定科目リストから最も適切なものを1つだけ日本語で出力してください。\n")
	b.WriteString("\n【勘定科目リスト】\n" + vocabulary + "\n")
	b.WriteString("\n摘要や商品名・サービス名・講義名をそのまま勘定科目にしないでください。\n")
	b.WriteString("たとえば『SNS講義費』や『○○セミナー費』などは『研修費』や『教育研修費』に分類してください。\n")
	b.WriteString("分からない場合は必ず『仮払金』と出力してください。\n")
	b.WriteString("\n※『レターパック』『切手』『郵便』『ゆうパック』『ゆうメール』『ゆうパケット』『スマートレター』『ミニレター』など郵便・配送サービスに該当する場合は必ず『通信費』としてください。\n")
	b.WriteString("※『飲料』『食品』『お菓子』『ペットボトル』『弁当』『パン』『コーヒー』『お茶』『水』『ジュース』など飲食物や軽食・会議用の食べ物・飲み物が含まれる場合は、会議費または消耗品費を優先してください。\n")
	b.WriteString("\n【良い例】\n")
	b.WriteString("テキスト: SNS講義費 10,000円\n→ 勘定科目：研修費\n")
	b.WriteString("テキスト: レターパックプラス 1,200円\n→ 勘定科目：通信費\n")
	b.WriteString("テキスト: ペットボトル飲料・お菓子 2,000円\n→ 勘定科目：会議費\n")
	b.WriteString("テキスト: 食品・飲料・パン 1,500円\n→ 勘定科目：消耗品費\n")
	b.WriteString("\n【悪い例】\n")
	b.WriteString("テキスト: SNS講義費 10,000円\n→ 勘定科目：SNS講義費（×）\n")
	b.WriteString("テキスト: レターパックプラス 1,200円\n→ 勘定科目：広告宣伝費（×）\n")
	b.WriteString(fmt.Sprintf("\n【テキスト】\n%s\n\n勘定科目：", req.Text))
	if hint := buildLearningHint(req.Corrections); hint != "" {
		b.WriteString(hint)
	}
	if req.ExtraPrompt != "" {
		b.WriteString("\n【追加指示】\n" + req.ExtraPrompt)
	}
	return system, b.String()
}

// buildLearningHint renders pre-fetched reviewer corrections as a reference
// section. At most three are included; more adds noise, not signal.
func buildLearningHint(corrections []Correction) string {
	if len(corrections) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n【過去の修正例（参考）】\n")
	for i, c := range corrections {
		if i == 3 {
			break
		}
		excerpt := c.Text
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		b.WriteString(fmt.Sprintf("%d. 元テキスト: %s\n修正後の勘定科目: %s\n", i+1, excerpt, c.Account))
	}
	b.WriteString("上記の修正例を参考に、より適切な勘定科目を選択してください。")
	return b.String()
}

// BuildDescriptionPrompt composes the 摘要 generation prompt.
func BuildDescriptionPrompt(req DescriptionRequest) (system, user string) {
	system = "あなたは日本の会計仕訳に詳しい経理担当者です。摘要欄には用途や内容が分かる日本語を簡潔に記載してください。"

	periodInstruction := ""
	if req.PeriodHint != "" {
		periodInstruction = fmt.Sprintf("\nこの請求書には『%s』という期間情報が記載されています。摘要には必ずこの情報を含めてください。", req.PeriodHint)
	}
	var b strings.Builder
	b.WriteString("あなたは日本の会計実務に詳しい経理担当者です。\n")
	b.WriteString("以下のテキストは領収書や請求書から抽出されたものです。\n")
	b.WriteString("摘要欄には、何に使ったか・サービス名・講義名など、領収書から読み取れる具体的な用途や内容を20文字以内で簡潔に日本語で記載してください。\n")
	b.WriteString("金額や『消費税』などの単語だけを摘要にしないでください。\n")
	b.WriteString("また、『x月分』『上期分』『下期分』などの期間情報があれば必ず摘要に含めてください。")
	b.WriteString(periodInstruction)
	b.WriteString("\n【良い例】\n")
	b.WriteString("テキスト: 4月分PR報酬 交通費 1,000円 タクシー利用\n→ 摘要：4月分PR報酬 タクシー移動\n")
	b.WriteString("\n【悪い例】\n")
	b.WriteString("テキスト: 4月分PR報酬 交通費 1,000円 タクシー利用\n→ 摘要：1,000円（×）\n")
	b.WriteString(fmt.Sprintf("\n【テキスト】\n%s\n\n摘要：", req.Text))
	if req.ExtraPrompt != "" {
		b.WriteString("\n【追加指示】\n" + req.ExtraPrompt)
	}
	return system, b.String()
}

// BuildAmountPrompt composes the total-amount cross-check prompt.
func BuildAmountPrompt(text string) (system, user string) {
	system = "あなたは日本の会計実務に詳しい経理担当者です。請求書や領収書から合計金額を正確に抽出してください。"

	var b strings.Builder
	b.WriteString("以下は日本の請求書や領収書から抽出したテキストです。")
	b.WriteString("この請求書の合計金額（支払金額、税込）を数字のみで出力してください。")
	b.WriteString("絶対に口座番号・登録番号・電話番号・振込先・連絡先・TEL・No.などの数字や、10桁以上の数字、カンマ区切りでない長い数字は金額として出力しないでください。")
	b.WriteString("合計金額は『合計』『小計』『ご請求金額』『請求金額』『総額』『現金支払額』などのラベルの直後に記載されていることが多いです。")
	b.WriteString("金額のカンマやスペース、改行が混じっていても正しい合計金額（例：1,140円）を抽出してください。")
	b.WriteString("『お預り』『お預かり』『お釣り』『現金』などのラベルが付いた金額は絶対に選ばないでください。")
	b.WriteString("複数の金額がある場合は、合計・総額などのラベル付きで最も下にあるものを選んでください。")
	b.WriteString("分からない場合は空欄で出力してください。")
	b.WriteString("\n【良い例】\nテキスト: 合計 ¥1, 140\n→ 1140\nテキスト: 合計 18,000円 振込先: 2688210\n→ 18000\n")
	b.WriteString("【悪い例】\nテキスト: 合計 ¥1, 140\n→ 1（×）や140（×）\nテキスト: 合計 18,000円 振込先: 2688210\n→ 2688210（×）")
	b.WriteString(fmt.Sprintf("\n\nテキスト:\n%s\n\n合計金額：", text))
	return system, b.String()
}
