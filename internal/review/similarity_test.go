package review

import "testing"

func TestFindSimilar(t *testing.T) {
	reviews := []Review{
		{
			ID:               "1",
			OriginalText:     "株式会社カフェ コーヒー 450円 会議費として処理",
			AIAccount:        "仮払金",
			CorrectedAccount: "会議費",
			IsCorrected:      true,
		},
		{
			ID:               "2",
			OriginalText:     "タクシー 3,300円 移動",
			AIAccount:        "仮払金",
			CorrectedAccount: "旅費交通費",
			IsCorrected:      true,
		},
		{
			ID:               "3",
			OriginalText:     "株式会社カフェ コーヒー 480円",
			AIAccount:        "会議費",
			CorrectedAccount: "会議費",
			IsCorrected:      false, // accepted guesses are not correction examples
		},
	}

	got := FindSimilar("株式会社カフェ コーヒー 450円 打合せ", reviews, 5)
	if len(got) == 0 {
		t.Fatal("expected at least one similar review")
	}
	if got[0].ID != "1" {
		t.Errorf("best match ID = %s, expected 1", got[0].ID)
	}
	for _, r := range got {
		if r.ID == "3" {
			t.Error("uncorrected review must not be returned")
		}
	}
}

func TestFindSimilarNoMatch(t *testing.T) {
	reviews := []Review{
		{ID: "1", OriginalText: "タクシー 3,300円", CorrectedAccount: "旅費交通費", IsCorrected: true},
	}
	got := FindSimilar("全く関係のない内容です", reviews, 5)
	if len(got) != 0 {
		t.Errorf("got %d reviews, expected none below threshold", len(got))
	}
}

func TestCorrections(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'あ'
	}
	reviews := []Review{
		{OriginalText: string(long), CorrectedAccount: "会議費"},
		{OriginalText: "二件目", CorrectedAccount: "通信費"},
		{OriginalText: "三件目", CorrectedAccount: "消耗品費"},
		{OriginalText: "四件目", CorrectedAccount: "研修費"},
		{OriginalText: "科目なし", CorrectedAccount: ""},
	}

	got := Corrections(reviews)
	if len(got) != 3 {
		t.Fatalf("got %d corrections, expected cap of 3", len(got))
	}
	if n := len([]rune(got[0].Text)); n != 200 {
		t.Errorf("first hint text length = %d runes, expected truncation to 200", n)
	}
	if got[1].Account != "通信費" {
		t.Errorf("second hint account = %s", got[1].Account)
	}
}
