package review

import (
	"context"
	"strings"
	"testing"
)

func TestSQLiteSaveAndList(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer repo.Close()

	rev := &Review{
		OriginalText:     "タクシー 3,300円",
		AIAccount:        "仮払金",
		CorrectedAccount: "旅費交通費",
		Comments:         "移動費",
	}
	if err := repo.Save(ctx, rev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rev.ID == "" {
		t.Error("Save must assign an ID")
	}
	if !rev.IsCorrected {
		t.Error("differing accounts must mark the review corrected")
	}

	accepted := &Review{OriginalText: "コーヒー 450円", AIAccount: "会議費", CorrectedAccount: "会議費"}
	if err := repo.Save(ctx, accepted); err != nil {
		t.Fatalf("Save accepted: %v", err)
	}
	if accepted.IsCorrected {
		t.Error("matching accounts must not mark the review corrected")
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reviews, expected 2", len(got))
	}
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer repo.Close()

	csvData := strings.Join([]string{
		"original_text,ai_journal,corrected_journal,comments",
		"タクシー 3300円,仮払金,旅費交通費,移動",
		",,,",
		"コーヒー 450円,会議費,,",
	}, "\n")

	result, err := ImportCSV(ctx, repo, strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if result.Saved != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, expected 2 saved / 1 skipped", result)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reviews, expected 2", len(got))
	}
}

func TestImportCSVSynthesizesText(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer repo.Close()

	csvData := strings.Join([]string{
		"original_text,ai_journal,corrected_journal,company,amount,account",
		",,通信費,株式会社テスト,5500,通信費",
	}, "\n")

	result, err := ImportCSV(ctx, repo, strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if result.Saved != 1 {
		t.Fatalf("result = %+v, expected 1 saved", result)
	}
	got, _ := repo.List(ctx)
	if !strings.Contains(got[0].OriginalText, "company:株式会社テスト") {
		t.Errorf("synthesized text = %q", got[0].OriginalText)
	}
}
