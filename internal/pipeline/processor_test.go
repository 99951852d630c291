package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/extract"
	"github.com/ryo-ito/shiwakegen/internal/ocr"
)

const receiptText = "株式会社テスト 御中\n2024年1月15日\nご請求金額 合計 1,100円\nいつもありがとうございます"

type fakeSource struct {
	text string
	err  error
}

func (f *fakeSource) Extract(_ context.Context, _ string) (ocr.Result, error) {
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.text, Pages: 1, Method: "pdf-text"}, nil
}

func newProcessor(src TextSource) *Processor {
	return NewProcessor(src, extract.NewEngine(nil, nil), nil, 0, nil)
}

func TestProcessFileOK(t *testing.T) {
	p := newProcessor(&fakeSource{text: receiptText})
	res := p.ProcessFile(context.Background(), "r.pdf", Options{Stance: constants.StanceReceived})
	if res.Outcome != OutcomeOK {
		t.Fatalf("outcome = %s (err %v), expected ok", res.Outcome, res.Err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(res.Entries))
	}
	if res.Entries[0].Amount != "1100" {
		t.Errorf("amount = %s, expected 1100", res.Entries[0].Amount)
	}
}

func TestProcessFileAcquireError(t *testing.T) {
	p := newProcessor(&fakeSource{err: errors.New("no such file")})
	res := p.ProcessFile(context.Background(), "missing.pdf", Options{})
	if res.Outcome != OutcomeError || res.Err == nil {
		t.Errorf("outcome = %s err = %v, expected error outcome", res.Outcome, res.Err)
	}
}

func TestProcessFileInsufficientText(t *testing.T) {
	p := newProcessor(&fakeSource{text: "短い"})
	res := p.ProcessFile(context.Background(), "scan.pdf", Options{})
	if res.Outcome != OutcomeInsufficientText {
		t.Errorf("outcome = %s, expected insufficient_text", res.Outcome)
	}
}

func TestProcessFileNoEntries(t *testing.T) {
	// long enough and Japanese, but carries no usable amount
	text := "これは領収書ではないただのメモ書きです 2024年1月のお知らせ 金額のない文章が続きます"
	p := newProcessor(&fakeSource{text: text})
	res := p.ProcessFile(context.Background(), "memo.pdf", Options{Stance: constants.StanceReceived})
	if res.Outcome != OutcomeNoEntries {
		t.Errorf("outcome = %s, expected no_entries", res.Outcome)
	}
}

func TestQueueProcessesAllJobs(t *testing.T) {
	p := newProcessor(&fakeSource{text: receiptText})

	var mu sync.Mutex
	var results []FileResult
	q := NewQueue(p, func(r FileResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}, nil, WithWorkers(2), WithQueueSize(8))

	ctx := context.Background()
	for _, path := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := q.Enqueue(ctx, Job{Path: path, Opts: Options{Stance: constants.StanceReceived}}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	q.Shutdown(ctx)

	if len(results) != 3 {
		t.Fatalf("got %d results, expected 3", len(results))
	}
	for _, r := range results {
		if r.Outcome != OutcomeOK {
			t.Errorf("%s outcome = %s", r.Path, r.Outcome)
		}
	}
}
