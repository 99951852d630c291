package review

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ryo-ito/shiwakegen/internal/llm"
)

const (
	similarityThreshold = 0.3
	maxHints            = 3
	hintTextLimit       = 200
)

var (
	reFeatureAmount = regexp.MustCompile(`\d{1,3}(?:,\d{3})*円`)

	companyMarkers = []string{"株式会社", "有限会社", "合同会社", "サービス", "事務所", "センター"}
)

type features struct {
	keywords  map[string]struct{}
	amounts   []int
	companies map[string]struct{}
}

func extractFeatures(text string) features {
	f := features{
		keywords:  map[string]struct{}{},
		companies: map[string]struct{}{},
	}
	for _, m := range reFeatureAmount.FindAllString(text, -1) {
		s := strings.TrimSuffix(strings.ReplaceAll(m, ",", ""), "円")
		if v, err := strconv.Atoi(s); err == nil {
			f.amounts = append(f.amounts, v)
		}
	}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(w)) > 2 {
			f.keywords[w] = struct{}{}
		}
	}
	for _, marker := range companyMarkers {
		if strings.Contains(text, marker) {
			f.companies[marker] = struct{}{}
		}
	}
	return f
}

// similarity blends keyword overlap (Jaccard), amount proximity, and
// legal-entity marker overlap, weighted 0.5/0.3/0.2.
func similarity(a, b features) float64 {
	keyword := jaccard(a.keywords, b.keywords)

	var amount float64
	if len(a.amounts) > 0 && len(b.amounts) > 0 {
		avgA := mean(a.amounts)
		avgB := mean(b.amounts)
		if max := maxf(avgA, avgB); max > 0 {
			diff := absf(avgA-avgB) / max
			if diff > 1 {
				diff = 1
			}
			amount = 1 - diff
		}
	}

	company := jaccard(a.companies, b.companies)

	return keyword*0.5 + amount*0.3 + company*0.2
}

// FindSimilar returns corrected reviews whose text resembles the query,
// best first, above the similarity threshold.
func FindSimilar(text string, reviews []Review, limit int) []Review {
	if limit <= 0 {
		limit = 5
	}
	query := extractFeatures(text)

	type scored struct {
		score  float64
		review Review
	}
	var hits []scored
	for _, r := range reviews {
		if !r.IsCorrected {
			continue
		}
		score := similarity(query, extractFeatures(r.OriginalText))
		if score > similarityThreshold {
			hits = append(hits, scored{score, r})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Review, len(hits))
	for i, h := range hits {
		out[i] = h.review
	}
	return out
}

// Corrections converts similar reviews into prompt hints, capped and with
// the source text truncated so a long receipt cannot flood the prompt.
func Corrections(reviews []Review) []llm.Correction {
	var out []llm.Correction
	for _, r := range reviews {
		if r.CorrectedAccount == "" {
			continue
		}
		text := r.OriginalText
		if runes := []rune(text); len(runes) > hintTextLimit {
			text = string(runes[:hintTextLimit])
		}
		out = append(out, llm.Correction{Text: text, Account: r.CorrectedAccount})
		if len(out) == maxHints {
			break
		}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var overlap int
	for k := range a {
		if _, ok := b[k]; ok {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

func mean(vals []int) float64 {
	var sum int
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
