package recommend

import (
	"math"
	"sort"
)

// Normalize min-max scales RawScore into Score within one criterion's
// candidate set. Fewer than two candidates, or all-equal raw scores, pin every
// score to 1.0 so a lone opportunity is never buried by the scaling.
func Normalize(cands []Candidate) {
	if len(cands) < 2 {
		for i := range cands {
			cands[i].Score = 1.0
		}
		return
	}
	lo, hi := cands[0].RawScore, cands[0].RawScore
	for _, c := range cands[1:] {
		lo = math.Min(lo, c.RawScore)
		hi = math.Max(hi, c.RawScore)
	}
	if hi == lo {
		for i := range cands {
			cands[i].Score = 1.0
		}
		return
	}
	for i := range cands {
		cands[i].Score = math.Round((cands[i].RawScore-lo)/(hi-lo)*1e6) / 1e6
	}
}

// Rerank applies Maximal Marginal Relevance over the candidates' feature
// vectors: start from the highest score, then repeatedly take the candidate
// maximizing lambda*score - (1-lambda)*max_similarity_to_selected. Candidates
// whose similarity to any selected one reaches the duplicate cutoff are
// dropped entirely.
func Rerank(cands []Candidate, lambda, duplicateCutoff float64) []Candidate {
	if len(cands) <= 1 {
		return append([]Candidate(nil), cands...)
	}

	vecs := make([][]float64, len(cands))
	for i, c := range cands {
		vecs[i] = c.Features
	}
	sim := similarityMatrix(vecs)

	best := 0
	for i, c := range cands {
		if c.Score > cands[best].Score {
			best = i
		}
	}
	selected := []int{best}
	remaining := map[int]bool{}
	for i := range cands {
		if i != best {
			remaining[i] = true
		}
	}

	for len(remaining) > 0 {
		bi, bm := -1, math.Inf(-1)
		for i := range remaining {
			maxSim := math.Inf(-1)
			for _, j := range selected {
				maxSim = math.Max(maxSim, sim[i][j])
			}
			m := lambda*cands[i].Score - (1-lambda)*maxSim
			if m > bm || (m == bm && (bi < 0 || i < bi)) {
				bi, bm = i, m
			}
		}
		if bi < 0 {
			break
		}
		delete(remaining, bi)
		dup := false
		for _, j := range selected {
			if sim[bi][j] >= duplicateCutoff {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		selected = append(selected, bi)
	}

	out := make([]Candidate, 0, len(selected))
	for _, i := range selected {
		out = append(out, cands[i])
	}
	return out
}

// SelectTopK runs one criterion's candidate set through the full scoring
// pipeline: min-max normalize, order best-first, rerank for diversity, and
// cap the result at cfg.TopK.
func SelectTopK(cands []Candidate, cfg Config) []Candidate {
	if len(cands) == 0 {
		return nil
	}
	Normalize(cands)
	SortByScore(cands)
	out := Rerank(cands, cfg.Lambda, cfg.DuplicateCutoff)
	if len(out) > cfg.TopK {
		out = out[:cfg.TopK]
	}
	return out
}

// SortByScore orders candidates best-first, stable on equal scores.
func SortByScore(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}
