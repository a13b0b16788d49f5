package dedupe

import (
	"math"
	"regexp"
	"sort"
)

var wordPattern = regexp.MustCompile(`\w\w+`)

// TFIDFModel holds an l2-normalized TF-IDF vector per document. It is fitted
// exactly once per dedupe run and read-only afterwards, so concurrent scoring
// workers can share it without locking.
type TFIDFModel struct {
	vectors map[uint]map[int]float64
}

type termStat struct {
	term  string
	count int
}

// FitTFIDF builds a 1-2 gram TF-IDF model over the given documents, keyed by
// record id. Terms must appear in at least minDocFreq documents; the
// vocabulary is capped at maxFeatures terms, keeping the most frequent ones
// (alphabetical tie-break for determinism). Returns nil when no document has
// usable text, in which case the text signal scores 0 for every pair.
func FitTFIDF(docs map[uint]string, minDocFreq, maxFeatures int) *TFIDFModel {
	tokenized := make(map[uint][]string, len(docs))
	docFreq := make(map[string]int)
	totalCount := make(map[string]int)
	nonEmpty := 0
	for id, text := range docs {
		grams := ngrams(text)
		tokenized[id] = grams
		if len(grams) == 0 {
			continue
		}
		nonEmpty++
		inDoc := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			totalCount[g]++
			inDoc[g] = struct{}{}
		}
		for g := range inDoc {
			docFreq[g]++
		}
	}
	if nonEmpty == 0 {
		return nil
	}

	var stats []termStat
	for term, df := range docFreq {
		if df >= minDocFreq {
			stats = append(stats, termStat{term: term, count: totalCount[term]})
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].term < stats[j].term
	})
	if maxFeatures > 0 && len(stats) > maxFeatures {
		stats = stats[:maxFeatures]
	}

	vocab := make(map[string]int, len(stats))
	idf := make([]float64, len(stats))
	n := float64(len(docs))
	for i, st := range stats {
		vocab[st.term] = i
		// Smoothed idf, matching the usual "add one document containing
		// every term" formulation.
		idf[i] = math.Log((1+n)/(1+float64(docFreq[st.term]))) + 1
	}

	m := &TFIDFModel{vectors: make(map[uint]map[int]float64, len(docs))}
	for id, grams := range tokenized {
		tf := make(map[int]float64)
		for _, g := range grams {
			if idx, ok := vocab[g]; ok {
				tf[idx]++
			}
		}
		var norm float64
		for idx := range tf {
			tf[idx] *= idf[idx]
			norm += tf[idx] * tf[idx]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range tf {
				tf[idx] /= norm
			}
		}
		m.vectors[id] = tf
	}
	return m
}

// Cosine returns the cosine similarity between two documents' vectors, 0 if
// either is missing or empty.
func (m *TFIDFModel) Cosine(a, b uint) float64 {
	if m == nil {
		return 0
	}
	va, vb := m.vectors[a], m.vectors[b]
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}
	if len(vb) < len(va) {
		va, vb = vb, va
	}
	var dot float64
	for idx, w := range va {
		dot += w * vb[idx]
	}
	// Vectors are unit length, so the dot product is the cosine. Clamp away
	// float drift.
	if dot > 1 {
		dot = 1
	}
	return dot
}

// ngrams tokenizes into lower-case word tokens of two or more characters and
// returns unigrams plus adjacent bigrams.
func ngrams(text string) []string {
	tokens := wordPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return nil
	}
	grams := make([]string, 0, 2*len(tokens)-1)
	grams = append(grams, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}
