// Package index provides an in-memory similarity index over lead and
// load descriptions. Documents are embedded as token-frequency vectors
// and ranked by cosine similarity.
package index

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Document is one indexed entry.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Hit is a search result with its similarity in [0,1].
type Hit struct {
	Document
	Similarity float64
}

// Index holds token vectors keyed by document ID. Safe for concurrent
// use.
type Index struct {
	mu   sync.RWMutex
	docs map[string]*entry
}

type entry struct {
	doc    Document
	vector map[string]float64
	norm   float64
}

func New() *Index {
	return &Index{docs: make(map[string]*entry)}
}

// Upsert adds or replaces a document.
func (i *Index) Upsert(doc Document) {
	vector := vectorize(doc.Text)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[doc.ID] = &entry{doc: doc, vector: vector, norm: norm(vector)}
}

// Delete removes a document if present.
func (i *Index) Delete(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.docs, id)
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Search returns up to limit documents ranked by cosine similarity to
// the query. Zero-similarity documents are not returned. Ties break by
// document ID so results are deterministic.
func (i *Index) Search(query string, limit int) []Hit {
	qv := vectorize(query)
	qn := norm(qv)
	if qn == 0 {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]Hit, 0, len(i.docs))
	for _, e := range i.docs {
		if e.norm == 0 {
			continue
		}
		sim := dot(qv, e.vector) / (qn * e.norm)
		if sim <= 0 {
			continue
		}
		hits = append(hits, Hit{Document: e.doc, Similarity: sim})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ID < hits[b].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func vectorize(text string) map[string]float64 {
	vector := make(map[string]float64)
	for _, token := range tokenize(text) {
		vector[token]++
	}
	return vector
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for token, av := range a {
		if bv, ok := b[token]; ok {
			sum += av * bv
		}
	}
	return sum
}

func norm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
