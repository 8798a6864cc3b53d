// Package cards normalizes heterogeneous lesson records into canonical cards.
package cards

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/pkg/models"
)

// Source tells whether a load produced real lesson data or the sample fallback
type Source int

const (
	SourceLoaded Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceFallback {
		return "fallback"
	}
	return "loaded"
}

// LoadResult is the outcome of normalizing one lesson document
type LoadResult struct {
	Cards  []models.Card
	Source Source
}

// Placeholder strings used when a record carries no usable text
const (
	placeholderQuestion = "کلمه"
	placeholderAnswer   = "ترجمه"
)

// fieldPaths lists the candidate locations of each canonical field, in
// precedence order: nested scheduling sub-object first, then the modern flat
// field, then legacy flat names. Dots descend into nested objects.
var fieldPaths = map[string][]string{
	"question":   {"question", "word", "front"},
	"answer":     {"answer", "translation", "back"},
	"example":    {"example"},
	"phonetic":   {"phonetic"},
	"category":   {"category"},
	"box":        {"leitner.box", "box"},
	"nextReview": {"leitner.nextReview", "nextReview"},
	"due":        {"leitner.due", "due"},
}

type lessonDocument struct {
	Cards []map[string]interface{} `json:"cards"`
}

// Normalize parses a raw lesson document and maps every record onto the
// canonical Card shape. A document without a cards array never fails: it
// yields the two sample cards with Source set to SourceFallback so callers
// can tell placeholder content from real data.
func Normalize(raw []byte, lessonID, today string) LoadResult {
	var doc lessonDocument
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Cards == nil {
		return LoadResult{Cards: SampleCards(lessonID, today), Source: SourceFallback}
	}
	return LoadResult{Cards: NormalizeRecords(doc.Cards, lessonID, today), Source: SourceLoaded}
}

// NormalizeRecords maps decoded records onto canonical cards
func NormalizeRecords(records []map[string]interface{}, lessonID, today string) []models.Card {
	out := make([]models.Card, 0, len(records))
	for i, rec := range records {
		out = append(out, normalizeRecord(rec, lessonID, i, today))
	}
	return out
}

func normalizeRecord(rec map[string]interface{}, lessonID string, index int, today string) models.Card {
	card := models.Card{
		Question:   stringField(rec, "question", placeholderQuestion),
		Answer:     stringField(rec, "answer", placeholderAnswer),
		Example:    stringField(rec, "example", ""),
		Phonetic:   stringField(rec, "phonetic", ""),
		Category:   stringField(rec, "category", ""),
		Box:        clampBox(intField(rec, "box", leitner.MinBox)),
		NextReview: stringField(rec, "nextReview", today),
		Due:        boolField(rec, "due", true),
	}
	if id := rawID(rec); id != "" {
		card.ID = id
	} else {
		card.ID = SynthesizeID(lessonID, index, card.Question)
	}
	return card
}

// SynthesizeID derives a stable id for a record that carries none. The id is
// a hash of lesson, position and question text, so reloading the same source
// regenerates the same id and review history stays attached to the card.
func SynthesizeID(lessonID string, index int, question string) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%d:%s", lessonID, index, question)
	return fmt.Sprintf("card-%08x", h.Sum32())
}

// SampleCards is the fixed fallback deck shown when a lesson has no usable
// records
func SampleCards(lessonID, today string) []models.Card {
	samples := []struct {
		question, answer string
	}{
		{"Hello", "سلام"},
		{"Goodbye", "خداحافظ"},
	}
	out := make([]models.Card, 0, len(samples))
	for i, s := range samples {
		out = append(out, models.Card{
			ID:         SynthesizeID(lessonID, i, s.question),
			Question:   s.question,
			Answer:     s.answer,
			Box:        leitner.MinBox,
			NextReview: today,
			Due:        true,
		})
	}
	return out
}

func clampBox(box int) int {
	if box < leitner.MinBox {
		return leitner.MinBox
	}
	if box > leitner.MaxBox {
		return leitner.MaxBox
	}
	return box
}

func rawID(rec map[string]interface{}) string {
	switch v := rec["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// lookup resolves a dotted path against a decoded record
func lookup(rec map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = rec
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringField(rec map[string]interface{}, field, fallback string) string {
	for _, path := range fieldPaths[field] {
		if v, ok := lookup(rec, path); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

func intField(rec map[string]interface{}, field string, fallback int) int {
	for _, path := range fieldPaths[field] {
		if v, ok := lookup(rec, path); ok {
			switch n := v.(type) {
			case float64:
				return int(n)
			case int:
				return n
			}
		}
	}
	return fallback
}

func boolField(rec map[string]interface{}, field string, fallback bool) bool {
	for _, path := range fieldPaths[field] {
		if v, ok := lookup(rec, path); ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return fallback
}
