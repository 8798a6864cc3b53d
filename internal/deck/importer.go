// Package deck imports card decks from Excel or CSV files into a lesson.
package deck

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/leitbox/internal/cards"
	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	QuestionColumn string // Column with the question (front side)
	AnswerColumn   string // Column with the answer (back side)
	ExampleColumn  string // Column with an example sentence
	PhoneticColumn string // Column with the phonetic transcription
	CategoryColumn string // Column with the category
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		QuestionColumn: "A",
		AnswerColumn:   "B",
		ExampleColumn:  "C",
		PhoneticColumn: "D",
		CategoryColumn: "E",
		SheetName:      "Sheet1",
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Import reads a deck file and merges its rows into the lesson's stored
// cards. Existing cards keep their scheduling state; only display fields are
// refreshed.
func Import(store *storage.Store, lessonID string, config ImportConfig) (*ImportResult, error) {
	today := leitner.Today()

	var rows [][]string
	var err error
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}

	var imported []models.Card
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		question := cell(row, config.QuestionColumn)
		answer := cell(row, config.AnswerColumn)
		if question == "" || answer == "" {
			result.Skipped++
			continue
		}
		imported = append(imported, models.Card{
			ID:         cards.SynthesizeID(lessonID, i, question),
			Question:   question,
			Answer:     answer,
			Example:    cell(row, config.ExampleColumn),
			Phonetic:   cell(row, config.PhoneticColumn),
			Category:   cell(row, config.CategoryColumn),
			Box:        1,
			NextReview: today,
			Due:        true,
		})
	}

	var existing []models.Card
	if _, err := store.Load(lessonID, storage.KindCards, &existing); err != nil {
		return nil, err
	}

	merged := Merge(existing, imported, result)
	if err := store.Save(lessonID, storage.KindCards, merged); err != nil {
		return nil, err
	}
	return result, nil
}

// Merge folds imported cards into the existing deck. Cards are matched by
// question text so re-importing an edited file doesn't reset review history.
func Merge(existing, imported []models.Card, result *ImportResult) []models.Card {
	byQuestion := make(map[string]int, len(existing))
	for i, c := range existing {
		byQuestion[c.Question] = i
	}

	merged := existing
	for _, card := range imported {
		if i, ok := byQuestion[card.Question]; ok {
			merged[i].Answer = card.Answer
			merged[i].Example = card.Example
			merged[i].Phonetic = card.Phonetic
			merged[i].Category = card.Category
			if result != nil {
				result.Updated++
			}
			continue
		}
		merged = append(merged, card)
		byQuestion[card.Question] = len(merged) - 1
		if result != nil {
			result.Created++
		}
	}
	return merged
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cell returns the trimmed value at a column letter, or "" when the row is
// too short
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts a column letter ("A", "B", ... "AA") to a 0-based
// index
func columnToIndex(column string) int {
	idx := 0
	for _, ch := range strings.ToUpper(column) {
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1
}
