package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
)

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		col  string
		want int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"", -1},
		{"1", -1},
	}
	for _, tt := range tests {
		if got := columnToIndex(tt.col); got != tt.want {
			t.Errorf("columnToIndex(%q) = %d, want %d", tt.col, got, tt.want)
		}
	}
}

func TestImportCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.csv")
	content := "question,answer,example,phonetic,category\n" +
		"Hello,سلام,Hello there!,/həˈloʊ/,greetings\n" +
		"Goodbye,خداحافظ,,,greetings\n" +
		",missing question,,,\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	config := DefaultImportConfig()
	config.FilePath = path
	result, err := Import(store, "l1", config)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.TotalProcessed != 3 || result.Created != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v", result)
	}

	var saved []models.Card
	if ok, _ := store.Load("l1", storage.KindCards, &saved); !ok {
		t.Fatal("no cards saved")
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d cards, want 2", len(saved))
	}
	if saved[0].Question != "Hello" || saved[0].Answer != "سلام" || saved[0].Example != "Hello there!" {
		t.Errorf("card[0] = %+v", saved[0])
	}
	if saved[0].Box != 1 || !saved[0].Due {
		t.Errorf("new card scheduling state = %+v", saved[0])
	}
}

func TestReimportKeepsSchedulingState(t *testing.T) {
	existing := []models.Card{
		{ID: "x", Question: "Hello", Answer: "old answer", Box: 4, NextReview: "2099-01-01", Due: false,
			Stats: models.CardStats{TotalReviews: 6, Correct: 5, Wrong: 1}},
	}
	imported := []models.Card{
		{ID: "y", Question: "Hello", Answer: "سلام", Example: "fresh", Box: 1, Due: true},
		{ID: "z", Question: "Moon", Answer: "ماه", Box: 1, Due: true},
	}

	result := &ImportResult{}
	merged := Merge(existing, imported, result)

	if result.Updated != 1 || result.Created != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(merged) != 2 {
		t.Fatalf("merged %d cards, want 2", len(merged))
	}
	got := merged[0]
	if got.Answer != "سلام" || got.Example != "fresh" {
		t.Errorf("display fields not refreshed: %+v", got)
	}
	if got.Box != 4 || got.Due || got.Stats.TotalReviews != 6 {
		t.Errorf("scheduling state was reset: %+v", got)
	}
	if merged[1].Question != "Moon" {
		t.Errorf("new card missing: %+v", merged[1])
	}
}
