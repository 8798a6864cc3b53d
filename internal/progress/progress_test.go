package progress

import (
	"testing"

	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
)

const today = "2024-06-03"

func memTracker(t *testing.T) (*Tracker, *storage.Store) {
	t.Helper()
	s, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	tr, err := Load(s, "l1")
	if err != nil {
		t.Fatalf("load tracker: %v", err)
	}
	return tr, s
}

func TestRecordDailyActivityAccumulates(t *testing.T) {
	tr, _ := memTracker(t)
	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 5, CorrectAnswers: 3, IncorrectAnswers: 2, StudySeconds: 60})
	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 2, CorrectAnswers: 2, StudySeconds: 30})

	row, ok := tr.Daily(today)
	if !ok {
		t.Fatal("today's row missing")
	}
	if row.ReviewedCards != 7 || row.CorrectAnswers != 5 || row.IncorrectAnswers != 2 {
		t.Errorf("daily row = %+v", row)
	}
}

func TestPriorDaysNeverOverwritten(t *testing.T) {
	tr, _ := memTracker(t)
	tr.RecordDailyActivity(Activity{Date: "2024-06-01", ReviewedCards: 4, CorrectAnswers: 4})
	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 1, CorrectAnswers: 1})

	row, _ := tr.Daily("2024-06-01")
	if row.ReviewedCards != 4 {
		t.Errorf("prior day mutated: %+v", row)
	}
}

func TestRecordCardProgress(t *testing.T) {
	tr, _ := memTracker(t)
	tr.RecordCardProgress("c1", true, today)
	tr.RecordCardProgress("c1", false, today)
	tr.RecordCardProgress("c1", true, today)

	row, ok := tr.Card("c1")
	if !ok {
		t.Fatal("card row missing")
	}
	if row.TotalReviews != 3 || row.Correct != 2 || row.Incorrect != 1 {
		t.Errorf("card row = %+v", row)
	}
	if row.LastReviewed != today {
		t.Errorf("lastReviewed = %s", row.LastReviewed)
	}
}

func TestStreak(t *testing.T) {
	tr, _ := memTracker(t)
	if got := tr.Streak(today); got != 0 {
		t.Errorf("empty streak = %d, want 0", got)
	}

	// Three consecutive days ending yesterday: streak alive before today's
	// first session.
	for _, d := range []string{"2024-05-31", "2024-06-01", "2024-06-02"} {
		tr.RecordDailyActivity(Activity{Date: d, ReviewedCards: 1})
	}
	if got := tr.Streak(today); got != 3 {
		t.Errorf("streak before today's session = %d, want 3", got)
	}

	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 1})
	if got := tr.Streak(today); got != 4 {
		t.Errorf("streak after today's session = %d, want 4", got)
	}
}

func TestStreakBrokenByGap(t *testing.T) {
	tr, _ := memTracker(t)
	tr.RecordDailyActivity(Activity{Date: "2024-05-20", ReviewedCards: 1})
	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 1})
	if got := tr.Streak(today); got != 1 {
		t.Errorf("streak across gap = %d, want 1", got)
	}
}

func TestSummary(t *testing.T) {
	tr, _ := memTracker(t)
	cards := []models.Card{
		{ID: "c1", Box: 5},
		{ID: "c2", Box: 2},
	}
	tr.RecordDailyActivity(Activity{Date: "2024-06-02", ReviewedCards: 2, CorrectAnswers: 1, IncorrectAnswers: 1, StudySeconds: 120})
	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 2, CorrectAnswers: 2, StudySeconds: 60})
	tr.RecordCardProgress("c1", true, today)

	sum := tr.Summary(cards, today)
	if sum.TotalReviews != 4 {
		t.Errorf("totalReviews = %d, want 4", sum.TotalReviews)
	}
	if sum.Accuracy != 75 {
		t.Errorf("accuracy = %v, want 75", sum.Accuracy)
	}
	if sum.MasteredCards != 1 {
		t.Errorf("masteredCards = %d, want 1", sum.MasteredCards)
	}
	if sum.ReviewedAllCards {
		t.Error("reviewedAllCards should be false while c2 is untouched")
	}
	if sum.Streak != 2 {
		t.Errorf("streak = %d, want 2", sum.Streak)
	}
	if sum.CardsPerDay != 2 {
		t.Errorf("cardsPerDay = %d, want 2", sum.CardsPerDay)
	}
	if sum.StudyTime != 180 {
		t.Errorf("studyTime = %d, want 180", sum.StudyTime)
	}

	tr.RecordCardProgress("c2", false, today)
	if sum := tr.Summary(cards, today); !sum.ReviewedAllCards {
		t.Error("reviewedAllCards should be true once every card has a row")
	}
}

func TestTrackerPersistsAcrossLoads(t *testing.T) {
	tr, store := memTracker(t)
	tr.RecordDailyActivity(Activity{Date: today, ReviewedCards: 3, CorrectAnswers: 3})
	tr.RecordCardProgress("c1", true, today)
	if err := tr.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := Load(store, "l1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	row, ok := reloaded.Daily(today)
	if !ok || row.ReviewedCards != 3 {
		t.Errorf("daily row after reload = %+v ok=%v", row, ok)
	}
	if _, ok := reloaded.Card("c1"); !ok {
		t.Error("card row lost across reload")
	}
}
