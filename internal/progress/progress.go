// Package progress accumulates per-day and per-card review history.
package progress

import (
	"math"

	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
)

// Activity is one session's contribution to the daily history
type Activity struct {
	Date             string `json:"date"` // YYYY-MM-DD
	ReviewedCards    int    `json:"reviewedCards"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
	StudySeconds     int    `json:"studySeconds"`
}

// state is the persisted shape under the progress kind
type state struct {
	Daily     map[string]models.DailyProgress `json:"daily"`
	Cards     map[string]models.CardProgress  `json:"cards"`
	StudyTime int                             `json:"studyTime"` // seconds
}

// Tracker aggregates review history for one lesson. It is loaded explicitly
// from the store and written back explicitly; nothing global.
type Tracker struct {
	lessonID string
	store    *storage.Store
	data     state
}

// Load reads the tracker state for a lesson, starting empty when nothing
// usable is stored
func Load(store *storage.Store, lessonID string) (*Tracker, error) {
	t := &Tracker{
		lessonID: lessonID,
		store:    store,
		data: state{
			Daily: make(map[string]models.DailyProgress),
			Cards: make(map[string]models.CardProgress),
		},
	}
	var loaded state
	ok, err := store.Load(lessonID, storage.KindProgress, &loaded)
	if err != nil {
		return nil, err
	}
	if ok {
		if loaded.Daily == nil {
			loaded.Daily = make(map[string]models.DailyProgress)
		}
		if loaded.Cards == nil {
			loaded.Cards = make(map[string]models.CardProgress)
		}
		t.data = loaded
	}
	return t, nil
}

// Save writes the tracker state back through the gateway
func (t *Tracker) Save() error {
	return t.store.Save(t.lessonID, storage.KindProgress, t.data)
}

// RecordDailyActivity folds a session's totals into the row for its date.
// Rows for prior days are never touched.
func (t *Tracker) RecordDailyActivity(a Activity) {
	row := t.data.Daily[a.Date]
	row.Date = a.Date
	row.ReviewedCards += a.ReviewedCards
	row.CorrectAnswers += a.CorrectAnswers
	row.IncorrectAnswers += a.IncorrectAnswers
	t.data.Daily[a.Date] = row
	t.data.StudyTime += a.StudySeconds
}

// RecordCardProgress increments the lifetime counters for one card
func (t *Tracker) RecordCardProgress(cardID string, correct bool, date string) {
	row := t.data.Cards[cardID]
	row.CardID = cardID
	row.TotalReviews++
	if correct {
		row.Correct++
	} else {
		row.Incorrect++
	}
	row.LastReviewed = date
	t.data.Cards[cardID] = row
}

// Daily returns the row for one date, if any
func (t *Tracker) Daily(date string) (models.DailyProgress, bool) {
	row, ok := t.data.Daily[date]
	return row, ok
}

// Card returns the lifetime counters for one card, if any
func (t *Tracker) Card(cardID string) (models.CardProgress, bool) {
	row, ok := t.data.Cards[cardID]
	return row, ok
}

// Streak counts consecutive active days ending today. A streak is still
// alive before today's first session, so counting may start at yesterday.
func (t *Tracker) Streak(today string) int {
	day := today
	if _, ok := t.data.Daily[day]; !ok {
		day = leitner.AddDays(day, -1)
	}
	streak := 0
	for {
		if _, ok := t.data.Daily[day]; !ok {
			break
		}
		streak++
		day = leitner.AddDays(day, -1)
	}
	return streak
}

// Summary derives the aggregated stats shape consumed by the reward system.
// The lesson's current cards are needed to count mastered ones and to tell
// whether every card has been reviewed at least once.
func (t *Tracker) Summary(cards []models.Card, today string) models.ProgressSummary {
	var total, correct, incorrect int
	for _, row := range t.data.Daily {
		total += row.ReviewedCards
		correct += row.CorrectAnswers
		incorrect += row.IncorrectAnswers
	}

	accuracy := 0.0
	if correct+incorrect > 0 {
		accuracy = math.Round(float64(correct) / float64(correct+incorrect) * 100)
	}

	mastered := 0
	reviewedAll := len(cards) > 0
	for _, c := range cards {
		if c.Box == leitner.MaxBox {
			mastered++
		}
		if row, ok := t.data.Cards[c.ID]; !ok || row.TotalReviews == 0 {
			reviewedAll = false
		}
	}

	perDay := 0
	if days := len(t.data.Daily); days > 0 {
		perDay = total / days
	}

	return models.ProgressSummary{
		TotalReviews:     total,
		Streak:           t.Streak(today),
		Accuracy:         accuracy,
		MasteredCards:    mastered,
		CardsPerDay:      perDay,
		ReviewedAllCards: reviewedAll,
		StudyTime:        t.data.StudyTime,
	}
}
