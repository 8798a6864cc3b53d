// Package leitner implements the fixed five-box Leitner scheduling algorithm.
package leitner

import (
	"time"

	"github.com/example/leitbox/pkg/models"
)

// DateLayout is the calendar-date form used everywhere in the module.
// Fixed width, so lexicographic comparison orders dates correctly.
const DateLayout = "2006-01-02"

const (
	MinBox = 1
	MaxBox = 5
)

// Engine holds the scheduling parameters for the Leitner algorithm
type Engine struct {
	// Review intervals in days, indexed by box (1-based)
	Intervals map[int]int
	// Interval used when a card carries a box outside [MinBox, MaxBox]
	FallbackInterval int
}

// New creates an engine with the default interval table
func New() *Engine {
	return &Engine{
		Intervals: map[int]int{
			1: 0,
			2: 1,
			3: 3,
			4: 7,
			5: 15,
		},
		FallbackInterval: 1,
	}
}

// Today returns the current calendar date in DateLayout form
func Today() string {
	return time.Now().Format(DateLayout)
}

// IntervalDays returns the review interval for a box
func (e *Engine) IntervalDays(box int) int {
	if days, ok := e.Intervals[box]; ok {
		return days
	}
	return e.FallbackInterval
}

// Review applies one review outcome to a card: a correct answer promotes it
// one box (capped at MaxBox), a wrong answer sends it back to box 1. In both
// cases the card is no longer due and its next review date is today plus the
// interval of the new box.
func (e *Engine) Review(card *models.Card, correct bool, today string) {
	if correct {
		card.Box++
		if card.Box > MaxBox {
			card.Box = MaxBox
		}
		card.Stats.Correct++
	} else {
		card.Box = MinBox
		card.Stats.Wrong++
	}
	card.Stats.TotalReviews++
	card.Due = false
	card.NextReview = AddDays(today, e.IntervalDays(card.Box))
}

// IsDue reports whether a card is eligible for review on the given date
func (e *Engine) IsDue(card *models.Card, today string) bool {
	return card.Due || card.NextReview <= today
}

// DueCards filters the due subset, preserving the order cards were given in.
// Order is kept stable on purpose so a session is reproducible from its input.
func (e *Engine) DueCards(cards []models.Card, today string) []models.Card {
	var due []models.Card
	for i := range cards {
		if e.IsDue(&cards[i], today) {
			due = append(due, cards[i])
		}
	}
	return due
}

// AddDays shifts a DateLayout date forward by n calendar days. A date that
// fails to parse is returned unchanged.
func AddDays(date string, n int) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}
