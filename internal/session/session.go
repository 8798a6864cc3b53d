// Package session drives one linear review pass over a lesson's due cards.
package session

import (
	"math"
	"time"

	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/pkg/models"
)

// State is the lifecycle position of a session
type State int

const (
	StateReady State = iota
	StatePresenting
	StateAnswerRevealed
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StatePresenting:
		return "presenting"
	case StateAnswerRevealed:
		return "answer_revealed"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// AnswerResult distinguishes a recorded answer from a submission against an
// already finished session
type AnswerResult int

const (
	ResultOK AnswerResult = iota
	ResultAlreadyComplete
)

// Stats are the running counters for one session
type Stats struct {
	Reviewed  int `json:"reviewed"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Session holds the working copy of a lesson's cards for the duration of one
// review pass. Card state lives here only until the caller writes it back
// through the storage gateway.
type Session struct {
	LessonID string

	engine       *leitner.Engine
	today        string
	cards        []models.Card
	due          []int // indexes into cards, in provided order
	currentIndex int
	showing      bool
	state        State
	stats        Stats
	startedAt    time.Time
}

// Start creates a session over the given cards, computing the due subset
// once. A session with nothing due is born complete.
func Start(lessonID string, cards []models.Card, engine *leitner.Engine, today string) *Session {
	s := &Session{
		LessonID:  lessonID,
		engine:    engine,
		today:     today,
		cards:     cards,
		state:     StateReady,
		startedAt: time.Now(),
	}
	for i := range cards {
		if engine.IsDue(&cards[i], today) {
			s.due = append(s.due, i)
		}
	}
	if len(s.due) == 0 {
		s.state = StateComplete
	}
	return s
}

// Current returns the card under review, or nil when the session is complete
func (s *Session) Current() *models.Card {
	if s.currentIndex >= len(s.due) {
		return nil
	}
	return &s.cards[s.due[s.currentIndex]]
}

// Reveal shows the answer side of the current card. Calling it again, or on
// a finished session, is a no-op.
func (s *Session) Reveal() {
	if s.state == StateComplete {
		return
	}
	s.showing = true
	s.state = StateAnswerRevealed
}

// Answer records the outcome for the current card, advances the cursor and
// hides the answer for the next card. When the session is already complete
// the submission is rejected rather than silently dropped.
// The mutated card is returned so the caller can persist it immediately.
func (s *Session) Answer(correct bool) (*models.Card, AnswerResult) {
	if s.currentIndex >= len(s.due) {
		return nil, ResultAlreadyComplete
	}
	card := &s.cards[s.due[s.currentIndex]]
	s.engine.Review(card, correct, s.today)

	s.stats.Reviewed++
	if correct {
		s.stats.Correct++
	} else {
		s.stats.Incorrect++
	}

	s.currentIndex++
	s.showing = false
	if s.currentIndex == len(s.due) {
		s.state = StateComplete
	} else {
		s.state = StatePresenting
	}
	return card, ResultOK
}

// Accuracy is the percentage of correct answers so far, rounded; 0 before
// anything has been reviewed
func (s *Session) Accuracy() int {
	if s.stats.Reviewed == 0 {
		return 0
	}
	return int(math.Round(float64(s.stats.Correct) / float64(s.stats.Reviewed) * 100))
}

// Progress reports the cursor position and the size of the due queue
func (s *Session) Progress() (current, total int) {
	return s.currentIndex, len(s.due)
}

func (s *Session) State() State { return s.state }

func (s *Session) Complete() bool { return s.state == StateComplete }

func (s *Session) ShowingAnswer() bool { return s.showing }

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) Today() string { return s.today }

// Cards returns the full working set, including mutations made so far
func (s *Session) Cards() []models.Card { return s.cards }

// DueCount is the number of cards that were due when the session started
func (s *Session) DueCount() int { return len(s.due) }

// Duration is the elapsed wall time since the session started
func (s *Session) Duration() time.Duration { return time.Since(s.startedAt) }
