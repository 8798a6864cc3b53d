// Package review wires the scheduling core to persistence: it loads lessons,
// runs sessions and writes state back at the right moments.
package review

import (
	"errors"
	"fmt"

	"github.com/example/leitbox/internal/cards"
	"github.com/example/leitbox/internal/leitner"
	"github.com/example/leitbox/internal/progress"
	"github.com/example/leitbox/internal/rewards"
	"github.com/example/leitbox/internal/session"
	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
)

// ErrNoLesson is returned when a session is requested for a lesson with no
// stored cards
var ErrNoLesson = errors.New("review: lesson has no cards")

// Service coordinates lessons, sessions and persistence
type Service struct {
	store  *storage.Store
	engine *leitner.Engine
}

// NewService creates a service over the given store
func NewService(store *storage.Store) *Service {
	return &Service{store: store, engine: leitner.New()}
}

// Engine exposes the scheduling engine, mainly for due-count queries
func (s *Service) Engine() *leitner.Engine { return s.engine }

// ImportJSON normalizes a raw lesson document and stores its cards. The
// returned result tells whether real data or the sample fallback was stored.
func (s *Service) ImportJSON(lessonID string, raw []byte) (cards.LoadResult, error) {
	result := cards.Normalize(raw, lessonID, leitner.Today())
	if err := s.store.Save(lessonID, storage.KindCards, result.Cards); err != nil {
		return result, err
	}
	return result, nil
}

// Cards returns the stored cards for a lesson
func (s *Service) Cards(lessonID string) ([]models.Card, error) {
	var cs []models.Card
	ok, err := s.store.Load(lessonID, storage.KindCards, &cs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoLesson
	}
	return cs, nil
}

// DueCount reports how many of a lesson's cards are due today
func (s *Service) DueCount(lessonID string) (int, error) {
	cs, err := s.Cards(lessonID)
	if err != nil {
		return 0, err
	}
	return len(s.engine.DueCards(cs, leitner.Today())), nil
}

// ResetLesson drops all stored state for a lesson
func (s *Service) ResetLesson(lessonID string) error {
	return s.store.ResetLesson(lessonID)
}

// Runner holds one active session together with the lesson's progress and
// reward state
type Runner struct {
	Session *session.Session

	svc     *Service
	tracker *progress.Tracker
	rewards *rewards.System
}

// Outcome summarizes a finished session
type Outcome struct {
	Stats           session.Stats
	Accuracy        int
	Points          int
	Level           int
	NewAchievements []models.Achievement
}

// Begin starts a review session over a lesson's stored cards
func (s *Service) Begin(lessonID string) (*Runner, error) {
	cs, err := s.Cards(lessonID)
	if err != nil {
		return nil, err
	}
	tracker, err := progress.Load(s.store, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %v", err)
	}
	rs, err := rewards.Load(s.store, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rewards: %v", err)
	}
	return &Runner{
		Session: session.Start(lessonID, cs, s.engine, leitner.Today()),
		svc:     s,
		tracker: tracker,
		rewards: rs,
	}, nil
}

// Answer records one outcome and immediately persists the whole working set,
// so an abandoned session loses nothing already answered.
func (r *Runner) Answer(correct bool) (session.AnswerResult, error) {
	card, res := r.Session.Answer(correct)
	if res != session.ResultOK {
		return res, nil
	}
	r.tracker.RecordCardProgress(card.ID, correct, r.Session.Today())
	if err := r.svc.store.Save(r.Session.LessonID, storage.KindCards, r.Session.Cards()); err != nil {
		return res, fmt.Errorf("failed to persist cards: %v", err)
	}
	return res, nil
}

// AttachExample fills the current card's example sentence and persists the
// working set, so the sentence survives beyond this session
func (r *Runner) AttachExample(text string) error {
	card := r.Session.Current()
	if card == nil {
		return nil
	}
	card.Example = text
	if err := r.svc.store.Save(r.Session.LessonID, storage.KindCards, r.Session.Cards()); err != nil {
		return fmt.Errorf("failed to persist cards: %v", err)
	}
	return nil
}

// Finish records the session's aggregate activity, applies rewards and
// persists both. Safe to call once the session is complete or abandoned.
func (r *Runner) Finish() (*Outcome, error) {
	stats := r.Session.Stats()
	today := r.Session.Today()

	r.tracker.RecordDailyActivity(progress.Activity{
		Date:             today,
		ReviewedCards:    stats.Reviewed,
		CorrectAnswers:   stats.Correct,
		IncorrectAnswers: stats.Incorrect,
		StudySeconds:     int(r.Session.Duration().Seconds()),
	})
	if err := r.tracker.Save(); err != nil {
		return nil, fmt.Errorf("failed to persist progress: %v", err)
	}

	summary := r.tracker.Summary(r.Session.Cards(), today)
	unlocked := r.rewards.Apply(summary, today)
	if err := r.rewards.Save(); err != nil {
		return nil, fmt.Errorf("failed to persist rewards: %v", err)
	}

	state := r.rewards.State()
	return &Outcome{
		Stats:           stats,
		Accuracy:        r.Session.Accuracy(),
		Points:          state.Points,
		Level:           state.Level,
		NewAchievements: unlocked,
	}, nil
}
