// Package rewards derives points, levels and achievements from aggregated
// review progress.
package rewards

import (
	"github.com/example/leitbox/internal/storage"
	"github.com/example/leitbox/pkg/models"
)

// Points awarded per unit of each stat
const (
	pointsPerReview   = 10
	pointsPerStreak   = 50
	pointsPerMastered = 100
)

// levelThresholds is sorted ascending; the player's level is the index of the
// highest threshold not exceeding their points.
var levelThresholds = []int{0, 100, 250, 500, 1000, 2000, 4000, 8000}

// badge is one unlockable achievement and its unlock predicate
type badge struct {
	id          string
	title       string
	description string
	icon        string
	unlocked    func(models.ProgressSummary) bool
}

var catalog = []badge{
	{"first-steps", "First Steps", "Complete your first review", "🐣",
		func(s models.ProgressSummary) bool { return s.TotalReviews >= 1 }},
	{"century", "Century", "Complete 100 reviews", "💯",
		func(s models.ProgressSummary) bool { return s.TotalReviews >= 100 }},
	{"on-fire", "On Fire", "Review seven days in a row", "🔥",
		func(s models.ProgressSummary) bool { return s.Streak >= 7 }},
	{"sharp-shooter", "Sharp Shooter", "Reach 90% accuracy over at least 20 reviews", "🎯",
		func(s models.ProgressSummary) bool { return s.Accuracy >= 90 && s.TotalReviews >= 20 }},
	{"box-master", "Box Master", "Bring ten cards to the last box", "📦",
		func(s models.ProgressSummary) bool { return s.MasteredCards >= 10 }},
	{"completionist", "Completionist", "Review every card in the lesson", "🏆",
		func(s models.ProgressSummary) bool { return s.ReviewedAllCards }},
	{"marathon", "Marathon", "Study for a full hour in total", "⏱",
		func(s models.ProgressSummary) bool { return s.StudyTime >= 3600 }},
}

// System holds the gamification state for one lesson with an explicit
// load/save lifecycle through the gateway
type System struct {
	lessonID string
	store    *storage.Store
	state    models.RewardState
}

// Load reads the reward state for a lesson, starting fresh when nothing
// usable is stored
func Load(store *storage.Store, lessonID string) (*System, error) {
	sys := &System{lessonID: lessonID, store: store}
	var loaded models.RewardState
	ok, err := store.Load(lessonID, storage.KindAchievements, &loaded)
	if err != nil {
		return nil, err
	}
	if ok {
		sys.state = loaded
	}
	return sys, nil
}

// Save writes the reward state back through the gateway
func (s *System) Save() error {
	return s.store.Save(s.lessonID, storage.KindAchievements, s.state)
}

// Points computes the fixed formula over the stats shape
func Points(sum models.ProgressSummary) int {
	return sum.TotalReviews*pointsPerReview +
		sum.Streak*pointsPerStreak +
		sum.MasteredCards*pointsPerMastered
}

// Level maps points onto the threshold table: highest threshold <= points
func Level(points int) int {
	level := 0
	for i, threshold := range levelThresholds {
		if points >= threshold {
			level = i
		}
	}
	return level
}

// Apply re-derives points and level from a fresh summary and evaluates every
// locked achievement's predicate once. Already unlocked achievements are
// never re-evaluated and never revoked, even if the stats later drop below
// the unlock condition. The newly unlocked achievements are returned.
func (s *System) Apply(sum models.ProgressSummary, today string) []models.Achievement {
	s.state.Points = Points(sum)
	s.state.Level = Level(s.state.Points)

	held := make(map[string]bool, len(s.state.Achievements))
	for _, a := range s.state.Achievements {
		held[a.ID] = true
	}

	var unlocked []models.Achievement
	for _, b := range catalog {
		if held[b.id] || !b.unlocked(sum) {
			continue
		}
		a := models.Achievement{
			ID:          b.id,
			Title:       b.title,
			Description: b.description,
			Icon:        b.icon,
			UnlockedAt:  today,
		}
		s.state.Achievements = append(s.state.Achievements, a)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// State returns a copy of the current reward state
func (s *System) State() models.RewardState { return s.state }
