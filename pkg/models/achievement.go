package models

// Achievement is a badge unlocked by a predicate over ProgressSummary.
// Once unlocked it is never revoked.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	UnlockedAt  string `json:"unlockedAt,omitempty"` // YYYY-MM-DD, empty while locked
}

// RewardState is the durable gamification state for one lesson
type RewardState struct {
	Points       int           `json:"points"`
	Level        int           `json:"level"`
	Achievements []Achievement `json:"achievements"`
}
