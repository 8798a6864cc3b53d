package models

// CardStats tracks review counters for a single card.
// Invariant: TotalReviews == Correct + Wrong after every review.
type CardStats struct {
	TotalReviews int `json:"totalReviews" db:"total_reviews"`
	Correct      int `json:"correct" db:"correct"`
	Wrong        int `json:"wrong" db:"wrong"`
}

// Card represents a vocabulary item under spaced repetition
type Card struct {
	ID       string `json:"id" db:"id"`
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer" db:"answer"`
	Example  string `json:"example,omitempty" db:"example"`
	Phonetic string `json:"phonetic,omitempty" db:"phonetic"`
	Category string `json:"category,omitempty" db:"category"`

	// Box is the Leitner box, always in [1,5]
	Box int `json:"box" db:"box"`
	// NextReview is a calendar date in YYYY-MM-DD form, no time component
	NextReview string    `json:"nextReview" db:"next_review"`
	Due        bool      `json:"due" db:"due"`
	Stats      CardStats `json:"stats" db:"stats"`
}
