package models

// DailyProgress accumulates one day's review activity, keyed by Date
type DailyProgress struct {
	Date             string `json:"date" db:"date"` // YYYY-MM-DD
	ReviewedCards    int    `json:"reviewedCards" db:"reviewed_cards"`
	CorrectAnswers   int    `json:"correctAnswers" db:"correct_answers"`
	IncorrectAnswers int    `json:"incorrectAnswers" db:"incorrect_answers"`
}

// CardProgress accumulates lifetime counters for one card across sessions
type CardProgress struct {
	CardID       string `json:"cardId" db:"card_id"`
	TotalReviews int    `json:"totalReviews" db:"total_reviews"`
	Correct      int    `json:"correct" db:"correct"`
	Incorrect    int    `json:"incorrect" db:"incorrect"`
	LastReviewed string `json:"lastReviewed" db:"last_reviewed"` // YYYY-MM-DD
}

// ProgressSummary is the aggregated stats shape consumed by the reward system
type ProgressSummary struct {
	TotalReviews     int     `json:"totalReviews"`
	Streak           int     `json:"streak"` // consecutive days ending today
	Accuracy         float64 `json:"accuracy"`
	MasteredCards    int     `json:"masteredCards"` // cards that reached box 5
	CardsPerDay      int     `json:"cardsPerDay"`
	ReviewedAllCards bool    `json:"reviewedAllCards"`
	StudyTime        int     `json:"studyTime"` // total seconds across sessions
}
