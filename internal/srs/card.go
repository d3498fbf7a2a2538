package srs

import "time"

// Card is one spaced-repetition review card for a mistake position. The JSON
// field names are a stable contract: the card store is read directly by
// export tooling and must keep this exact shape.
type Card struct {
	ID             string    `json:"id"`
	FEN            string    `json:"fen"`
	PlayerMove     string    `json:"player_move"`
	BestMove       string    `json:"best_move"`
	CPLoss         int       `json:"cp_loss"`
	Classification string    `json:"classification"`
	Motif          *string   `json:"motif"`
	Explanation    string    `json:"explanation"`
	CreatedAt      time.Time `json:"created_at"`
	NextReview     time.Time `json:"next_review"`
	IntervalHours  int       `json:"interval_hours"`
	EaseFactor     float64   `json:"ease_factor"`
	Repetitions    int       `json:"repetitions"`
	QualityHistory []int     `json:"quality_history"`
}

// Stats summarizes a card collection.
type Stats struct {
	Total            int            `json:"total"`
	Due              int            `json:"due"`
	AvgEase          float64        `json:"avg_ease"`
	ByClassification map[string]int `json:"by_classification"`
}
