package srs

import (
	"math"
	"time"
)

// Review intervals in hours for the first passes through a card. Once a card
// graduates past the ladder its interval grows multiplicatively by the ease
// factor.
var intervalLadder = [...]int{4, 24, 72, 168, 336, 720}

const (
	initialEase = 2.5
	minEase     = 1.3
)

// applyReview runs one SM-2 update and returns the updated card. The ease
// factor always moves, even on a failed review. A quality below 3 resets the
// card to the bottom of the ladder; otherwise the interval is looked up by the
// repetition count before this review, falling back to ease growth once the
// ladder is exhausted.
func applyReview(card Card, quality int, now time.Time) Card {
	penalty := float64(5 - quality)
	ease := card.EaseFactor + (0.1 - penalty*(0.08+penalty*0.02))
	if ease < minEase {
		ease = minEase
	}
	ease = math.Round(ease*10000) / 10000
	card.EaseFactor = ease

	if quality < 3 {
		card.IntervalHours = intervalLadder[0]
		card.Repetitions = 0
	} else {
		if card.Repetitions < len(intervalLadder) {
			card.IntervalHours = intervalLadder[card.Repetitions]
		} else {
			card.IntervalHours = int(math.Round(float64(card.IntervalHours) * ease))
		}
		card.Repetitions++
	}

	card.NextReview = now.Add(time.Duration(card.IntervalHours) * time.Hour)
	card.QualityHistory = append(append([]int{}, card.QualityHistory...), quality)
	return card
}
