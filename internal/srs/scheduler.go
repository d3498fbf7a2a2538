// Package srs schedules mistake-review cards with the SM-2 spaced-repetition
// algorithm. Cards live in a single JSON file so a tutoring session can pick
// up where the previous one left off.
package srs

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/logger"
)

// Scheduler owns the card collection and its backing file. All methods are
// safe for concurrent use.
type Scheduler struct {
	mu    sync.Mutex
	path  string
	cards []Card
	now   func() time.Time
	log   *logger.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// NewScheduler loads the card file at path, recovering from corruption by
// backing the file up and starting empty.
func NewScheduler(path string, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		path: path,
		now:  time.Now,
		log:  logger.Default().WithPrefix("srs"),
	}
	for _, opt := range opts {
		opt(s)
	}

	cards, err := loadCards(path, s.log)
	if err != nil {
		return nil, err
	}
	s.cards = cards
	return s, nil
}

// NewCard holds the caller-supplied fields of a card to be added.
type NewCard struct {
	FEN            string
	PlayerMove     string
	BestMove       string
	CPLoss         int
	Classification string
	Motif          *string
	Explanation    string
}

// AddCard creates a card due for its first review four hours from now and
// persists the collection.
func (s *Scheduler) AddCard(nc NewCard) (Card, error) {
	if nc.FEN == "" {
		return Card{}, apperr.InvalidArgument("fen", "must not be empty")
	}
	if nc.PlayerMove == "" {
		return Card{}, apperr.InvalidArgument("player_move", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	card := Card{
		ID:             uuid.NewString(),
		FEN:            nc.FEN,
		PlayerMove:     nc.PlayerMove,
		BestMove:       nc.BestMove,
		CPLoss:         nc.CPLoss,
		Classification: nc.Classification,
		Motif:          nc.Motif,
		Explanation:    nc.Explanation,
		CreatedAt:      now,
		NextReview:     now.Add(time.Duration(intervalLadder[0]) * time.Hour),
		IntervalHours:  intervalLadder[0],
		EaseFactor:     initialEase,
		Repetitions:    0,
		QualityHistory: []int{},
	}

	s.cards = append(s.cards, card)
	if err := saveCards(s.path, s.cards); err != nil {
		s.cards = s.cards[:len(s.cards)-1]
		return Card{}, fmt.Errorf("persist new card: %w", err)
	}

	s.log.Debug("added card %s (%s, cp_loss=%d)", card.ID, card.Classification, card.CPLoss)
	return card, nil
}

// Cards returns a copy of every card.
func (s *Scheduler) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card{}, s.cards...)
}

// DueCards returns the cards whose next review is at or before now, most
// overdue first.
func (s *Scheduler) DueCards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var due []Card
	for _, c := range s.cards {
		if !c.NextReview.After(now) {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReview.Before(due[j].NextReview)
	})
	return due
}

// ReviewCard applies one SM-2 review with the given quality (0..5) and
// persists the result. The card is untouched if quality is out of range, the
// id is unknown, or the save fails.
func (s *Scheduler) ReviewCard(id string, quality int) (Card, error) {
	if quality < 0 || quality > 5 {
		return Card{}, apperr.InvalidArgument("quality", "must be between 0 and 5")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.cards {
		if s.cards[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Card{}, apperr.NotFound("card", id)
	}

	updated := applyReview(s.cards[idx], quality, s.now())
	prev := s.cards[idx]
	s.cards[idx] = updated
	if err := saveCards(s.path, s.cards); err != nil {
		s.cards[idx] = prev
		return Card{}, fmt.Errorf("persist review: %w", err)
	}

	s.log.Debug("reviewed card %s quality=%d interval=%dh ease=%.4f",
		id, quality, updated.IntervalHours, updated.EaseFactor)
	return updated, nil
}

// Stats summarizes the collection: totals, due count, average ease rounded to
// three decimals, and a per-classification breakdown.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stats := Stats{
		Total:            len(s.cards),
		ByClassification: map[string]int{},
	}

	var easeSum float64
	for _, c := range s.cards {
		if !c.NextReview.After(now) {
			stats.Due++
		}
		easeSum += c.EaseFactor
		stats.ByClassification[c.Classification]++
	}
	if stats.Total > 0 {
		stats.AvgEase = math.Round(easeSum/float64(stats.Total)*1000) / 1000
	}
	return stats
}
