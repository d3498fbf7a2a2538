// Package openings identifies chess openings from move sequences and serves
// the opening reference database.
package openings

import (
	"strings"

	"github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// Identification names the deepest book opening reached by a move sequence.
type Identification struct {
	ECO          string `json:"eco"`
	ECOVolume    string `json:"eco_volume"`
	Name         string `json:"name"`
	Family       string `json:"family"`
	PGN          string `json:"pgn"`
	MovesMatched int    `json:"moves_matched"`
}

// Book wraps the built-in ECO book.
type Book struct {
	eco *opening.BookECO
}

func NewBook() *Book {
	return &Book{eco: opening.NewBookECO()}
}

// Identify returns the deepest opening matching a prefix of moves, or nil
// when the sequence never enters the book.
func (b *Book) Identify(moves []*chess.Move) *Identification {
	if len(moves) == 0 {
		return nil
	}

	found := b.eco.Find(moves)
	if found == nil {
		return nil
	}

	// The book matches the deepest named prefix; walk prefixes to find how
	// many moves it actually consumed.
	matched := len(moves)
	for i := 1; i <= len(moves); i++ {
		if o := b.eco.Find(moves[:i]); o != nil && o.Code() == found.Code() && o.Title() == found.Title() {
			matched = i
			break
		}
	}

	return &Identification{
		ECO:          found.Code(),
		ECOVolume:    ecoVolume(found.Code()),
		Name:         found.Title(),
		Family:       familyOf(found.Title()),
		PGN:          found.PGN(),
		MovesMatched: matched,
	}
}

func ecoVolume(eco string) string {
	if eco == "" {
		return ""
	}
	return eco[:1]
}

// familyOf strips the variation suffix: "Sicilian Defense: Najdorf" belongs
// to the "Sicilian Defense" family.
func familyOf(name string) string {
	if family, _, ok := strings.Cut(name, ":"); ok {
		return strings.TrimSpace(family)
	}
	return name
}
