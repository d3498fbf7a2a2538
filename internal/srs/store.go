package srs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/logger"
)

// loadCards reads the card file at path. A missing file means an empty
// collection. A file that exists but does not parse is copied aside to
// path+".bak" and an empty collection is returned; card data is never a
// reason to refuse startup.
func loadCards(path string, log *logger.Logger) ([]Card, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Card{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read card store: %w", err)
	}

	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		backup := path + ".bak"
		if werr := os.WriteFile(backup, data, 0o644); werr != nil {
			return nil, fmt.Errorf("back up corrupt card store: %w", werr)
		}
		log.Warn("%v, backed up to %s and starting empty", apperr.CorruptState("card store", err), backup)
		return []Card{}, nil
	}
	if cards == nil {
		cards = []Card{}
	}
	return cards, nil
}

// saveCards writes the full collection atomically: marshal to a temp file in
// the same directory, then rename over the target.
func saveCards(path string, cards []Card) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create card store dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return fmt.Errorf("encode card store: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write card store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace card store: %w", err)
	}
	return nil
}
