package openings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ndavis/chesstutor/internal/logger"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Opening is one row of the reference database.
type Opening struct {
	ID        int64  `json:"id"`
	ECO       string `json:"eco"`
	ECOVolume string `json:"eco_volume"`
	Name      string `json:"name"`
	Family    string `json:"family"`
	PGN       string `json:"pgn"`
	UCIMoves  string `json:"uci_moves"`
	NumMoves  int    `json:"num_moves"`
}

// SearchFilter narrows a Search call. Zero values are ignored.
type SearchFilter struct {
	Query     string
	ECO       string
	ECOVolume string
	Limit     int
}

// Opening families suitable for beginners, used by ForLevel.
var beginnerFamilies = []string{
	"Italian Game",
	"Sicilian Defense",
	"French Defense",
	"Scandinavian Defense",
	"London System",
	"Queen's Gambit",
	"King's Pawn Game",
	"Philidor Defense",
	"Petrov's Defense",
	"Caro-Kann Defense",
	"Scotch Game",
	"Ruy Lopez",
	"English Opening",
	"Indian Defense",
}

// Store is the SQLite-backed opening reference.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenStore opens (or creates) the opening database at path.
func OpenStore(path string) (*Store, error) {
	log := logger.Default().WithPrefix("openings")

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	log.Info("opening database: %s", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open openings db: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer keeps SQLite happy

	s := &Store{db: db, log: log}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("openings database ready")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS openings (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    eco        TEXT NOT NULL,
    eco_volume TEXT NOT NULL,
    name       TEXT NOT NULL,
    family     TEXT NOT NULL,
    pgn        TEXT NOT NULL DEFAULT '',
    uci_moves  TEXT NOT NULL DEFAULT '',
    num_moves  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_openings_eco ON openings (eco);
CREATE INDEX IF NOT EXISTS idx_openings_family ON openings (family);
CREATE INDEX IF NOT EXISTS idx_openings_name ON openings (name);
`)
	if err != nil {
		return fmt.Errorf("ensure openings schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert adds one opening row and returns its id.
func (s *Store) Insert(ctx context.Context, o Opening) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO openings (eco, eco_volume, name, family, pgn, uci_moves, num_moves)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, o.ECO, o.ECOVolume, o.Name, o.Family, o.PGN, o.UCIMoves, o.NumMoves)
	if err != nil {
		s.log.Error("failed to insert opening %s: %v", o.Name, err)
		return 0, err
	}
	return res.LastInsertId()
}

const openingColumns = "id, eco, eco_volume, name, family, pgn, uci_moves, num_moves"

var openingColumnList = []string{"id", "eco", "eco_volume", "name", "family", "pgn", "uci_moves", "num_moves"}

// Search finds openings by substring match on name or ECO code, with
// optional exact ECO and volume filters.
func (s *Store) Search(ctx context.Context, filter SearchFilter) ([]Opening, error) {
	log := logger.FromContext(ctx).WithPrefix("openings")

	query := sqlBuilder.Select(openingColumnList...).From("openings")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"name": pattern},
			squirrel.Like{"eco": pattern},
		})
	}
	if filter.ECO != "" {
		query = query.Where(squirrel.Eq{"eco": filter.ECO})
	}
	if filter.ECOVolume != "" {
		query = query.Where(squirrel.Eq{"eco_volume": filter.ECOVolume})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query = query.OrderBy("eco", "name").Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build search query: %v", err)
		return nil, err
	}
	return s.queryOpenings(ctx, sqlStr, args...)
}

// ByECO returns every opening with the given ECO code, ordered by name.
func (s *Store) ByECO(ctx context.Context, eco string) ([]Opening, error) {
	return s.queryOpenings(ctx, `
SELECT `+openingColumns+`
FROM openings
WHERE eco = ?
ORDER BY name
`, eco)
}

// ByFamily returns every variation of a family, shortest lines first.
func (s *Store) ByFamily(ctx context.Context, family string) ([]Opening, error) {
	return s.queryOpenings(ctx, `
SELECT `+openingColumns+`
FROM openings
WHERE family = ?
ORDER BY num_moves, name
`, family)
}

// ForLevel returns openings appropriate for a player's rating: short lines
// from common families below 600, medium lines below 1000, everything above.
func (s *Store) ForLevel(ctx context.Context, elo int) ([]Opening, error) {
	log := logger.FromContext(ctx).WithPrefix("openings")

	query := sqlBuilder.Select(openingColumnList...).From("openings")
	switch {
	case elo < 600:
		query = query.
			Where(squirrel.LtOrEq{"num_moves": 4}).
			Where(squirrel.Eq{"family": beginnerFamilies}).
			OrderBy("num_moves", "name")
	case elo < 1000:
		query = query.
			Where(squirrel.GtOrEq{"num_moves": 4}).
			Where(squirrel.LtOrEq{"num_moves": 10}).
			OrderBy("num_moves", "name")
	default:
		query = query.OrderBy("eco", "name")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build level query: %v", err)
		return nil, err
	}
	return s.queryOpenings(ctx, sqlStr, args...)
}

// Random returns one random opening, optionally filtered by ECO volume and
// maximum length. Returns nil when nothing matches.
func (s *Store) Random(ctx context.Context, ecoVolume string, maxMoves int) (*Opening, error) {
	log := logger.FromContext(ctx).WithPrefix("openings")

	query := sqlBuilder.Select(openingColumnList...).From("openings")
	if ecoVolume != "" {
		query = query.Where(squirrel.Eq{"eco_volume": ecoVolume})
	}
	if maxMoves > 0 {
		query = query.Where(squirrel.LtOrEq{"num_moves": maxMoves})
	}
	query = query.OrderBy("RANDOM()").Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build random query: %v", err)
		return nil, err
	}

	var o Opening
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&o.ID, &o.ECO, &o.ECOVolume, &o.Name, &o.Family, &o.PGN, &o.UCIMoves, &o.NumMoves)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to pick random opening: %v", err)
		return nil, err
	}
	return &o, nil
}

// Count returns the total number of openings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM openings`).Scan(&count)
	return count, err
}

func (s *Store) queryOpenings(ctx context.Context, sqlStr string, args ...any) ([]Opening, error) {
	log := logger.FromContext(ctx).WithPrefix("openings")

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []Opening
	for rows.Next() {
		var o Opening
		if err := rows.Scan(&o.ID, &o.ECO, &o.ECOVolume, &o.Name, &o.Family, &o.PGN, &o.UCIMoves, &o.NumMoves); err != nil {
			log.Error("failed to scan opening row: %v", err)
			return nil, err
		}
		out = append(out, o)
	}
	log.Debug("found %d openings", len(out))
	return out, rows.Err()
}
