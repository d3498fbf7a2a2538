// Package game manages interactive tutoring sessions: board state, move
// validation, engine opponents and per-move quality tracking.
package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corentings/chess/v2"

	"github.com/ndavis/chesstutor/internal/openings"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// moveEval is one recorded evaluation, kept for accuracy tracking. Ply is the
// number of moves played before the evaluated move.
type moveEval struct {
	MoveSAN        string
	BestMoveSAN    string
	CPLoss         int
	Classification string
	Color          chess.Color
	Ply            int
}

// session is the internal record for one game. positions[i] is the position
// before move i; the last element is the current position. mu serializes all
// access after creation.
type session struct {
	mu          sync.Mutex
	id          string
	playerColor chess.Color
	startFEN    string
	positions   []*chess.Position
	moves       []*chess.Move
	sans        []string
	evals       []moveEval
	createdAt   time.Time
}

func (s *session) current() *chess.Position {
	return s.positions[len(s.positions)-1]
}

func (s *session) push(mv *chess.Move) {
	pos := s.current()
	s.sans = append(s.sans, chess.AlgebraicNotation{}.Encode(pos, mv))
	s.moves = append(s.moves, mv)
	s.positions = append(s.positions, pos.Update(mv))
}

func (s *session) pop() {
	n := len(s.moves)
	s.moves = s.moves[:n-1]
	s.sans = s.sans[:n-1]
	s.positions = s.positions[:n]
}

func (s *session) isOver() bool {
	return s.current().Status() != chess.NoMethod
}

// result returns the PGN result string, or "*" while the game runs.
func (s *session) result() string {
	pos := s.current()
	switch pos.Status() {
	case chess.Checkmate:
		if pos.Turn() == chess.White {
			return "0-1"
		}
		return "1-0"
	case chess.Stalemate:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// accuracy returns the share of evaluated moves per color that lost at most
// 30 centipawns, as a percentage rounded to one decimal.
func (s *session) accuracy() map[string]float64 {
	counts := map[chess.Color]int{}
	good := map[chess.Color]int{}
	for _, ev := range s.evals {
		counts[ev.Color]++
		if ev.CPLoss <= 30 {
			good[ev.Color]++
		}
	}

	out := map[string]float64{"white": 0, "black": 0}
	for color, name := range map[chess.Color]string{chess.White: "white", chess.Black: "black"} {
		if counts[color] > 0 {
			pct := float64(good[color]) / float64(counts[color]) * 100
			out[name] = math.Round(pct*10) / 10
		}
	}
	return out
}

// isCheck reports whether the side to move is in check. SAN encoding marks
// checking moves, so the last move's suffix carries the answer.
func (s *session) isCheck() bool {
	if len(s.sans) == 0 {
		return false
	}
	last := s.sans[len(s.sans)-1]
	return strings.HasSuffix(last, "+") || strings.HasSuffix(last, "#")
}

func materialValue(t chess.PieceType) int {
	switch t {
	case chess.Pawn:
		return 1
	case chess.Knight, chess.Bishop:
		return 3
	case chess.Rook:
		return 5
	case chess.Queen:
		return 9
	default:
		return 0
	}
}

// material sums the piece values still on the board for each side, kings
// excluded.
func (s *session) material() map[string]int {
	b := s.current().Board()
	out := map[string]int{"white": 0, "black": 0}
	for sq := 0; sq < 64; sq++ {
		p := b.Piece(chess.Square(sq))
		if p == chess.NoPiece {
			continue
		}
		out[colorName(p.Color())] += materialValue(p.Type())
	}
	return out
}

// State is the outward-facing snapshot of a session.
type State struct {
	GameID         string                   `json:"game_id"`
	FEN            string                   `json:"fen"`
	MoveList       []string                 `json:"move_list"` // SAN
	LastMove       string                   `json:"last_move,omitempty"`
	LastMoveSAN    string                   `json:"last_move_san,omitempty"`
	PlayerColor    string                   `json:"player_color"`
	IsCheck        bool                     `json:"is_check"`
	IsGameOver     bool                     `json:"is_game_over"`
	Result         string                   `json:"result,omitempty"`
	LegalMoves     []string                 `json:"legal_moves"` // SAN
	Material       map[string]int           `json:"material"`
	Accuracy       map[string]float64       `json:"accuracy"`
	CurrentOpening *openings.Identification `json:"current_opening,omitempty"`
}

func colorName(c chess.Color) string {
	if c == chess.White {
		return "white"
	}
	return "black"
}

// moveToUCI renders a move in UCI notation.
func moveToUCI(move *chess.Move) string {
	if move == nil {
		return ""
	}

	uci := squareToString(move.S1()) + squareToString(move.S2())
	switch move.Promo() {
	case chess.Queen:
		uci += "q"
	case chess.Rook:
		uci += "r"
	case chess.Bishop:
		uci += "b"
	case chess.Knight:
		uci += "n"
	}
	return uci
}

func squareToString(sq chess.Square) string {
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// buildPGN renders the session as a PGN document: a small tag section, the
// FEN setup tags when the game started from a custom position, and numbered
// movetext ending with the result token.
func buildPGN(s *session, now time.Time) string {
	playerWhite := s.playerColor == chess.White

	var b strings.Builder
	tag := func(name, value string) {
		fmt.Fprintf(&b, "[%s %q]\n", name, value)
	}

	tag("Event", "Chess Tutor")
	tag("Date", now.Format("2006.01.02"))
	if playerWhite {
		tag("White", "Player")
		tag("Black", "Engine")
	} else {
		tag("White", "Engine")
		tag("Black", "Player")
	}
	tag("Result", s.result())
	if s.startFEN != startingFEN {
		tag("SetUp", "1")
		tag("FEN", s.startFEN)
	}
	b.WriteString("\n")
	b.WriteString(buildMovetext(s.startFEN, s.sans, s.result()))
	b.WriteString("\n")
	return b.String()
}

func buildMovetext(startFEN string, sans []string, result string) string {
	fields := strings.Fields(startFEN)
	moveNum := 1
	blackToMove := false
	if len(fields) >= 2 && fields[1] == "b" {
		blackToMove = true
	}
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			moveNum = n
		}
	}

	var parts []string
	i := 0
	if blackToMove && len(sans) > 0 {
		parts = append(parts, fmt.Sprintf("%d... %s", moveNum, sans[0]))
		moveNum++
		i = 1
	}
	for ; i < len(sans); i += 2 {
		if i+1 < len(sans) {
			parts = append(parts, fmt.Sprintf("%d. %s %s", moveNum, sans[i], sans[i+1]))
		} else {
			parts = append(parts, fmt.Sprintf("%d. %s", moveNum, sans[i]))
		}
		moveNum++
	}
	parts = append(parts, result)
	return strings.Join(parts, " ")
}
