// Package engine drives a UCI chess engine (Stockfish) over stdin/stdout
// pipes for full-strength position analysis and move evaluation.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corentings/chess/v2"

	"github.com/ndavis/chesstutor/internal/logger"
)

// mateScore folds forced-mate scores into the centipawn scale: mate in n for
// the side to move becomes mateScore-n, mate against it -(mateScore+n).
const mateScore = 10000

const (
	initTimeout   = 2 * time.Second
	searchTimeout = 30 * time.Second
)

// Line is one principal variation from a search. ScoreCP is from the side to
// move's perspective with mate scores folded in; Mate carries the raw
// mate-in-N when the score is a forced mate.
type Line struct {
	ScoreCP int      `json:"score_cp"`
	Mate    *int     `json:"mate"`
	PV      []string `json:"pv"` // SAN
}

// MoveEvaluation is the verdict on a single played move. Evals are in pawns
// from the mover's perspective.
type MoveEvaluation struct {
	MoveSAN        string   `json:"move_san"`
	BestMoveSAN    string   `json:"best_move_san"`
	CPLoss         int      `json:"cp_loss"`
	EvalBefore     float64  `json:"eval_before"`
	EvalAfter      float64  `json:"eval_after"`
	Classification string   `json:"classification"`
	IsBest         bool     `json:"is_best"`
	BestLine       []string `json:"best_line"` // SAN
}

// Engine is a single engine process. It runs one search at a time; use
// a Pool for concurrent analysis.
type Engine struct {
	path string
	log  *logger.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.Writer
	stdout *bufio.Reader
}

// New starts an engine process and completes the UCI handshake.
func New(path string) (*Engine, error) {
	log := logger.Default().WithPrefix("engine")

	if path == "" {
		path = "stockfish"
	}

	log.Info("starting engine: %s", path)
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	e := &Engine{
		path:   path,
		log:    log,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}
	if err := e.init(); err != nil {
		return nil, fmt.Errorf("uci handshake: %w", err)
	}

	log.Info("engine ready")
	return e, nil
}

func (e *Engine) init() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok", initTimeout); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok", initTimeout)
}

// Close asks the engine to quit and waits for the process to exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return nil
	}

	_ = e.sendLocked("quit")
	err := e.cmd.Wait()
	e.cmd = nil
	e.log.Debug("engine process exited: %v", err)
	return err
}

// AnalyzePosition runs a fixed-depth multi-PV search and returns the top
// lines ranked best first, with principal variations in SAN.
func (e *Engine) AnalyzePosition(ctx context.Context, fen string, depth, multipv int) ([]Line, error) {
	if depth <= 0 {
		depth = 20
	}
	if multipv <= 0 {
		multipv = 1
	}

	e.mu.Lock()
	lines, _, err := e.searchLocked(ctx, fen, depth, multipv)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ranks := make([]int, 0, len(lines))
	for rank := range lines {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	out := make([]Line, 0, len(ranks))
	for _, rank := range ranks {
		raw := lines[rank]
		san, err := sanLine(fen, raw.pv)
		if err != nil {
			return nil, fmt.Errorf("convert pv: %w", err)
		}
		out = append(out, Line{ScoreCP: raw.scoreCP, Mate: raw.mate, PV: san})
	}
	return out, nil
}

// BestMove returns the engine's best move in UCI notation.
func (e *Engine) BestMove(ctx context.Context, fen string, depth int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, best, err := e.searchLocked(ctx, fen, depth, 1)
	if err != nil {
		return "", err
	}
	if best == "" || best == "(none)" {
		return "", errors.New("engine returned no move")
	}
	return best, nil
}

// EvaluateMove scores a played move against the engine's best: one search of
// the position before the move to find the best line, one search after it to
// measure what the move gave up.
func (e *Engine) EvaluateMove(ctx context.Context, fen, moveUCI string, depth int) (MoveEvaluation, error) {
	pos, err := positionFromFEN(fen)
	if err != nil {
		return MoveEvaluation{}, err
	}
	move, err := chess.UCINotation{}.Decode(pos, moveUCI)
	if err != nil {
		return MoveEvaluation{}, fmt.Errorf("decode move %q: %w", moveUCI, err)
	}
	moveSAN := chess.AlgebraicNotation{}.Encode(pos, move)
	fenAfter := pos.Update(move).String()

	e.mu.Lock()
	before, _, err := e.searchLocked(ctx, fen, depth, 1)
	if err != nil {
		e.mu.Unlock()
		return MoveEvaluation{}, err
	}
	after, _, err := e.searchLocked(ctx, fenAfter, depth, 1)
	e.mu.Unlock()
	if err != nil {
		return MoveEvaluation{}, err
	}

	bestRaw, ok := before[1]
	if !ok || len(bestRaw.pv) == 0 {
		return MoveEvaluation{}, errors.New("engine produced no best line")
	}
	bestLine, err := sanLine(fen, bestRaw.pv)
	if err != nil {
		return MoveEvaluation{}, fmt.Errorf("convert best line: %w", err)
	}

	afterRaw, ok := after[1]
	if !ok {
		return MoveEvaluation{}, errors.New("engine produced no score after move")
	}

	// Both searches score from their side to move, so the mover's eval after
	// the move is the negation of the opponent's.
	evalBefore := bestRaw.scoreCP
	evalAfter := -afterRaw.scoreCP

	cpLoss := evalBefore - evalAfter
	if cpLoss < 0 {
		cpLoss = 0
	}

	classification, isBest := Classify(cpLoss)

	return MoveEvaluation{
		MoveSAN:        moveSAN,
		BestMoveSAN:    bestLine[0],
		CPLoss:         cpLoss,
		EvalBefore:     float64(evalBefore) / 100.0,
		EvalAfter:      float64(evalAfter) / 100.0,
		Classification: classification,
		IsBest:         isBest,
		BestLine:       bestLine,
	}, nil
}

type rawLine struct {
	scoreCP int
	mate    *int
	pv      []string
}

// searchLocked runs one "go depth" search and collects the final info line
// per multipv rank. Callers hold e.mu.
func (e *Engine) searchLocked(ctx context.Context, fen string, depth, multipv int) (map[int]rawLine, string, error) {
	if err := e.sendLocked("ucinewgame"); err != nil {
		return nil, "", err
	}
	if err := e.sendLocked(fmt.Sprintf("setoption name MultiPV value %d", multipv)); err != nil {
		return nil, "", err
	}
	if err := e.sendLocked("position fen " + fen); err != nil {
		return nil, "", err
	}
	if err := e.sendLocked(fmt.Sprintf("go depth %d", depth)); err != nil {
		return nil, "", err
	}

	lines := map[int]rawLine{}
	deadline := time.Now().Add(searchTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		if time.Now().After(deadline) {
			return nil, "", errors.New("engine search timed out")
		}

		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return nil, "", fmt.Errorf("read engine output: %w", err)
		}
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "info ") {
			if rank, rl, ok := parseInfoLine(line); ok {
				lines[rank] = rl
			}
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			best := ""
			if len(fields) >= 2 {
				best = fields[1]
			}
			return lines, best, nil
		}
	}
}

// parseInfoLine extracts the multipv rank, score and principal variation from
// a UCI info line. Lines without a score (depth announcements, currmove
// chatter) are skipped.
func parseInfoLine(line string) (int, rawLine, bool) {
	fields := strings.Fields(line)
	rank := 1
	rl := rawLine{}
	haveScore := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					rank = v
				}
			}
		case "score":
			if i+2 >= len(fields) {
				continue
			}
			v, err := strconv.Atoi(fields[i+2])
			if err != nil {
				continue
			}
			switch fields[i+1] {
			case "cp":
				rl.scoreCP = v
				haveScore = true
			case "mate":
				m := v
				rl.mate = &m
				rl.scoreCP = foldMate(m)
				haveScore = true
			}
		case "pv":
			rl.pv = append([]string{}, fields[i+1:]...)
			i = len(fields)
		}
	}

	return rank, rl, haveScore
}

func foldMate(m int) int {
	if m > 0 {
		return mateScore - m
	}
	return -mateScore - m
}

func positionFromFEN(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}

// sanLine converts a UCI move sequence starting at fen into SAN.
func sanLine(fen string, ucis []string) ([]string, error) {
	pos, err := positionFromFEN(fen)
	if err != nil {
		return nil, err
	}

	san := make([]string, 0, len(ucis))
	for _, uci := range ucis {
		move, err := chess.UCINotation{}.Decode(pos, uci)
		if err != nil {
			return nil, fmt.Errorf("decode pv move %q: %w", uci, err)
		}
		san = append(san, chess.AlgebraicNotation{}.Encode(pos, move))
		pos = pos.Update(move)
	}
	return san, nil
}

func (e *Engine) send(cmd string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sendLocked(cmd)
}

func (e *Engine) sendLocked(cmd string) error {
	_, err := e.stdin.Write([]byte(cmd + "\n"))
	return err
}

func (e *Engine) waitFor(marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %s", marker)
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.Contains(line, marker) {
			return nil
		}
	}
}
