package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corentings/chess/v2"
	"github.com/google/uuid"

	"github.com/ndavis/chesstutor/internal/apperr"
	"github.com/ndavis/chesstutor/internal/engine"
	"github.com/ndavis/chesstutor/internal/logger"
	"github.com/ndavis/chesstutor/internal/motif"
	"github.com/ndavis/chesstutor/internal/openings"
)

// Evaluator is the engine surface the manager needs. *engine.Pool satisfies
// it.
type Evaluator interface {
	BestMove(ctx context.Context, fen string, depth int) (string, error)
	EvaluateMove(ctx context.Context, fen, moveUCI string, depth int) (engine.MoveEvaluation, error)
}

// Evaluation is an engine verdict enriched with the move's tactical motif.
type Evaluation struct {
	engine.MoveEvaluation
	TacticalMotif *string `json:"tactical_motif"`
}

// Record is a replayable snapshot of a session, used for post-game mining.
type Record struct {
	GameID      string
	StartingFEN string
	MovesUCI    []string
	PlayerColor string
	IsOver      bool
}

// Manager owns all live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	eval  Evaluator
	book  *openings.Book
	depth int
	now   func() time.Time
	log   *logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a session manager evaluating with the given engine at
// the given search depth.
func NewManager(eval Evaluator, book *openings.Book, depth int, opts ...Option) *Manager {
	m := &Manager{
		sessions: map[string]*session{},
		eval:     eval,
		book:     book,
		depth:    depth,
		now:      time.Now,
		log:      logger.Default().WithPrefix("game"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSession starts a game. playerColor is "white" or "black" (default
// white); fen overrides the starting position.
func (m *Manager) NewSession(playerColor, fen string) (State, error) {
	color := chess.White
	switch playerColor {
	case "", "white":
	case "black":
		color = chess.Black
	default:
		return State{}, apperr.InvalidArgument("player_color", "must be \"white\" or \"black\"")
	}

	if fen == "" {
		fen = startingFEN
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return State{}, apperr.InvalidArgument("fen", err.Error())
	}

	s := &session{
		id:          uuid.NewString(),
		playerColor: color,
		startFEN:    fen,
		positions:   []*chess.Position{chess.NewGame(opt).Position()},
		createdAt:   m.now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.log.Info("new session %s (player=%s)", s.id, colorName(color))
	return m.buildState(s), nil
}

// State returns the current snapshot of a session.
func (m *Manager) State(id string) (State, error) {
	s, err := m.get(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.buildState(s), nil
}

// MakeMove plays one move, given in SAN or UCI.
func (m *Manager) MakeMove(id, move string) (State, error) {
	s, err := m.get(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOver() {
		return State{}, apperr.BadRequest(fmt.Sprintf("game is already over: %s", s.result()))
	}

	mv, err := parseMove(s.current(), move)
	if err != nil {
		return State{}, err
	}

	s.push(mv)
	m.log.Debug("session %s: played %s", id, s.sans[len(s.sans)-1])
	return m.buildState(s), nil
}

// EngineMove asks the engine for its move and plays it.
func (m *Manager) EngineMove(ctx context.Context, id string) (State, error) {
	s, err := m.get(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOver() {
		return State{}, apperr.BadRequest(fmt.Sprintf("game is already over: %s", s.result()))
	}

	pos := s.current()
	best, err := m.eval.BestMove(ctx, pos.String(), m.depth)
	if err != nil {
		return State{}, apperr.Internal(err)
	}
	mv, err := chess.UCINotation{}.Decode(pos, best)
	if err != nil {
		return State{}, apperr.Internal(fmt.Errorf("engine suggested %q: %w", best, err))
	}

	s.push(mv)
	m.log.Debug("session %s: engine played %s", id, s.sans[len(s.sans)-1])
	return m.buildState(s), nil
}

// EvaluateMove scores a candidate move without playing it, tags it with its
// tactical motif, and records the verdict for accuracy tracking.
func (m *Manager) EvaluateMove(ctx context.Context, id, move string) (Evaluation, error) {
	s, err := m.get(id)
	if err != nil {
		return Evaluation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOver() {
		return Evaluation{}, apperr.BadRequest(fmt.Sprintf("game is already over: %s", s.result()))
	}

	pos := s.current()
	mv, err := parseMove(pos, move)
	if err != nil {
		return Evaluation{}, err
	}

	ev, err := m.eval.EvaluateMove(ctx, pos.String(), moveToUCI(mv), m.depth)
	if err != nil {
		return Evaluation{}, apperr.Internal(err)
	}

	out := Evaluation{MoveEvaluation: ev}
	if tag, ok := motif.Detect(pos, mv); ok {
		name := string(tag)
		out.TacticalMotif = &name
	}

	s.evals = append(s.evals, moveEval{
		MoveSAN:        ev.MoveSAN,
		BestMoveSAN:    ev.BestMoveSAN,
		CPLoss:         ev.CPLoss,
		Classification: ev.Classification,
		Color:          pos.Turn(),
		Ply:            len(s.moves),
	})

	return out, nil
}

// LegalMoves lists legal moves in SAN, optionally only those leaving the
// given square.
func (m *Manager) LegalMoves(id, square string) ([]string, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var from chess.Square
	filtered := square != ""
	if filtered {
		from, err = parseSquare(square)
		if err != nil {
			return nil, err
		}
	}

	pos := s.current()
	moves := []string{}
	for _, mv := range pos.ValidMoves() {
		if filtered && mv.S1() != from {
			continue
		}
		moves = append(moves, chess.AlgebraicNotation{}.Encode(pos, &mv))
	}
	return moves, nil
}

// Undo takes back the last move. When the engine has already replied, both
// moves come back so the player is on turn again. Evaluations recorded past
// the new head are dropped.
func (m *Manager) Undo(id string) (State, error) {
	s, err := m.get(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.moves) == 0 {
		return State{}, apperr.BadRequest("no moves to undo")
	}

	s.pop()
	if len(s.moves) > 0 && s.current().Turn() != s.playerColor {
		s.pop()
	}

	kept := s.evals[:0]
	for _, ev := range s.evals {
		if ev.Ply < len(s.moves) {
			kept = append(kept, ev)
		}
	}
	s.evals = kept

	return m.buildState(s), nil
}

// PGN exports the session as a PGN document.
func (m *Manager) PGN(id string) (string, error) {
	s, err := m.get(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildPGN(s, m.now()), nil
}

// Snapshot returns a replayable record of the session.
func (m *Manager) Snapshot(id string) (Record, error) {
	s, err := m.get(id)
	if err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ucis := make([]string, 0, len(s.moves))
	for _, mv := range s.moves {
		ucis = append(ucis, moveToUCI(mv))
	}
	return Record{
		GameID:      s.id,
		StartingFEN: s.startFEN,
		MovesUCI:    ucis,
		PlayerColor: colorName(s.playerColor),
		IsOver:      s.isOver(),
	}, nil
}

func (m *Manager) get(id string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("game", id)
	}
	return s, nil
}

func (m *Manager) buildState(s *session) State {
	pos := s.current()

	legal := []string{}
	for _, mv := range pos.ValidMoves() {
		legal = append(legal, chess.AlgebraicNotation{}.Encode(pos, &mv))
	}

	st := State{
		GameID:      s.id,
		FEN:         pos.String(),
		MoveList:    append([]string{}, s.sans...),
		PlayerColor: colorName(s.playerColor),
		IsCheck:     s.isCheck(),
		LegalMoves:  legal,
		Material:    s.material(),
		Accuracy:    s.accuracy(),
	}
	if len(s.moves) > 0 {
		st.LastMove = moveToUCI(s.moves[len(s.moves)-1])
		st.LastMoveSAN = s.sans[len(s.sans)-1]
	}
	if s.isOver() {
		st.IsGameOver = true
		st.Result = s.result()
	}
	if m.book != nil && len(s.moves) > 0 {
		st.CurrentOpening = m.book.Identify(s.moves)
	}
	return st
}

// parseMove accepts SAN first, then UCI.
func parseMove(pos *chess.Position, s string) (*chess.Move, error) {
	if mv, err := (chess.AlgebraicNotation{}).Decode(pos, s); err == nil {
		return mv, nil
	}
	mv, err := (chess.UCINotation{}).Decode(pos, s)
	if err != nil {
		return nil, apperr.InvalidArgument("move", fmt.Sprintf("%q is not a legal move", s))
	}
	return mv, nil
}

func parseSquare(s string) (chess.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, apperr.InvalidArgument("square", fmt.Sprintf("%q is not a square", s))
	}
	return chess.Square(int(s[1]-'1')*8 + int(s[0]-'a')), nil
}
