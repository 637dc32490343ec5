package game

const (
	ReasonInvalidBoard    = "invalid_board"
	ReasonInvalidPosition = "invalid_position"
	ReasonInvalidPlayer   = "invalid_player"
	ReasonOccupied        = "occupied"
	ReasonGameOver        = "game_over"
)

type MoveResult struct {
	Accepted bool
	Board    Board
	Outcome  Outcome
	Reason   string
}

// Apply places p at pos and evaluates the result. It never panics on bad
// input: malformed boards and illegal moves come back as Accepted=false with
// a reason. A terminal board rejects every move, even onto an empty cell.
func Apply(b Board, pos int, p Cell) MoveResult {
	clean := sanitize(b)
	if !balanced(clean) {
		return MoveResult{Board: clean, Outcome: Outcome{Phase: PhaseOngoing}, Reason: ReasonInvalidBoard}
	}
	outcome := EvaluateOutcome(clean)
	if outcome.Terminal() {
		return MoveResult{Board: clean, Outcome: outcome, Reason: ReasonGameOver}
	}
	if pos < 0 || pos >= len(clean) {
		return MoveResult{Board: clean, Outcome: outcome, Reason: ReasonInvalidPosition}
	}
	if !p.IsPlayer() {
		return MoveResult{Board: clean, Outcome: outcome, Reason: ReasonInvalidPlayer}
	}
	if clean[pos] != Empty {
		return MoveResult{Board: clean, Outcome: outcome, Reason: ReasonOccupied}
	}
	clean[pos] = p
	return MoveResult{Accepted: true, Board: clean, Outcome: EvaluateOutcome(clean)}
}
