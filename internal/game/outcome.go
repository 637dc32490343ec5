package game

type Phase string

const (
	PhaseOngoing Phase = "ongoing"
	PhaseWon     Phase = "won"
	PhaseDraw    Phase = "draw"
)

type Outcome struct {
	Phase  Phase
	Winner Cell
	Line   [3]int
}

func (o Outcome) Terminal() bool {
	return o.Phase != PhaseOngoing
}

// winLines in fixed evaluation order: rows, columns, diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func EvaluateOutcome(b Board) Outcome {
	for _, ln := range winLines {
		c := b[ln[0]]
		if c.IsPlayer() && b[ln[1]] == c && b[ln[2]] == c {
			return Outcome{Phase: PhaseWon, Winner: c, Line: ln}
		}
	}
	for _, c := range b {
		if c == Empty {
			return Outcome{Phase: PhaseOngoing}
		}
	}
	return Outcome{Phase: PhaseDraw}
}
