package game

import (
	"math"
	"time"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

const (
	ViolationTurnOrder     = "turn_order"
	ViolationIllegalMove   = "illegal_move"
	ViolationBoardMismatch = "board_mismatch"
	ViolationRapidMoves    = "rapid_moves"
	ViolationUniformTiming = "uniform_timing"
)

// Thresholds tunes the replay and aggregate checks. Zero values are not
// usable; start from DefaultThresholds and override per deployment.
type Thresholds struct {
	MinMoveGap      time.Duration
	BotGapCeiling   time.Duration
	BotWindow       int
	MaxBotJitter    time.Duration
	MinGames        int
	WinRateMax      float64
	WinRateMinGames int
	FastGameAvg     time.Duration
	QuickWinMoves   int
	QuickWinShare   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMoveGap:      100 * time.Millisecond,
		BotGapCeiling:   2 * time.Second,
		BotWindow:       5,
		MaxBotJitter:    150 * time.Millisecond,
		MinGames:        5,
		WinRateMax:      0.95,
		WinRateMinGames: 10,
		FastGameAvg:     5 * time.Second,
		QuickWinMoves:   5,
		QuickWinShare:   0.8,
	}
}

// Move is one step of a reported game. Board, when present, is the state the
// client claims followed the move and is checked against the replay.
type Move struct {
	Position int
	Player   Cell
	At       time.Time
	Board    *Board
}

type Verdict struct {
	Consistent bool
	Risk       Risk
	Violations []string
}

func (v *Verdict) flag(r Risk, violation string) {
	v.Violations = append(v.Violations, violation)
	if riskRank(r) > riskRank(v.Risk) {
		v.Risk = r
	}
}

func riskRank(r Risk) int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// ValidateSequence replays moves from an empty board, X first, and reports
// rule violations and timing anomalies. Replay continues past a violation so
// a single bad move does not mask later ones; after any move the expected
// turn is the opponent of whoever the client claims moved.
func ValidateSequence(moves []Move, th Thresholds) Verdict {
	v := Verdict{Consistent: true, Risk: RiskLow}
	var board Board
	turn := X
	for _, mv := range moves {
		if mv.Player != turn {
			v.Consistent = false
			v.flag(RiskHigh, ViolationTurnOrder)
		}
		res := Apply(board, mv.Position, mv.Player)
		if !res.Accepted {
			v.Consistent = false
			v.flag(RiskHigh, ViolationIllegalMove)
		}
		board = res.Board
		if mv.Board != nil && *mv.Board != board {
			v.Consistent = false
			v.flag(RiskHigh, ViolationBoardMismatch)
		}
		turn = Opponent(mv.Player)
	}

	gaps := moveGaps(moves)
	for _, g := range gaps {
		if g < th.MinMoveGap {
			v.flag(RiskHigh, ViolationRapidMoves)
			break
		}
	}
	if th.BotWindow > 0 && len(gaps) >= th.BotWindow {
		if uniformWindow(gaps[len(gaps)-th.BotWindow:], th) {
			v.flag(RiskMedium, ViolationUniformTiming)
		}
	}
	return v
}

// moveGaps returns the deltas between consecutive timestamped moves.
// Untimestamped moves are skipped rather than treated as instant.
func moveGaps(moves []Move) []time.Duration {
	var gaps []time.Duration
	var prev time.Time
	for _, mv := range moves {
		if mv.At.IsZero() {
			continue
		}
		if !prev.IsZero() {
			gaps = append(gaps, mv.At.Sub(prev))
		}
		prev = mv.At
	}
	return gaps
}

// uniformWindow reports whether every gap is short and the spread is tight
// enough to look machine-driven.
func uniformWindow(gaps []time.Duration, th Thresholds) bool {
	var sum time.Duration
	for _, g := range gaps {
		if g <= 0 || g >= th.BotGapCeiling {
			return false
		}
		sum += g
	}
	mean := float64(sum) / float64(len(gaps))
	var variance float64
	for _, g := range gaps {
		d := float64(g) - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(gaps)))
	return sd < float64(th.MaxBotJitter)
}

const (
	ResultWon  = "won"
	ResultLost = "lost"
	ResultDraw = "draw"
)

// Summary is the per-game aggregate used for cross-game screening.
type Summary struct {
	Result   string
	Duration time.Duration
	Moves    int
}

const (
	PatternHighWinRate = "high_win_rate"
	PatternFastGames   = "fast_games"
	PatternQuickWins   = "quick_wins"
)

type PatternReport struct {
	Suspicious   bool
	Reasons      []string
	Games        int
	WinRate      float64
	AvgDuration  time.Duration
	QuickWinRate float64
}

// DetectSuspiciousPatterns screens a player's recent games for statistically
// implausible play. Fewer than MinGames summaries is never suspicious. The
// average-duration check only fires when at least one game carries timing.
func DetectSuspiciousPatterns(games []Summary, th Thresholds) PatternReport {
	rep := PatternReport{Games: len(games)}
	if len(games) < th.MinGames {
		return rep
	}
	wins, quick := 0, 0
	var total time.Duration
	for _, g := range games {
		total += g.Duration
		if g.Result == ResultWon {
			wins++
			if g.Moves > 0 && g.Moves <= th.QuickWinMoves {
				quick++
			}
		}
	}
	rep.WinRate = float64(wins) / float64(len(games))
	rep.QuickWinRate = float64(quick) / float64(len(games))
	if total > 0 {
		rep.AvgDuration = total / time.Duration(len(games))
	}
	if len(games) >= th.WinRateMinGames && rep.WinRate > th.WinRateMax {
		rep.Reasons = append(rep.Reasons, PatternHighWinRate)
	}
	if total > 0 && rep.AvgDuration < th.FastGameAvg {
		rep.Reasons = append(rep.Reasons, PatternFastGames)
	}
	if rep.QuickWinRate > th.QuickWinShare {
		rep.Reasons = append(rep.Reasons, PatternQuickWins)
	}
	rep.Suspicious = len(rep.Reasons) > 0
	return rep
}
