package game

import (
	"testing"
	"time"
)

func hasViolation(vs []string, want string) bool {
	for _, v := range vs {
		if v == want {
			return true
		}
	}
	return false
}

// drawMoves is a full legal game ending in a draw, X first.
func drawMoves(at time.Time, gaps ...time.Duration) []Move {
	seq := []struct {
		pos int
		p   Cell
	}{
		{0, X}, {1, O}, {2, X}, {4, O}, {3, X}, {5, O}, {7, X}, {6, O}, {8, X},
	}
	moves := make([]Move, 0, len(seq))
	for i, mv := range seq {
		if i > 0 && i-1 < len(gaps) {
			at = at.Add(gaps[i-1])
		}
		moves = append(moves, Move{Position: mv.pos, Player: mv.p, At: at})
	}
	return moves
}

var testBase = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestValidateSequenceCleanGame(t *testing.T) {
	moves := drawMoves(testBase,
		1500*time.Millisecond, 3*time.Second, 2200*time.Millisecond, 4*time.Second,
		1100*time.Millisecond, 2800*time.Millisecond, 5*time.Second, 1700*time.Millisecond)
	v := ValidateSequence(moves, DefaultThresholds())
	if !v.Consistent || v.Risk != RiskLow || len(v.Violations) != 0 {
		t.Fatalf("expected clean verdict, got %+v", v)
	}
}

func TestValidateSequenceFlagsRapidMoves(t *testing.T) {
	moves := []Move{
		{Position: 0, Player: X, At: testBase},
		{Position: 1, Player: O, At: testBase.Add(50 * time.Millisecond)},
	}
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Risk != RiskHigh || !hasViolation(v.Violations, ViolationRapidMoves) {
		t.Fatalf("expected rapid_moves at high risk, got %+v", v)
	}
	if !v.Consistent {
		t.Fatalf("timing alone must not mark the replay inconsistent: %+v", v)
	}
}

func TestValidateSequenceFlagsTurnOrder(t *testing.T) {
	moves := []Move{
		{Position: 0, Player: X},
		{Position: 1, Player: X},
	}
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Consistent || v.Risk != RiskHigh || !hasViolation(v.Violations, ViolationTurnOrder) {
		t.Fatalf("expected turn_order violation, got %+v", v)
	}
}

func TestValidateSequenceFlagsIllegalMove(t *testing.T) {
	moves := []Move{
		{Position: 0, Player: X},
		{Position: 0, Player: O},
	}
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Consistent || v.Risk != RiskHigh || !hasViolation(v.Violations, ViolationIllegalMove) {
		t.Fatalf("expected illegal_move violation, got %+v", v)
	}
}

func TestValidateSequenceFlagsBoardMismatch(t *testing.T) {
	claimed := Board{Empty, Empty, Empty, Empty, X, Empty, Empty, Empty, Empty}
	moves := []Move{
		{Position: 0, Player: X, Board: &claimed},
	}
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Consistent || v.Risk != RiskHigh || !hasViolation(v.Violations, ViolationBoardMismatch) {
		t.Fatalf("expected board_mismatch violation, got %+v", v)
	}
}

func TestValidateSequenceMatchingSnapshotsPass(t *testing.T) {
	var board Board
	board[0] = X
	first := board
	board[1] = O
	second := board
	moves := []Move{
		{Position: 0, Player: X, Board: &first},
		{Position: 1, Player: O, Board: &second},
	}
	v := ValidateSequence(moves, DefaultThresholds())
	if !v.Consistent || len(v.Violations) != 0 {
		t.Fatalf("expected matching snapshots to pass, got %+v", v)
	}
}

func TestValidateSequenceFlagsUniformTiming(t *testing.T) {
	moves := drawMoves(testBase,
		500*time.Millisecond, 500*time.Millisecond, 500*time.Millisecond,
		500*time.Millisecond, 500*time.Millisecond)[:6]
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Risk != RiskMedium || !hasViolation(v.Violations, ViolationUniformTiming) {
		t.Fatalf("expected uniform_timing at medium risk, got %+v", v)
	}
	if !v.Consistent {
		t.Fatalf("uniform timing must not mark the replay inconsistent: %+v", v)
	}
}

func TestValidateSequenceUniformTimingKeepsHighRisk(t *testing.T) {
	claimed := Board{Empty, Empty, Empty, Empty, X, Empty, Empty, Empty, Empty}
	moves := drawMoves(testBase,
		500*time.Millisecond, 500*time.Millisecond, 500*time.Millisecond,
		500*time.Millisecond, 500*time.Millisecond)[:6]
	moves[0].Board = &claimed
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Risk != RiskHigh {
		t.Fatalf("expected high risk to stick, got %+v", v)
	}
	if !hasViolation(v.Violations, ViolationUniformTiming) || !hasViolation(v.Violations, ViolationBoardMismatch) {
		t.Fatalf("expected both violations recorded, got %+v", v)
	}
}

func TestValidateSequenceEmptyIsClean(t *testing.T) {
	v := ValidateSequence(nil, DefaultThresholds())
	if !v.Consistent || v.Risk != RiskLow || len(v.Violations) != 0 {
		t.Fatalf("expected empty sequence to be clean, got %+v", v)
	}
}

func TestValidateSequenceSkipsUntimestampedMoves(t *testing.T) {
	moves := []Move{
		{Position: 0, Player: X, At: testBase},
		{Position: 1, Player: O},
		{Position: 2, Player: X, At: testBase.Add(150 * time.Millisecond)},
	}
	v := ValidateSequence(moves, DefaultThresholds())
	if v.Risk != RiskLow || len(v.Violations) != 0 {
		t.Fatalf("expected missing timestamps to be skipped, got %+v", v)
	}
}

func TestDetectPatternsNeedsEnoughGames(t *testing.T) {
	games := []Summary{
		{Result: ResultWon, Duration: time.Second, Moves: 5},
		{Result: ResultWon, Duration: time.Second, Moves: 5},
		{Result: ResultWon, Duration: time.Second, Moves: 5},
		{Result: ResultWon, Duration: time.Second, Moves: 5},
	}
	rep := DetectSuspiciousPatterns(games, DefaultThresholds())
	if rep.Suspicious || rep.Games != 4 {
		t.Fatalf("expected short history to pass, got %+v", rep)
	}
}

func TestDetectPatternsFlagsHighWinRate(t *testing.T) {
	games := make([]Summary, 10)
	for i := range games {
		games[i] = Summary{Result: ResultWon, Duration: 30 * time.Second, Moves: 7}
	}
	rep := DetectSuspiciousPatterns(games, DefaultThresholds())
	if !rep.Suspicious || len(rep.Reasons) != 1 || rep.Reasons[0] != PatternHighWinRate {
		t.Fatalf("expected only high_win_rate, got %+v", rep)
	}
	if rep.WinRate != 1.0 {
		t.Fatalf("expected win rate 1.0, got %f", rep.WinRate)
	}
}

func TestDetectPatternsFlagsFastGames(t *testing.T) {
	games := make([]Summary, 6)
	for i := range games {
		result := ResultLost
		if i%2 == 0 {
			result = ResultWon
		}
		games[i] = Summary{Result: result, Duration: 2 * time.Second, Moves: 9}
	}
	rep := DetectSuspiciousPatterns(games, DefaultThresholds())
	if !rep.Suspicious || len(rep.Reasons) != 1 || rep.Reasons[0] != PatternFastGames {
		t.Fatalf("expected only fast_games, got %+v", rep)
	}
}

func TestDetectPatternsFlagsQuickWins(t *testing.T) {
	games := make([]Summary, 5)
	for i := range games {
		games[i] = Summary{Result: ResultWon, Duration: 10 * time.Second, Moves: 5}
	}
	rep := DetectSuspiciousPatterns(games, DefaultThresholds())
	if !rep.Suspicious || !hasViolation(rep.Reasons, PatternQuickWins) {
		t.Fatalf("expected quick_wins, got %+v", rep)
	}
	if hasViolation(rep.Reasons, PatternHighWinRate) {
		t.Fatalf("win rate needs ten games, got %+v", rep)
	}
}

func TestDetectPatternsSkipsDurationWithoutTiming(t *testing.T) {
	games := make([]Summary, 10)
	for i := range games {
		games[i] = Summary{Result: ResultWon, Moves: 9}
	}
	rep := DetectSuspiciousPatterns(games, DefaultThresholds())
	if hasViolation(rep.Reasons, PatternFastGames) {
		t.Fatalf("expected no duration flag without timing data, got %+v", rep)
	}
	if !hasViolation(rep.Reasons, PatternHighWinRate) {
		t.Fatalf("expected winning streak still flagged, got %+v", rep)
	}
}

func TestDetectPatternsCleanPlayer(t *testing.T) {
	games := make([]Summary, 12)
	for i := range games {
		result := ResultLost
		moves := 7
		if i%2 == 0 {
			result = ResultWon
			moves = 9
		}
		games[i] = Summary{Result: result, Duration: 45 * time.Second, Moves: moves}
	}
	rep := DetectSuspiciousPatterns(games, DefaultThresholds())
	if rep.Suspicious || len(rep.Reasons) != 0 {
		t.Fatalf("expected ordinary record to pass, got %+v", rep)
	}
}
