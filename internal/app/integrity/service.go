package integrity

import (
	"context"
	"time"

	"tictac-arena/internal/energy"
	"tictac-arena/internal/game"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/store"
)

// Service runs the replay, aggregate and energy-audit checks and persists a
// flag for anything above low risk.
type Service struct {
	store  *store.Store
	energy *energy.Manager
	ledger *ledger.Ledger
	th     game.Thresholds
}

func NewService(st *store.Store, mgr *energy.Manager, led *ledger.Ledger, th game.Thresholds) *Service {
	return &Service{store: st, energy: mgr, ledger: led, th: th}
}

// ReviewGame replays a game's stored moves from an empty board and checks
// the human player's timing. The verdict is returned either way; a flag row
// is written only above low risk.
func (s *Service) ReviewGame(ctx context.Context, gameID, source string) (*ReviewResponse, error) {
	if gameID == "" {
		return nil, ErrInvalidRequest
	}
	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.ListMoves(ctx, gameID)
	if err != nil {
		return nil, err
	}
	v := game.ValidateSequence(replayMoves(stored), s.th)
	resp := &ReviewResponse{
		GameID:     g.ID,
		PlayerID:   g.PlayerID,
		Consistent: v.Consistent,
		Risk:       string(v.Risk),
		Violations: v.Violations,
	}
	if resp.Violations == nil {
		resp.Violations = []string{}
	}
	if v.Risk != game.RiskLow {
		flagID, err := s.store.InsertIntegrityFlag(ctx, g.PlayerID, &g.ID, string(v.Risk), v.Violations, source)
		if err != nil {
			return nil, err
		}
		resp.FlagID = flagID
	}
	return resp, nil
}

// ScanPlayer screens a player's recent finished games for statistically
// implausible play. Aggregate evidence is circumstantial, so flags land at
// medium risk.
func (s *Service) ScanPlayer(ctx context.Context, playerID string, limit int, source string) (*ScanResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	games, err := s.store.RecentFinishedGames(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}
	rep := game.DetectSuspiciousPatterns(summarize(games), s.th)
	resp := &ScanResponse{
		PlayerID:      playerID,
		Games:         rep.Games,
		Suspicious:    rep.Suspicious,
		Reasons:       rep.Reasons,
		WinRate:       rep.WinRate,
		AvgDurationMS: rep.AvgDuration.Milliseconds(),
		QuickWinRate:  rep.QuickWinRate,
	}
	if resp.Reasons == nil {
		resp.Reasons = []string{}
	}
	if rep.Suspicious {
		flagID, err := s.store.InsertIntegrityFlag(ctx, playerID, nil, string(game.RiskMedium), rep.Reasons, source)
		if err != nil {
			return nil, err
		}
		resp.FlagID = flagID
	}
	return resp, nil
}

// TamperScan walks the player's energy audit trail looking for level jumps
// the regen rate cannot explain. A hit is direct evidence and flags high.
func (s *Service) TamperScan(ctx context.Context, playerID string, limit int, source string) (*TamperResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	entries, err := s.ledger.History(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}
	samples := make([]energy.Sample, 0, len(entries))
	for _, e := range entries {
		samples = append(samples, energy.Sample{Level: e.LevelAfter, At: e.CreatedAt})
	}
	v := s.energy.DetectTampering(samples)
	resp := &TamperResponse{
		PlayerID:   playerID,
		Samples:    len(samples),
		Suspicious: v.Suspicious,
		Reason:     v.Reason,
		Index:      v.Index,
	}
	if v.Suspicious {
		flagID, err := s.store.InsertIntegrityFlag(ctx, playerID, nil, string(game.RiskHigh), []string{v.Reason}, source)
		if err != nil {
			return nil, err
		}
		resp.FlagID = flagID
	}
	return resp, nil
}

func (s *Service) ListFlags(ctx context.Context, f store.FlagFilter, limit, offset int) (*FlagsResponse, error) {
	flags, err := s.store.ListIntegrityFlags(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]FlagItem, 0, len(flags))
	for _, fl := range flags {
		item := FlagItem{
			ID:         fl.ID,
			PlayerID:   fl.PlayerID,
			GameID:     fl.GameID,
			Risk:       fl.Risk,
			Violations: fl.Violations,
			Source:     fl.Source,
			CreatedAt:  fl.CreatedAt,
		}
		if item.Violations == nil {
			item.Violations = []string{}
		}
		items = append(items, item)
	}
	return &FlagsResponse{Flags: items}, nil
}

// replayMoves converts stored rows into replay input. Bot replies land in
// the same transaction as the player move, so their timestamps say nothing
// about the client and are dropped from the timing checks.
func replayMoves(stored []store.Move) []game.Move {
	moves := make([]game.Move, 0, len(stored))
	for _, mv := range stored {
		cell := game.X
		if mv.Mark == "O" {
			cell = game.O
		}
		gm := game.Move{Position: mv.Position, Player: cell}
		if cell == game.X {
			gm.At = mv.PlayedAt
		}
		moves = append(moves, gm)
	}
	return moves
}

func summarize(games []store.Game) []game.Summary {
	sums := make([]game.Summary, 0, len(games))
	for _, g := range games {
		sum := game.Summary{Moves: g.MoveCount}
		switch g.Status {
		case store.GameStatusWon:
			sum.Result = game.ResultWon
		case store.GameStatusDraw:
			sum.Result = game.ResultDraw
		default:
			sum.Result = game.ResultLost
		}
		if g.DurationMS != nil {
			sum.Duration = time.Duration(*g.DurationMS) * time.Millisecond
		}
		sums = append(sums, sum)
	}
	return sums
}
