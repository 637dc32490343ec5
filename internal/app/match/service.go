package match

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tictac-arena/internal/app/integrity"
	"tictac-arena/internal/energy"
	"tictac-arena/internal/game"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/store"
)

// The registered player always takes X and moves first; the house bot
// answers as O inside the same transaction.
const (
	playerMark = "X"
	botMark    = "O"
)

// Service runs the game loop: energy-gated starts, move application with
// the bot reply, and the post-game integrity review.
type Service struct {
	store     *store.Store
	energy    *energy.Manager
	integrity *integrity.Service

	// rnd backs the bot's corner choice and is not safe for concurrent use.
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(st *store.Store, mgr *energy.Manager, integ *integrity.Service) *Service {
	return &Service{
		store:     st,
		energy:    mgr,
		integrity: integ,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start charges one energy unit and opens a game, atomically. The level is
// recomputed from the stored snapshot first, so regen earned since the last
// write is spendable immediately. Consuming from a full level restarts the
// regen clock at now; below max the advanced anchor is kept so fractional
// progress survives the spend.
func (s *Service) Start(ctx context.Context, p *store.Player) (*StartResponse, error) {
	if p == nil {
		return nil, ErrInvalidRequest
	}
	var resp StartResponse
	err := s.store.WithPlayerEnergy(ctx, p.ID, func(tx *sql.Tx, locked *store.Player) (*store.EnergyUpdate, error) {
		now := time.Now().UTC()
		st := s.energy.Current(locked.Energy, locked.EnergyUpdatedAt, locked.EnergyRegenAt, now)
		if !st.CanAct {
			return nil, ErrInsufficientEnergy
		}
		res := s.energy.Consume(st.Level)
		if !res.Accepted {
			return nil, ErrInsufficientEnergy
		}
		board := game.Board{}.String()
		gameID, err := s.store.CreateGame(ctx, tx, locked.ID, board, now)
		if err != nil {
			return nil, err
		}
		anchor := st.RegenAnchor
		if st.Level >= s.energy.Config().MaxLevel {
			anchor = now
		}
		resp = StartResponse{
			Game: GameView{
				GameID:    gameID,
				Board:     board,
				Status:    store.GameStatusOngoing,
				YourMark:  playerMark,
				StartedAt: now,
			},
			Energy: res.Level,
		}
		return &store.EnergyUpdate{
			Level:     res.Level,
			UpdatedAt: now,
			RegenAt:   &anchor,
			// One audit row per transaction; the delta is the net of regen
			// folded in and the unit spent.
			Entry: &store.EnergyEntry{
				Delta:      res.Level - locked.Energy,
				LevelAfter: res.Level,
				Reason:     ledger.ReasonGameStart,
				RefType:    "game",
				RefID:      gameID,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Move applies the player's move and, if the game is still open, the bot's
// reply. Both land in one transaction together with the board update and,
// on a terminal outcome, the final status. Finished games are screened by
// the integrity review after commit; a review failure never undoes the move.
func (s *Service) Move(ctx context.Context, p *store.Player, in MoveInput) (*MoveResponse, error) {
	if p == nil || in.GameID == "" {
		return nil, ErrInvalidRequest
	}
	var resp *MoveResponse
	err := s.store.WithGame(ctx, in.GameID, func(tx *sql.Tx, g *store.Game) error {
		if g.PlayerID != p.ID {
			return store.ErrNotFound
		}
		if g.Status != store.GameStatusOngoing {
			return ErrGameOver
		}
		board, err := game.ParseBoard(g.Board)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		res := game.Apply(board, in.Position, game.X)
		if !res.Accepted {
			if res.Reason == game.ReasonGameOver {
				return ErrGameOver
			}
			return ErrIllegalMove
		}
		board = res.Board
		seq := g.MoveCount + 1
		if _, err := s.store.AppendMove(ctx, tx, g.ID, seq, in.Position, playerMark, now); err != nil {
			return err
		}
		yourMove := MoveView{Seq: seq, Position: in.Position, Mark: playerMark, PlayedAt: now}
		var botMove *MoveView

		outcome := res.Outcome
		if !outcome.Terminal() {
			pos := s.suggest(board, game.O)
			bres := game.Apply(board, pos, game.O)
			if !bres.Accepted {
				return fmt.Errorf("bot reply at %d rejected: %s", pos, bres.Reason)
			}
			board = bres.Board
			outcome = bres.Outcome
			seq++
			if _, err := s.store.AppendMove(ctx, tx, g.ID, seq, pos, botMark, now); err != nil {
				return err
			}
			botMove = &MoveView{Seq: seq, Position: pos, Mark: botMark, PlayedAt: now}
		}

		if err := s.store.UpdateGameBoard(ctx, tx, g.ID, board.String(), seq); err != nil {
			return err
		}
		g.Board = board.String()
		g.MoveCount = seq

		if outcome.Terminal() {
			status := store.GameStatusDraw
			winner := ""
			if outcome.Phase == game.PhaseWon {
				winner = outcome.Winner.String()
				if outcome.Winner == game.X {
					status = store.GameStatusWon
				} else {
					status = store.GameStatusLost
				}
			}
			duration := now.Sub(g.StartedAt).Milliseconds()
			if err := s.store.FinishGame(ctx, tx, g.ID, status, winner, now, duration); err != nil {
				return err
			}
			g.Status = status
			g.WinnerMark = winner
			g.FinishedAt = &now
			g.DurationMS = &duration
		}

		resp = &MoveResponse{Game: gameView(g), YourMove: yourMove, BotMove: botMove}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.Game.Status != store.GameStatusOngoing {
		if _, err := s.integrity.ReviewGame(ctx, in.GameID, integrity.SourceAuto); err != nil {
			log.Error().Err(err).Str("game_id", in.GameID).Msg("post game review failed")
		}
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, p *store.Player, gameID string) (*GetResponse, error) {
	if p == nil || gameID == "" {
		return nil, ErrInvalidRequest
	}
	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.PlayerID != p.ID {
		return nil, store.ErrNotFound
	}
	moves, err := s.store.ListMoves(ctx, gameID)
	if err != nil {
		return nil, err
	}
	views := make([]MoveView, 0, len(moves))
	for _, m := range moves {
		views = append(views, MoveView{Seq: m.Seq, Position: m.Position, Mark: m.Mark, PlayedAt: m.PlayedAt})
	}
	return &GetResponse{Game: gameView(g), Moves: views}, nil
}

func (s *Service) List(ctx context.Context, p *store.Player, status string, limit, offset int) (*ListResponse, error) {
	if p == nil {
		return nil, ErrInvalidRequest
	}
	if status != "" && !validStatus(status) {
		return nil, ErrInvalidRequest
	}
	games, err := s.store.ListGamesByPlayer(ctx, p.ID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]GameView, 0, len(games))
	for i := range games {
		views = append(views, gameView(&games[i]))
	}
	return &ListResponse{Games: views}, nil
}

// Hint runs the bot's own policy for the player's side. It costs nothing.
func (s *Service) Hint(ctx context.Context, p *store.Player, gameID string) (*HintResponse, error) {
	if p == nil || gameID == "" {
		return nil, ErrInvalidRequest
	}
	g, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.PlayerID != p.ID {
		return nil, store.ErrNotFound
	}
	if g.Status != store.GameStatusOngoing {
		return nil, ErrGameOver
	}
	board, err := game.ParseBoard(g.Board)
	if err != nil {
		return nil, err
	}
	if game.EvaluateOutcome(board).Terminal() {
		return nil, ErrGameOver
	}
	return &HintResponse{GameID: gameID, Position: s.suggest(board, game.X)}, nil
}

// Forfeit concedes an ongoing game. It counts as a loss with the bot as
// winner; the spent energy stays spent.
func (s *Service) Forfeit(ctx context.Context, p *store.Player, gameID string) (*ForfeitResponse, error) {
	if p == nil || gameID == "" {
		return nil, ErrInvalidRequest
	}
	var resp *ForfeitResponse
	err := s.store.WithGame(ctx, gameID, func(tx *sql.Tx, g *store.Game) error {
		if g.PlayerID != p.ID {
			return store.ErrNotFound
		}
		if g.Status != store.GameStatusOngoing {
			return ErrGameOver
		}
		now := time.Now().UTC()
		duration := now.Sub(g.StartedAt).Milliseconds()
		if err := s.store.FinishGame(ctx, tx, g.ID, store.GameStatusForfeited, botMark, now, duration); err != nil {
			return err
		}
		g.Status = store.GameStatusForfeited
		g.WinnerMark = botMark
		g.FinishedAt = &now
		g.DurationMS = &duration
		resp = &ForfeitResponse{Game: gameView(g)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) suggest(b game.Board, p game.Cell) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.SuggestMove(s.rnd, b, p)
}

func gameView(g *store.Game) GameView {
	return GameView{
		GameID:     g.ID,
		Board:      g.Board,
		Status:     g.Status,
		WinnerMark: g.WinnerMark,
		YourMark:   playerMark,
		MoveCount:  g.MoveCount,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
		DurationMS: g.DurationMS,
	}
}

func validStatus(status string) bool {
	switch status {
	case store.GameStatusOngoing, store.GameStatusWon, store.GameStatusLost,
		store.GameStatusDraw, store.GameStatusForfeited:
		return true
	}
	return false
}
