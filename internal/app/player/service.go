package player

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tictac-arena/internal/energy"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/store"
)

// Service owns registration, profiles and the energy lifecycle.
type Service struct {
	store  *store.Store
	energy *energy.Manager
	ledger *ledger.Ledger
}

func NewService(st *store.Store, mgr *energy.Manager, led *ledger.Ledger) *Service {
	return &Service{store: st, energy: mgr, ledger: led}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	apiKey := store.NewAPIKey()
	max := s.energy.Config().MaxLevel
	id, err := s.store.CreatePlayer(ctx, name, apiKey, max, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{PlayerID: id, Name: name, APIKey: apiKey, Energy: max}, nil
}

func (s *Service) Me(ctx context.Context, p *store.Player) (*MeResponse, error) {
	if p == nil {
		return nil, ErrInvalidRequest
	}
	st := s.energy.Current(p.Energy, p.EnergyUpdatedAt, p.EnergyRegenAt, time.Now().UTC())
	return &MeResponse{
		PlayerID:  p.ID,
		Name:      p.Name,
		Status:    p.Status,
		Energy:    st.Level,
		MaxEnergy: st.MaxLevel,
		CreatedAt: p.CreatedAt,
	}, nil
}

// EnergyStatus recomputes the player's level from the stored snapshot and
// persists it, so fractional regen progress survives across reads.
func (s *Service) EnergyStatus(ctx context.Context, playerID string) (*EnergyResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	var st energy.Status
	err := s.store.WithPlayerEnergy(ctx, playerID, func(tx *sql.Tx, p *store.Player) (*store.EnergyUpdate, error) {
		var upd *store.EnergyUpdate
		st, upd = s.refresh(p, time.Now().UTC())
		return upd, nil
	})
	if err != nil {
		return nil, err
	}
	return energyResponse(playerID, st), nil
}

func (s *Service) EnergySchedule(ctx context.Context, playerID string, horizon time.Duration) (*ScheduleResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	anchor := p.EnergyRegenAt
	if anchor == nil {
		anchor = &p.EnergyUpdatedAt
	}
	st := s.energy.Current(p.Energy, p.EnergyUpdatedAt, p.EnergyRegenAt, now)
	slots := s.energy.Schedule(p.Energy, anchor, now, horizon)
	if slots == nil {
		slots = []energy.Slot{}
	}
	return &ScheduleResponse{
		PlayerID: p.ID,
		Level:    st.Level,
		MaxLevel: st.MaxLevel,
		Slots:    slots,
	}, nil
}

func (s *Service) TopUp(ctx context.Context, in TopUpInput) (*TopUpResponse, error) {
	if in.PlayerID == "" || in.Amount <= 0 {
		return nil, ErrInvalidRequest
	}
	actor := in.Actor
	if actor == "" {
		actor = "admin"
	}
	level, err := s.ledger.TopUp(ctx, in.PlayerID, in.Amount, s.energy.Config().MaxLevel, actor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &TopUpResponse{PlayerID: in.PlayerID, Energy: level}, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) (*ListResponse, error) {
	players, err := s.store.ListPlayers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	items := make([]PlayerItem, 0, len(players))
	for i := range players {
		p := &players[i]
		st := s.energy.Current(p.Energy, p.EnergyUpdatedAt, p.EnergyRegenAt, now)
		items = append(items, PlayerItem{
			PlayerID:  p.ID,
			Name:      p.Name,
			Status:    p.Status,
			Energy:    st.Level,
			MaxEnergy: st.MaxLevel,
			CreatedAt: p.CreatedAt,
		})
	}
	return &ListResponse{Players: items}, nil
}

// Sweep recomputes every player below the cap and persists the advanced
// snapshots. Row-level failures are logged and skipped so one bad player
// cannot stall the rest.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	players, err := s.store.ListPlayersBelowEnergy(ctx, s.energy.Config().MaxLevel)
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range players {
		id := players[i].ID
		err := s.store.WithPlayerEnergy(ctx, id, func(tx *sql.Tx, p *store.Player) (*store.EnergyUpdate, error) {
			_, upd := s.refresh(p, now)
			if upd == nil {
				return nil, nil
			}
			updated++
			return upd, nil
		})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("player_id", id).Msg("energy sweep update failed")
		}
	}
	return updated, nil
}

// StartSweeper runs Sweep on a fixed interval until ctx is cancelled. A
// non-positive interval disables the loop.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := s.Sweep(ctx, now.UTC())
				if err != nil {
					log.Error().Err(err).Msg("energy sweep failed")
					continue
				}
				if n > 0 {
					log.Debug().Int("players", n).Msg("energy sweep applied regen")
				}
			}
		}
	}()
}

// refresh derives the live status for one locked row and asks for a write
// only when the level or the anchor moved. Level changes get an audit entry.
func (s *Service) refresh(p *store.Player, now time.Time) (energy.Status, *store.EnergyUpdate) {
	st := s.energy.Current(p.Energy, p.EnergyUpdatedAt, p.EnergyRegenAt, now)
	prev := p.EnergyUpdatedAt
	if p.EnergyRegenAt != nil {
		prev = *p.EnergyRegenAt
	}
	if st.Level == p.Energy && st.RegenAnchor.Equal(prev) {
		return st, nil
	}
	upd := &store.EnergyUpdate{Level: st.Level, UpdatedAt: now, RegenAt: &st.RegenAnchor}
	if delta := st.Level - p.Energy; delta != 0 {
		upd.Entry = &store.EnergyEntry{Delta: delta, LevelAfter: st.Level, Reason: ledger.ReasonRegen}
	}
	return st, upd
}

func energyResponse(playerID string, st energy.Status) *EnergyResponse {
	return &EnergyResponse{
		PlayerID:         playerID,
		Level:            st.Level,
		MaxLevel:         st.MaxLevel,
		Gained:           st.Gained,
		RegenAnchor:      st.RegenAnchor,
		NextRegenAt:      st.NextRegenAt,
		UntilNextRegenMS: st.UntilNextRegen.Milliseconds(),
		CanAct:           st.CanAct,
	}
}
