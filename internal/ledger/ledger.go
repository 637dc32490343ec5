package ledger

import (
	"context"
	"time"

	"tictac-arena/internal/store"
)

// Reasons recorded on energy_entries rows.
const (
	ReasonGameStart  = "game_start"
	ReasonRegen      = "regen"
	ReasonAdminTopUp = "admin_topup"
)

// Ledger is the audit trail of every energy mutation. Game starts write
// their own entries inside the consume transaction; admin credits and
// queries go through here.
type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

// TopUp credits a player by admin action, clamped at maxLevel.
func (l *Ledger) TopUp(ctx context.Context, playerID string, amount, maxLevel int, actor string, now time.Time) (int, error) {
	return l.Store.CreditEnergy(ctx, playerID, amount, maxLevel, ReasonAdminTopUp, "admin", actor, now)
}

func (l *Ledger) List(ctx context.Context, f store.EnergyFilter, limit, offset int) ([]store.EnergyEntry, error) {
	return l.Store.ListEnergyEntries(ctx, f, limit, offset)
}

// History returns a player's trail oldest first, the order the tamper
// detector walks it in.
func (l *Ledger) History(ctx context.Context, playerID string, limit int) ([]store.EnergyEntry, error) {
	entries, err := l.Store.ListEnergyEntries(ctx, store.EnergyFilter{PlayerID: playerID}, limit, 0)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
