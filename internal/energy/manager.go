// Package energy computes time-based resource regeneration for players.
// Every call is a pure function of the snapshot and clock passed in; the
// store owns persistence and callers own the read-modify-write cycle.
package energy

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config is fixed for the lifetime of the process.
type Config struct {
	// MaxLevel is the cap a player regenerates toward.
	MaxLevel int
	// RegenPeriod is the time to regain one unit.
	RegenPeriod time.Duration
	// CostPerAction is the units one game start consumes.
	CostPerAction int
}

func (c Config) Validate() error {
	if c.MaxLevel < 1 {
		return fmt.Errorf("energy config: max level must be >= 1, got %d", c.MaxLevel)
	}
	if c.RegenPeriod <= 0 {
		return fmt.Errorf("energy config: regen period must be positive, got %s", c.RegenPeriod)
	}
	if c.CostPerAction < 1 {
		return fmt.Errorf("energy config: cost per action must be >= 1, got %d", c.CostPerAction)
	}
	return nil
}

// Status is the derived view of a snapshot at one instant.
type Status struct {
	Level    int `json:"level"`
	MaxLevel int `json:"max_level"`
	// Gained is the uncapped whole units accrued since the anchor. Callers
	// persisting the snapshot advance the anchor by Gained periods even when
	// the level itself capped at max.
	Gained int `json:"gained"`
	// RegenAnchor is the baseline the next computation should start from:
	// the old anchor plus Gained whole periods. Snapping it to "now" instead
	// would silently drop up to one period of fractional progress per call.
	RegenAnchor    time.Time     `json:"regen_anchor"`
	NextRegenAt    *time.Time    `json:"next_regen_at,omitempty"`
	UntilNextRegen time.Duration `json:"until_next_regen"`
	CanAct         bool          `json:"can_act"`
}

type ConsumeResult struct {
	Accepted bool   `json:"accepted"`
	Level    int    `json:"level"`
	Reason   string `json:"reason,omitempty"`
}

// ReasonInsufficient is the only consume rejection; it is a policy outcome,
// not an error.
const ReasonInsufficient = "insufficient"

// Manager evaluates snapshots against one immutable Config. Safe for
// concurrent use; it holds no mutable state.
type Manager struct {
	cfg Config
	log zerolog.Logger
}

// NewManager validates cfg. Degraded inputs at call time are reported
// through logger rather than returned as errors.
func NewManager(cfg Config, logger zerolog.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, log: logger}, nil
}

func (m *Manager) Config() Config {
	return m.cfg
}

// Current derives the live status from a stored snapshot. Invalid snapshots
// (negative level, level beyond twice the cap, timestamps in the future) are
// logged and collapse to the fail-safe status: zero energy, no play, next
// unit one full period out. A level at or above max short-circuits with no
// regen math and an unchanged anchor.
func (m *Manager) Current(level int, updatedAt time.Time, regenAt *time.Time, now time.Time) Status {
	anchor := updatedAt
	if regenAt != nil {
		anchor = *regenAt
	}
	if level < 0 || level > 2*m.cfg.MaxLevel || updatedAt.After(now) || anchor.After(now) {
		m.log.Warn().
			Int("level", level).
			Time("updated_at", updatedAt).
			Time("anchor", anchor).
			Time("now", now).
			Msg("energy snapshot rejected, degrading to zero")
		return m.failSafe(now)
	}

	if level >= m.cfg.MaxLevel {
		return Status{
			Level:       m.cfg.MaxLevel,
			MaxLevel:    m.cfg.MaxLevel,
			RegenAnchor: anchor,
			CanAct:      true,
		}
	}

	elapsed := now.Sub(anchor)
	gained := int(elapsed / m.cfg.RegenPeriod)
	current := level + gained
	if current > m.cfg.MaxLevel {
		current = m.cfg.MaxLevel
	}
	st := Status{
		Level:       current,
		MaxLevel:    m.cfg.MaxLevel,
		Gained:      gained,
		RegenAnchor: anchor.Add(time.Duration(gained) * m.cfg.RegenPeriod),
		CanAct:      current >= m.cfg.CostPerAction,
	}
	if current < m.cfg.MaxLevel {
		st.UntilNextRegen = m.cfg.RegenPeriod - elapsed%m.cfg.RegenPeriod
		next := now.Add(st.UntilNextRegen)
		st.NextRegenAt = &next
	}
	return st
}

func (m *Manager) failSafe(now time.Time) Status {
	next := now.Add(m.cfg.RegenPeriod)
	return Status{
		MaxLevel:       m.cfg.MaxLevel,
		RegenAnchor:    now,
		NextRegenAt:    &next,
		UntilNextRegen: m.cfg.RegenPeriod,
	}
}

// Consume spends one action's worth of energy. Rejection is an expected
// outcome the caller branches on; the returned level never goes below zero.
func (m *Manager) Consume(level int) ConsumeResult {
	if level < m.cfg.CostPerAction {
		if level < 0 {
			level = 0
		}
		return ConsumeResult{Level: level, Reason: ReasonInsufficient}
	}
	return ConsumeResult{Accepted: true, Level: level - m.cfg.CostPerAction}
}
