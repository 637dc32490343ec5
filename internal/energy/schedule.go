package energy

import "time"

// DefaultScheduleHorizon bounds Schedule when the caller passes no horizon.
const DefaultScheduleHorizon = 24 * time.Hour

// Slot is one future instant at which the level reaches Level.
type Slot struct {
	At    time.Time `json:"at"`
	Level int       `json:"level"`
}

// Schedule projects the regen timeline: every instant within horizon at
// which one more unit lands, until the cap. Whole periods already elapsed
// since the anchor are folded into the level first, so a stale snapshot
// yields the same slots a fresh one would. Degraded inputs are clamped and
// logged, never returned as errors; a full level yields no slots. The loop
// is bounded by ceil(horizon/period) so malformed input cannot spin it.
func (m *Manager) Schedule(level int, regenAt *time.Time, now time.Time, horizon time.Duration) []Slot {
	if horizon <= 0 {
		horizon = DefaultScheduleHorizon
	}
	if level < 0 {
		m.log.Warn().Int("level", level).Msg("energy schedule level clamped to zero")
		level = 0
	}
	anchor := now
	if regenAt != nil {
		if regenAt.After(now) {
			m.log.Warn().Time("anchor", *regenAt).Time("now", now).Msg("energy schedule anchor in the future, using now")
		} else {
			anchor = *regenAt
		}
	}

	gained := int(now.Sub(anchor) / m.cfg.RegenPeriod)
	level += gained
	if level >= m.cfg.MaxLevel {
		return nil
	}
	anchor = anchor.Add(time.Duration(gained) * m.cfg.RegenPeriod)

	end := now.Add(horizon)
	maxSlots := int(horizon/m.cfg.RegenPeriod) + 1
	hint := m.cfg.MaxLevel - level
	if hint > maxSlots {
		hint = maxSlots
	}
	slots := make([]Slot, 0, hint)
	at := anchor.Add(m.cfg.RegenPeriod)
	for i := 0; i < maxSlots && level < m.cfg.MaxLevel && !at.After(end); i++ {
		level++
		slots = append(slots, Slot{At: at, Level: level})
		at = at.Add(m.cfg.RegenPeriod)
	}
	return slots
}
