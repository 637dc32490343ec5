package energy

import "time"

// Sample is one audited observation of a player's level.
type Sample struct {
	Level int
	At    time.Time
}

const (
	// TamperRegenExceeded marks a level increase larger than the elapsed
	// interval could regenerate.
	TamperRegenExceeded = "regen_exceeded"
	// TamperRapidUpdate marks level changes under a second apart, the
	// signature of direct datastore writes rather than organic play.
	TamperRapidUpdate = "rapid_update"
)

type TamperVerdict struct {
	Suspicious bool   `json:"suspicious"`
	Reason     string `json:"reason,omitempty"`
	// Index points at the offending sample (the later of the pair).
	// Meaningful only when Suspicious is set.
	Index int `json:"index,omitempty"`
}

// DetectTampering walks consecutive samples in the order given and returns
// the first anomaly: a gain the regen rate cannot explain, or a nonzero
// change recorded less than a second after the previous sample. Out-of-order
// timestamps count as rapid. Histories shorter than two samples are clean.
func (m *Manager) DetectTampering(history []Sample) TamperVerdict {
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		dt := cur.At.Sub(prev.At)
		dl := cur.Level - prev.Level
		if dl > 0 {
			allowed := 0
			if dt > 0 {
				allowed = int(dt / m.cfg.RegenPeriod)
			}
			if dl > allowed {
				return TamperVerdict{Suspicious: true, Reason: TamperRegenExceeded, Index: i}
			}
		}
		if dl != 0 && dt < time.Second {
			return TamperVerdict{Suspicious: true, Reason: TamperRapidUpdate, Index: i}
		}
	}
	return TamperVerdict{}
}
