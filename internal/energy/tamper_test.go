package energy

import (
	"testing"
	"time"
)

func TestDetectTamperingShortHistoryIsClean(t *testing.T) {
	m := newTestManager(t)
	if v := m.DetectTampering(nil); v.Suspicious {
		t.Fatalf("empty history flagged: %+v", v)
	}
	one := []Sample{{Level: 3, At: testNow}}
	if v := m.DetectTampering(one); v.Suspicious {
		t.Fatalf("single sample flagged: %+v", v)
	}
}

func TestDetectTamperingOrganicHistoryIsClean(t *testing.T) {
	m := newTestManager(t)
	history := []Sample{
		{Level: 5, At: testNow},
		{Level: 4, At: testNow.Add(10 * time.Minute)},
		{Level: 3, At: testNow.Add(25 * time.Minute)},
		{Level: 4, At: testNow.Add(25*time.Minute + 95*time.Minute)},
		{Level: 5, At: testNow.Add(25*time.Minute + 190*time.Minute)},
	}
	if v := m.DetectTampering(history); v.Suspicious {
		t.Fatalf("organic spend and regen flagged: %+v", v)
	}
}

func TestDetectTamperingFlagsRegenExceeded(t *testing.T) {
	// 91 minutes explains one unit at most; four is a direct write.
	m := newTestManager(t)
	history := []Sample{
		{Level: 1, At: testNow},
		{Level: 5, At: testNow.Add(91 * time.Minute)},
	}
	v := m.DetectTampering(history)
	if !v.Suspicious || v.Reason != TamperRegenExceeded || v.Index != 1 {
		t.Fatalf("expected regen_exceeded at index 1, got %+v", v)
	}
}

func TestDetectTamperingAllowsExplainableGain(t *testing.T) {
	m := newTestManager(t)
	history := []Sample{
		{Level: 1, At: testNow},
		{Level: 3, At: testNow.Add(181 * time.Minute)},
	}
	if v := m.DetectTampering(history); v.Suspicious {
		t.Fatalf("two units over two periods flagged: %+v", v)
	}
}

func TestDetectTamperingFlagsRapidUpdate(t *testing.T) {
	m := newTestManager(t)
	history := []Sample{
		{Level: 3, At: testNow},
		{Level: 2, At: testNow.Add(200 * time.Millisecond)},
	}
	v := m.DetectTampering(history)
	if !v.Suspicious || v.Reason != TamperRapidUpdate || v.Index != 1 {
		t.Fatalf("expected rapid_update at index 1, got %+v", v)
	}
}

func TestDetectTamperingRapidUpdateNeedsLevelChange(t *testing.T) {
	m := newTestManager(t)
	history := []Sample{
		{Level: 2, At: testNow},
		{Level: 2, At: testNow.Add(10 * time.Millisecond)},
	}
	if v := m.DetectTampering(history); v.Suspicious {
		t.Fatalf("unchanged level flagged: %+v", v)
	}
}

func TestDetectTamperingOutOfOrderCountsAsRapid(t *testing.T) {
	m := newTestManager(t)
	history := []Sample{
		{Level: 3, At: testNow},
		{Level: 2, At: testNow.Add(-5 * time.Second)},
	}
	v := m.DetectTampering(history)
	if !v.Suspicious || v.Reason != TamperRapidUpdate {
		t.Fatalf("expected rapid_update for backwards clock, got %+v", v)
	}
}

func TestDetectTamperingReportsFirstViolation(t *testing.T) {
	m := newTestManager(t)
	history := []Sample{
		{Level: 1, At: testNow},
		{Level: 5, At: testNow.Add(time.Minute)},
		{Level: 5, At: testNow.Add(2 * time.Minute)},
		{Level: 4, At: testNow.Add(2*time.Minute + 100*time.Millisecond)},
	}
	v := m.DetectTampering(history)
	if !v.Suspicious || v.Index != 1 || v.Reason != TamperRegenExceeded {
		t.Fatalf("expected the first pair to win, got %+v", v)
	}
}
