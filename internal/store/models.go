package store

import "time"

const (
	GameStatusOngoing   = "ongoing"
	GameStatusWon       = "won"
	GameStatusLost      = "lost"
	GameStatusDraw      = "draw"
	GameStatusForfeited = "forfeited"
)

type Player struct {
	ID         string
	Name       string
	APIKeyHash string
	Status     string
	// Energy plus the two timestamps form the snapshot the energy engine
	// reads; EnergyRegenAt is the regen anchor and is nil until the player
	// first drops below max.
	Energy          int
	EnergyUpdatedAt time.Time
	EnergyRegenAt   *time.Time
	CreatedAt       time.Time
}

type Game struct {
	ID         string
	PlayerID   string
	Board      string
	Status     string
	WinnerMark string
	MoveCount  int
	StartedAt  time.Time
	FinishedAt *time.Time
	DurationMS *int64
}

type Move struct {
	ID       string
	GameID   string
	Seq      int
	Position int
	Mark     string
	PlayedAt time.Time
}

type EnergyEntry struct {
	ID         string
	PlayerID   string
	Delta      int
	LevelAfter int
	Reason     string
	RefType    string
	RefID      string
	CreatedAt  time.Time
}

type IntegrityFlag struct {
	ID         string
	PlayerID   string
	GameID     *string
	Risk       string
	Violations []string
	Source     string
	CreatedAt  time.Time
}

// LeaderboardEntry is served raw on the public surface, so it carries tags.
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Games    int    `json:"games"`
}
