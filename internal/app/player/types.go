package player

import (
	"time"

	"tictac-arena/internal/energy"
)

type RegisterInput struct {
	Name string
}

type RegisterResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
	Energy   int    `json:"energy"`
}

type MeResponse struct {
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Energy    int       `json:"energy"`
	MaxEnergy int       `json:"max_energy"`
	CreatedAt time.Time `json:"created_at"`
}

type EnergyResponse struct {
	PlayerID         string     `json:"player_id"`
	Level            int        `json:"level"`
	MaxLevel         int        `json:"max_level"`
	Gained           int        `json:"gained"`
	RegenAnchor      time.Time  `json:"regen_anchor"`
	NextRegenAt      *time.Time `json:"next_regen_at,omitempty"`
	UntilNextRegenMS int64      `json:"until_next_regen_ms"`
	CanAct           bool       `json:"can_act"`
}

type ScheduleResponse struct {
	PlayerID string        `json:"player_id"`
	Level    int           `json:"level"`
	MaxLevel int           `json:"max_level"`
	Slots    []energy.Slot `json:"slots"`
}

type TopUpInput struct {
	PlayerID string
	Amount   int
	Actor    string
}

type TopUpResponse struct {
	PlayerID string `json:"player_id"`
	Energy   int    `json:"energy"`
}

type PlayerItem struct {
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Energy    int       `json:"energy"`
	MaxEnergy int       `json:"max_energy"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Players []PlayerItem `json:"players"`
}

type SweepResponse struct {
	Updated int `json:"updated"`
}
