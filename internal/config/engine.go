package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"tictac-arena/internal/energy"
	"tictac-arena/internal/game"
)

// EngineConfig tunes the energy economy and the anti-cheat heuristics. The
// thresholds are empirical product knobs, so they come from the environment
// rather than constants in the engine packages.
type EngineConfig struct {
	EnergyMax         int `env:"ENERGY_MAX" envDefault:"5"`
	EnergyRegenMins   int `env:"ENERGY_REGEN_MINUTES" envDefault:"90"`
	EnergyCostPerGame int `env:"ENERGY_COST_PER_GAME" envDefault:"1"`

	MinMoveGapMS    int     `env:"ANTICHEAT_MIN_MOVE_GAP_MS" envDefault:"100"`
	BotGapCeilingMS int     `env:"ANTICHEAT_BOT_GAP_CEILING_MS" envDefault:"2000"`
	BotWindow       int     `env:"ANTICHEAT_BOT_WINDOW" envDefault:"5"`
	MaxBotJitterMS  int     `env:"ANTICHEAT_MAX_BOT_JITTER_MS" envDefault:"150"`
	MinGames        int     `env:"ANTICHEAT_MIN_GAMES" envDefault:"5"`
	WinRateMax      float64 `env:"ANTICHEAT_WIN_RATE_MAX" envDefault:"0.95"`
	WinRateMinGames int     `env:"ANTICHEAT_WIN_RATE_MIN_GAMES" envDefault:"10"`
	FastGameAvgMS   int     `env:"ANTICHEAT_FAST_GAME_AVG_MS" envDefault:"5000"`
	QuickWinMoves   int     `env:"ANTICHEAT_QUICK_WIN_MOVES" envDefault:"5"`
	QuickWinShare   float64 `env:"ANTICHEAT_QUICK_WIN_SHARE" envDefault:"0.8"`
}

func LoadEngine() (EngineConfig, error) {
	var cfg EngineConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c EngineConfig) Energy() energy.Config {
	return energy.Config{
		MaxLevel:      c.EnergyMax,
		RegenPeriod:   time.Duration(c.EnergyRegenMins) * time.Minute,
		CostPerAction: c.EnergyCostPerGame,
	}
}

func (c EngineConfig) Thresholds() game.Thresholds {
	return game.Thresholds{
		MinMoveGap:      time.Duration(c.MinMoveGapMS) * time.Millisecond,
		BotGapCeiling:   time.Duration(c.BotGapCeilingMS) * time.Millisecond,
		BotWindow:       c.BotWindow,
		MaxBotJitter:    time.Duration(c.MaxBotJitterMS) * time.Millisecond,
		MinGames:        c.MinGames,
		WinRateMax:      c.WinRateMax,
		WinRateMinGames: c.WinRateMinGames,
		FastGameAvg:     time.Duration(c.FastGameAvgMS) * time.Millisecond,
		QuickWinMoves:   c.QuickWinMoves,
		QuickWinShare:   c.QuickWinShare,
	}
}
