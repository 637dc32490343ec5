package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	APIURL      string `env:"API_URL" envDefault:"http://localhost:8080"`
	PlayerName  string `env:"PLAYER_NAME" envDefault:"practice-bot"`
	Games       int    `env:"GAMES" envDefault:"3"`
	MoveDelayMS int    `env:"MOVE_DELAY_MS" envDefault:"750"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
