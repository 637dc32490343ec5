package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"tictac-arena/internal/config"
)

type registerResponse struct {
	PlayerID string `json:"player_id"`
	APIKey   string `json:"api_key"`
	Energy   int    `json:"energy"`
}

type energyStatus struct {
	Level            int   `json:"level"`
	CanAct           bool  `json:"can_act"`
	UntilNextRegenMS int64 `json:"until_next_regen_ms"`
}

type gameView struct {
	GameID string `json:"game_id"`
	Board  string `json:"board"`
	Status string `json:"status"`
}

type startResponse struct {
	Game   gameView `json:"game"`
	Energy int      `json:"energy"`
}

type hintResponse struct {
	Position int `json:"position"`
}

type moveResponse struct {
	Game gameView `json:"game"`
}

type client struct {
	base   string
	apiKey string
	http   *http.Client
}

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal(err)
	}
	c := &client{base: cfg.APIURL, http: &http.Client{Timeout: 10 * time.Second}}

	var reg registerResponse
	if err := c.do(http.MethodPost, "/api/players/register", map[string]any{"name": cfg.PlayerName}, &reg); err != nil {
		log.Fatal(err)
	}
	c.apiKey = reg.APIKey
	log.Printf("registered %s (%s) with %d energy", cfg.PlayerName, reg.PlayerID, reg.Energy)

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for played := 0; played < cfg.Games; {
		var status energyStatus
		if err := c.do(http.MethodGet, "/api/me/energy", nil, &status); err != nil {
			log.Fatal(err)
		}
		if !status.CanAct {
			wait := time.Duration(status.UntilNextRegenMS)*time.Millisecond + time.Second
			log.Printf("out of energy, sleeping %s until the next regen tick", wait)
			time.Sleep(wait)
			continue
		}
		result, err := c.playGame(rnd, cfg.MoveDelayMS)
		if err != nil {
			log.Fatal(err)
		}
		played++
		log.Printf("game %d/%d finished: %s", played, cfg.Games, result)
	}
}

func (c *client) playGame(rnd *rand.Rand, moveDelayMS int) (string, error) {
	var started startResponse
	if err := c.do(http.MethodPost, "/api/games", nil, &started); err != nil {
		return "", err
	}
	game := started.Game
	for game.Status == "ongoing" {
		// Pause between moves so the pace reads like a person, not a script.
		delay := time.Duration(moveDelayMS/2+rnd.Intn(moveDelayMS+1)) * time.Millisecond
		time.Sleep(delay)

		var hint hintResponse
		if err := c.do(http.MethodGet, "/api/games/"+game.GameID+"/hint", nil, &hint); err != nil {
			return "", err
		}
		var moved moveResponse
		if err := c.do(http.MethodPost, "/api/games/"+game.GameID+"/moves", map[string]any{"position": hint.Position}, &moved); err != nil {
			return "", err
		}
		game = moved.Game
	}
	return game.Status, nil
}

func (c *client) do(method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
