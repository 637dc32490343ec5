package match

import "time"

type GameView struct {
	GameID     string     `json:"game_id"`
	Board      string     `json:"board"`
	Status     string     `json:"status"`
	WinnerMark string     `json:"winner_mark,omitempty"`
	YourMark   string     `json:"your_mark"`
	MoveCount  int        `json:"move_count"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMS *int64     `json:"duration_ms,omitempty"`
}

type MoveView struct {
	Seq      int       `json:"seq"`
	Position int       `json:"position"`
	Mark     string    `json:"mark"`
	PlayedAt time.Time `json:"played_at"`
}

type StartResponse struct {
	Game   GameView `json:"game"`
	Energy int      `json:"energy"`
}

type MoveInput struct {
	GameID   string
	Position int
}

type MoveResponse struct {
	Game     GameView  `json:"game"`
	YourMove MoveView  `json:"your_move"`
	BotMove  *MoveView `json:"bot_move,omitempty"`
}

type GetResponse struct {
	Game  GameView   `json:"game"`
	Moves []MoveView `json:"moves"`
}

type ListResponse struct {
	Games []GameView `json:"games"`
}

type HintResponse struct {
	GameID   string `json:"game_id"`
	Position int    `json:"position"`
}

type ForfeitResponse struct {
	Game GameView `json:"game"`
}
