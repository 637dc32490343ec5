package integrity

import "time"

// Flag sources recorded on integrity_flags rows.
const (
	SourceAuto  = "auto"
	SourceAdmin = "admin"
)

type ReviewResponse struct {
	GameID     string   `json:"game_id"`
	PlayerID   string   `json:"player_id"`
	Consistent bool     `json:"consistent"`
	Risk       string   `json:"risk"`
	Violations []string `json:"violations"`
	FlagID     string   `json:"flag_id,omitempty"`
}

type ScanResponse struct {
	PlayerID      string   `json:"player_id"`
	Games         int      `json:"games"`
	Suspicious    bool     `json:"suspicious"`
	Reasons       []string `json:"reasons"`
	WinRate       float64  `json:"win_rate"`
	AvgDurationMS int64    `json:"avg_duration_ms"`
	QuickWinRate  float64  `json:"quick_win_rate"`
	FlagID        string   `json:"flag_id,omitempty"`
}

type TamperResponse struct {
	PlayerID   string `json:"player_id"`
	Samples    int    `json:"samples"`
	Suspicious bool   `json:"suspicious"`
	Reason     string `json:"reason,omitempty"`
	Index      int    `json:"index,omitempty"`
	FlagID     string `json:"flag_id,omitempty"`
}

type FlagItem struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	GameID     *string   `json:"game_id,omitempty"`
	Risk       string    `json:"risk"`
	Violations []string  `json:"violations"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

type FlagsResponse struct {
	Flags []FlagItem `json:"flags"`
}
