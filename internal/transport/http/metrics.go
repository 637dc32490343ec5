package httptransport

import "expvar"

var (
	metricGamesStartedTotal  = expvar.NewInt("games_started_total")
	metricGamesFinishedTotal = expvar.NewInt("games_finished_total")
	metricMovesPlayedTotal   = expvar.NewInt("moves_played_total")

	metricSweepRunsTotal   = expvar.NewInt("sweep_runs_total")
	metricSweepUpdated     = expvar.NewInt("sweep_players_updated_total")
	metricFlagsRaisedTotal = expvar.NewInt("flags_raised_total")
)
