package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrNotFound = errors.New("not found")

// Store wraps DB access.
type Store struct {
	DB *sql.DB
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) runner(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return s.DB
}

func (s *Store) CreatePlayer(ctx context.Context, name, apiKey string, energy int, now time.Time) (string, error) {
	id := NewID()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO players (id, name, api_key_hash, status, energy, energy_updated_at) VALUES ($1,$2,$3,'active',$4,$5)`, id, name, HashAPIKey(apiKey), energy, now)
	return id, err
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, name, api_key_hash, status, energy, energy_updated_at, energy_regen_at, created_at FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (s *Store) GetPlayerByAPIKey(ctx context.Context, apiKey string) (*Player, error) {
	hash := HashAPIKey(apiKey)
	row := s.DB.QueryRowContext(ctx, `SELECT id, name, api_key_hash, status, energy, energy_updated_at, energy_regen_at, created_at FROM players WHERE api_key_hash = $1`, hash)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	if err := row.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.Status, &p.Energy, &p.EnergyUpdatedAt, &p.EnergyRegenAt, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPlayers(ctx context.Context, limit, offset int) ([]Player, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, api_key_hash, status, energy, energy_updated_at, energy_regen_at, created_at FROM players ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.Status, &p.Energy, &p.EnergyUpdatedAt, &p.EnergyRegenAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListPlayersBelowEnergy feeds the regen sweep.
func (s *Store) ListPlayersBelowEnergy(ctx context.Context, level int) ([]Player, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, api_key_hash, status, energy, energy_updated_at, energy_regen_at, created_at FROM players WHERE energy < $1 ORDER BY created_at ASC`, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.Status, &p.Energy, &p.EnergyUpdatedAt, &p.EnergyRegenAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// EnergyUpdate is what a WithPlayerEnergy callback asks to persist. Entry,
// when set, lands in energy_entries inside the same transaction.
type EnergyUpdate struct {
	Level     int
	UpdatedAt time.Time
	RegenAt   *time.Time
	Entry     *EnergyEntry
}

// WithPlayerEnergy serializes an energy read-modify-write for one player:
// the row is loaded FOR UPDATE, fn decides the new snapshot, and snapshot
// plus audit row commit atomically. Returning a nil update keeps the row
// untouched. fn may use tx for further writes that must share the commit.
func (s *Store) WithPlayerEnergy(ctx context.Context, playerID string, fn func(tx *sql.Tx, p *Player) (*EnergyUpdate, error)) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT id, name, api_key_hash, status, energy, energy_updated_at, energy_regen_at, created_at FROM players WHERE id = $1 FOR UPDATE`, playerID)
	var p Player
	if err := row.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.Status, &p.Energy, &p.EnergyUpdatedAt, &p.EnergyRegenAt, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	upd, err := fn(tx, &p)
	if err != nil {
		return err
	}
	if upd != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE players SET energy = $1, energy_updated_at = $2, energy_regen_at = $3 WHERE id = $4`, upd.Level, upd.UpdatedAt, upd.RegenAt, p.ID); err != nil {
			return err
		}
		if upd.Entry != nil {
			if err := recordEnergyEntry(ctx, tx, p.ID, upd.Entry); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func recordEnergyEntry(ctx context.Context, tx *sql.Tx, playerID string, e *EnergyEntry) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO energy_entries (id, player_id, delta, level_after, reason, ref_type, ref_id) VALUES ($1,$2,$3,$4,$5,$6,$7)`, NewID(), playerID, e.Delta, e.LevelAfter, e.Reason, e.RefType, e.RefID)
	return err
}

// CreditEnergy adds amount to a player's level, clamped at maxLevel, and
// records the applied delta.
func (s *Store) CreditEnergy(ctx context.Context, playerID string, amount, maxLevel int, reason, refType, refID string, now time.Time) (int, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var level int
	row := tx.QueryRowContext(ctx, `SELECT energy FROM players WHERE id = $1 FOR UPDATE`, playerID)
	if err := row.Scan(&level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	newLevel := level + amount
	if newLevel > maxLevel {
		newLevel = maxLevel
	}
	_, err = tx.ExecContext(ctx, `UPDATE players SET energy = $1, energy_updated_at = $2 WHERE id = $3`, newLevel, now, playerID)
	if err != nil {
		return 0, err
	}
	if err := recordEnergyEntry(ctx, tx, playerID, &EnergyEntry{Delta: newLevel - level, LevelAfter: newLevel, Reason: reason, RefType: refType, RefID: refID}); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newLevel, nil
}

func (s *Store) CreateGame(ctx context.Context, tx *sql.Tx, playerID, board string, startedAt time.Time) (string, error) {
	id := NewID()
	_, err := s.runner(tx).ExecContext(ctx, `INSERT INTO games (id, player_id, board, status, move_count, started_at) VALUES ($1,$2,$3,'ongoing',0,$4)`, id, playerID, board, startedAt)
	return id, err
}

func (s *Store) GetGame(ctx context.Context, id string) (*Game, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, player_id, board, status, winner_mark, move_count, started_at, finished_at, duration_ms FROM games WHERE id = $1`, id)
	var g Game
	if err := row.Scan(&g.ID, &g.PlayerID, &g.Board, &g.Status, &g.WinnerMark, &g.MoveCount, &g.StartedAt, &g.FinishedAt, &g.DurationMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// WithGame serializes writes to one game: the row is loaded FOR UPDATE and
// fn runs inside the transaction. Move appends and board updates made
// through tx commit together.
func (s *Store) WithGame(ctx context.Context, gameID string, fn func(tx *sql.Tx, g *Game) error) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT id, player_id, board, status, winner_mark, move_count, started_at, finished_at, duration_ms FROM games WHERE id = $1 FOR UPDATE`, gameID)
	var g Game
	if err := row.Scan(&g.ID, &g.PlayerID, &g.Board, &g.Status, &g.WinnerMark, &g.MoveCount, &g.StartedAt, &g.FinishedAt, &g.DurationMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := fn(tx, &g); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdateGameBoard(ctx context.Context, tx *sql.Tx, id, board string, moveCount int) error {
	_, err := s.runner(tx).ExecContext(ctx, `UPDATE games SET board = $1, move_count = $2 WHERE id = $3`, board, moveCount, id)
	return err
}

// FinishGame flips an ongoing game to a terminal status. It reports
// ErrNotFound when the game is missing or already finished.
func (s *Store) FinishGame(ctx context.Context, tx *sql.Tx, id, status, winnerMark string, finishedAt time.Time, durationMS int64) error {
	res, err := s.runner(tx).ExecContext(ctx, `UPDATE games SET status = $1, winner_mark = $2, finished_at = $3, duration_ms = $4 WHERE id = $5 AND status = 'ongoing'`, status, winnerMark, finishedAt, durationMS, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListGamesByPlayer(ctx context.Context, playerID, status string, limit, offset int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE player_id = $1"
	args := []any{playerID}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit, offset)
	q := `SELECT id, player_id, board, status, winner_mark, move_count, started_at, finished_at, duration_ms FROM games ` + where + ` ORDER BY started_at DESC LIMIT $` + fmt.Sprintf("%d", len(args)-1) + ` OFFSET $` + fmt.Sprintf("%d", len(args))
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.PlayerID, &g.Board, &g.Status, &g.WinnerMark, &g.MoveCount, &g.StartedAt, &g.FinishedAt, &g.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// RecentFinishedGames returns a player's completed games, newest first, for
// the aggregate pattern scan.
func (s *Store) RecentFinishedGames(ctx context.Context, playerID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id, player_id, board, status, winner_mark, move_count, started_at, finished_at, duration_ms FROM games WHERE player_id = $1 AND status <> 'ongoing' ORDER BY finished_at DESC LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.PlayerID, &g.Board, &g.Status, &g.WinnerMark, &g.MoveCount, &g.StartedAt, &g.FinishedAt, &g.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) AppendMove(ctx context.Context, tx *sql.Tx, gameID string, seq, position int, mark string, playedAt time.Time) (string, error) {
	id := NewID()
	_, err := s.runner(tx).ExecContext(ctx, `INSERT INTO moves (id, game_id, seq, position, mark, played_at) VALUES ($1,$2,$3,$4,$5,$6)`, id, gameID, seq, position, mark, playedAt)
	return id, err
}

func (s *Store) ListMoves(ctx context.Context, gameID string) ([]Move, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, game_id, seq, position, mark, played_at FROM moves WHERE game_id = $1 ORDER BY seq ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Move{}
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.ID, &m.GameID, &m.Seq, &m.Position, &m.Mark, &m.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

type EnergyFilter struct {
	PlayerID string
	Reason   string
	From     *time.Time
	To       *time.Time
}

func (s *Store) ListEnergyEntries(ctx context.Context, f EnergyFilter, limit, offset int) ([]EnergyEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []any{}
	if f.PlayerID != "" {
		args = append(args, f.PlayerID)
		where += fmt.Sprintf(" AND player_id = $%d", len(args))
	}
	if f.Reason != "" {
		args = append(args, f.Reason)
		where += fmt.Sprintf(" AND reason = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, limit, offset)
	q := `SELECT id, player_id, delta, level_after, reason, ref_type, ref_id, created_at FROM energy_entries ` + where + ` ORDER BY created_at DESC, id DESC LIMIT $` + fmt.Sprintf("%d", len(args)-1) + ` OFFSET $` + fmt.Sprintf("%d", len(args))
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []EnergyEntry{}
	for rows.Next() {
		var e EnergyEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Delta, &e.LevelAfter, &e.Reason, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) InsertIntegrityFlag(ctx context.Context, playerID string, gameID *string, risk string, violations []string, source string) (string, error) {
	id := NewID()
	blob, err := json.Marshal(violations)
	if err != nil {
		return "", err
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO integrity_flags (id, player_id, game_id, risk, violations, source) VALUES ($1,$2,$3,$4,$5,$6)`, id, playerID, gameID, risk, blob, source)
	return id, err
}

type FlagFilter struct {
	PlayerID string
	Risk     string
}

func (s *Store) ListIntegrityFlags(ctx context.Context, f FlagFilter, limit, offset int) ([]IntegrityFlag, error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []any{}
	if f.PlayerID != "" {
		args = append(args, f.PlayerID)
		where += fmt.Sprintf(" AND player_id = $%d", len(args))
	}
	if f.Risk != "" {
		args = append(args, f.Risk)
		where += fmt.Sprintf(" AND risk = $%d", len(args))
	}
	args = append(args, limit, offset)
	q := `SELECT id, player_id, game_id, risk, violations, source, created_at FROM integrity_flags ` + where + ` ORDER BY created_at DESC, id DESC LIMIT $` + fmt.Sprintf("%d", len(args)-1) + ` OFFSET $` + fmt.Sprintf("%d", len(args))
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []IntegrityFlag{}
	for rows.Next() {
		var fl IntegrityFlag
		var blob []byte
		if err := rows.Scan(&fl.ID, &fl.PlayerID, &fl.GameID, &fl.Risk, &blob, &fl.Source, &fl.CreatedAt); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &fl.Violations); err != nil {
				return nil, err
			}
		}
		out = append(out, fl)
	}
	return out, nil
}

func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.id, p.name,
		       COUNT(g.id) FILTER (WHERE g.status = 'won') AS wins,
		       COUNT(g.id) AS games
		FROM players p
		LEFT JOIN games g ON g.player_id = p.id AND g.status <> 'ongoing'
		GROUP BY p.id, p.name
		ORDER BY wins DESC, games ASC, p.name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Name, &e.Wins, &e.Games); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
