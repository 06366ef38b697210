// Package storage handles database connections, schema migrations, and data operations using SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

const serverColumns = `
	ip, port, name, map, folder, game, version, keywords, app_id,
	players, max_players, bots, server_type, environment, visibility, vac,
	country_code, count, first_seen, last_seen`

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

type scanner interface {
	Scan(dest ...any) error
}

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// UpsertServer inserts a new server or updates the existing (ip, port) row.
// A2S fields are only overwritten when the new snapshot carries a server name,
// so a failed query keeps the last known data.
func (r *Repository) UpsertServer(s models.Server) error {
	query := `
	INSERT INTO servers (` + serverColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	ON CONFLICT(ip, port) DO UPDATE SET
		count = count + 1,
		last_seen = excluded.last_seen,

		country_code = CASE WHEN excluded.country_code != '' THEN excluded.country_code ELSE servers.country_code END,

		name        = CASE WHEN excluded.name != '' THEN excluded.name ELSE servers.name END,
		map         = CASE WHEN excluded.name != '' THEN excluded.map ELSE servers.map END,
		folder      = CASE WHEN excluded.name != '' THEN excluded.folder ELSE servers.folder END,
		game        = CASE WHEN excluded.name != '' THEN excluded.game ELSE servers.game END,
		version     = CASE WHEN excluded.name != '' THEN excluded.version ELSE servers.version END,
		keywords    = CASE WHEN excluded.name != '' THEN excluded.keywords ELSE servers.keywords END,
		app_id      = CASE WHEN excluded.name != '' THEN excluded.app_id ELSE servers.app_id END,
		players     = CASE WHEN excluded.name != '' THEN excluded.players ELSE servers.players END,
		max_players = CASE WHEN excluded.name != '' THEN excluded.max_players ELSE servers.max_players END,
		bots        = CASE WHEN excluded.name != '' THEN excluded.bots ELSE servers.bots END,
		server_type = CASE WHEN excluded.name != '' THEN excluded.server_type ELSE servers.server_type END,
		environment = CASE WHEN excluded.name != '' THEN excluded.environment ELSE servers.environment END,
		visibility  = CASE WHEN excluded.name != '' THEN excluded.visibility ELSE servers.visibility END,
		vac         = CASE WHEN excluded.name != '' THEN excluded.vac ELSE servers.vac END;
	`

	// first_seen is only written on insert
	_, err := r.db.Exec(query,
		s.IP, s.Port, s.Name, s.Map, s.Folder, s.Game, s.Version, s.Keywords, s.AppID,
		s.NumPlayers, s.MaxPlayers, s.Bots, s.ServerType, s.Environment, s.Visibility, s.VAC,
		s.CountryCode, s.FirstSeen, s.LastSeen,
	)

	return err
}

// ReplacePlayers stores players as the current roster of a server, dropping the previous one.
func (r *Repository) ReplacePlayers(ip string, port int, players []models.Player) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM players WHERE ip = ? AND port = ?`, ip, port); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (ip, port, idx, name, score, duration, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range players {
		if _, err := stmt.Exec(ip, port, i, p.Name, p.Score, p.Duration, p.SeenAt); err != nil {
			return fmt.Errorf("failed to insert player %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetServers retrieves all servers, sorted by the last seen timestamp in descending order.
func (r *Repository) GetServers() ([]models.Server, error) {
	return r.queryServers(`SELECT `+serverColumns+` FROM servers ORDER BY last_seen DESC`, nil)
}

// GetServer retrieves a server and its last player roster.
// It returns nil without error when the server is not tracked.
func (r *Repository) GetServer(ip string, port int) (*models.Server, error) {
	row := r.db.QueryRow(`SELECT `+serverColumns+` FROM servers WHERE ip = ? AND port = ?`, ip, port)

	s, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	if s.Players, err = r.GetPlayers(ip, port); err != nil {
		return nil, err
	}

	return &s, nil
}

// GetPlayers returns the stored roster of a server in wire order.
func (r *Repository) GetPlayers(ip string, port int) ([]models.Player, error) {
	rows, err := r.db.Query(`
		SELECT name, score, duration, seen_at
		FROM players
		WHERE ip = ? AND port = ?
		ORDER BY idx`, ip, port)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.Name, &p.Score, &p.Duration, &p.SeenAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// DeleteServer removes a server and its roster.
func (r *Repository) DeleteServer(ip string, port int) error {
	_, err := r.db.Exec(`DELETE FROM servers WHERE ip = ? AND port = ?`, ip, port)
	return err
}

// DeleteEmptyServers removes servers that never answered an A2S query (name is empty).
// If folder is not empty, deletion is restricted to that game folder.
func (r *Repository) DeleteEmptyServers(folder string) (int64, error) {
	query := `DELETE FROM servers WHERE name = ''`
	var args []any

	if folder != "" {
		query += ` AND folder = ?`
		args = append(args, folder)
	}

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// GetServersSubset retrieves servers for maintenance.
// If onlyEmpty is true, it returns only servers without A2S data.
// If folder is provided, it filters by game folder.
func (r *Repository) GetServersSubset(folder string, onlyEmpty bool) ([]models.Server, error) {
	query := `SELECT ` + serverColumns + ` FROM servers WHERE 1=1`
	var args []any

	if folder != "" {
		query += " AND folder = ?"
		args = append(args, folder)
	}

	if onlyEmpty {
		query += " AND name = ''"
	}

	return r.queryServers(query, args)
}

func (r *Repository) queryServers(query string, args []any) ([]models.Server, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var servers []models.Server
	for rows.Next() {
		s, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}

	return servers, rows.Err()
}

func scanServer(row scanner) (models.Server, error) {
	var s models.Server
	err := row.Scan(
		&s.IP, &s.Port, &s.Name, &s.Map, &s.Folder, &s.Game, &s.Version, &s.Keywords, &s.AppID,
		&s.NumPlayers, &s.MaxPlayers, &s.Bots, &s.ServerType, &s.Environment, &s.Visibility, &s.VAC,
		&s.CountryCode, &s.Count, &s.FirstSeen, &s.LastSeen,
	)

	return s, err
}
