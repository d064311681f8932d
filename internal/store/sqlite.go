package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lol-blacklist/internal/model"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteStore struct {
	db *sql.DB
}

type SQLiteOptions struct {
	MigrationsDir string
}

func NewSQLiteStore(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	migrations, err := migrationSource(opts.MigrationsDir, "sqlite")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, migrations, "?"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListEntries() ([]model.BlacklistEntry, error) {
	rows, err := s.db.Query(`SELECT summoner_id, summoner_name, tagline, reason, date_added FROM blacklist_entries ORDER BY date_added, summoner_id`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	entries := []model.BlacklistEntry{}
	for rows.Next() {
		e, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) GetEntry(summonerID string) (model.BlacklistEntry, bool, error) {
	row := s.db.QueryRow(`SELECT summoner_id, summoner_name, tagline, reason, date_added FROM blacklist_entries WHERE summoner_id = ?`, summonerID)
	e, err := scanSQLiteEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BlacklistEntry{}, false, nil
	}
	if err != nil {
		return model.BlacklistEntry{}, false, err
	}
	return e, true, nil
}

func (s *SQLiteStore) AddEntry(entry model.BlacklistEntry) error {
	_, err := s.db.Exec(`INSERT INTO blacklist_entries (summoner_id, summoner_name, tagline, reason, date_added) VALUES (?,?,?,?,?)`,
		entry.SummonerID, entry.SummonerName, entry.Tagline, entry.Reason, entry.DateAdded.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveEntry(summonerID string) error {
	res, err := s.db.Exec(`DELETE FROM blacklist_entries WHERE summoner_id = ?`, summonerID)
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetPUUID(ctx context.Context, key string) (string, bool, error) {
	var puuid string
	err := s.db.QueryRowContext(ctx, `SELECT puuid FROM puuid_cache WHERE cache_key = ?`, key).Scan(&puuid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get puuid: %w", err)
	}
	return puuid, true, nil
}

func (s *SQLiteStore) PutPUUID(ctx context.Context, key, puuid string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO puuid_cache (cache_key, puuid) VALUES (?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET puuid = excluded.puuid`, key, puuid)
	if err != nil {
		return fmt.Errorf("put puuid: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeletePUUID(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM puuid_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("delete puuid: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEntry(row rowScanner) (model.BlacklistEntry, error) {
	var e model.BlacklistEntry
	var date string
	if err := row.Scan(&e.SummonerID, &e.SummonerName, &e.Tagline, &e.Reason, &date); err != nil {
		return model.BlacklistEntry{}, err
	}
	e.DateAdded = parseDate(date)
	return e, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
