package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lol-blacklist/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

type PostgresOptions struct {
	MigrationsDir string
}

func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	migrations, err := migrationSource(opts.MigrationsDir, "postgres")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, migrations, "$1"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListEntries() ([]model.BlacklistEntry, error) {
	rows, err := s.db.Query(`SELECT summoner_id, summoner_name, tagline, reason, date_added FROM blacklist_entries ORDER BY date_added, summoner_id`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	entries := []model.BlacklistEntry{}
	for rows.Next() {
		var e model.BlacklistEntry
		if err := rows.Scan(&e.SummonerID, &e.SummonerName, &e.Tagline, &e.Reason, &e.DateAdded); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) GetEntry(summonerID string) (model.BlacklistEntry, bool, error) {
	var e model.BlacklistEntry
	err := s.db.QueryRow(`SELECT summoner_id, summoner_name, tagline, reason, date_added FROM blacklist_entries WHERE summoner_id = $1`, summonerID).
		Scan(&e.SummonerID, &e.SummonerName, &e.Tagline, &e.Reason, &e.DateAdded)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BlacklistEntry{}, false, nil
	}
	if err != nil {
		return model.BlacklistEntry{}, false, err
	}
	return e, true, nil
}

func (s *PostgresStore) AddEntry(entry model.BlacklistEntry) error {
	_, err := s.db.Exec(`INSERT INTO blacklist_entries (summoner_id, summoner_name, tagline, reason, date_added) VALUES ($1,$2,$3,$4,$5)`,
		entry.SummonerID, entry.SummonerName, entry.Tagline, entry.Reason, entry.DateAdded,
	)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveEntry(summonerID string) error {
	res, err := s.db.Exec(`DELETE FROM blacklist_entries WHERE summoner_id = $1`, summonerID)
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetPUUID(ctx context.Context, key string) (string, bool, error) {
	var puuid string
	err := s.db.QueryRowContext(ctx, `SELECT puuid FROM puuid_cache WHERE cache_key = $1`, key).Scan(&puuid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get puuid: %w", err)
	}
	return puuid, true, nil
}

func (s *PostgresStore) PutPUUID(ctx context.Context, key, puuid string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO puuid_cache (cache_key, puuid) VALUES ($1, $2)
		ON CONFLICT (cache_key) DO UPDATE SET puuid = EXCLUDED.puuid`, key, puuid)
	if err != nil {
		return fmt.Errorf("put puuid: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePUUID(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM puuid_cache WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("delete puuid: %w", err)
	}
	return nil
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
