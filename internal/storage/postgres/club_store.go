// Package postgres provides a Postgres-backed sink for crawled clubs.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

const defaultTable = "clubs"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// Config controls the Postgres connection pool used for club rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type txBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
	Close()
}

// ClubStore inserts one row per club, tagged with the run that produced it.
type ClubStore struct {
	pool  txBeginner
	table string
}

// NewClubStore connects to Postgres using the provided config.
func NewClubStore(ctx context.Context, cfg Config) (*ClubStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table, err := tableOrDefault(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ClubStore{pool: pool, table: table}, nil
}

// NewClubStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewClubStoreWithPool(pool txBeginner, table string) (*ClubStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableOrDefault(table)
	if err != nil {
		return nil, err
	}
	return &ClubStore{pool: pool, table: table}, nil
}

func tableOrDefault(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *ClubStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// StoreClubs inserts every club of a run in a single transaction. Position
// is the club's index in crawl order. Absent fields are stored as NULL.
func (s *ClubStore) StoreClubs(ctx context.Context, runID string, crawledAt time.Time, clubs []crawler.Club) (err error) {
	if s == nil || s.pool == nil {
		return fmt.Errorf("club store is not configured")
	}
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	if len(clubs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	position,
	crawled_at,
	name,
	logo_url,
	logo_label,
	detail_url,
	primary_image_url,
	secondary_image_url,
	local_image_path
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)`, s.table)

	for i, club := range clubs {
		var tag pgconn.CommandTag
		tag, err = tx.Exec(ctx, query,
			runID,
			i,
			crawledAt,
			club.Name,
			club.LogoURL,
			club.LogoLabel,
			club.DetailURL,
			nullable(club.PrimaryImageURL),
			nullable(club.SecondaryImageURL),
			nullable(club.LocalImagePath),
		)
		if err != nil {
			return fmt.Errorf("insert club %q: %w", club.Name, err)
		}
		if tag.RowsAffected() != 1 {
			err = fmt.Errorf("insert club %q: affected %d rows", club.Name, tag.RowsAffected())
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clubs: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
