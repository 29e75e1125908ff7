package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"alkoteka-crawler/internal/catalog"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool behind the sink.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres inserts product records into a Postgres table. Nested
// structures land in jsonb columns so the table mirrors the feed shape.
type Postgres struct {
	pool  execCloser
	table string
}

// NewPostgres connects a pool and returns the sink.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sink.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "products"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool, table: table}, nil
}

// NewPostgresWithPool constructs a sink from an existing pool
// (primarily for testing).
func NewPostgresWithPool(pool execCloser, table string) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "products"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Postgres{pool: pool, table: table}, nil
}

// Write inserts one product row.
func (s *Postgres) Write(ctx context.Context, p catalog.Product) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres sink is not configured")
	}

	tags, err := json.Marshal(p.MarketingTags)
	if err != nil {
		return fmt.Errorf("marshal marketing tags: %w", err)
	}
	section, err := json.Marshal(p.Section)
	if err != nil {
		return fmt.Errorf("marshal section: %w", err)
	}
	price, err := json.Marshal(p.Price)
	if err != nil {
		return fmt.Errorf("marshal price: %w", err)
	}
	stock, err := json.Marshal(p.Stock)
	if err != nil {
		return fmt.Errorf("marshal stock: %w", err)
	}
	assets, err := json.Marshal(p.Assets)
	if err != nil {
		return fmt.Errorf("marshal assets: %w", err)
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(timestamp, rpc, url, title, marketing_tags, brand, section, price_data, stock, assets, metadata, variants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, s.table)

	if _, err := s.pool.Exec(ctx, query,
		p.Timestamp, p.RPC, p.URL, p.Title, tags, p.Brand,
		section, price, stock, assets, metadata, p.Variants,
	); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Postgres) Close(context.Context) error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}
