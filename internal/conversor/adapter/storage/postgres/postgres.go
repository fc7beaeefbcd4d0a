package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moedaspro/conversor/deploy/config"
	"github.com/moedaspro/conversor/internal/entities"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{db: pool}
}

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	const op = "storage.postgres.New"

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Storage.Host,
		cfg.Storage.Port,
		cfg.Storage.User,
		cfg.Storage.Password,
		cfg.Storage.DBName,
		cfg.Storage.SSLMode,
		cfg.Storage.Schema,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: parse config failed: %w", op, err)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: pgxpool connect failed: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping failed: %w", op, err)
	}

	slog.Info("PostgresSQL storage initialized successfully")
	return NewStorage(pool), nil
}

func (s *Storage) Close() {
	s.db.Close()
}

func (s *Storage) SaveConversion(ctx context.Context, c *entities.Conversion) error {
	const op = "storage.postgres.SaveConversion"

	query := `
		INSERT INTO conversions
			(id, origin, destination, amount, result, rate, inverse_rate, source, timestamp, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		c.ID,
		string(c.Pair.Origin),
		string(c.Pair.Destination),
		c.Amount,
		c.Result,
		c.Rate,
		c.InverseRate,
		c.Source,
		c.Timestamp,
		c.Notes,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListConversions returns one page of history matching the filter plus the
// total number of matches.
func (s *Storage) ListConversions(ctx context.Context, filter entities.HistoryFilter) ([]entities.Conversion, int, error) {
	const op = "storage.postgres.ListConversions"

	where := " WHERE 1=1"
	args := []interface{}{}

	if filter.Origin != "" {
		args = append(args, string(filter.Origin))
		where += " AND origin = $" + strconv.Itoa(len(args))
	}
	if filter.Destination != "" {
		args = append(args, string(filter.Destination))
		where += " AND destination = $" + strconv.Itoa(len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		where += " AND timestamp >= $" + strconv.Itoa(len(args))
	}
	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		where += " AND timestamp <= $" + strconv.Itoa(len(args))
	}

	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM conversions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, origin, destination, amount, result, rate, inverse_rate, source, timestamp, notes
		FROM conversions` + where + " ORDER BY timestamp DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += " LIMIT $" + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var conversions []entities.Conversion

	for rows.Next() {
		var c entities.Conversion
		var origin, destination string

		if err := rows.Scan(&c.ID, &origin, &destination, &c.Amount, &c.Result,
			&c.Rate, &c.InverseRate, &c.Source, &c.Timestamp, &c.Notes); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}

		c.Pair = entities.RatePair{
			Origin:      entities.CurrencyCode(origin),
			Destination: entities.CurrencyCode(destination),
		}
		conversions = append(conversions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return conversions, total, nil
}

// Stats aggregates the conversion history of one pair since the given time.
func (s *Storage) Stats(ctx context.Context, pair entities.RatePair, since time.Time) (*entities.ConversionStats, error) {
	const op = "storage.postgres.Stats"

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(result), 0),
			COALESCE(AVG(rate), 0),
			COALESCE(MIN(rate), 0),
			COALESCE(MAX(rate), 0),
			COALESCE(MIN(timestamp), to_timestamp(0)),
			COALESCE(MAX(timestamp), to_timestamp(0))
		FROM conversions
		WHERE origin = $1 AND destination = $2 AND timestamp >= $3
	`

	stats := &entities.ConversionStats{Pair: pair}

	err := s.db.QueryRow(ctx, query, string(pair.Origin), string(pair.Destination), since).Scan(
		&stats.Count,
		&stats.TotalOrigin,
		&stats.TotalResult,
		&stats.AvgRate,
		&stats.MinRate,
		&stats.MaxRate,
		&stats.First,
		&stats.Last,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stats.Count == 0 {
		return nil, fmt.Errorf("%s: %w", op, entities.ErrNotFound)
	}

	return stats, nil
}

// DeleteAll wipes the conversion history and reports how many rows went.
func (s *Storage) DeleteAll(ctx context.Context) (int64, error) {
	const op = "storage.postgres.DeleteAll"

	tag, err := s.db.Exec(ctx, "DELETE FROM conversions")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
