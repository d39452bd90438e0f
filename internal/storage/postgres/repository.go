package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/storage"
)

//go:embed schema.sql
var schema string

// Pool - подмножество *pgxpool.Pool, которое нужно репозиторию (подменяется pgxmock в тестах)
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type Repository struct {
	pool           Pool
	commandTimeout time.Duration
	logger         *observability.Logger
}

// NewRepository подключается к Postgres и создаёт таблицу projects
func NewRepository(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewRepositoryWithPool(pool, commandTimeout, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func NewRepositoryWithPool(pool Pool, commandTimeout time.Duration, logger *observability.Logger) *Repository {
	return &Repository{
		pool:           pool,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

var _ storage.Repository = (*Repository)(nil)

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *Repository) InsertMany(ctx context.Context, records []model.Record) error {
	docs, err := storage.NewDocuments(records, time.Now())
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `INSERT INTO projects (` + storage.Columns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, doc := range docs {
		if _, err := tx.Exec(ctx, query, doc.Args()...); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to insert %q: %w", doc.Record.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Debug("Inserted documents", "count", len(docs))
	return nil
}

func (r *Repository) FindAll(ctx context.Context) ([]model.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+storage.RecordColumns+` FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		record, err := storage.ScanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *Repository) SumAmountRaised(ctx context.Context, minDaysLeft int) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var sum float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_raised), 0) FROM projects WHERE daysleft >= $1`, minDaysLeft,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return sum, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return int(count), nil
}

func (r *Repository) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear projects: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
