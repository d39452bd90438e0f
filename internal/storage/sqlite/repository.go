package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/storage"
)

//go:embed schema.sql
var schema string

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

// NewRepository открывает файл БД (или ":memory:") и создаёт таблицу projects
func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Один коннект: у ":memory:" каждое соединение - отдельная база
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

var _ storage.Repository = (*Repository)(nil)

// InsertMany вставляет все записи в одной транзакции
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO projects (`+storage.Columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	for _, doc := range docs {
		if _, err := stmt.ExecContext(ctx, doc.Args()...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert %q: %w", doc.Record.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Debug("Inserted documents", "count", len(docs))
	return nil
}

func (r *Repository) FindAll(ctx context.Context) ([]model.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+storage.RecordColumns+` FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_raised), 0) FROM projects WHERE daysleft >= ?`, minDaysLeft,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return sum, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (r *Repository) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear projects: %w", err)
	}
	return result.RowsAffected()
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
