package mssql

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/storage"
)

//go:embed schema.sql
var schema string

const insertQuery = `
	INSERT INTO dbo.projects ([id], [source], [title], [amount_raised], [percentage], [link], [daysleft], [summary], [checksum], [scraped_at])
	VALUES (@ID, @Source, @Title, @AmountRaised, @Percentage, @Link, @DaysLeft, @Summary, @CheckSum, @ScrapedAt);
`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

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

// InsertMany вставляет пачку записей в одной транзакции
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

	stmt, err := tx.PrepareContext(ctx, insertQuery)
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
		_, err := stmt.ExecContext(ctx,
			sql.Named("ID", doc.ID),
			sql.Named("Source", doc.Record.Source),
			sql.Named("Title", doc.Record.Title),
			sql.Named("AmountRaised", storage.NullFloat(doc.Record.AmountRaised)),
			sql.Named("Percentage", storage.NullFloat(doc.Record.Percentage)),
			sql.Named("Link", doc.Record.Link),
			sql.Named("DaysLeft", storage.NullInt(doc.Record.DaysLeft)),
			sql.Named("Summary", doc.Record.Summary),
			sql.Named("CheckSum", doc.Checksum),
			sql.Named("ScrapedAt", doc.ScrapedAt),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *Repository) FindAll(ctx context.Context) ([]model.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+storage.RecordColumns+` FROM dbo.projects`)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err.Error())
		}
	}()

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

// SumAmountRaised - фильтр и сумма на стороне SQL Server
func (r *Repository) SumAmountRaised(ctx context.Context, minDaysLeft int) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `SELECT COALESCE(SUM(amount_raised), 0) FROM dbo.projects WHERE daysleft >= @MinDaysLeft`

	var sum float64
	err := r.db.QueryRowContext(ctx, query, sql.Named("MinDaysLeft", minDaysLeft)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return sum, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dbo.projects`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (r *Repository) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM dbo.projects`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear projects: %w", err)
	}
	return result.RowsAffected()
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
