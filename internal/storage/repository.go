package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"crowdfund-scraper/internal/checksum"
	"crowdfund-scraper/internal/model"
)

// Repository - всё, что пайплайну нужно от хранилища. Реализации: sqlite, postgres, mssql.
type Repository interface {
	// InsertMany сохраняет записи одной пачкой
	InsertMany(ctx context.Context, records []model.Record) error

	// FindAll возвращает все записи (для подсчёта агрегата в приложении)
	FindAll(ctx context.Context) ([]model.Record, error)

	// SumAmountRaised - сумма amount_raised по записям с daysleft >= minDaysLeft, считается в БД
	SumAmountRaised(ctx context.Context, minDaysLeft int) (float64, error)

	// Count - количество документов в коллекции
	Count(ctx context.Context) (int, error)

	// Clear удаляет все документы, возвращает сколько удалено
	Clear(ctx context.Context) (int64, error)

	Close() error
}

// Document - запись в том виде, в котором она лежит в таблице projects
type Document struct {
	ID        string
	Checksum  string
	ScrapedAt time.Time
	Record    model.Record
}

// NewDocuments проверяет записи и присваивает им ID и контрольную сумму
func NewDocuments(records []model.Record, now time.Time) ([]Document, error) {
	gen := checksum.NewGenerator()
	docs := make([]Document, 0, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		docs = append(docs, Document{
			ID:        uuid.NewString(),
			Checksum:  gen.RecordHash(r),
			ScrapedAt: now.UTC(),
			Record:    r,
		})
	}
	return docs, nil
}

// Args - значения колонок в порядке Columns
func (d Document) Args() []any {
	return []any{
		d.ID,
		d.Record.Source,
		d.Record.Title,
		NullFloat(d.Record.AmountRaised),
		NullFloat(d.Record.Percentage),
		d.Record.Link,
		NullInt(d.Record.DaysLeft),
		d.Record.Summary,
		d.Checksum,
		d.ScrapedAt,
	}
}

// Columns - порядок колонок для INSERT
const Columns = "id, source, title, amount_raised, percentage, link, daysleft, summary, checksum, scraped_at"

// RecordColumns - порядок колонок для чтения записи (ScanRecord)
const RecordColumns = "source, title, amount_raised, percentage, link, daysleft, summary"

// Scanner - общий знаменатель *sql.Row(s) и pgx.Row(s)
type Scanner interface {
	Scan(dest ...any) error
}

// ScanRecord читает строку, выбранную с RecordColumns
func ScanRecord(row Scanner) (model.Record, error) {
	var (
		source, title, link, summary string
		amount, percentage           sql.NullFloat64
		daysLeft                     sql.NullInt64
	)
	if err := row.Scan(&source, &title, &amount, &percentage, &link, &daysLeft, &summary); err != nil {
		return model.Record{}, err
	}

	r := model.NewRecord(source)
	r.Title = title
	r.AmountRaised = OptionFloat(amount)
	r.Percentage = OptionFloat(percentage)
	r.Link = link
	r.DaysLeft = OptionInt(daysLeft)
	r.Summary = summary
	return r, nil
}

func NullFloat(o mo.Option[float64]) sql.NullFloat64 {
	v, ok := o.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func NullInt(o mo.Option[int]) sql.NullInt64 {
	v, ok := o.Get()
	return sql.NullInt64{Int64: int64(v), Valid: ok}
}

func OptionFloat(n sql.NullFloat64) mo.Option[float64] {
	if !n.Valid {
		return mo.None[float64]()
	}
	return mo.Some(n.Float64)
}

func OptionInt(n sql.NullInt64) mo.Option[int] {
	if !n.Valid {
		return mo.None[int]()
	}
	return mo.Some(int(n.Int64))
}
