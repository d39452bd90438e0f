package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/mo"
)

// Теги источников
const (
	SourceCrowdcube   = "crowdcube"
	SourceKickstarter = "kickstarter"
)

// Ключи полей записи (совпадают с ключами дескрипторов и колонками хранилища)
const (
	KeyTitle        = "title"
	KeyAmountRaised = "amount_raised"
	KeyPercentage   = "percentage"
	KeyLink         = "link"
	KeyDaysLeft     = "daysleft"
	KeySummary      = "summary"
)

// FieldKeys - все содержательные поля записи в каноническом порядке
var FieldKeys = []string{KeyTitle, KeyAmountRaised, KeyPercentage, KeyLink, KeyDaysLeft, KeySummary}

var (
	ErrUnknownField = errors.New("unknown record field")
	ErrOutOfRange   = errors.New("value out of range")
)

// Record - нормализованная запись кампании, общая для обоих источников.
// Пустая строка в текстовом поле и отсутствующее значение в числовом означают,
// что поле не удалось извлечь.
type Record struct {
	Title        string
	AmountRaised mo.Option[float64] // в базовой валюте
	Percentage   mo.Option[float64]
	Link         string
	DaysLeft     mo.Option[int]
	Summary      string
	Source       string
}

// NewRecord создаёт пустую запись с тегом источника
func NewRecord(source string) Record {
	return Record{
		AmountRaised: mo.None[float64](),
		Percentage:   mo.None[float64](),
		DaysLeft:     mo.None[int](),
		Source:       source,
	}
}

// IsNumericKey сообщает, хранится ли поле как число
func IsNumericKey(key string) bool {
	switch key {
	case KeyAmountRaised, KeyPercentage, KeyDaysLeft:
		return true
	}
	return false
}

// SetText записывает текстовое поле по ключу
func (r *Record) SetText(key, value string) error {
	switch key {
	case KeyTitle:
		r.Title = value
	case KeyLink:
		r.Link = value
	case KeySummary:
		r.Summary = value
	default:
		return fmt.Errorf("%w: %q is not a text field", ErrUnknownField, key)
	}
	return nil
}

// SetNumber записывает числовое поле по ключу. daysleft хранится в INT-колонке,
// поэтому значения вне int32 отвергаются
func (r *Record) SetNumber(key string, value float64) error {
	switch key {
	case KeyAmountRaised:
		r.AmountRaised = mo.Some(value)
	case KeyPercentage:
		r.Percentage = mo.Some(value)
	case KeyDaysLeft:
		if value < math.MinInt32 || value > math.MaxInt32 {
			return fmt.Errorf("%w: %s=%g", ErrOutOfRange, key, value)
		}
		r.DaysLeft = mo.Some(int(value))
	default:
		return fmt.Errorf("%w: %q is not a numeric field", ErrUnknownField, key)
	}
	return nil
}

// Validate проверяет инвариант: у записи должен быть источник
func (r Record) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("record %q has no source", r.Title)
	}
	return nil
}

// CountsTowardRaised - участвует ли запись в сумме "осталось не меньше minDaysLeft дней"
func (r Record) CountsTowardRaised(minDaysLeft int) bool {
	days, ok := r.DaysLeft.Get()
	return ok && days >= minDaysLeft
}
