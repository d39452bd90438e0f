package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/normalize"
)

// FieldError - поле карточки не удалось привести к объявленному типу
type FieldError struct {
	Key string
	Raw string
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (%q): %v", e.Key, e.Raw, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Extractor превращает фрагмент разметки (карточку) в запись по списку дескрипторов
type Extractor struct {
	fields []FieldDescriptor
	source string
	strict bool
}

// NewExtractor: strict=true делает числовое поле без цифр ошибкой записи,
// иначе поле остаётся пустым, как и при отсутствии элемента
func NewExtractor(fields []FieldDescriptor, source string, strict bool) *Extractor {
	return &Extractor{
		fields: fields,
		source: source,
		strict: strict,
	}
}

// Extract собирает одну запись. Отсутствующий элемент никогда не ломает запись.
func (e *Extractor) Extract(card *goquery.Selection) (model.Record, error) {
	record := model.NewRecord(e.source)

	for _, field := range e.fields {
		raw, found := readField(card, field)
		if !found {
			continue
		}

		if !field.Type.IsNumeric() {
			if err := record.SetText(field.Key, raw); err != nil {
				return record, err
			}
			continue
		}

		value, err := ParseNumber(raw)
		if err == nil {
			err = record.SetNumber(field.Key, value)
		}
		if err != nil {
			// мусор в разметке: без цифр или число не влезает в поле
			lenient := errors.Is(err, ErrNoDigits) || errors.Is(err, model.ErrOutOfRange)
			if lenient && !e.strict {
				continue
			}
			return record, &FieldError{Key: field.Key, Raw: raw, Err: err}
		}
	}

	return record, nil
}

// readField: первый совпавший элемент, атрибут (обрезанный) или видимый текст
func readField(card *goquery.Selection, field FieldDescriptor) (string, bool) {
	match := card.Find(field.Selector)
	if match.Length() == 0 {
		return "", false
	}

	first := match.First()
	if field.Attr != "" {
		value, _ := first.Attr(field.Attr)
		return strings.TrimSpace(value), true
	}
	return normalize.CleanText(first.Text()), true
}
