package scraper

import (
	"errors"
	"fmt"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

var ErrMalformedEnvelope = errors.New("malformed pagination envelope")

// Envelope - ответ AJAX-пагинации: {"content": "<html>", "cursorNext": "..." | null}
type Envelope struct {
	Content    string
	CursorNext mo.Option[string]
}

// ParseEnvelope требует оба ключа; cursorNext: null (или пустая строка) - последняя страница
func ParseEnvelope(body []byte) (*Envelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedEnvelope)
	}

	content := gjson.GetBytes(body, "content")
	if !content.Exists() || content.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing content", ErrMalformedEnvelope)
	}

	cursor := gjson.GetBytes(body, "cursorNext")
	if !cursor.Exists() {
		return nil, fmt.Errorf("%w: missing cursorNext", ErrMalformedEnvelope)
	}

	envelope := &Envelope{
		Content:    content.String(),
		CursorNext: mo.None[string](),
	}
	if cursor.Type != gjson.Null && cursor.String() != "" {
		envelope.CursorNext = mo.Some(cursor.String())
	}

	return envelope, nil
}
