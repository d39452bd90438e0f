package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"

	"crowdfund-scraper/internal/model"
)

type Scraper struct {
	selectors *Selectors
	extractor *Extractor
}

func NewScraper(selectors *Selectors, source string, strictNumeric bool) *Scraper {
	return &Scraper{
		selectors: selectors,
		extractor: NewExtractor(selectors.Fields, source, strictNumeric),
	}
}

// Listing - результат разбора одной страницы листинга
type Listing struct {
	Records []model.Record
	// Cursor - курсор следующей страницы из пагинатора; None, если пагинатора нет
	// или атрибут пустой
	Cursor mo.Option[string]
}

// ParseListing парсит HTML страницы (или AJAX-фрагмент) и извлекает все карточки
func (s *Scraper) ParseListing(html string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	listing := &Listing{Cursor: s.findCursor(doc)}

	var extractErr error
	doc.Find(s.selectors.CardSelector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		record, err := s.extractor.Extract(card)
		if err != nil {
			extractErr = fmt.Errorf("card %d: %w", i, err)
			return false
		}
		listing.Records = append(listing.Records, record)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return listing, nil
}

func (s *Scraper) findCursor(doc *goquery.Document) mo.Option[string] {
	if s.selectors.Paginator.Selector == "" {
		return mo.None[string]()
	}

	cursor, exists := doc.Find(s.selectors.Paginator.Selector).First().Attr(s.selectors.Paginator.CursorAttr)
	cursor = strings.TrimSpace(cursor)
	if !exists || cursor == "" {
		return mo.None[string]()
	}
	return mo.Some(cursor)
}
