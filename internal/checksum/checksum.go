package checksum

import (
	"crypto/sha256"
	"fmt"

	"crowdfund-scraper/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// RecordHash - SHA256(source|link|title|summary) в hex.
// Числовые поля не входят: сумма и дни меняются между запусками, кампания - нет.
func (g *Generator) RecordHash(r model.Record) string {
	content := fmt.Sprintf("%s|%s|%s|%s", r.Source, r.Link, r.Title, r.Summary)
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
