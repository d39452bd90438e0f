package normalize

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// CleanText приводит видимый текст элемента к одной строке:
// NBSP → пробел, серии пробельных символов схлопываются, края обрезаются
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\u00A0", " ")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
