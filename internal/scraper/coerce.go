package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoDigits = errors.New("no digits in numeric field")

	digitRun = regexp.MustCompile(`\d+`)
)

// ParseNumber убирает разделители тысяч и берёт первую серию цифр:
// "1,234 backers" → 1234, "£12.5k" → 12. Дробная часть не учитывается.
func ParseNumber(raw string) (float64, error) {
	run := digitRun.FindString(strings.ReplaceAll(raw, ",", ""))
	if run == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoDigits, raw)
	}

	value, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as number: %w", run, err)
	}
	return value, nil
}
