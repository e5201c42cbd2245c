package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"campus-laundry-backend/internal/laundry"
)

var (
	amountRe = regexp.MustCompile(`^([+-]?)\s*(\d+)$`)
	spaceRe  = regexp.MustCompile(`[\s_-]+`)
)

// Amount parses the free-text stock amount typed into the custom update box,
// e.g. "+10", "- 5" or "15".
func Amount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "−", "-") // unicode minus sign
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: amount %q is not a whole number", laundry.ErrInvalidInput, raw)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", laundry.ErrInvalidInput, raw, err)
	}
	if m[1] == "-" {
		n = -n
	}
	return n, nil
}

// WashType maps loose spellings ("dry-clean", "PREMIUM") onto the canonical
// tier names. Unknown values are returned trimmed but otherwise untouched.
func WashType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(spaceRe.ReplaceAllString(trimmed, ""))
	for _, w := range laundry.WashTypes {
		if key == strings.ToLower(strings.ReplaceAll(w, " ", "")) {
			return w
		}
	}
	return trimmed
}

// Flag reads a query-string switch such as new=true. Anything unparseable is false.
func Flag(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
