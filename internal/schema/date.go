package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDate normalizes a collaboration date to YYYY-MM-DD. It accepts ISO
// dates, RFC 3339 timestamps and natural language such as "tomorrow" or
// "next friday", resolved relative to now.
func ParseDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(DateLayout, input); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse("02.01.2006", input); err == nil {
		return t.Format(DateLayout), nil
	}

	r, err := dateParser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("unrecognized date %q", input)
	}
	return r.Time.Format(DateLayout), nil
}
