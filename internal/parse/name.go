// Package parse turns user supplied strings into typed values.
package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// MachineName returns raw trimmed, or the default name for code when raw
// is blank: at least two digits, as in tear01, tear10, tear100.
func MachineName(code int64, raw string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return fmt.Sprintf("tear%02d", code)
}

// IntList parses a comma separated list of integers. Blank entries are
// skipped and an empty input yields nil.
func IntList(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in list", part)
		}
		out = append(out, n)
	}
	return out, nil
}
