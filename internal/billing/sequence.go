package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// Document numbers are year-scoped counters: "2024-0007" for invoices,
// "KV-2024-0007" for quotes, "A-2024-0007" for work orders. The counter
// restarts every year; uniqueness of the full string is enforced by a
// database constraint, not here.

const sequenceWidth = 4

// SequencePrefix returns the fixed leading part of all numbers for a
// prefix/year combination, e.g. "KV-2024-".
func SequencePrefix(prefix string, year int) string {
	if prefix == "" {
		return fmt.Sprintf("%d-", year)
	}
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// NextSequenceNumber formats the successor of the highest existing
// suffix for the given prefix and year. maxSuffix is 0 when no document
// exists for that year yet, so the counter starts at 1.
func NextSequenceNumber(prefix string, year int, maxSuffix int) string {
	return fmt.Sprintf("%s%0*d", SequencePrefix(prefix, year), sequenceWidth, maxSuffix+1)
}

// SequenceSuffix extracts the counter from a formatted number. Returns
// false when the number does not belong to the prefix/year combination
// or its counter part is not numeric.
func SequenceSuffix(number, prefix string, year int) (int, bool) {
	lead := SequencePrefix(prefix, year)
	rest, ok := strings.CutPrefix(number, lead)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
