package models

import (
	"fmt"
	"strconv"
	"strings"
)

// NextCounter returns the next integer for ids of the form "<prefix>-<n>".
// It is 1 + the max integer among existing ids matching that exact prefix,
// or 1 when none match. Deleting ids never causes reuse, so ids stay
// collision-free across create/delete/undo sequences.
func NextCounter(ids []string, prefix string) int {
	max := 0
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// FormatID renders "<prefix>-<n>".
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}
