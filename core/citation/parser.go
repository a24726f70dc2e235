package citation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Marker is a bracketed integer like "[3]" found in a text.
// Start and End are byte offsets, End is exclusive.
type Marker struct {
	Index int
	Start int
	End   int
}

// FindMarkers scans text for bracketed integers.
// Numbers too large for an int are skipped.
func FindMarkers(text string) []Marker {
	markers := []Marker{}

	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}

		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		if j == i+1 || j >= len(text) || text[j] != ']' {
			continue
		}

		n, err := strconv.Atoi(text[i+1 : j])
		if err == nil {
			markers = append(markers, Marker{Index: n, Start: i, End: j + 1})
		}
		i = j
	}

	return markers
}

// CountMarkers counts every bracketed integer regardless of its range
func CountMarkers(text string) int {
	return len(FindMarkers(text))
}

// StripMarkers removes every bracketed integer from text
func StripMarkers(text string) string {
	markers := FindMarkers(text)
	if len(markers) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, marker := range markers {
		b.WriteString(text[last:marker.Start])
		last = marker.End
	}
	b.WriteString(text[last:])

	return b.String()
}

// Label formats a source index as "[n]"
func Label(n int) string {
	return fmt.Sprintf("[%d]", n)
}

// ParseCitations returns the distinct cited source indices between 1 and totalSources
// as ascending "[n]" labels. Out of range indices are ignored.
// hasAll is true if every index from 1 to totalSources was cited.
func ParseCitations(text string, totalSources int) (found []string, hasAll bool) {
	seen := map[int]struct{}{}
	for _, marker := range FindMarkers(text) {
		if marker.Index >= 1 && marker.Index <= totalSources {
			seen[marker.Index] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for n := range seen {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	found = make([]string, len(indices))
	for i, n := range indices {
		found[i] = Label(n)
	}

	return found, len(seen) == totalSources
}
