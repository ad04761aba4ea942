package legislator

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxColumnDistance is the largest edit distance accepted when a header has
// drifted from its configured name ("Born" vs "Born ").
const maxColumnDistance = 2

// ResolveColumn finds the header in cols that best matches want. It tries,
// in order: an exact match, a case-insensitive match, a header that starts
// with want (as colspan headers "Name - 1" do), then the closest header
// within a small edit distance.
func ResolveColumn(cols []string, want string) (string, error) {
	if want == "" {
		return "", fmt.Errorf("no column requested")
	}

	for _, c := range cols {
		if c == want {
			return c, nil
		}
	}

	lower := strings.ToLower(want)
	for _, c := range cols {
		if strings.ToLower(c) == lower {
			return c, nil
		}
	}

	for _, c := range cols {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			return c, nil
		}
	}

	best, bestDist := "", maxColumnDistance+1
	for _, c := range cols {
		d := levenshtein.ComputeDistance(strings.ToLower(c), lower)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if best != "" {
		return best, nil
	}

	return "", fmt.Errorf("column %q not found in %v", want, cols)
}
