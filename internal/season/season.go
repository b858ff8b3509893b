package season

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the root of the Big 5 competition pages on fbref.com (Portuguese edition).
	DefaultBaseURL = "https://fbref.com/pt/comps/Big5"

	// PageSuffix is the filename segment shared by every season's statistics page.
	PageSuffix = "Maiores-5-Ligas-Europeias-Estatisticas"
)

// Key selects a league season
type Key string

// Current is the reserved key for the in-progress season. Its URL has no season segment.
const Current Key = "current"

var literalPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// IsCurrent reports whether k is the reserved current-season marker
func (k Key) IsCurrent() bool {
	return k == Current
}

func (k Key) String() string {
	return string(k)
}

// Parse validates a season key. Accepts the current marker (case-insensitive)
// or a literal season whose second year follows the first.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(Current)) {
		return Current, nil
	}

	matches := literalPattern.FindStringSubmatch(s)
	if matches == nil {
		return "", fmt.Errorf("invalid season %q (want YYYY-YYYY or %q)", s, Current)
	}

	start, _ := strconv.Atoi(matches[1])
	end, _ := strconv.Atoi(matches[2])
	if end != start+1 {
		return "", fmt.Errorf("invalid season %q: %d does not follow %d", s, end, start)
	}

	return Key(s), nil
}

// URL builds the statistics page URL for k under baseURL.
// An empty baseURL means DefaultBaseURL.
func URL(baseURL string, k Key) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if k.IsCurrent() {
		return baseURL + "/" + PageSuffix
	}
	return fmt.Sprintf("%s/%s/%s-%s", baseURL, k, k, PageSuffix)
}
