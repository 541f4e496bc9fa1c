package places

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// legalSuffix matches company-form suffixes that are often missing from a
// business's public listing. RE2's \b is ASCII-only, so the surrounding
// boundaries are captured explicitly and put back on replacement.
var legalSuffix = regexp.MustCompile(
	`(?i)(^|[^\pL\pN])(AB|HB|KB|Aktiebolag|Ltd|GmbH|Inc|LLC|Ek\.?för\.?|ekonomisk förening)([^\pL\pN]|$)`,
)

const trimSet = " ,.-"

// minMatchRunes is the shortest search word that counts towards a name match.
const minMatchRunes = 4

// SimplifyName strips legal-form suffixes such as "AB" or "Ltd" from name
// and trims leftover punctuation.
func SimplifyName(name string) string {
	out := name
	// Adjacent suffixes share a separator, so repeat until stable.
	for {
		next := legalSuffix.ReplaceAllString(out, "$1$3")
		if next == out {
			break
		}
		out = next
	}
	out = strings.Join(strings.Fields(out), " ")
	return strings.Trim(out, trimSet)
}

// NamesMatch reports whether a search result plausibly names the searched
// business: at least one word of four or more letters from search must occur
// in result, ignoring case.
func NamesMatch(search, result string) bool {
	folder := cases.Fold()
	folded := folder.String(result)
	for _, w := range strings.Fields(search) {
		if utf8.RuneCountInString(w) < minMatchRunes {
			continue
		}
		if strings.Contains(folded, folder.String(w)) {
			return true
		}
	}
	return false
}

// searchQueries returns the de-duplicated text queries tried for a business,
// most specific first.
func searchQueries(name, city string) []string {
	simple := SimplifyName(name)
	candidates := []string{
		name + " " + city,
		name,
		simple + " " + city,
		simple,
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
