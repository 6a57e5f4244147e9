// Package slug turns blog titles into unique, URL-safe identifiers.
package slug

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// whitespace covers the ASCII spaces of \s plus vertical tab, every Unicode
// space separator, the line and paragraph separators and the byte order mark.
const whitespace = `\s\x{0B}\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	disallowedRX = regexp.MustCompile(`[^\w` + whitespace + `-]`)
	spaceRX      = regexp.MustCompile(`[` + whitespace + `]+`)
	hyphenRX     = regexp.MustCompile(`-+`)
)

// ExistsFunc reports whether a record other than exclude already holds slug.
// exclude is uuid.Nil when nothing should be excluded.
type ExistsFunc func(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)

// DeriveBase lower-cases title, drops everything but word characters, whitespace
// and hyphens, joins words with single hyphens and trims hyphens from both ends.
// Titles without any word character produce an empty string.
func DeriveBase(title string) string {
	s := strings.ToLower(title)
	s = disallowedRX.ReplaceAllString(s, "")
	s = spaceRX.ReplaceAllString(s, "-")
	s = hyphenRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Candidate returns the n-th candidate for base: base itself for n == 0, base-n otherwise.
func Candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// ResolveUnique returns the first of base, base-1, base-2, ... that exists
// reports as free, together with the number of candidates checked.
func ResolveUnique(ctx context.Context, base string, exists ExistsFunc, exclude uuid.UUID) (string, int, error) {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", n, err
		}

		candidate := Candidate(base, n)

		taken, err := exists(ctx, candidate, exclude)
		if err != nil {
			return "", n + 1, err
		}

		if !taken {
			return candidate, n + 1, nil
		}
	}
}
