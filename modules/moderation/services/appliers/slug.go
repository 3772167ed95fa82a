package appliers

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugAttempts bounds collision suffixing; running out surfaces as an
// application error rather than looping.
const maxSlugAttempts = 1000

var deaccenter = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases, strips accents and collapses every non-alphanumeric
// run into a single hyphen.
func Slugify(s string) string {
	if flat, _, err := transform.String(deaccenter, s); err == nil {
		s = flat
	}
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// uniqueSlug resolves collisions by appending -1, -2, ... to the candidate.
func uniqueSlug(ctx context.Context, base string, excludeID uuid.UUID, exists func(context.Context, string, uuid.UUID) (bool, error)) (string, error) {
	candidate := Slugify(base)
	if candidate == "" {
		candidate = "untitled"
	}
	taken, err := exists(ctx, candidate, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}
	for i := 1; i <= maxSlugAttempts; i++ {
		suffixed := fmt.Sprintf("%s-%d", candidate, i)
		taken, err := exists(ctx, suffixed, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return suffixed, nil
		}
	}
	return "", applicationError(fmt.Sprintf("slug space exhausted for %q", candidate), nil)
}
