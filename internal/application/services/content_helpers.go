package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Diampra/octopus-server/internal/domain/repositories"
)

// Slugify lowercases s and joins its letter and digit runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func slugOrDerived(slug, title string) (string, error) {
	if slug = strings.TrimSpace(slug); slug == "" {
		slug = Slugify(title)
	}
	if slug == "" || slug != Slugify(slug) {
		return "", invalid("slug %q must be lowercase letters, digits and dashes", slug)
	}
	return slug, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repositories.ErrNotFound)
}

func nowPtr() *time.Time {
	now := time.Now().UTC()
	return &now
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
