package services

import (
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxFileNameLen = 255

// cleanFileName keeps the name human readable (unicode allowed) but drops
// directory parts and control characters and caps the length in runes.
func cleanFileName(original string) string {
	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)
	if s == "." || s == ".." || s == "/" {
		return ""
	}

	t := transform.Chain(norm.NFC, transform.RemoveFunc(unicode.IsControl))
	s, _, _ = transform.String(t, s)
	s = strings.TrimSpace(s)

	for utf8.RuneCountInString(s) > maxFileNameLen {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}

	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// withOwner normalizes and dedupes emails and makes sure owner is present.
// Order of first appearance is kept, the owner goes first when added.
func withOwner(emails []string, owner string) []string {
	owner = normalizeEmail(owner)
	out := make([]string, 0, len(emails)+1)
	out = append(out, owner)
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" || slices.Contains(out, e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func without(emails []string, email string) []string {
	email = normalizeEmail(email)
	return slices.DeleteFunc(slices.Clone(emails), func(e string) bool {
		return normalizeEmail(e) == email
	})
}
