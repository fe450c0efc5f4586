// Package extract pulls plain text out of stored documents for indexing.
package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxChars bounds the text handed to the summarizer.
const DefaultMaxChars = 15000

type PDF struct {
	maxChars int
}

func NewPDF(maxChars int) *PDF {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &PDF{maxChars: maxChars}
}

// ExtractText returns at most maxChars characters of the document text.
func (p *PDF) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	// ~4 bytes per rune is enough to fill the budget
	if _, err = io.Copy(&buf, io.LimitReader(plain, int64(p.maxChars)*4)); err != nil {
		return "", err
	}

	return truncate(strings.TrimSpace(buf.String()), p.maxChars), nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
