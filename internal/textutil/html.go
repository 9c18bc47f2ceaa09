package textutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
	"github.com/garyellow/kebiao-ics/internal/stringutil"
)

// LooksLikeHTML reports whether s is an HTML export rather than plain text.
func LooksLikeHTML(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<table")
}

// FromHTML flattens an HTML timetable export into plain lines: table cells
// become space separated, rows and block elements become lines, and blank
// lines are dropped so the course-code lookahead sees adjacent lines.
func FromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", domerrors.ErrInvalidInput, err)
	}

	var b strings.Builder
	writeText(doc.Selection, &b)

	lines := stringutil.NonEmptyLines(b.String())
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n"), nil
}

func writeText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			b.WriteString(strings.Join(strings.Fields(c.Text()), " "))
			b.WriteByte(' ')
		case "script", "style", "head", "#comment":
		case "br":
			b.WriteByte('\n')
		case "td", "th":
			writeText(c, b)
			b.WriteByte(' ')
		case "tr", "p", "div", "li", "table", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteByte('\n')
			writeText(c, b)
			b.WriteByte('\n')
		default:
			writeText(c, b)
		}
	})
}
