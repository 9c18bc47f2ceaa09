// Package textutil turns raw timetable bytes into clean UTF-8 text: it detects
// legacy Chinese encodings, flattens HTML exports and normalizes the
// full-width characters that the parser treats as separators or digits.
package textutil

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// foldable lists the full-width runes folded to ASCII: ideographic space,
// comma, digits, colon, semicolon, Latin capitals and the wave tilde.
// Full-width brackets are left alone because they appear in course names.
var foldable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3000, Hi: 0x3000, Stride: 1},
		{Lo: 0xFF0C, Hi: 0xFF0C, Stride: 1},
		{Lo: 0xFF10, Hi: 0xFF1B, Stride: 1},
		{Lo: 0xFF21, Hi: 0xFF3A, Stride: 1},
		{Lo: 0xFF5E, Hi: 0xFF5E, Stride: 1},
	},
}

var tildeReplacer = strings.NewReplacer("〜", "~", "∼", "~", "\r\n", "\n", "\r", "\n")

// Encoding names reported by Decode.
const (
	EncodingUTF8    = "utf-8"
	EncodingGB18030 = "gb18030"
)

// Decode converts raw input to normalized UTF-8 text and reports the source
// encoding. Input that is not valid UTF-8 is decoded as GB18030, a superset
// of GBK and GB2312. Empty input is an ErrInvalidInput.
func Decode(raw []byte) (text, encoding string, err error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", "", fmt.Errorf("%w: empty timetable", domerrors.ErrInvalidInput)
	}

	encoding = EncodingUTF8
	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: undecodable input: %v", domerrors.ErrInvalidInput, err)
		}
		raw = decoded
		encoding = EncodingGB18030
	}

	return Normalize(string(raw)), encoding, nil
}

// Normalize applies NFC, folds the separator runes listed in foldable to
// ASCII and unifies line endings.
func Normalize(s string) string {
	t := transform.Chain(norm.NFC, runes.If(runes.In(foldable), width.Fold, nil))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return tildeReplacer.Replace(out)
}
