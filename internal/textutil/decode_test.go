package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
)

func TestDecode_UTF8(t *testing.T) {
	t.Parallel()
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Algorithms\r\n101B0001\r\n")...)

	text, enc, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, enc)
	assert.Equal(t, "Algorithms\n101B0001\n", text)
}

func TestDecode_GB18030(t *testing.T) {
	t.Parallel()
	original := "算法设计\n101B0001\n1~2周 星期一 第一节~第二节 金海9408 张老师"
	encoded, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(original))
	require.NoError(t, err)

	text, enc, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, EncodingGB18030, enc)
	assert.Equal(t, original, text)
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()
	for _, raw := range [][]byte{nil, []byte("   \n\t"), {0xEF, 0xBB, 0xBF}} {
		_, _, err := Decode(raw)
		assert.True(t, domerrors.IsInvalidInput(err), "input %q", raw)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Full-width tilde and digits", "１～８周", "1~8周"},
		{"Full-width clock", "０８：００～０９：３０", "08:00~09:30"},
		{"Ideographic space", "星期一　第一节", "星期一 第一节"},
		{"Full-width semicolon and comma", "张老师；1~4周，6周", "张老师;1~4周,6周"},
		{"Full-width code letter", "101Ｂ0001", "101B0001"},
		{"Wave dash", "1〜8周", "1~8周"},
		{"Brackets kept", "高等数学（上）", "高等数学（上）"},
		{"Line endings", "a\r\nb\rc", "a\nb\nc"},
		{"NFC composition", "é", "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}
