package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 100))
	})

	t.Run("zero max untouched", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 0))
	})

	t.Run("long text truncated with marker", func(t *testing.T) {
		got := tp.TruncateText(strings.Repeat("a", 100), 10)
		assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 10)))
		assert.Contains(t, got, "Content truncated")
	})

	t.Run("multibyte boundary respected", func(t *testing.T) {
		// Cutting inside the rune must back off to a valid boundary.
		got := tp.TruncateText("日本語のテキスト", 4)
		assert.True(t, utf8.ValidString(got))
	})
}

func TestPreview(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.Preview("short", 10))
	assert.Equal(t, "abcde...", tp.Preview("abcdefghij", 5))
	assert.True(t, utf8.ValidString(tp.Preview("日本語のテキスト", 4)))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))

	dirty := "ok" + string([]byte{0xff, 0xfe}) + "rest"
	got := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "okrest", got)
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	dirty := strings.Repeat("x", 50) + string([]byte{0xff})
	got := tp.ProcessText(dirty, 20)
	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, "Content truncated")
}
