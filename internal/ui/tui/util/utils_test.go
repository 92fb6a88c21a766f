package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "a long...", TruncateString("a long title here", 9))
	// Wide runes count double
	assert.Equal(t, "日本...", TruncateString("日本語のタイトル", 8))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", PadRight("abc", 5))
	assert.Equal(t, "ab...", PadRight("abcdefgh", 5))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "0:05", FormatClock(5.9))
	assert.Equal(t, "1:05", FormatClock(65))
	assert.Equal(t, "1:01:01", FormatClock(3661))
	assert.Equal(t, "0:00", FormatClock(-3))
}
