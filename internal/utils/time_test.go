package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 5, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "08:05", FormatClock(ts, time.UTC))

	plus3 := time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, "11:05", FormatClock(ts, plus3))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Пир...", Truncate("Пирожок с мясом", 6))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
