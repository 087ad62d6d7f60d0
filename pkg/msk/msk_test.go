package msk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationOffset(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, Location())
	_, offset := ts.Zone()
	assert.Equal(t, 3*60*60, offset)
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2024-02-01", "12:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 12, 30, 0, 0, Location()), got)

	_, err = ParseDateTime("2024-02-30", "12:30")
	assert.Error(t, err)

	_, err = ParseDateTime("2024-02-01", "not-time")
	assert.Error(t, err)
}

func TestDay(t *testing.T) {
	utc := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, Date(2024, 3, 11), Day(utc))
}
