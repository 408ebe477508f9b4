package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-06-15 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), time.Time(d))
	assert.Equal(t, "2026-06-15", FormatDate(d))

	for _, bad := range []string{"", "06/15/2026", "2026-13-01", "2026-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatDateZero(t *testing.T) {
	assert.Equal(t, "", FormatDate(datatypes.Date{}))
}
