package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	cursor := Cursor{
		Date:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 1, 15, 14, 30, 45, 123456789, time.UTC),
		ID:        "7f0c1a2e-journal",
	}

	token := EncodeToken(cursor)
	assert.NotEmpty(t, token)

	decoded, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, cursor.Date.Equal(decoded.Date))
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, cursor.ID, decoded.ID)
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"missing fields", base64.URLEncoding.EncodeToString([]byte("2024-01-15T00:00:00Z"))},
		{"bad date", base64.URLEncoding.EncodeToString([]byte("yesterday|2024-01-15T00:00:00Z|id"))},
		{"bad created at", base64.URLEncoding.EncodeToString([]byte("2024-01-15T00:00:00Z|later|id"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestCursor_After(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := day.Add(time.Hour)
	c := Cursor{Date: day, CreatedAt: created, ID: "m"}

	assert.True(t, c.After(day.AddDate(0, 0, -1), created, "z"))
	assert.False(t, c.After(day.AddDate(0, 0, 1), created, "a"))
	assert.True(t, c.After(day, created.Add(-time.Minute), "z"))
	assert.True(t, c.After(day, created, "a"))
	assert.False(t, c.After(day, created, "m"))
}
