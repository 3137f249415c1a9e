package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifiers(t *testing.T) {
	a, b := UUIDint64(), UUIDint64()
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
	assert.Len(t, UUID(), 36)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("senha123")
	require.NoError(t, err)
	assert.NotEqual(t, "senha123", hash)
	assert.True(t, CheckPassword(hash, "senha123"))
	assert.False(t, CheckPassword(hash, "senha124"))
	assert.False(t, CheckPassword("", "senha123"))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{"2024-03-01T12:00:00Z", "2024-03-01"},
		{"2024-03-01 23:10:00", "2024-03-01"},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, FormatDate(got), tc.in)
		assert.Equal(t, 0, got.Hour())
	}

	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("not a date")
	assert.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 5, 10, 17, 45, 0, 0, time.Local)
	got := DateOnly(in)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local), got)
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestStrings(t *testing.T) {
	assert.True(t, IsEmptyOrNA(" "))
	assert.True(t, IsEmptyOrNA("N/A"))
	assert.False(t, IsEmptyOrNA("x"))
	assert.Equal(t, "d", IfEmptyStr("", "d"))
	assert.Equal(t, "v", IfEmptyStr("v", "d"))
}
