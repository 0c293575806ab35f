package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{150.50, 15050},
		{0, 0},
		{0.1 + 0.2, 30},
		{19.99, 1999},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCents(tt.amount), "amount %v", tt.amount)
	}
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, in := range []string{"", "0", "-3", "abc", "1.5"} {
		_, ok := ParseID(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("0", 1))
	assert.Equal(t, 1, ParseInt("x", 1))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, PageSize))
	assert.Equal(t, 1, CalculateTotalPages(10, PageSize))
	assert.Equal(t, 2, CalculateTotalPages(11, PageSize))
	assert.Equal(t, 20, CalculateOffset(3, PageSize))
	assert.Equal(t, 0, CalculateOffset(0, PageSize))
}
