package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("p1")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", h)
	assert.True(t, CheckPassword("p1", h))
	assert.False(t, CheckPassword("p2", h))
	assert.False(t, CheckPassword("p1", "not-a-hash"))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 100))
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	assert.Len(t, NewID(), 36)
	assert.NotEqual(t, NewID(), NewID())
}
