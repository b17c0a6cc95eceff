package pwhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndValidate(t *testing.T) {
	ph, err := New(16, 10000)
	require.NoError(t, err)

	hash, err := ph.HashPassword("hunter2")
	require.NoError(t, err)

	require.NoError(t, ph.Validate("hunter2", hash))
	assert.Error(t, ph.Validate("hunter3", hash))
	assert.Error(t, ph.Validate("hunter2", "not-a-hash"))

	// Same password hashes differently thanks to the random salt.
	hash2, err := ph.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	require.NoError(t, ph.Validate("hunter2", hash2))
}

func TestNewRejectsWeakParams(t *testing.T) {
	_, err := New(4, 10000)
	assert.Error(t, err)
	_, err = New(16, 10)
	assert.Error(t, err)
}
