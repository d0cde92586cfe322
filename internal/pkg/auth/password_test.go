package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("S3cure-Pass!")
	require.NoError(t, err)
	assert.NotEqual(t, "S3cure-Pass!", hash)

	assert.True(t, CheckPassword(hash, "S3cure-Pass!"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("", "S3cure-Pass!"))
}
