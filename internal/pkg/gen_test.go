package pkg

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomID(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	seen := make(map[string]struct{})

	for range 200 {
		id, err := GenerateRoomID()
		require.NoError(t, err)
		assert.Regexp(t, pattern, id)

		seen[id] = struct{}{}
	}

	// 36^6 codes; 200 draws colliding more than once would point at a broken generator
	assert.GreaterOrEqual(t, len(seen), 199)
}

func TestGenerateNewSessionID(t *testing.T) {
	first := GenerateNewSessionID()
	second := GenerateNewSessionID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
