package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	RoomIDLength = 6

	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateNewSessionID - generates a new unique participant id.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateRoomID - generates a short uppercase code players can type in.
func GenerateRoomID() (string, error) {
	id := make([]byte, RoomIDLength)
	limit := big.NewInt(int64(len(roomIDAlphabet)))

	for i := range id {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random number: %w", err)
		}

		id[i] = roomIDAlphabet[n.Int64()]
	}

	return string(id), nil
}
