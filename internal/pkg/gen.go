package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const roomIDLength = 8

// GenerateRoomID - generates a short, shareable room code.
func GenerateRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength]
}

// GenerateConnectionID - generates a unique id for a relay connection.
func GenerateConnectionID() string {
	return uuid.NewString()
}
