package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// NewSessionID generates a UUIDv7 string used to correlate the log lines of
// one mapper instance.
func NewSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParseID converts a string identifier (path segment, CLI argument) to an
// entity identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrValidation("invalid id %q", s)
	}
	if id <= 0 {
		return 0, ErrValidation("id must be positive, got %d", id)
	}
	return id, nil
}

// FormatID converts an entity identifier to its string representation.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
