package domain

import (
	"encoding/base64"
	"strconv"
)

// DefaultPageSize is the page size when none is specified.
const DefaultPageSize = 25

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 200

// PageRequest holds pagination parameters for list finders.
type PageRequest struct {
	MaxResults int
	PageToken  string // opaque token (base64-encoded offset)
}

// Limit returns the effective page size, clamped to [1, MaxPageSize].
func (p PageRequest) Limit() int {
	if p.MaxResults <= 0 {
		return DefaultPageSize
	}
	if p.MaxResults > MaxPageSize {
		return MaxPageSize
	}
	return p.MaxResults
}

// Offset decodes the page token. An empty token is offset 0; a token that
// does not decode to a non-negative offset is a ValidationError.
func (p PageRequest) Offset() (int, error) {
	if p.PageToken == "" {
		return 0, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0, ErrValidation("invalid page token %q", p.PageToken)
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset < 0 {
		return 0, ErrValidation("invalid page token %q", p.PageToken)
	}
	return offset, nil
}

// EncodePageToken creates an opaque page token from an offset.
// Returns empty string if offset is 0 or negative.
func EncodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
