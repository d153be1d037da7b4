package types

import "strconv"

// TokenID identifies a single ticket. IDs are allocated sequentially
// starting at 0 and are never reused: each event owns a contiguous,
// non-overlapping range of them.
type TokenID uint64

// String returns the decimal representation of the token ID.
func (t TokenID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// ParseTokenID parses a decimal token ID string.
func ParseTokenID(s string) (TokenID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenID(n), nil
}
