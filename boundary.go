package mpform

import (
	"encoding/hex"
	"errors"
	"io"
)

// boundarySize is the number of random bytes in a generated boundary. The
// boundary is their hex encoding, so it is twice as long.
const boundarySize = 10

func randomBoundary(r io.Reader) (string, error) {
	var buf [boundarySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// validateBoundary checks b against the boundary grammar of RFC 2046 section
// 5.1.1, narrowed to characters that are valid in an unquoted parameter
// value, since the boundary is written unquoted in the content type.
func validateBoundary(b string) error {
	if len(b) < 1 || len(b) > 70 {
		return errors.New("invalid boundary length")
	}
	for _, c := range b {
		if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
			continue
		}
		switch c {
		case '\'', '+', '_', '-', '.':
			continue
		}
		return errors.New("invalid boundary character")
	}
	return nil
}
