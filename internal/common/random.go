package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding, so the final string length is twice the size.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeReference returns a short human-readable reference such as "SES-9F2D4C3",
// used to correlate log lines with persisted records. The returned suffix
// contains exactly size upper-case hex characters.
func MakeReference(prefix string, size int) (string, error) {
	s, err := MakeRandHexString((size + 1) / 2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(s[:size])), nil
}
