package util

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Digest returns a fixed-width hex rendering of the xxhash64 of b.
func Digest(b []byte) string {
	s := strconv.FormatUint(xxhash.Sum64(b), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// DigestString is Digest for strings without the []byte conversion at call sites.
func DigestString(s string) string {
	return Digest([]byte(s))
}
