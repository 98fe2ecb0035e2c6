package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ChallengeMessage is the byte string an account signs to prove key
// ownership during authentication. Client and server must agree on it
// exactly.
func ChallengeMessage(publicKey string, ts int64) []byte {
	return []byte(fmt.Sprintf("%s:%d", publicKey, ts))
}

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system RNG fails, which is unrecoverable anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// MakeRandHexString generates a random hexadecimal string built from size
// random bytes; the resulting string is twice as long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Used to remove secrets such as
// passwords and derived keys from memory after use. Nil slices are ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
