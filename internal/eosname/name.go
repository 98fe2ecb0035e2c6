// Package eosname validates EOS-style account identifiers: 12-character
// account names and legacy "EOS..." public key strings.
package eosname

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	// NameLength is the exact length of an on-chain account name.
	NameLength = 12

	publicKeyPrefix = "EOS"
	// 33-byte compressed key plus 4-byte checksum.
	publicKeyPayloadLen = 37
)

// IsValidName reports whether name satisfies the account-name rule:
// exactly 12 characters, lower-case letters a-z and digits 1-5 only.
func IsValidName(name string) bool {
	if len(name) != NameLength {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '1' || r > '5') {
			return false
		}
	}
	return true
}

// IsPublicKey reports whether s is a well-formed legacy public key string:
// the "EOS" prefix followed by a base58 payload of a 33-byte compressed key
// and its 4-byte ripemd160 checksum.
func IsPublicKey(s string) bool {
	if !strings.HasPrefix(s, publicKeyPrefix) {
		return false
	}
	payload := base58.Decode(strings.TrimPrefix(s, publicKeyPrefix))
	if len(payload) != publicKeyPayloadLen {
		return false
	}
	key, checksum := payload[:33], payload[33:]

	h := ripemd160.New()
	h.Write(key)
	return bytes.Equal(h.Sum(nil)[:4], checksum)
}

// EncodePublicKey renders a 33-byte compressed key in the legacy string
// form. Used by tests and account-creation flows that display keys.
func EncodePublicKey(key []byte) string {
	h := ripemd160.New()
	h.Write(key)
	payload := make([]byte, 0, publicKeyPayloadLen)
	payload = append(payload, key...)
	payload = append(payload, h.Sum(nil)[:4]...)
	return publicKeyPrefix + base58.Encode(payload)
}
