// Package cryptox implements key handling for the account session: master
// key derivation from a password, a cheap verifier for local password checks,
// and the ed25519 account key pair that addresses and signs remote state.
package cryptox

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// DeriveMasterKey stretches a password with argon2id into a 32-byte key.
// The same (password, salt) pair always yields the same key, which is what
// lets a returning user re-derive their signing identity on any device.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns a value safe to store for later password checks.
// Comparing verifiers never exposes the master key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// AccountKeys is the ed25519 pair derived from the master key. The public
// key addresses the remote snapshot; the private key signs store requests
// and transfers.
type AccountKeys struct {
	Public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// AccountKeysFromMaster derives the account key pair deterministically from
// the 32-byte master key.
func AccountKeysFromMaster(masterKey []byte) (*AccountKeys, error) {
	if len(masterKey) != ed25519.SeedSize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", ed25519.SeedSize, len(masterKey))
	}
	priv := ed25519.NewKeyFromSeed(masterKey)
	return &AccountKeys{
		Public:  priv.Public().(ed25519.PublicKey),
		private: priv,
	}, nil
}

// PublicHex returns the account public key in the hex form used as the
// remote snapshot address.
func (k *AccountKeys) PublicHex() string {
	return hex.EncodeToString(k.Public)
}

// Sign returns the detached hex-encoded signature of msg.
func (k *AccountKeys) Sign(msg []byte) string {
	return hex.EncodeToString(ed25519.Sign(k.private, msg))
}

// Verify checks a hex-encoded detached signature against msg for the given
// hex public key.
func Verify(publicHex string, msg []byte, sigHex string) bool {
	pub, err := hex.DecodeString(publicHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}
