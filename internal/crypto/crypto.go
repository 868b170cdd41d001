// Package crypto provides NaCl secretbox encryption for glean messages sent
// over TCP. The local IPC socket is owner-restricted and stays plaintext.
//
// A 32-byte symmetric key is derived from the shared token using
// HKDF-SHA256. Every message is sealed with a random 24-byte nonce
// prepended to the ciphertext:
//
//	[ 24-byte nonce ][ ciphertext ]
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
)

// Key is a secretbox key.
type Key = [KeySize]byte

// ErrDecrypt is returned when a message cannot be opened, usually because
// the two ends use different tokens.
var ErrDecrypt = errors.New("decryption failed (wrong token?)")

var hkdfInfo = []byte("glean-v1")

// DeriveKey derives the key for token. An empty token yields a nil key,
// which the wire layer treats as "no encryption".
func DeriveKey(token string) (*Key, error) {
	if token == "" {
		return nil, nil
	}
	h := hkdf.New(sha256.New, []byte(token), nil, hkdfInfo)
	var key Key
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	return &key, nil
}

// Seal encrypts plaintext with key and returns nonce+ciphertext.
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Open decrypts nonce+ciphertext with key.
func Open(sealed []byte, key *Key) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
