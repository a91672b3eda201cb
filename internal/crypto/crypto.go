// Package crypto implements the symmetric encryption used on shard's
// optional TCP listener.
//
// Peers share a token out of band. HKDF-SHA256 stretches the token into a
// secretbox key, and every sealed message carries its own random nonce:
//
//	[ nonce (24 bytes) | secretbox ciphertext ]
//
// The unix socket path never touches this package; socket file permissions
// are the access control there, and the wire layer sends plain JSON.
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
	keySize   = 32
	nonceSize = 24
)

// ErrDecrypt is returned by Open when a message does not authenticate under
// the given key, usually because the two ends derived keys from different
// tokens.
var ErrDecrypt = errors.New("decryption failed (token mismatch?)")

// DeriveKey stretches a shared token into a secretbox key with HKDF-SHA256.
// The same token always yields the same key, so both ends of a connection
// only need to agree on the token.
func DeriveKey(token string) (*[keySize]byte, error) {
	key := new([keySize]byte)
	kdf := hkdf.New(sha256.New, []byte(token), nil, []byte("shard-v1"))
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under key and returns the nonce-prefixed result.
func Seal(plaintext []byte, key *[keySize]byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Open authenticates and decrypts a nonce-prefixed message produced by Seal.
func Open(box []byte, key *[keySize]byte) ([]byte, error) {
	if len(box) < nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
