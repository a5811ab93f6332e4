// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Hashes and salts are stored as separate base64 columns,
// so changing these invalidates existing credentials.
const (
	pbkdf2Iterations = 100_000
	pbkdf2SaltLen    = 32 // 256-bit salt
	pbkdf2KeyLen     = 32 // 256-bit derived key
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash derives a key from the password with a fresh random salt.
	// Both return values are base64-encoded for storage.
	Hash(password string) (hash, salt string, err error)

	// Verify checks if the password matches the stored hash and salt.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// if the stored material cannot be decoded.
	Verify(password, hash, salt string) (bool, error)
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2-SHA256.
type PBKDF2Hasher struct{}

// NewPBKDF2Hasher creates a new PBKDF2Hasher.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{}
}

// Hash derives a PBKDF2-SHA256 key from the password with a fresh salt.
func (h *PBKDF2Hasher) Hash(password string) (string, string, error) {
	if password == "" {
		return "", "", ErrEmptyPassword
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", oops.Code(CodeStorageError).
			With("operation", "generate salt").
			Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(salt),
		nil
}

// Verify re-derives the key with the stored salt and compares it to the
// stored hash in constant time.
func (h *PBKDF2Hasher) Verify(password, hash, salt string) (bool, error) {
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, oops.Code(CodeStorageError).
			With("operation", "decode salt").
			Wrap(err)
	}

	expected, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, oops.Code(CodeStorageError).
			With("operation", "decode hash").
			Wrap(err)
	}

	computed := pbkdf2.Key([]byte(password), saltBytes, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*PBKDF2Hasher)(nil)
