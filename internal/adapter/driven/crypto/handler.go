// Package crypto derives keys from a user passkey and encrypts sensitive
// clip content with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// Key derivation parameters. The salt is fixed so that the same passkey always
// re-derives the same key without storing per-install state; changing it makes
// previously encrypted clips unreadable.
const (
	pbkdf2Iterations = 100000
	keySize          = 32
	nonceSize        = 12
	formatVersion    = 1
)

var staticSalt = []byte("clipkeeper-salt-v1")

// Compile-time interface satisfaction check.
var _ driven.Cipher = (*Handler)(nil)

// Handler encrypts and decrypts clip payloads with a key derived from a
// passkey. A Handler built from an empty passkey has no cipher and refuses
// every operation with driven.ErrCipherNotInitialized.
//
// Ciphertext layout: version (1) || nonce (12) || ciphertext || tag (16).
type Handler struct {
	aead cipher.AEAD
}

// NewHandler derives a key from passkey with PBKDF2-HMAC-SHA256 and prepares
// an AES-256-GCM cipher.
func NewHandler(passkey string) (*Handler, error) {
	if passkey == "" {
		return &Handler{}, nil
	}

	key := deriveKey(passkey)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Handler{aead: gcm}, nil
}

// NewCipher adapts NewHandler to driven.CipherFactory.
func NewCipher(passkey string) (driven.Cipher, error) {
	return NewHandler(passkey)
}

// Initialized reports whether the handler holds a derived key.
func (h *Handler) Initialized() bool {
	return h.aead != nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (h *Handler) Encrypt(plaintext string) ([]byte, error) {
	if h.aead == nil {
		return nil, driven.ErrCipherNotInitialized
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("rand nonce: %w", err)
	}

	out := make([]byte, 0, 1+nonceSize+len(plaintext)+h.aead.Overhead())
	out = append(out, formatVersion)
	out = append(out, nonce...)
	return h.aead.Seal(out, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a payload produced by Encrypt. Every failure other than a
// missing key is reported as driven.ErrDecryptionFailed.
func (h *Handler) Decrypt(ciphertext []byte) (string, error) {
	if h.aead == nil {
		return "", driven.ErrCipherNotInitialized
	}

	if len(ciphertext) < 1+nonceSize+h.aead.Overhead() || ciphertext[0] != formatVersion {
		return "", driven.ErrDecryptionFailed
	}

	nonce := ciphertext[1 : 1+nonceSize]
	plaintext, err := h.aead.Open(nil, nonce, ciphertext[1+nonceSize:], nil)
	if err != nil {
		return "", driven.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// VerifyPasskey reports whether candidate decrypts knownCiphertext.
func VerifyPasskey(candidate string, knownCiphertext []byte) bool {
	h, err := NewHandler(candidate)
	if err != nil {
		return false
	}
	_, err = h.Decrypt(knownCiphertext)
	return err == nil
}

// HashPasskey returns the hex SHA-256 digest stored to remember that a
// passkey has been configured. The passkey itself is never persisted.
func HashPasskey(passkey string) string {
	sum := sha256.Sum256([]byte(passkey))
	return hex.EncodeToString(sum[:])
}

// PasskeyMatches compares candidate against a stored HashPasskey digest in
// constant time.
func PasskeyMatches(candidate, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	got := HashPasskey(candidate)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}

func deriveKey(passkey string) []byte {
	return pbkdf2.Key([]byte(passkey), staticSalt, pbkdf2Iterations, keySize, sha256.New)
}

// Compile-time interface satisfaction check.
var _ driven.PasskeyHasher = SHA256Hasher{}

// SHA256Hasher implements driven.PasskeyHasher with HashPasskey and PasskeyMatches.
type SHA256Hasher struct{}

// Hash returns HashPasskey(passkey).
func (SHA256Hasher) Hash(passkey string) string { return HashPasskey(passkey) }

// Matches returns PasskeyMatches(candidate, storedHash).
func (SHA256Hasher) Matches(candidate, storedHash string) bool {
	return PasskeyMatches(candidate, storedHash)
}
