package driven

import "errors"

// ErrCipherNotInitialized is returned when an encrypt or decrypt is attempted
// without a key derived from a passkey.
var ErrCipherNotInitialized = errors.New("cipher not initialized: set a passkey first")

// ErrDecryptionFailed is returned for any decryption failure. It deliberately
// does not say whether the key was wrong or the data was damaged.
var ErrDecryptionFailed = errors.New("decryption failed: invalid passkey or corrupted data")

// Cipher defines the driven port for authenticated encryption of sensitive
// clip content.
type Cipher interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(ciphertext []byte) (string, error)
}

// CipherFactory derives a Cipher from a user passkey.
type CipherFactory func(passkey string) (Cipher, error)

// PasskeyHasher produces and checks the digest persisted to remember that a
// passkey has been configured.
type PasskeyHasher interface {
	Hash(passkey string) string
	Matches(candidate, storedHash string) bool
}
