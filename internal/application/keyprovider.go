package application

import (
	"sync"

	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// KeyProvider enables runtime hot-swap of the active encryption key.
// It holds a mutex-protected reference to the current driven.Cipher so that
// unlocking or locking passwords takes effect for the monitor and the facade
// without restarting either.
//
// Locking only withdraws the key from the decrypt path: Get keeps returning
// it so password clips captured while locked are still sealed. Clear drops
// the key entirely.
type KeyProvider struct {
	mu     sync.RWMutex
	cipher driven.Cipher
	locked bool
}

// NewKeyProvider creates a new unlocked provider with the given initial
// cipher. cipher may be nil when no passkey has been entered yet.
func NewKeyProvider(cipher driven.Cipher) *KeyProvider {
	return &KeyProvider{cipher: cipher}
}

// Get returns the cipher used to seal new clips, or nil when no key is held.
// The result ignores the lock state.
func (p *KeyProvider) Get() driven.Cipher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cipher
}

// Unlocked returns the cipher for decrypting stored clips, or nil when no key
// is held or passwords are locked.
func (p *KeyProvider) Unlocked() driven.Cipher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.locked {
		return nil
	}
	return p.cipher
}

// Replace installs a new cipher and unlocks. The next caller of Get receives it.
func (p *KeyProvider) Replace(cipher driven.Cipher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cipher = cipher
	p.locked = false
}

// Lock withdraws the cipher from Unlocked while keeping it for sealing.
func (p *KeyProvider) Lock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = true
}

// Clear drops the active cipher.
func (p *KeyProvider) Clear() {
	p.Replace(nil)
}

// HasKey returns true if a non-nil cipher is currently held, locked or not.
func (p *KeyProvider) HasKey() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cipher != nil
}

// Locked reports whether stored clips cannot currently be decrypted.
func (p *KeyProvider) Locked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.locked || p.cipher == nil
}
