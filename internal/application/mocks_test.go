package application_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// --- Clipboard ---

type fakeClipboard struct {
	mu      sync.Mutex
	text    string
	readErr error
	writes  []string
}

func (f *fakeClipboard) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.text, nil
}

func (f *fakeClipboard) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.writes = append(f.writes, text)
	return nil
}

func (f *fakeClipboard) set(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

func (f *fakeClipboard) failReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *fakeClipboard) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// --- ClipStore ---

type memClipStore struct {
	mu     sync.Mutex
	clips  []model.Clip
	nextID int64
	addErr error

	lastLimit       int
	lastCleanupDays int
	cleanupCalls    int
}

func (m *memClipStore) AddClip(_ context.Context, content string, category model.Category, payload []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.nextID++
	m.clips = append(m.clips, model.Clip{
		ID:               m.nextID,
		Content:          content,
		Category:         category,
		CreatedAt:        time.Now(),
		EncryptedPayload: payload,
		IsEncrypted:      payload != nil,
	})
	return m.nextID, nil
}

func (m *memClipStore) GetClip(_ context.Context, id int64) (*model.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clips {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memClipStore) ListAll(_ context.Context, limit int) ([]model.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	return m.sorted(func(model.Clip) bool { return true }, limit), nil
}

func (m *memClipStore) ListByCategory(_ context.Context, category model.Category, limit int) ([]model.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	return m.sorted(func(c model.Clip) bool { return c.Category == category }, limit), nil
}

func (m *memClipStore) Search(_ context.Context, substring string, limit int) ([]model.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	needle := strings.ToLower(substring)
	return m.sorted(func(c model.Clip) bool {
		return strings.Contains(strings.ToLower(c.Content), needle)
	}, limit), nil
}

func (m *memClipStore) sorted(keep func(model.Clip) bool, limit int) []model.Clip {
	out := []model.Clip{}
	for _, c := range m.clips {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memClipStore) TogglePin(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clips {
		if m.clips[i].ID == id {
			m.clips[i].IsPinned = !m.clips[i].IsPinned
			return m.clips[i].IsPinned, nil
		}
	}
	return false, nil
}

func (m *memClipStore) ToggleFavorite(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clips {
		if m.clips[i].ID == id {
			m.clips[i].IsFavorite = !m.clips[i].IsFavorite
			return m.clips[i].IsFavorite, nil
		}
	}
	return false, nil
}

func (m *memClipStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clips {
		if m.clips[i].ID == id {
			m.clips = append(m.clips[:i], m.clips[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memClipStore) CheckDuplicate(_ context.Context, content string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clips {
		if c.Content == content {
			return true, nil
		}
	}
	return false, nil
}

func (m *memClipStore) CleanupOlderThan(_ context.Context, days int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCleanupDays = days
	m.cleanupCalls++
	return 0, nil
}

func (m *memClipStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clips), nil
}

func (m *memClipStore) all() []model.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Clip(nil), m.clips...)
}

func (m *memClipStore) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupCalls, m.lastCleanupDays
}

func (m *memClipStore) failAdds(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addErr = err
}

// --- SettingStore ---

type memSettingStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettingStore() *memSettingStore {
	return &memSettingStore{values: map[string]string{}}
}

func (m *memSettingStore) GetSetting(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *memSettingStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// --- Cipher ---

var errFakeEncrypt = errors.New("fake encrypt failure")

// fakeCipher "encrypts" by prefixing the plaintext with its key so that a
// cipher built from a different key cannot decrypt it.
type fakeCipher struct {
	key         string
	failEncrypt bool
}

func newFakeCipher(key string) *fakeCipher {
	return &fakeCipher{key: key}
}

func (c *fakeCipher) Encrypt(plaintext string) ([]byte, error) {
	if c.failEncrypt {
		return nil, errFakeEncrypt
	}
	return []byte(c.key + "|" + plaintext), nil
}

func (c *fakeCipher) Decrypt(ciphertext []byte) (string, error) {
	prefix := c.key + "|"
	if !strings.HasPrefix(string(ciphertext), prefix) {
		return "", driven.ErrDecryptionFailed
	}
	return strings.TrimPrefix(string(ciphertext), prefix), nil
}
