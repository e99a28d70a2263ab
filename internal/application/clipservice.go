package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// Facade defaults.
const (
	ExportLimit        = 10000
	DefaultCleanupDays = 30
)

// ErrInvalidTheme is returned when SetTheme receives a blank mode or style.
var ErrInvalidTheme = errors.New("theme mode and style must not be blank")

// AddStatus describes the outcome of a manual add.
type AddStatus int

const (
	AddStored AddStatus = iota
	AddRejectedBlank
	AddDuplicate
)

// String returns a lowercase label for the status.
func (s AddStatus) String() string {
	switch s {
	case AddStored:
		return "stored"
	case AddRejectedBlank:
		return "rejected_blank"
	case AddDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// AddResult is returned by ManualAdd. ID and Category are set only when
// Status is AddStored.
type AddResult struct {
	Status   AddStatus
	ID       int64
	Category model.Category
}

// ClipView is the representation of a clip handed to boundary callers. It
// never carries encrypted bytes.
type ClipView struct {
	ID          int64
	Content     string
	Category    model.Category
	CreatedAt   time.Time
	IsPinned    bool
	IsFavorite  bool
	IsEncrypted bool
}

// CategoryInfo pairs a category with its display hints and filter state.
type CategoryInfo struct {
	Category model.Category
	Color    string
	Icon     string
	Enabled  bool
}

// Stats summarizes the current state for health and status reporting.
type Stats struct {
	Clips          int
	MonitorRunning bool
	PasskeySet     bool
	PasswordLocked bool
}

// ClipService is the facade used by boundary callers (HTTP API, CLI). It owns
// the passkey lifecycle and the copy-out policy for encrypted clips.
type ClipService struct {
	clipStore driven.ClipStore
	settings  driven.SettingStore
	clipboard driven.Clipboard
	monitor   *MonitorService
	keys      *KeyProvider
	newCipher driven.CipherFactory
	hasher    driven.PasskeyHasher

	mu         sync.RWMutex
	passkeySet bool
	theme      model.ThemeSettings
}

// NewClipService creates a new ClipService with all required dependencies.
func NewClipService(
	clipStore driven.ClipStore,
	settings driven.SettingStore,
	clipboard driven.Clipboard,
	monitor *MonitorService,
	keys *KeyProvider,
	newCipher driven.CipherFactory,
	hasher driven.PasskeyHasher,
) *ClipService {
	return &ClipService{
		clipStore: clipStore,
		settings:  settings,
		clipboard: clipboard,
		monitor:   monitor,
		keys:      keys,
		newCipher: newCipher,
		hasher:    hasher,
		theme:     model.ThemeSettings{Mode: model.DefaultTheme, Style: model.DefaultStyle},
	}
}

// Load restores persisted state: whether a passkey exists, the theme, and the
// monitor's category filter. Passwords always start locked.
func (s *ClipService) Load(ctx context.Context) error {
	hash, err := s.settings.GetSetting(ctx, model.SettingPasskeyHash, "")
	if err != nil {
		return fmt.Errorf("load passkey state: %w", err)
	}
	mode, err := s.settings.GetSetting(ctx, model.SettingTheme, model.DefaultTheme)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	style, err := s.settings.GetSetting(ctx, model.SettingStyle, model.DefaultStyle)
	if err != nil {
		return fmt.Errorf("load style: %w", err)
	}
	if err := s.monitor.LoadSettings(ctx); err != nil {
		return err
	}

	s.keys.Clear()

	s.mu.Lock()
	s.passkeySet = hash != ""
	s.theme = model.ThemeSettings{Mode: mode, Style: style}
	s.mu.Unlock()

	slog.Info("settings loaded", "passkey_set", hash != "", "theme", mode, "style", style)
	return nil
}

// Initialize loads persisted state and starts the clipboard monitor.
func (s *ClipService) Initialize(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.monitor.Start(ctx)
	return nil
}

// Shutdown stops the clipboard monitor and locks passwords.
func (s *ClipService) Shutdown() {
	s.monitor.Stop()
	s.keys.Clear()
}

// SetupPasskey configures the passkey the first time. It returns false if a
// passkey already exists or the candidate is blank. On success passwords are
// unlocked with the new key.
func (s *ClipService) SetupPasskey(ctx context.Context, passkey string) (bool, error) {
	if strings.TrimSpace(passkey) == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.settings.GetSetting(ctx, model.SettingPasskeyHash, "")
	if err != nil {
		return false, fmt.Errorf("setup passkey: %w", err)
	}
	if existing != "" {
		slog.Warn("passkey setup refused: passkey already configured")
		return false, nil
	}

	cipher, err := s.newCipher(passkey)
	if err != nil {
		return false, fmt.Errorf("setup passkey: derive key: %w", err)
	}

	if err := s.settings.SetSetting(ctx, model.SettingPasskeyHash, s.hasher.Hash(passkey)); err != nil {
		return false, fmt.Errorf("setup passkey: %w", err)
	}

	s.keys.Replace(cipher)
	s.passkeySet = true

	slog.Info("passkey configured")
	return true, nil
}

// VerifyPasskey unlocks passwords when candidate matches the stored passkey.
// A mismatch leaves the current lock state unchanged.
func (s *ClipService) VerifyPasskey(ctx context.Context, candidate string) (bool, error) {
	stored, err := s.settings.GetSetting(ctx, model.SettingPasskeyHash, "")
	if err != nil {
		return false, fmt.Errorf("verify passkey: %w", err)
	}
	if !s.hasher.Matches(candidate, stored) {
		slog.Warn("passkey verification failed")
		return false, nil
	}

	cipher, err := s.newCipher(candidate)
	if err != nil {
		return false, fmt.Errorf("verify passkey: derive key: %w", err)
	}

	s.keys.Replace(cipher)
	slog.Info("passwords unlocked")
	return true, nil
}

// LockPasswords stops encrypted clips from being revealed or copied. The
// key stays available for sealing so password clips captured while locked
// are still encrypted.
func (s *ClipService) LockPasswords() {
	s.keys.Lock()
	slog.Info("passwords locked")
}

// IsPasswordLocked reports whether encrypted clips cannot be revealed.
func (s *ClipService) IsPasswordLocked() bool {
	return s.keys.Locked()
}

// CanEncrypt reports whether a key is held for sealing new password clips.
func (s *ClipService) CanEncrypt() bool {
	return s.keys.HasKey()
}

// IsPasskeySet reports whether a passkey has been configured.
func (s *ClipService) IsPasskeySet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passkeySet
}

// ManualAdd stores user-supplied content. An unknown or empty category is
// replaced by the categorizer's verdict. Password content is encrypted when
// a key is active.
func (s *ClipService) ManualAdd(ctx context.Context, content string, category model.Category) (AddResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return AddResult{Status: AddRejectedBlank}, nil
	}

	if !category.Valid() {
		category = Categorize(content)
	}

	dup, err := s.clipStore.CheckDuplicate(ctx, content)
	if err != nil {
		return AddResult{}, fmt.Errorf("manual add: %w", err)
	}
	if dup {
		return AddResult{Status: AddDuplicate}, nil
	}

	stored, payload := sealSensitive(s.keys, content, category)

	id, err := s.clipStore.AddClip(ctx, stored, category, payload)
	if err != nil {
		return AddResult{}, fmt.Errorf("manual add: %w", err)
	}

	slog.Info("clip added manually", "id", id, "category", category, "encrypted", payload != nil)
	return AddResult{Status: AddStored, ID: id, Category: category}, nil
}

// RevealClip returns the usable text of a clip. It reports false when the
// clip does not exist, or when it is encrypted and either passwords are
// locked or decryption fails.
func (s *ClipService) RevealClip(ctx context.Context, id int64) (string, bool, error) {
	clip, err := s.clipStore.GetClip(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("reveal clip: %w", err)
	}
	if clip == nil {
		return "", false, nil
	}

	if !clip.IsEncrypted {
		return clip.Content, true, nil
	}

	cipher := s.keys.Unlocked()
	if cipher == nil {
		return "", false, nil
	}

	plaintext, err := cipher.Decrypt(clip.EncryptedPayload)
	if err != nil {
		slog.Warn("decrypting clip failed", "id", id, "error", err)
		return "", false, nil
	}

	return plaintext, true, nil
}

// CopyClip writes the usable text of a clip to the system clipboard under the
// same policy as RevealClip. The placeholder of an encrypted clip is never
// copied.
func (s *ClipService) CopyClip(ctx context.Context, id int64) (bool, error) {
	text, ok, err := s.RevealClip(ctx, id)
	if err != nil || !ok {
		return false, err
	}

	s.monitor.MarkSeen(text)
	if err := s.clipboard.WriteText(text); err != nil {
		return false, fmt.Errorf("copy clip %d: %w", id, err)
	}

	return true, nil
}

// ListClips returns clips pinned first, then newest first.
func (s *ClipService) ListClips(ctx context.Context, limit int) ([]ClipView, error) {
	clips, err := s.clipStore.ListAll(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toViews(clips), nil
}

// ListByCategory returns clips of a single category.
func (s *ClipService) ListByCategory(ctx context.Context, category model.Category, limit int) ([]ClipView, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	clips, err := s.clipStore.ListByCategory(ctx, category, limit)
	if err != nil {
		return nil, err
	}
	return toViews(clips), nil
}

// Search returns clips whose content contains query.
func (s *ClipService) Search(ctx context.Context, query string, limit int) ([]ClipView, error) {
	clips, err := s.clipStore.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return toViews(clips), nil
}

// Export returns up to ExportLimit clips for backup.
func (s *ClipService) Export(ctx context.Context) ([]ClipView, error) {
	return s.ListClips(ctx, ExportLimit)
}

// Cleanup removes unpinned clips older than days. days <= 0 uses DefaultCleanupDays.
func (s *ClipService) Cleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultCleanupDays
	}

	n, err := s.clipStore.CleanupOlderThan(ctx, days)
	if err != nil {
		return 0, err
	}

	slog.Info("manual cleanup complete", "days", days, "deleted", n)
	return n, nil
}

// DeleteClip removes a clip and reports whether it existed.
func (s *ClipService) DeleteClip(ctx context.Context, id int64) (bool, error) {
	return s.clipStore.Delete(ctx, id)
}

// TogglePin flips the pinned flag and returns the new value.
func (s *ClipService) TogglePin(ctx context.Context, id int64) (bool, error) {
	return s.clipStore.TogglePin(ctx, id)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *ClipService) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return s.clipStore.ToggleFavorite(ctx, id)
}

// CategorySettings returns the monitor's category filter.
func (s *ClipService) CategorySettings() model.EnabledCategories {
	return s.monitor.EnabledCategories()
}

// SetCategoryEnabled changes and persists the monitor's category filter.
func (s *ClipService) SetCategoryEnabled(ctx context.Context, category model.Category, enabled bool) error {
	return s.monitor.SetCategoryEnabled(ctx, category, enabled)
}

// CategoryInfo returns display hints and filter state for every category in
// display order.
func (s *ClipService) CategoryInfo() []CategoryInfo {
	enabled := s.monitor.EnabledCategories()

	infos := make([]CategoryInfo, 0, len(model.AllCategories))
	for _, c := range model.AllCategories {
		infos = append(infos, CategoryInfo{
			Category: c,
			Color:    c.Color(),
			Icon:     c.Icon(),
			Enabled:  enabled.Enabled(c),
		})
	}
	return infos
}

// ThemeSettings returns the stored presentation preferences.
func (s *ClipService) ThemeSettings() model.ThemeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme persists the theme mode and style.
func (s *ClipService) SetTheme(ctx context.Context, mode, style string) error {
	mode, style = strings.TrimSpace(mode), strings.TrimSpace(style)
	if mode == "" || style == "" {
		return ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settings.SetSetting(ctx, model.SettingTheme, mode); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	if err := s.settings.SetSetting(ctx, model.SettingStyle, style); err != nil {
		return fmt.Errorf("set style: %w", err)
	}

	s.theme = model.ThemeSettings{Mode: mode, Style: style}
	return nil
}

// Stats reports the clip count and the monitor and passkey state.
func (s *ClipService) Stats(ctx context.Context) (Stats, error) {
	n, err := s.clipStore.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Clips:          n,
		MonitorRunning: s.monitor.IsRunning(),
		PasskeySet:     s.IsPasskeySet(),
		PasswordLocked: s.IsPasswordLocked(),
	}, nil
}

func toViews(clips []model.Clip) []ClipView {
	views := make([]ClipView, 0, len(clips))
	for _, c := range clips {
		views = append(views, ClipView{
			ID:          c.ID,
			Content:     c.Content,
			Category:    c.Category,
			CreatedAt:   c.CreatedAt,
			IsPinned:    c.IsPinned,
			IsFavorite:  c.IsFavorite,
			IsEncrypted: c.IsEncrypted,
		})
	}
	return views
}
