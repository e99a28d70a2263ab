// Package application contains use-case orchestration services.
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

// DefaultPollInterval is used when the monitor is created with a non-positive interval.
const DefaultPollInterval = time.Second

// ErrMonitorNotRunning is returned by PollNow when the polling loop is stopped.
var ErrMonitorNotRunning = errors.New("clipboard monitor is not running")

// ErrUnknownCategory is returned when a caller names a category outside the
// fixed vocabulary.
var ErrUnknownCategory = errors.New("unknown category")

// pollRequest represents a manual poll trigger.
type pollRequest struct {
	done chan error
}

// MonitorService watches the system clipboard and persists each new snippet.
// Every tick runs the pipeline read → trim → categorize → filter → dedup →
// encrypt → persist → notify.
type MonitorService struct {
	clipboard driven.Clipboard
	clipStore driven.ClipStore
	settings  driven.SettingStore
	keys      *KeyProvider
	interval  time.Duration
	pollCh    chan pollRequest

	mu        sync.Mutex
	enabled   model.EnabledCategories
	listeners []func(model.ClipEvent)
	lastSeen  string

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitorService creates a stopped MonitorService with every category enabled.
func NewMonitorService(
	clipboard driven.Clipboard,
	clipStore driven.ClipStore,
	settings driven.SettingStore,
	keys *KeyProvider,
	interval time.Duration,
) *MonitorService {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &MonitorService{
		clipboard: clipboard,
		clipStore: clipStore,
		settings:  settings,
		keys:      keys,
		interval:  interval,
		pollCh:    make(chan pollRequest),
		enabled:   model.DefaultEnabledCategories(),
	}
}

// Start launches the polling loop in its own goroutine. It polls once
// immediately, then on every interval until Stop is called or ctx is
// canceled. Calling Start on a running monitor does nothing.
func (s *MonitorService) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.runningLocked() {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(loopCtx, done)

	slog.Info("clipboard monitor started", "interval", s.interval)
}

// Stop cancels the polling loop and blocks until it has exited. Concurrent
// callers all wait for the same exit. Calling Stop on a stopped monitor does
// nothing.
func (s *MonitorService) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// IsRunning reports whether the polling loop is active.
func (s *MonitorService) IsRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runningLocked()
}

func (s *MonitorService) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// PollNow asks the running loop to perform one tick immediately, bypassing
// the interval. It blocks until the tick completes or ctx is canceled.
func (s *MonitorService) PollNow(ctx context.Context) error {
	s.runMu.Lock()
	done := s.done
	s.runMu.Unlock()

	if done == nil {
		return ErrMonitorNotRunning
	}

	req := pollRequest{done: make(chan error, 1)}

	select {
	case s.pollCh <- req:
	case <-done:
		return ErrMonitorNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MonitorService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.pollOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("clipboard monitor stopped")
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		case req := <-s.pollCh:
			req.done <- s.tick(ctx)
		}
	}
}

func (s *MonitorService) pollOnce(ctx context.Context) {
	if err := s.tick(ctx); err != nil {
		slog.Error("clipboard poll failed", "error", err)
	}
}

// tick runs one pass of the capture pipeline. Clipboard read failures are
// treated as an empty clipboard. A store failure aborts only this tick.
func (s *MonitorService) tick(ctx context.Context) error {
	text, err := s.clipboard.ReadText()
	if err != nil {
		slog.Debug("clipboard read failed", "error", err)
		text = ""
	}

	content := strings.TrimSpace(text)
	if content == "" || !s.observe(content) {
		return nil
	}

	category := Categorize(content)
	if !s.categoryEnabled(category) {
		slog.Debug("skipping clip from disabled category", "category", category)
		return nil
	}

	dup, err := s.clipStore.CheckDuplicate(ctx, content)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		slog.Debug("skipping duplicate clip", "category", category)
		return nil
	}

	stored, payload := sealSensitive(s.keys, content, category)

	id, err := s.clipStore.AddClip(ctx, stored, category, payload)
	if err != nil {
		return fmt.Errorf("add clip: %w", err)
	}

	slog.Info("clip captured", "id", id, "category", category, "encrypted", payload != nil)

	s.notify(model.ClipEvent{ID: id, Content: stored, Category: category})
	return nil
}

// observe records content as the last seen clipboard value and reports
// whether it differs from the previous one.
func (s *MonitorService) observe(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if content == s.lastSeen {
		return false
	}
	s.lastSeen = content
	return true
}

// MarkSeen records text as already observed so that the next tick does not
// capture it. Used when the application itself writes to the clipboard.
func (s *MonitorService) MarkSeen(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = strings.TrimSpace(text)
}

// sealSensitive encrypts password clips when a key is active. It returns the
// content to store and the encrypted payload, which is nil when the clip is
// stored in the clear.
func sealSensitive(keys *KeyProvider, content string, category model.Category) (string, []byte) {
	if category != model.CategoryPassword {
		return content, nil
	}

	cipher := keys.Get()
	if cipher == nil {
		slog.Debug("storing password clip unencrypted: no active key")
		return content, nil
	}

	payload, err := cipher.Encrypt(content)
	if err != nil {
		slog.Warn("encrypting password clip failed, storing unencrypted", "error", err)
		return content, nil
	}

	return model.EncryptedPlaceholder, payload
}

// OnNewClip registers a listener invoked after each clip the monitor persists.
// Listeners run on the monitor goroutine in registration order.
func (s *MonitorService) OnNewClip(fn func(model.ClipEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *MonitorService) notify(ev model.ClipEvent) {
	s.mu.Lock()
	listeners := append([]func(model.ClipEvent){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func (s *MonitorService) categoryEnabled(c model.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled.Enabled(c)
}

// EnabledCategories returns a copy of the current category filter.
func (s *MonitorService) EnabledCategories() model.EnabledCategories {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled.Clone()
}

// SetCategoryEnabled updates the in-memory filter and persists the whole map.
func (s *MonitorService) SetCategoryEnabled(ctx context.Context, category model.Category, enabled bool) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s.mu.Lock()
	s.enabled[category] = enabled
	snapshot := s.enabled.Clone()
	s.mu.Unlock()

	raw, err := snapshot.Marshal()
	if err != nil {
		return fmt.Errorf("marshal enabled categories: %w", err)
	}
	if err := s.settings.SetSetting(ctx, model.SettingEnabledCategories, raw); err != nil {
		return fmt.Errorf("persist enabled categories: %w", err)
	}

	slog.Info("category filter updated", "category", category, "enabled", enabled)
	return nil
}

// LoadSettings restores the category filter from the settings store. A
// missing or malformed value resets the filter to all enabled.
func (s *MonitorService) LoadSettings(ctx context.Context) error {
	raw, err := s.settings.GetSetting(ctx, model.SettingEnabledCategories, "")
	if err != nil {
		return fmt.Errorf("load enabled categories: %w", err)
	}

	enabled := model.DefaultEnabledCategories()
	if raw != "" {
		parsed, err := model.ParseEnabledCategories(raw)
		if err != nil {
			slog.Warn("ignoring malformed enabled categories setting", "error", err)
		} else {
			enabled = parsed
		}
	}

	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	return nil
}
