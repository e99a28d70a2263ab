// Package httphandler serves the local JSON API over the clip service.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/clipkeeper/internal/application"
	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

// maxLimit caps the limit query parameter on list and search endpoints.
const maxLimit = application.ExportLimit

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	clipSvc *application.ClipService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(clipSvc *application.ClipService, logger *slog.Logger) *Handler {
	return &Handler{
		clipSvc: clipSvc,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request-id, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/clips", h.ListClips)
	mux.HandleFunc("GET /api/v1/clips/search", h.SearchClips)
	mux.HandleFunc("GET /api/v1/clips/export", h.ExportClips)
	mux.HandleFunc("POST /api/v1/clips", h.AddClip)
	mux.HandleFunc("POST /api/v1/clips/cleanup", h.Cleanup)
	mux.HandleFunc("DELETE /api/v1/clips/{id}", h.DeleteClip)
	mux.HandleFunc("POST /api/v1/clips/{id}/pin", h.TogglePin)
	mux.HandleFunc("POST /api/v1/clips/{id}/favorite", h.ToggleFavorite)
	mux.HandleFunc("POST /api/v1/clips/{id}/copy", h.CopyClip)

	mux.HandleFunc("GET /api/v1/passkey", h.PasskeyStatus)
	mux.HandleFunc("POST /api/v1/passkey/setup", h.SetupPasskey)
	mux.HandleFunc("POST /api/v1/passkey/verify", h.VerifyPasskey)
	mux.HandleFunc("POST /api/v1/passkey/lock", h.LockPasswords)

	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/settings/categories", h.CategorySettings)
	mux.HandleFunc("PUT /api/v1/settings/categories/{category}", h.SetCategoryEnabled)
	mux.HandleFunc("GET /api/v1/settings/theme", h.GetTheme)
	mux.HandleFunc("PUT /api/v1/settings/theme", h.SetTheme)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health returns service status with the clip count and monitor state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.clipSvc.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to read stats", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		Time:           time.Now().UTC().Format(time.RFC3339),
		Clips:          stats.Clips,
		MonitorRunning: stats.MonitorRunning,
		PasskeySet:     stats.PasskeySet,
		PasswordLocked: stats.PasswordLocked,
	})
}

// ListClips returns clips, optionally filtered by the category query parameter.
func (h *Handler) ListClips(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	var (
		views []application.ClipView
		err   error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		views, err = h.clipSvc.ListByCategory(r.Context(), model.Category(category), limit)
	} else {
		views, err = h.clipSvc.ListClips(r.Context(), limit)
	}
	if errors.Is(err, application.ErrUnknownCategory) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if err != nil {
		h.logger.Error("failed to list clips", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toClipResponses(views))
}

// SearchClips returns clips whose content contains the q query parameter.
func (h *Handler) SearchClips(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	views, err := h.clipSvc.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Error("failed to search clips", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toClipResponses(views))
}

// ExportClips returns the full history as a JSON attachment.
func (h *Handler) ExportClips(w http.ResponseWriter, r *http.Request) {
	views, err := h.clipSvc.Export(r.Context())
	if err != nil {
		h.logger.Error("failed to export clips", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="clipkeeper-export.json"`)
	writeJSON(w, http.StatusOK, toClipResponses(views))
}

// AddClip stores a manually supplied clip.
func (h *Handler) AddClip(w http.ResponseWriter, r *http.Request) {
	var req AddClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.clipSvc.ManualAdd(r.Context(), req.Content, model.Category(req.Category))
	if err != nil {
		h.logger.Error("failed to add clip", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch res.Status {
	case application.AddRejectedBlank:
		writeError(w, http.StatusBadRequest, "content must not be blank")
	case application.AddDuplicate:
		writeError(w, http.StatusConflict, "clip already exists")
	default:
		writeJSON(w, http.StatusCreated, AddClipResponse{ID: res.ID, Category: string(res.Category)})
	}
}

// DeleteClip removes a clip by id.
func (h *Handler) DeleteClip(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.clipSvc.DeleteClip(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete clip", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "clip not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TogglePin flips the pinned flag of a clip.
func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	pinned, err := h.clipSvc.TogglePin(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to toggle pin", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PinResponse{ID: id, Pinned: pinned})
}

// ToggleFavorite flips the favorite flag of a clip.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	favorite, err := h.clipSvc.ToggleFavorite(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to toggle favorite", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FavoriteResponse{ID: id, Favorite: favorite})
}

// CopyClip writes a clip's content to the system clipboard. Copied is false
// when the clip is missing or encrypted while passwords are locked.
func (h *Handler) CopyClip(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	copied, err := h.clipSvc.CopyClip(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to copy clip", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CopyResponse{Copied: copied})
}

// Cleanup removes unpinned clips older than the requested number of days.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.clipSvc.Cleanup(r.Context(), req.Days)
	if err != nil {
		h.logger.Error("failed to clean up clips", "days", req.Days, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CleanupResponse{Deleted: n})
}

// PasskeyStatus reports whether a passkey exists and whether passwords are locked.
func (h *Handler) PasskeyStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.passkeyStatus())
}

// SetupPasskey configures the passkey once.
func (h *Handler) SetupPasskey(w http.ResponseWriter, r *http.Request) {
	var req PasskeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.clipSvc.IsPasskeySet() {
		writeError(w, http.StatusConflict, "passkey already configured")
		return
	}

	ok, err := h.clipSvc.SetupPasskey(r.Context(), req.Passkey)
	if err != nil {
		h.logger.Error("failed to set up passkey", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "passkey rejected")
		return
	}

	writeJSON(w, http.StatusOK, h.passkeyStatus())
}

// VerifyPasskey unlocks passwords when the passkey matches.
func (h *Handler) VerifyPasskey(w http.ResponseWriter, r *http.Request) {
	var req PasskeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.clipSvc.VerifyPasskey(r.Context(), req.Passkey)
	if err != nil {
		h.logger.Error("failed to verify passkey", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid passkey")
		return
	}

	writeJSON(w, http.StatusOK, h.passkeyStatus())
}

// LockPasswords stops encrypted clips from being revealed until the next verify.
func (h *Handler) LockPasswords(w http.ResponseWriter, _ *http.Request) {
	h.clipSvc.LockPasswords()
	writeJSON(w, http.StatusOK, h.passkeyStatus())
}

func (h *Handler) passkeyStatus() PasskeyStatusResponse {
	return PasskeyStatusResponse{
		PasskeySet: h.clipSvc.IsPasskeySet(),
		Locked:     h.clipSvc.IsPasswordLocked(),
	}
}

// ListCategories returns every category with its color, icon, and filter state.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	infos := h.clipSvc.CategoryInfo()

	resp := make([]CategoryResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, toCategoryResponse(info))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CategorySettings returns the category filter as a name → enabled object.
func (h *Handler) CategorySettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toCategorySettingsResponse(h.clipSvc.CategorySettings()))
}

// SetCategoryEnabled enables or disables storage for one category.
func (h *Handler) SetCategoryEnabled(w http.ResponseWriter, r *http.Request) {
	category := model.Category(r.PathValue("category"))

	var req CategoryEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "invalid request body: enabled is required")
		return
	}

	err := h.clipSvc.SetCategoryEnabled(r.Context(), category, *req.Enabled)
	if errors.Is(err, application.ErrUnknownCategory) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if err != nil {
		h.logger.Error("failed to update category filter", "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toCategorySettingsResponse(h.clipSvc.CategorySettings()))
}

// GetTheme returns the stored theme settings.
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	theme := h.clipSvc.ThemeSettings()
	writeJSON(w, http.StatusOK, ThemeResponse{Mode: theme.Mode, Style: theme.Style})
}

// SetTheme stores new theme settings.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.clipSvc.SetTheme(r.Context(), req.Mode, req.Style)
	if errors.Is(err, application.ErrInvalidTheme) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to set theme", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	theme := h.clipSvc.ThemeSettings()
	writeJSON(w, http.StatusOK, ThemeResponse{Mode: theme.Mode, Style: theme.Style})
}

// parseID reads the {id} path value. On failure it writes a 400 and returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid clip id")
		return 0, false
	}
	return id, true
}

// parseLimit reads the optional limit query parameter. Zero means the store
// default. On failure it writes a 400 and returns false.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 || limit > maxLimit {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}
