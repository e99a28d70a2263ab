package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/clipkeeper/internal/application"
	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ClipResponse is the JSON representation of a clip. Encrypted clips expose
// only the placeholder content.
type ClipResponse struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	CreatedAt   string `json:"created_at"`
	IsPinned    bool   `json:"is_pinned"`
	IsFavorite  bool   `json:"is_favorite"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// AddClipRequest is the JSON body for the manual add endpoint. An empty
// category lets the server categorize the content.
type AddClipRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// AddClipResponse is returned when a clip has been stored.
type AddClipResponse struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
}

// PinResponse reports the pinned flag after a toggle.
type PinResponse struct {
	ID     int64 `json:"id"`
	Pinned bool  `json:"pinned"`
}

// FavoriteResponse reports the favorite flag after a toggle.
type FavoriteResponse struct {
	ID       int64 `json:"id"`
	Favorite bool  `json:"favorite"`
}

// CopyResponse reports whether the clip was written to the clipboard.
type CopyResponse struct {
	Copied bool `json:"copied"`
}

// CleanupRequest is the optional JSON body for the cleanup endpoint.
type CleanupRequest struct {
	Days int `json:"days"`
}

// CleanupResponse reports how many clips a cleanup removed.
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// PasskeyRequest is the JSON body for passkey setup and verification.
type PasskeyRequest struct {
	Passkey string `json:"passkey"`
}

// PasskeyStatusResponse reports the passkey lifecycle state.
type PasskeyStatusResponse struct {
	PasskeySet bool `json:"passkey_set"`
	Locked     bool `json:"locked"`
}

// CategoryResponse is the JSON representation of a category and its display hints.
type CategoryResponse struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Enabled  bool   `json:"enabled"`
}

// CategoryEnabledRequest is the JSON body for toggling a category filter.
type CategoryEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// ThemeResponse is the JSON representation of the theme settings.
type ThemeResponse struct {
	Mode  string `json:"mode"`
	Style string `json:"style"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status         string `json:"status"`
	Time           string `json:"time"`
	Clips          int    `json:"clips"`
	MonitorRunning bool   `json:"monitor_running"`
	PasskeySet     bool   `json:"passkey_set"`
	PasswordLocked bool   `json:"password_locked"`
}

// toClipResponse converts an application ClipView to its JSON response representation.
func toClipResponse(c application.ClipView) ClipResponse {
	return ClipResponse{
		ID:          c.ID,
		Content:     c.Content,
		Category:    string(c.Category),
		Color:       c.Category.Color(),
		Icon:        c.Category.Icon(),
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339Nano),
		IsPinned:    c.IsPinned,
		IsFavorite:  c.IsFavorite,
		IsEncrypted: c.IsEncrypted,
	}
}

func toClipResponses(views []application.ClipView) []ClipResponse {
	resp := make([]ClipResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toClipResponse(v))
	}
	return resp
}

// toCategoryResponse converts an application CategoryInfo to its JSON representation.
func toCategoryResponse(info application.CategoryInfo) CategoryResponse {
	return CategoryResponse{
		Category: string(info.Category),
		Color:    info.Color,
		Icon:     info.Icon,
		Enabled:  info.Enabled,
	}
}

// toCategorySettingsResponse flattens the filter map into category name → enabled.
func toCategorySettingsResponse(enabled model.EnabledCategories) map[string]bool {
	resp := make(map[string]bool, len(model.AllCategories))
	for _, c := range model.AllCategories {
		resp[string(c)] = enabled.Enabled(c)
	}
	return resp
}
