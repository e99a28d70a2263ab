package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/clipkeeper/internal/application"
)

// previewWidth caps the content column in table output.
const previewWidth = 60

// clipItem is the JSON shape printed by list, search and export.
type clipItem struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	IsPinned    bool      `json:"is_pinned"`
	IsFavorite  bool      `json:"is_favorite"`
	IsEncrypted bool      `json:"is_encrypted"`
}

func toClipItems(views []application.ClipView) []clipItem {
	items := make([]clipItem, 0, len(views))
	for _, v := range views {
		items = append(items, clipItem{
			ID:          v.ID,
			Content:     v.Content,
			Category:    string(v.Category),
			CreatedAt:   v.CreatedAt,
			IsPinned:    v.IsPinned,
			IsFavorite:  v.IsFavorite,
			IsEncrypted: v.IsEncrypted,
		})
	}
	return items
}

func writeClipsJSON(w io.Writer, views []application.ClipView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toClipItems(views))
}

// writeClipsTable prints clips as an aligned table with the category label
// rendered in its display color.
func writeClipsTable(w io.Writer, views []application.ClipView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No clips found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCATEGORY\tFLAGS\tCREATED\tCONTENT")

	for _, v := range views {
		label := lipgloss.NewStyle().
			Foreground(lipgloss.Color(v.Category.Color())).
			Render(v.Category.Icon() + " " + string(v.Category))

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			v.ID,
			label,
			flags(v),
			v.CreatedAt.Local().Format("2006-01-02 15:04"),
			preview(v.Content),
		)
	}

	return tw.Flush()
}

func flags(v application.ClipView) string {
	var b strings.Builder
	if v.IsPinned {
		b.WriteString("P")
	}
	if v.IsFavorite {
		b.WriteString("F")
	}
	if v.IsEncrypted {
		b.WriteString("E")
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// preview flattens content to one line and truncates it to previewWidth runes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewWidth {
		return s
	}
	return string(r[:previewWidth-1]) + "…"
}
