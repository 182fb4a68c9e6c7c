// package formatter renders playlist reports as plain text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/plman/internal/models"
	"github.com/desertthunder/plman/internal/shared"
)

// Format is an output format for reports.
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	JSON     Format = "json"
)

// Formats lists the supported formats in the order shown in help text.
var Formats = []Format{Text, CSV, Markdown, JSON}

// ParseFormat converts a flag value into a [Format]. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, s, formatList())
	}
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

var trackHeaders = []string{"ID", "Name", "Artists", "Album"}

func trackRecord(t models.Track) []string {
	return []string{t.ID, t.Name, t.Artists, t.Album}
}

// writeCSV writes headers followed by records.
func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// trackLine renders "Artists - Name (Album)", leaving out the album when empty.
func trackLine(t models.Track) string {
	line := fmt.Sprintf("%s - %s", t.Artists, t.Name)
	if t.Album != "" {
		line += fmt.Sprintf(" (%s)", t.Album)
	}
	return line
}

func idOrLocal(id string) string {
	if id == "" {
		return "local"
	}
	return id
}

// TracksToCSV renders tracks with columns: ID, Name, Artists, Album
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	records := make([][]string, len(tracks))
	for i, t := range tracks {
		records[i] = trackRecord(t)
	}
	return writeCSV(trackHeaders, records)
}

// TracksToMarkdown renders tracks as a numbered list under a heading.
func TracksToMarkdown(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))
	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s `%s`\n", i+1, trackLine(t), idOrLocal(t.ID))
	}
	return buf.Bytes()
}

// TracksToText renders tracks as a numbered plain text list.
func TracksToText(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, trackLine(t), idOrLocal(t.ID))
	}
	return buf.Bytes()
}

// RenderTracks renders the tracks of a playlist in format f.
func RenderTracks(f Format, title string, tracks []models.Track) ([]byte, error) {
	switch f {
	case CSV:
		return TracksToCSV(tracks)
	case Markdown:
		return TracksToMarkdown(title, tracks), nil
	case JSON:
		return shared.MarshalJSON(tracks, true)
	default:
		return TracksToText(title, tracks), nil
	}
}

// RenderPlaylists renders owned playlists in format f.
func RenderPlaylists(f Format, playlists []models.Playlist) ([]byte, error) {
	switch f {
	case CSV:
		records := make([][]string, len(playlists))
		for i, p := range playlists {
			records[i] = []string{p.ID, p.Name, p.OwnerID, strconv.Itoa(p.TrackCount)}
		}
		return writeCSV([]string{"ID", "Name", "Owner", "Tracks"}, records)
	case Markdown:
		var buf bytes.Buffer
		buf.WriteString("| Name | Tracks | ID |\n|---|---|---|\n")
		for _, p := range playlists {
			fmt.Fprintf(&buf, "| %s | %d | `%s` |\n", escapeCell(p.Name), p.TrackCount, p.ID)
		}
		return buf.Bytes(), nil
	case JSON:
		return shared.MarshalJSON(playlists, true)
	default:
		var buf bytes.Buffer
		for _, p := range playlists {
			fmt.Fprintf(&buf, "%s\t%d tracks\t%s\n", p.Name, p.TrackCount, p.ID)
		}
		return buf.Bytes(), nil
	}
}

// RenderDuplicates renders the tracks of playlist b that share a name with a track of playlist a.
func RenderDuplicates(f Format, a, b string, records []models.DuplicateRecord) ([]byte, error) {
	switch f {
	case CSV:
		rows := make([][]string, len(records))
		for i, r := range records {
			rows[i] = append(trackRecord(r.Track), r.PlaylistName)
		}
		return writeCSV(append(append([]string{}, trackHeaders...), "Playlist"), rows)
	case Markdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# Duplicates: %s / %s\n\n", a, b)
		fmt.Fprintf(&buf, "**Found**: %d\n\n", len(records))
		for i, r := range records {
			fmt.Fprintf(&buf, "%d. %s `%s` in *%s*\n", i+1, trackLine(r.Track), idOrLocal(r.ID), r.PlaylistName)
		}
		return buf.Bytes(), nil
	case JSON:
		return shared.MarshalJSON(records, true)
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "Duplicates between %s and %s: %d\n\n", a, b, len(records))
		for i, r := range records {
			fmt.Fprintf(&buf, "%d. %s [%s] in %s\n", i+1, trackLine(r.Track), idOrLocal(r.ID), r.PlaylistName)
		}
		return buf.Bytes(), nil
	}
}

// RenderRepeats renders a report of names occurring more than once in a playlist.
func RenderRepeats(f Format, report *models.RepeatReport) ([]byte, error) {
	switch f {
	case CSV:
		records := make([][]string, len(report.Repeats))
		for i, t := range report.Repeats {
			records[i] = trackRecord(t)
		}
		return writeCSV(trackHeaders, records)
	case Markdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# Repeats: %s\n\n", report.PlaylistName)
		fmt.Fprintf(&buf, "**Tracks**: %d\n**Unique names**: %d\n**Repeats**: %d\n\n", report.Total, report.Unique, len(report.Repeats))
		for i, t := range report.Repeats {
			fmt.Fprintf(&buf, "%d. %s `%s`\n", i+1, trackLine(t), idOrLocal(t.ID))
		}
		return buf.Bytes(), nil
	case JSON:
		return shared.MarshalJSON(report, true)
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "Playlist: %s\n", report.PlaylistName)
		fmt.Fprintf(&buf, "Tracks: %d, unique names: %d, repeats: %d\n\n", report.Total, report.Unique, len(report.Repeats))
		for i, t := range report.Repeats {
			fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, trackLine(t), idOrLocal(t.ID))
		}
		return buf.Bytes(), nil
	}
}

// RenderAddition renders the outcome of adding tracks from a file: what was skipped, resolved and written.
func RenderAddition(f Format, result *models.AdditionResult) ([]byte, error) {
	plan := result.Plan
	status := "dry run, nothing written"
	if result.Applied {
		status = fmt.Sprintf("added %d tracks", result.Added)
	}

	switch f {
	case CSV:
		var records [][]string
		for _, q := range plan.Present {
			records = append(records, []string{"present", "", q.Name, q.Artists, q.Album})
		}
		for _, id := range plan.TrackIDs {
			records = append(records, []string{"resolved", id, "", "", ""})
		}
		for _, q := range plan.Unresolved {
			records = append(records, []string{"unresolved", "", q.Name, q.Artists, q.Album})
		}
		return writeCSV([]string{"Status", "ID", "Name", "Artists", "Album"}, records)
	case Markdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# Additions: %s\n\n", plan.PlaylistName)
		fmt.Fprintf(&buf, "**Already there**: %d\n**Found**: %d\n**Unresolved**: %d\n**Status**: %s\n", len(plan.Present), len(plan.TrackIDs), len(plan.Unresolved), status)
		writeMarkdownSection(&buf, "Found", plan.TrackIDs, func(id string) string { return "`" + id + "`" })
		writeMarkdownSection(&buf, "Unresolved", plan.Unresolved, models.TrackQuery.String)
		return buf.Bytes(), nil
	case JSON:
		return shared.MarshalJSON(result, true)
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "Playlist: %s\n", plan.PlaylistName)
		fmt.Fprintf(&buf, "already there: %d\n", len(plan.Present))
		fmt.Fprintf(&buf, "found: %d\n", len(plan.TrackIDs))
		fmt.Fprintf(&buf, "unresolved: %d\n", len(plan.Unresolved))
		for _, id := range plan.TrackIDs {
			fmt.Fprintf(&buf, "  + %s\n", id)
		}
		for _, q := range plan.Unresolved {
			fmt.Fprintf(&buf, "  ? %s\n", q)
		}
		fmt.Fprintf(&buf, "%s\n", status)
		return buf.Bytes(), nil
	}
}

func writeMarkdownSection[T any](buf *bytes.Buffer, heading string, items []T, line func(T) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(buf, "\n## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(buf, "- %s\n", line(item))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteFile writes a rendered report to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
