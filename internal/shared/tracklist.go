// Parsing for plain-text track lists.
package shared

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/plman/internal/models"
)

// trackListSeparator splits a line into artist, album and name. Fields cannot contain it.
const trackListSeparator = "-"

// ParseTrackFile opens the file at path and parses it with [ParseTrackList].
func ParseTrackFile(path string) ([]models.TrackQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track list: %w", err)
	}
	defer f.Close()

	return ParseTrackList(f)
}

// ParseTrackList reads one track per line in the form "artist - album - name".
//
// Every "-" is a separator, so a hyphenated field shifts the remaining fields and anything past the third is dropped.
// Blank lines are skipped; a line with fewer than three fields fails the whole parse.
func ParseTrackList(r io.Reader) ([]models.TrackQuery, error) {
	var queries []models.TrackQuery

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		q, err := ParseTrackLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		queries = append(queries, q)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read track list: %w", err)
	}

	return queries, nil
}

// ParseTrackLine parses a single "artist - album - name" line with whitespace-trimmed fields.
func ParseTrackLine(line string) (models.TrackQuery, error) {
	parts := strings.Split(line, trackListSeparator)
	if len(parts) < 3 {
		return models.TrackQuery{}, fmt.Errorf("%w: expected \"artist - album - name\", got %q", ErrInvalidInput, line)
	}

	return models.TrackQuery{
		Artists: strings.TrimSpace(parts[0]),
		Album:   strings.TrimSpace(parts[1]),
		Name:    strings.TrimSpace(parts[2]),
	}, nil
}
