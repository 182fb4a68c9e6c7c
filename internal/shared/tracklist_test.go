package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plman/internal/models"
)

func TestParseTrackLine(t *testing.T) {
	tt := []struct {
		name    string
		line    string
		want    models.TrackQuery
		wantErr bool
	}{
		{
			name: "trims whitespace",
			line: "Artist X - Album Y - Track Z",
			want: models.TrackQuery{Artists: "Artist X", Album: "Album Y", Name: "Track Z"},
		},
		{
			name: "no spaces around separators",
			line: "Daft Punk-Discovery-One More Time",
			want: models.TrackQuery{Artists: "Daft Punk", Album: "Discovery", Name: "One More Time"},
		},
		{
			name: "hyphen inside a field shifts fields",
			line: "Jay-Z - The Blueprint - Izzo",
			want: models.TrackQuery{Artists: "Jay", Album: "Z", Name: "The Blueprint"},
		},
		{
			name:    "two fields",
			line:    "Artist - Track",
			wantErr: true,
		},
		{
			name:    "no separator",
			line:    "just a title",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTrackLine(tc.line)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseTrackLine() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseTrackList(t *testing.T) {
	t.Run("parses every line and skips blanks", func(t *testing.T) {
		input := "A - B - C\n\n  \nD - E - F\n"

		got, err := ParseTrackList(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 queries, got %d", len(got))
		}
		if got[1].Name != "F" {
			t.Errorf("expected second name F, got %q", got[1].Name)
		}
	})

	t.Run("reports the malformed line number", func(t *testing.T) {
		input := "A - B - C\nbroken line\n"

		_, err := ParseTrackList(strings.NewReader(input))
		if err == nil {
			t.Fatal("expected error for malformed line")
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Errorf("expected error to mention line 2, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := ParseTrackList(strings.NewReader(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no queries, got %d", len(got))
		}
	})
}

func TestParseTrackFile(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracks.txt")
		if err := os.WriteFile(path, []byte("Artist X - Album Y - Track Z\n"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		got, err := ParseTrackFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Artists != "Artist X" {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseTrackFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
