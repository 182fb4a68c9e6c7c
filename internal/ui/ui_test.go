package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plman/internal/models"
)

type mockBrowser struct {
	playlists    []models.Playlist
	tracks       map[string][]models.Track
	duplicates   []models.DuplicateRecord
	playlistsErr error
	tracksErr    error
	compared     [2]string
}

func (m *mockBrowser) ListOwnedPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.playlists, m.playlistsErr
}

func (m *mockBrowser) ListPlaylistTracks(ctx context.Context, name string) ([]models.Track, error) {
	if m.tracksErr != nil {
		return nil, m.tracksErr
	}
	return m.tracks[name], nil
}

func (m *mockBrowser) FindDuplicates(ctx context.Context, a, b string) ([]models.DuplicateRecord, error) {
	m.compared = [2]string{a, b}
	return m.duplicates, nil
}

func (m *mockBrowser) FindRepeats(ctx context.Context, name string) (*models.RepeatReport, error) {
	return &models.RepeatReport{PlaylistName: name, Total: 2, Unique: 1, Repeats: []models.Track{{Name: "Echo", Artists: "X"}}}, nil
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// run executes cmd and feeds the resulting message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func newLoadedModel(t *testing.T, b *mockBrowser) *Model {
	t.Helper()
	m := NewModel(context.Background(), b)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	run(t, m, m.Init())
	return m
}

func sampleBrowser() *mockBrowser {
	return &mockBrowser{
		playlists: []models.Playlist{
			{ID: "p1", Name: "Main", TrackCount: 2},
			{ID: "p2", Name: "Gym", TrackCount: 1},
		},
		tracks: map[string][]models.Track{
			"Main": {{ID: "t1", Name: "Song1", Artists: "A"}, {Name: "Local", Artists: "Me"}},
			"Gym":  {{ID: "t2", Name: "song1", Artists: "A"}},
		},
		duplicates: []models.DuplicateRecord{{Track: models.Track{ID: "t2", Name: "song1", Artists: "A"}, PlaylistName: "Gym"}},
	}
}

func TestModel(t *testing.T) {
	t.Run("loads playlists on init", func(t *testing.T) {
		m := newLoadedModel(t, sampleBrowser())

		if len(m.playlistList.Items()) != 2 {
			t.Fatalf("expected 2 playlist items, got %d", len(m.playlistList.Items()))
		}
		if m.loading != "" {
			t.Errorf("expected loading to be cleared, got %q", m.loading)
		}
		if !strings.Contains(m.View(), "Main") {
			t.Errorf("expected playlist in view, got:\n%s", m.View())
		}
	})

	t.Run("playlist failure quits", func(t *testing.T) {
		b := &mockBrowser{playlistsErr: errors.New("token expired")}
		m := NewModel(context.Background(), b)

		_, cmd := m.Update(m.Init()())
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if m.Err() == nil || !strings.Contains(m.View(), "token expired") {
			t.Errorf("expected error to be shown, got %q", m.View())
		}
	})

	t.Run("enter shows tracks and esc returns", func(t *testing.T) {
		m := newLoadedModel(t, sampleBrowser())

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)

		if m.view != TrackListView {
			t.Fatalf("expected track view, got %v", m.view)
		}
		if len(m.trackList.Items()) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(m.trackList.Items()))
		}
		if !strings.Contains(m.trackList.Title, "Main") {
			t.Errorf("unexpected title %q", m.trackList.Title)
		}

		m.Update(keyPress("esc"))
		if m.view != PlaylistListView {
			t.Errorf("expected playlist view after esc, got %v", m.view)
		}
	})

	t.Run("track failure stays on playlists", func(t *testing.T) {
		b := sampleBrowser()
		b.tracksErr = errors.New("boom")
		m := newLoadedModel(t, b)

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)

		if m.view != PlaylistListView || m.status != "boom" {
			t.Errorf("expected status on playlist view, got view=%v status=%q", m.view, m.status)
		}
	})

	t.Run("compare requires a marked playlist", func(t *testing.T) {
		m := newLoadedModel(t, sampleBrowser())

		_, cmd := m.Update(keyPress("c"))
		if cmd != nil {
			t.Error("expected no command without a marked playlist")
		}
		if !strings.Contains(m.status, "mark a playlist") {
			t.Errorf("expected hint, got %q", m.status)
		}
	})

	t.Run("mark then compare shows duplicates", func(t *testing.T) {
		b := sampleBrowser()
		m := newLoadedModel(t, b)

		m.Update(keyPress("m"))
		if m.marked == nil || m.marked.ID != "p1" {
			t.Fatalf("expected Main to be marked, got %+v", m.marked)
		}

		m.Update(keyPress("down"))
		_, cmd := m.Update(keyPress("c"))
		run(t, m, cmd)

		if b.compared != [2]string{"Main", "Gym"} {
			t.Errorf("expected Main compared with Gym, got %v", b.compared)
		}
		if m.view != ReportView {
			t.Fatalf("expected report view, got %v", m.view)
		}
		if !strings.Contains(m.report, "1. A - song1 [t2] in Gym") {
			t.Errorf("unexpected report:\n%s", m.report)
		}

		m.Update(keyPress("esc"))
		if m.view != PlaylistListView {
			t.Errorf("expected playlist view, got %v", m.view)
		}
	})

	t.Run("mark toggles", func(t *testing.T) {
		m := newLoadedModel(t, sampleBrowser())

		m.Update(keyPress("m"))
		m.Update(keyPress("m"))
		if m.marked != nil {
			t.Errorf("expected mark to be cleared, got %+v", m.marked)
		}
	})

	t.Run("repeats report", func(t *testing.T) {
		m := newLoadedModel(t, sampleBrowser())

		_, cmd := m.Update(keyPress("r"))
		run(t, m, cmd)

		if m.view != ReportView || m.reportTitle != "Repeats: Main" {
			t.Errorf("expected repeats report, got view=%v title=%q", m.view, m.reportTitle)
		}
		if !strings.Contains(m.View(), "repeats: 1") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("q quits", func(t *testing.T) {
		m := newLoadedModel(t, sampleBrowser())

		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestItems(t *testing.T) {
	p := playlistItem{playlist: models.Playlist{Name: "Main", TrackCount: 3}, marked: true}
	if p.Title() != "◆ Main" || p.Description() != "3 tracks" || p.FilterValue() != "Main" {
		t.Errorf("unexpected playlist item %q %q", p.Title(), p.Description())
	}

	tr := trackItem{track: models.Track{Name: "Local", Artists: "Me", Album: "Home"}}
	if tr.Description() != "Me • Home • local" {
		t.Errorf("unexpected track description %q", tr.Description())
	}
}
