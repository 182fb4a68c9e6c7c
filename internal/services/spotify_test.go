package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/plman/internal/shared"
	tu "github.com/desertthunder/plman/internal/testing"
)

func newFixtureService(t *testing.T, userID string) (*SpotifyService, *tu.SpotifyFixture) {
	t.Helper()
	fixture := tu.NewSpotifyFixture(t, userID)
	return NewSpotifyService(fixture.Client(), WithBaseURL(fixture.URL)), fixture
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("defaults", func(t *testing.T) {
			srv := NewSpotifyService(nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected base URL %s, got %s", spotifyBaseURL, srv.baseURL)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("WithBaseURL trims trailing slash", func(t *testing.T) {
			srv := NewSpotifyService(nil, WithBaseURL("http://example.com/v1/"))
			if srv.baseURL != "http://example.com/v1" {
				t.Errorf("expected trimmed base URL, got %s", srv.baseURL)
			}
		})
	})

	t.Run("CurrentUser", func(t *testing.T) {
		srv, _ := newFixtureService(t, "listener")

		user, err := srv.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "listener" {
			t.Errorf("expected user id listener, got %s", user.ID)
		}
	})

	t.Run("UserPlaylists", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")
		fixture.Playlists = []tu.FixturePlaylist{
			{ID: "p1", Name: "Main", OwnerID: "listener", Tracks: []tu.FixtureTrack{{ID: "t1", Name: "Song"}}},
			{ID: "p2", Name: "Followed", OwnerID: "someone"},
			{ID: "p3", Name: "Third", OwnerID: "listener"},
		}

		t.Run("single page", func(t *testing.T) {
			page, err := srv.UserPlaylists(context.Background(), "listener", 50, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Items) != 3 {
				t.Fatalf("expected 3 playlists, got %d", len(page.Items))
			}
			if page.HasNext() {
				t.Error("expected no next page")
			}

			first := page.Items[0].Model()
			if first.OwnerID != "listener" || first.Name != "Main" || first.ID != "p1" || first.TrackCount != 1 {
				t.Errorf("unexpected playlist model %+v", first)
			}
		})

		t.Run("reports next cursor", func(t *testing.T) {
			page, err := srv.UserPlaylists(context.Background(), "listener", 2, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Items) != 2 || !page.HasNext() {
				t.Errorf("expected 2 items and a next cursor, got %d items, next=%v", len(page.Items), page.Next)
			}
		})

		t.Run("missing user id", func(t *testing.T) {
			if _, err := srv.UserPlaylists(context.Background(), "", 50, 0); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("PlaylistTracks follows next cursor", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")
		fixture.TrackPageSize = 2
		fixture.Playlists = []tu.FixturePlaylist{{
			ID: "p1", Name: "Main", OwnerID: "listener",
			Tracks: []tu.FixtureTrack{
				{ID: "t1", Name: "One", Album: "A", Artists: []string{"X", "Y"}},
				{ID: "t2", Name: "Two"},
				{Name: "Local File"},
			},
		}}

		ctx := context.Background()
		page, err := srv.PlaylistTracks(ctx, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Items) != 2 || !page.HasNext() {
			t.Fatalf("expected first page of 2 with next, got %d (next=%v)", len(page.Items), page.Next)
		}

		track := page.Items[0].Track.Model()
		if track.ID != "t1" || track.Album != "A" || track.Artists != "X,Y" {
			t.Errorf("unexpected track model %+v", track)
		}

		next, err := srv.NextPlaylistTracks(ctx, *page.Next)
		if err != nil {
			t.Fatalf("expected no error following cursor, got %v", err)
		}
		if len(next.Items) != 1 || next.HasNext() {
			t.Fatalf("expected last page of 1, got %d (next=%v)", len(next.Items), next.Next)
		}

		local := next.Items[0].Track.Model()
		if local.HasID() {
			t.Errorf("expected local track without id, got %q", local.ID)
		}
	})

	t.Run("PlaylistTracks unknown playlist", func(t *testing.T) {
		srv, _ := newFixtureService(t, "listener")

		_, err := srv.PlaylistTracks(context.Background(), "missing")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "Resource not found") {
			t.Errorf("expected status and message in error, got %v", err)
		}
	})

	t.Run("SearchTracks", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")
		fixture.Search["track:Hello"] = []tu.FixtureTrack{
			{ID: "s1", Name: "Hello", Artists: []string{"B"}},
			{ID: "s2", Name: "Hello", Artists: []string{"A", "C"}},
		}

		results, err := srv.SearchTracks(context.Background(), "track:Hello", 50)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[1].PrimaryArtist() != "A" {
			t.Errorf("expected primary artist A, got %s", results[1].PrimaryArtist())
		}
	})

	t.Run("Track", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")
		fixture.Playlists = []tu.FixturePlaylist{{ID: "p1", OwnerID: "listener", Tracks: []tu.FixtureTrack{{ID: "t9", Name: "Nine"}}}}

		track, err := srv.Track(context.Background(), "t9")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track.Name != "Nine" {
			t.Errorf("expected Nine, got %s", track.Name)
		}

		if _, err := srv.Track(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		_, err = srv.Track(context.Background(), "gone")
		if !errors.Is(err, shared.ErrTrackNotFound) || !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrTrackNotFound wrapping ErrAPIRequest, got %v", err)
		}
	})

	t.Run("AddTracksToPlaylist batches by 100", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")
		fixture.Playlists = []tu.FixturePlaylist{{ID: "p1", OwnerID: "listener"}}

		ids := make([]string, 250)
		for i := range ids {
			ids[i] = "id" + strings.Repeat("x", i%3)
		}

		snapshot, err := srv.AddTracksToPlaylist(context.Background(), "p1", ids)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := fixture.CountRequests("POST /playlists/p1/tracks"); got != 3 {
			t.Errorf("expected 3 batches, got %d", got)
		}
		added := fixture.Added("p1")
		if len(added) != 250 {
			t.Fatalf("expected 250 uris, got %d", len(added))
		}
		if added[0] != "spotify:track:id" {
			t.Errorf("expected spotify:track:id, got %s", added[0])
		}
		if snapshot != "snapshot-250" {
			t.Errorf("expected last snapshot id, got %s", snapshot)
		}
	})

	t.Run("AddTracksToPlaylist with no tracks makes no request", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")

		if _, err := srv.AddTracksToPlaylist(context.Background(), "p1", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(fixture.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", fixture.Requests())
		}
	})

	t.Run("401 maps to ErrTokenExpired", func(t *testing.T) {
		srv, fixture := newFixtureService(t, "listener")
		fixture.FailPaths["/me"] = http.StatusUnauthorized

		if _, err := srv.CurrentUser(context.Background()); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		srv := NewSpotifyService(client, WithBaseURL("http://spotify.invalid"))

		_, err := srv.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("unreadable body", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		srv := NewSpotifyService(client, WithBaseURL("http://spotify.invalid"))

		if _, err := srv.CurrentUser(context.Background()); !errors.Is(err, shared.ErrSchemaMismatch) {
			t.Errorf("expected ErrSchemaMismatch, got %v", err)
		}
	})
}

func TestSpotifyServiceSchemaValidation(t *testing.T) {
	tt := []struct {
		name string
		body string
		call func(*SpotifyService) error
	}{
		{
			name: "playlist item without track",
			body: `{"items":[{"added_at":"2024-01-01T00:00:00Z","track":null}],"next":null}`,
			call: func(s *SpotifyService) error {
				_, err := s.PlaylistTracks(context.Background(), "p1")
				return err
			},
		},
		{
			name: "playlist without owner",
			body: `{"items":[{"id":"p1","name":"Main","owner":{}}],"next":null}`,
			call: func(s *SpotifyService) error {
				_, err := s.UserPlaylists(context.Background(), "listener", 50, 0)
				return err
			},
		},
		{
			name: "paging without items",
			body: `{"total":0,"next":null}`,
			call: func(s *SpotifyService) error {
				_, err := s.PlaylistTracks(context.Background(), "p1")
				return err
			},
		},
		{
			name: "search result without artists",
			body: `{"tracks":{"items":[{"id":"s1","name":"Hello","artists":[]}],"next":null}}`,
			call: func(s *SpotifyService) error {
				_, err := s.SearchTracks(context.Background(), "track:Hello", 50)
				return err
			},
		},
		{
			name: "search response without tracks",
			body: `{"artists":{"items":[]}}`,
			call: func(s *SpotifyService) error {
				_, err := s.SearchTracks(context.Background(), "track:Hello", 50)
				return err
			},
		},
		{
			name: "playlist track without name",
			body: `{"items":[{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t1","artists":[{"name":"A"}],"album":{"name":"X"}}}],"next":null}`,
			call: func(s *SpotifyService) error {
				_, err := s.PlaylistTracks(context.Background(), "p1")
				return err
			},
		},
		{
			name: "search result without name",
			body: `{"tracks":{"items":[{"id":"s1","artists":[{"name":"A"}]}],"next":null}}`,
			call: func(s *SpotifyService) error {
				_, err := s.SearchTracks(context.Background(), "track:Hello", 50)
				return err
			},
		},
		{
			name: "single track without name",
			body: `{}`,
			call: func(s *SpotifyService) error {
				_, err := s.Track(context.Background(), "t1")
				return err
			},
		},
		{
			name: "user without id",
			body: `{"display_name":"nobody"}`,
			call: func(s *SpotifyService) error {
				_, err := s.CurrentUser(context.Background())
				return err
			},
		},
		{
			name: "malformed JSON",
			body: `{"items": [`,
			call: func(s *SpotifyService) error {
				_, err := s.PlaylistTracks(context.Background(), "p1")
				return err
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tc.body)
			}))
			defer server.Close()

			srv := NewSpotifyService(server.Client(), WithBaseURL(server.URL))
			if err := tc.call(srv); !errors.Is(err, shared.ErrSchemaMismatch) {
				t.Errorf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestSearchTracksQuery(t *testing.T) {
	var got struct {
		q, kind, limit string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.q = r.URL.Query().Get("q")
		got.kind = r.URL.Query().Get("type")
		got.limit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(map[string]any{"tracks": map[string]any{"items": []any{}}})
	}))
	defer server.Close()

	srv := NewSpotifyService(server.Client(), WithBaseURL(server.URL))
	if _, err := srv.SearchTracks(context.Background(), "track:Rock & Roll", 50); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got.q != "track:Rock & Roll" {
		t.Errorf("expected query to round trip, got %q", got.q)
	}
	if got.kind != "track" || got.limit != "50" {
		t.Errorf("expected type=track limit=50, got type=%s limit=%s", got.kind, got.limit)
	}
}
