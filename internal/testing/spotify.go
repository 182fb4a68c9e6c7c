package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FixtureTrack is a track served by [SpotifyFixture]. An empty ID is served as null, like a local file.
type FixtureTrack struct {
	ID      string
	Name    string
	Album   string
	Artists []string
}

// FixturePlaylist is a playlist served by [SpotifyFixture].
type FixturePlaylist struct {
	ID      string
	Name    string
	OwnerID string
	Tracks  []FixtureTrack
}

// SpotifyFixture is an [httptest.Server] that serves the parts of the Spotify Web API plman uses:
// the current user, user playlists, playlist tracks (paginated through next cursors), track search,
// single tracks and the add-tracks write.
//
// Set fields before issuing requests.
type SpotifyFixture struct {
	*httptest.Server

	UserID    string
	Playlists []FixturePlaylist
	// Search maps a raw q parameter to its results.
	Search map[string][]FixtureTrack
	// TrackPageSize is the number of playlist tracks per page (default 100).
	TrackPageSize int
	// FailPaths maps a request path to a status code to answer with instead.
	FailPaths map[string]int

	mu       sync.Mutex
	requests []string
	added    map[string][]string
}

// NewSpotifyFixture starts a fixture server for userID, closed when the test ends.
func NewSpotifyFixture(t *testing.T, userID string) *SpotifyFixture {
	t.Helper()

	f := &SpotifyFixture{
		UserID:        userID,
		Search:        map[string][]FixtureTrack{},
		TrackPageSize: 100,
		FailPaths:     map[string]int{},
		added:         map[string][]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", f.handleMe)
	mux.HandleFunc("GET /users/{user}/playlists", f.handleUserPlaylists)
	mux.HandleFunc("GET /playlists/{id}/tracks", f.handlePlaylistTracks)
	mux.HandleFunc("POST /playlists/{id}/tracks", f.handleAddTracks)
	mux.HandleFunc("GET /search", f.handleSearch)
	mux.HandleFunc("GET /tracks/{id}", f.handleTrack)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		status, fail := f.FailPaths[r.URL.Path]
		f.mu.Unlock()

		if fail {
			writeError(w, status, "fixture failure")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)

	return f
}

// Requests returns "METHOD /path" for every request received so far.
func (f *SpotifyFixture) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// CountRequests returns how many requests matched "METHOD /path" exactly.
func (f *SpotifyFixture) CountRequests(methodPath string) int {
	n := 0
	for _, r := range f.Requests() {
		if r == methodPath {
			n++
		}
	}
	return n
}

// Added returns the track URIs posted to a playlist.
func (f *SpotifyFixture) Added(playlistID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added[playlistID]...)
}

func (f *SpotifyFixture) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": f.UserID, "display_name": f.UserID})
}

func (f *SpotifyFixture) handleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, 20)

	items := []map[string]any{}
	for _, p := range window(f.Playlists, offset, limit) {
		items = append(items, map[string]any{
			"id":     p.ID,
			"name":   p.Name,
			"owner":  map[string]any{"id": p.OwnerID},
			"tracks": map[string]any{"total": len(p.Tracks)},
		})
	}

	path := fmt.Sprintf("/users/%s/playlists", r.PathValue("user"))
	writeJSON(w, http.StatusOK, f.paging(path, items, len(f.Playlists), limit, offset))
}

func (f *SpotifyFixture) handlePlaylistTracks(w http.ResponseWriter, r *http.Request) {
	p, ok := f.playlist(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	limit, offset := pageParams(r, f.TrackPageSize)

	items := []map[string]any{}
	for _, t := range window(p.Tracks, offset, limit) {
		items = append(items, map[string]any{
			"added_at": "2024-01-01T00:00:00Z",
			"is_local": t.ID == "",
			"track":    trackJSON(t),
		})
	}

	path := fmt.Sprintf("/playlists/%s/tracks", p.ID)
	writeJSON(w, http.StatusOK, f.paging(path, items, len(p.Tracks), limit, offset))
}

func (f *SpotifyFixture) handleAddTracks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := f.playlist(id); !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	var body struct {
		URIs []string `json:"uris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(body.URIs) > 100 {
		writeError(w, http.StatusBadRequest, "too many uris")
		return
	}

	f.mu.Lock()
	f.added[id] = append(f.added[id], body.URIs...)
	n := len(f.added[id])
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"snapshot_id": fmt.Sprintf("snapshot-%d", n)})
}

func (f *SpotifyFixture) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, offset := pageParams(r, 20)

	results := f.Search[q]
	items := []map[string]any{}
	for _, t := range window(results, offset, limit) {
		items = append(items, trackJSON(t))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tracks": f.paging("/search", items, len(results), limit, offset),
	})
}

func (f *SpotifyFixture) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, p := range f.Playlists {
		for _, t := range p.Tracks {
			if t.ID == id {
				writeJSON(w, http.StatusOK, trackJSON(t))
				return
			}
		}
	}
	for _, results := range f.Search {
		for _, t := range results {
			if t.ID == id {
				writeJSON(w, http.StatusOK, trackJSON(t))
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Resource not found")
}

func (f *SpotifyFixture) playlist(id string) (FixturePlaylist, bool) {
	for _, p := range f.Playlists {
		if p.ID == id {
			return p, true
		}
	}
	return FixturePlaylist{}, false
}

func (f *SpotifyFixture) paging(path string, items []map[string]any, total, limit, offset int) map[string]any {
	page := map[string]any{
		"href":     f.URL + path,
		"items":    items,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"next":     nil,
		"previous": nil,
	}
	if offset+limit < total {
		page["next"] = fmt.Sprintf("%s%s?offset=%d&limit=%d", f.URL, path, offset+limit, limit)
	}
	if offset > 0 {
		page["previous"] = fmt.Sprintf("%s%s?offset=%d&limit=%d", f.URL, path, max(offset-limit, 0), limit)
	}
	return page
}

func trackJSON(t FixtureTrack) map[string]any {
	artists := make([]map[string]any, len(t.Artists))
	for i, name := range t.Artists {
		artists[i] = map[string]any{"id": strings.ToLower(strings.ReplaceAll(name, " ", "")), "name": name}
	}

	var id any
	if t.ID != "" {
		id = t.ID
	}

	return map[string]any{
		"id":       id,
		"name":     t.Name,
		"artists":  artists,
		"album":    map[string]any{"name": t.Album},
		"is_local": t.ID == "",
		"uri":      "spotify:track:" + t.ID,
	}
}

func pageParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	return items[offset:min(offset+limit, len(items))]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"status": status, "message": message}})
}
