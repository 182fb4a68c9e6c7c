// Spotify API implementation of [SpotifyAPI]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/plman/internal/models"
	"github.com/desertthunder/plman/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// maxTracksPerRequest is the API limit for adding tracks to a playlist in one call.
	maxTracksPerRequest = 100
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// Validate rejects a profile without an id.
func (u SpotifyUser) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: user has no id", shared.ErrSchemaMismatch)
	}
	return nil
}

// SpotifyTrack represents a Spotify track. ID is nil for local files.
type SpotifyTrack struct {
	ID         *string         `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
	URI        string          `json:"uri"`
}

// Model converts the API record into a [models.Track] with artist names joined by ",".
func (t SpotifyTrack) Model() models.Track {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}

	track := models.Track{
		Name:    t.Name,
		Album:   t.Album.Name,
		Artists: strings.Join(names, ","),
	}
	if t.ID != nil {
		track.ID = *t.ID
	}
	return track
}

// Validate rejects a track without a name.
func (t SpotifyTrack) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: track %s has no name", shared.ErrSchemaMismatch, t.URI)
	}
	return nil
}

// PrimaryArtist returns the first listed artist's name, or "" when there are none.
func (t SpotifyTrack) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// Owner is the owner of a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
}

// Validate rejects a playlist without an id or an owner id.
func (p SpotifySimplePlaylist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: playlist %q has no id", shared.ErrSchemaMismatch, p.Name)
	}
	if p.Owner.ID == "" {
		return fmt.Errorf("%w: playlist %q has no owner id", shared.ErrSchemaMismatch, p.Name)
	}
	return nil
}

// Model converts the API record into a [models.Playlist].
func (p SpotifySimplePlaylist) Model() models.Playlist {
	return models.Playlist{
		OwnerID:    p.Owner.ID,
		Name:       p.Name,
		ID:         p.ID,
		TrackCount: p.Tracks.Total,
	}
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// Validate rejects an item whose track is null or nameless.
func (t SpotifyPlaylistTrack) Validate() error {
	if t.Track == nil {
		return fmt.Errorf("%w: playlist item added at %s has no track", shared.ErrSchemaMismatch, t.AddedAt)
	}
	return t.Track.Validate()
}

// searchResult wraps a search hit so that results missing an artist are rejected at decode time.
type searchResult struct {
	SpotifyTrack
}

// Validate rejects a search hit without a name or without artists.
func (r searchResult) Validate() error {
	if err := r.SpotifyTrack.Validate(); err != nil {
		return err
	}
	if len(r.Artists) == 0 {
		return fmt.Errorf("%w: search result %q has no artists", shared.ErrSchemaMismatch, r.Name)
	}
	return nil
}

// Paging is the Spotify paging object. Next is nil on the last page.
type Paging[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// HasNext reports whether another page follows.
func (p *Paging[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// Validate checks every item that knows how to validate itself.
func (p *Paging[T]) Validate() error {
	if p.Items == nil {
		return fmt.Errorf("%w: paging object has no items", shared.ErrSchemaMismatch)
	}
	for i, item := range p.Items {
		if v, ok := any(item).(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("item %d: %w", p.Offset+i, err)
			}
		}
	}
	return nil
}

type searchResponse struct {
	Tracks *Paging[searchResult] `json:"tracks"`
}

// Validate rejects a response without a tracks page.
func (s searchResponse) Validate() error {
	if s.Tracks == nil {
		return fmt.Errorf("%w: search response has no tracks", shared.ErrSchemaMismatch)
	}
	return s.Tracks.Validate()
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// errResourceNotFound marks a 404 so lookups by id can report their own not-found error.
var errResourceNotFound = errors.New("resource not found")

// validator is implemented by response types that check their own shape after decoding.
type validator interface {
	Validate() error
}

// SpotifyService implements [SpotifyAPI] over the Spotify Web API.
//
// It does not authenticate: the [http.Client] it is given (normally [Session.Client]) attaches and refreshes tokens.
type SpotifyService struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a [SpotifyService].
type Option func(*SpotifyService)

// WithBaseURL points the service at a different API root, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(s *SpotifyService) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// NewSpotifyService creates a Spotify API client using the given authenticated [http.Client].
func NewSpotifyService(client *http.Client, opts ...Option) *SpotifyService {
	if client == nil {
		client = http.DefaultClient
	}

	s := &SpotifyService{httpClient: client, baseURL: spotifyBaseURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs a request against an endpoint relative to the base URL.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	return s.doURL(ctx, method, s.baseURL+endpoint, body, result)
}

// doURL performs a request against an absolute URL, such as a paging cursor, and decodes the JSON response into result.
//
// Results implementing Validate are checked after decoding.
func (s *SpotifyService) doURL(ctx context.Context, method, apiURL string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %v", shared.ErrSchemaMismatch, req.URL.Path, err)
	}

	if v, ok := result.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", req.URL.Path, err)
		}
	}

	return nil
}

// statusError converts a non-2xx response into a wrapped sentinel error.
func statusError(resp *http.Response) error {
	var body spotifyErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w: status %d: %s", shared.ErrAPIRequest, errResourceNotFound, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: spotify API error: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves a single page of the playlists of userID.
func (s *SpotifyService) UserPlaylists(ctx context.Context, userID string, limit, offset int) (*Paging[SpotifySimplePlaylist], error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	limit = clampLimit(limit)

	endpoint := fmt.Sprintf("/users/%s/playlists?limit=%d&offset=%d", url.PathEscape(userID), limit, offset)

	var page Paging[SpotifySimplePlaylist]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PlaylistTracks retrieves the first page of a playlist's tracks.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) (*Paging[SpotifyPlaylistTrack], error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	var page Paging[SpotifyPlaylistTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// NextPlaylistTracks follows a paging cursor returned by [SpotifyService.PlaylistTracks].
func (s *SpotifyService) NextPlaylistTracks(ctx context.Context, next string) (*Paging[SpotifyPlaylistTrack], error) {
	if next == "" {
		return nil, fmt.Errorf("%w: next cursor", shared.ErrMissingArgument)
	}

	var page Paging[SpotifyPlaylistTrack]
	if err := s.doURL(ctx, http.MethodGet, next, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchTracks runs a track search and returns results in API order.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]SpotifyTrack, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(clampLimit(limit)))

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]SpotifyTrack, len(response.Tracks.Items))
	for i, item := range response.Tracks.Items {
		tracks[i] = item.SpotifyTrack
	}
	return tracks, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	var track SpotifyTrack
	if err := s.doRequest(ctx, http.MethodGet, "/tracks/"+url.PathEscape(trackID), nil, &track); err != nil {
		if errors.Is(err, errResourceNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", shared.ErrTrackNotFound, trackID, err)
		}
		return nil, err
	}
	return &track, nil
}

// AddTracksToPlaylist appends tracks to a playlist in batches of [maxTracksPerRequest].
// Returns the snapshot ID of the last batch.
func (s *SpotifyService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) (string, error) {
	if playlistID == "" {
		return "", fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	var snapshot string
	for i := 0; i < len(trackIDs); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(trackIDs))

		uris := make([]string, 0, end-i)
		for _, id := range trackIDs[i:end] {
			uris = append(uris, "spotify:track:"+id)
		}

		var resp snapshotResponse
		if err := s.doRequest(ctx, http.MethodPost, endpoint, map[string]any{"uris": uris}, &resp); err != nil {
			return "", fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
		snapshot = resp.SnapshotID
	}

	return snapshot, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
