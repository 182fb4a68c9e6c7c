// package tasks implements the playlist operations behind every plman command.
//
// The core abstraction is PlaylistManager, which composes single API calls into listings, comparisons and additions.
// Long-running operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plman/internal/models"
	"github.com/desertthunder/plman/internal/services"
	"github.com/desertthunder/plman/internal/shared"
)

const (
	// playlistPageSize is the number of playlists requested by [PlaylistManager.ListOwnedPlaylists].
	playlistPageSize = 50

	// searchLimit is the number of search results scanned by [PlaylistManager.ResolveTrack].
	searchLimit = 50
)

// PlaylistManager runs playlist operations for a single user against a [services.SpotifyAPI].
type PlaylistManager struct {
	api    services.SpotifyAPI
	userID string
	logger *log.Logger
}

// NewPlaylistManager creates a PlaylistManager for userID.
//
// When userID is empty it is resolved once from the current user's profile on first use.
func NewPlaylistManager(api services.SpotifyAPI, userID string, logger *log.Logger) *PlaylistManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistManager{api: api, userID: userID, logger: logger}
}

// UserID returns the user the manager operates for, resolving it if necessary.
func (m *PlaylistManager) UserID(ctx context.Context) (string, error) {
	if m.api == nil {
		return "", fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if m.userID != "" {
		return m.userID, nil
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve current user: %w", err)
	}

	m.userID = user.ID
	m.logger.Debug("resolved current user", "user", m.userID)
	return m.userID, nil
}

// ListOwnedPlaylists returns the playlists on the user's profile whose owner is the user.
//
// Only the first page of playlists is read. Playlists past it are never seen by name lookups.
func (m *PlaylistManager) ListOwnedPlaylists(ctx context.Context) ([]models.Playlist, error) {
	userID, err := m.UserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := m.api.UserPlaylists(ctx, userID, playlistPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	if page.HasNext() {
		m.logger.Warn("user has more playlists than a single page, later playlists are ignored",
			"page_size", playlistPageSize, "total", page.Total)
	}

	playlists := make([]models.Playlist, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Owner.ID == userID {
			playlists = append(playlists, item.Model())
		}
	}
	return playlists, nil
}

// FindPlaylistIDByName returns the ID of the first owned playlist whose name equals name, ignoring case.
func (m *PlaylistManager) FindPlaylistIDByName(ctx context.Context, name string) (string, error) {
	playlist, err := m.findPlaylist(ctx, name)
	if err != nil {
		return "", err
	}
	return playlist.ID, nil
}

func (m *PlaylistManager) findPlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, err := m.ListOwnedPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToUpper(name)
	for _, p := range playlists {
		if strings.ToUpper(p.Name) == want {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: no playlist found with name '%s'", shared.ErrPlaylistNotFound, name)
}

// ListPlaylistTracks returns every track of the named playlist, following pagination to the end.
func (m *PlaylistManager) ListPlaylistTracks(ctx context.Context, name string) ([]models.Track, error) {
	id, err := m.FindPlaylistIDByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return m.playlistTracks(ctx, id)
}

func (m *PlaylistManager) playlistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	first, err := m.api.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	items, err := collect(ctx, first, m.api.NextPlaylistTracks)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	tracks := make([]models.Track, len(items))
	for i, item := range items {
		tracks[i] = item.Track.Model()
	}

	m.logger.Debug("fetched playlist tracks", "playlist", playlistID, "count", len(tracks))
	return tracks, nil
}

// collect accumulates the items of first and every page after it.
func collect[T any](ctx context.Context, first *services.Paging[T], next func(context.Context, string) (*services.Paging[T], error)) ([]T, error) {
	items := append([]T(nil), first.Items...)

	page := first
	for page.HasNext() {
		var err error
		if page, err = next(ctx, *page.Next); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// FindDuplicates reports the tracks of playlist B whose name also appears in playlist A, ignoring case.
//
// Every matching B track is reported, tagged with B's name. A's tracks are never reported.
// Records are grouped by name in order of the name's first appearance in B.
func (m *PlaylistManager) FindDuplicates(ctx context.Context, nameA, nameB string) ([]models.DuplicateRecord, error) {
	tracksA, err := m.ListPlaylistTracks(ctx, nameA)
	if err != nil {
		return nil, err
	}
	tracksB, err := m.ListPlaylistTracks(ctx, nameB)
	if err != nil {
		return nil, err
	}

	inA := make(map[string]bool, len(tracksA))
	for _, t := range tracksA {
		inA[strings.ToUpper(t.Name)] = true
	}

	var names []string
	seen := make(map[string]bool)
	for _, t := range tracksB {
		key := strings.ToUpper(t.Name)
		if inA[key] && !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}

	duplicates := []models.DuplicateRecord{}
	for _, name := range names {
		for _, t := range tracksB {
			if strings.ToUpper(t.Name) == name {
				duplicates = append(duplicates, models.DuplicateRecord{Track: t, PlaylistName: nameB})
			}
		}
	}

	m.logger.Debug("compared playlists", "a", nameA, "b", nameB, "duplicates", len(duplicates))
	return duplicates, nil
}

// FindRepeats reports the tracks of a playlist whose exact name already occurred earlier in the same playlist.
func (m *PlaylistManager) FindRepeats(ctx context.Context, name string) (*models.RepeatReport, error) {
	tracks, err := m.ListPlaylistTracks(ctx, name)
	if err != nil {
		return nil, err
	}

	report := &models.RepeatReport{PlaylistName: name, Total: len(tracks), Repeats: []models.Track{}}
	seen := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		if seen[t.Name] {
			report.Repeats = append(report.Repeats, t)
			continue
		}
		seen[t.Name] = true
	}
	report.Unique = len(seen)
	return report, nil
}

// ResolveTrack searches for name and returns the ID of the first result whose first artist equals artist, ignoring case.
//
// A search with no matching result is not an error: ok is false.
func (m *PlaylistManager) ResolveTrack(ctx context.Context, name, artist string) (id string, ok bool, err error) {
	results, err := m.api.SearchTracks(ctx, "track:"+name, searchLimit)
	if err != nil {
		return "", false, fmt.Errorf("failed to search for %q: %w", name, err)
	}

	want := strings.ToUpper(artist)
	for _, r := range results {
		if strings.ToUpper(r.PrimaryArtist()) != want || r.ID == nil {
			continue
		}
		m.logger.Debug("resolved track", "id", *r.ID, "artist", r.PrimaryArtist(), "name", r.Name)
		return *r.ID, true, nil
	}
	return "", false, nil
}

// isInPlaylist reports whether name, ignoring case, is a substring of any track name. Artists are not compared.
func isInPlaylist(tracks []models.Track, name string) bool {
	want := strings.ToUpper(name)
	for _, t := range tracks {
		if strings.Contains(strings.ToUpper(t.Name), want) {
			return true
		}
	}
	return false
}

// PlanAdditions computes which queries are missing from the named playlist and resolves them to track IDs.
//
// Nothing is written. The plan's TrackIDs are unique and in first-resolved order.
func (m *PlaylistManager) PlanAdditions(ctx context.Context, progress chan<- ProgressUpdate, queries []models.TrackQuery, playlistName string) (*models.AdditionPlan, error) {
	sendProgress(progress, fetchTargetUpdate(playlistName))

	playlist, err := m.findPlaylist(ctx, playlistName)
	if err != nil {
		return nil, err
	}

	existing, err := m.playlistTracks(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}

	plan := &models.AdditionPlan{
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		Present:      []models.TrackQuery{},
		Unresolved:   []models.TrackQuery{},
		TrackIDs:     []string{},
	}
	added := make(map[string]bool)
	total := len(queries)

	for i, q := range queries {
		if isInPlaylist(existing, q.Name) {
			sendProgress(progress, presentTrackUpdate(i+1, total, q))
			m.logger.Info("skipping, already in playlist", "name", q.Name, "artists", q.Artists)
			plan.Present = append(plan.Present, q)
			continue
		}

		sendProgress(progress, resolveTrackUpdate(i+1, total, q))
		id, ok, err := m.ResolveTrack(ctx, q.Name, q.Artists)
		if err != nil {
			return nil, err
		}
		if !ok {
			m.logger.Warn("no search result matched artist", "name", q.Name, "artists", q.Artists)
			plan.Unresolved = append(plan.Unresolved, q)
			continue
		}
		if !added[id] {
			added[id] = true
			plan.TrackIDs = append(plan.TrackIDs, id)
		}
	}

	m.logger.Info("planned additions", "playlist", plan.PlaylistName,
		"already_there", len(plan.Present), "found", len(plan.TrackIDs), "unresolved", len(plan.Unresolved))
	return plan, nil
}

// ApplyAdditions writes plan.TrackIDs to the playlist when apply is set. Otherwise it makes no API call.
func (m *PlaylistManager) ApplyAdditions(ctx context.Context, progress chan<- ProgressUpdate, plan *models.AdditionPlan, apply bool) (*models.AdditionResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: nil addition plan", shared.ErrInvalidArgument)
	}

	result := &models.AdditionResult{Plan: plan}
	if !apply {
		m.logger.Info("dry run, playlist not modified", "playlist", plan.PlaylistName, "would_add", len(plan.TrackIDs))
		return result, nil
	}
	if len(plan.TrackIDs) == 0 {
		result.Applied = true
		return result, nil
	}

	sendProgress(progress, addTracksUpdate(len(plan.TrackIDs), plan.PlaylistName))

	snapshot, err := m.api.AddTracksToPlaylist(ctx, plan.PlaylistID, plan.TrackIDs)
	if err != nil {
		return result, fmt.Errorf("failed to add tracks to '%s': %w", plan.PlaylistName, err)
	}

	result.Applied = true
	result.Added = len(plan.TrackIDs)
	m.logger.Info("added tracks", "playlist", plan.PlaylistName, "count", result.Added, "snapshot", snapshot)
	return result, nil
}

// AddMissingTracks plans the additions for queries and applies them when apply is set.
func (m *PlaylistManager) AddMissingTracks(ctx context.Context, progress chan<- ProgressUpdate, queries []models.TrackQuery, playlistName string, apply bool) (*models.AdditionResult, error) {
	plan, err := m.PlanAdditions(ctx, progress, queries, playlistName)
	if err != nil {
		return nil, err
	}
	return m.ApplyAdditions(ctx, progress, plan, apply)
}

// TrackInfo returns a single track by ID.
func (m *PlaylistManager) TrackInfo(ctx context.Context, id string) (*models.Track, error) {
	if m.api == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	track, err := m.api.Track(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track %s: %w", id, err)
	}

	model := track.Model()
	return &model, nil
}
