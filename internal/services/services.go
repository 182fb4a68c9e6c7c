// package services defines the Spotify API surface used by the playlist tasks
package services

import (
	"context"
)

// SpotifyAPI is the subset of the Spotify Web API that plman needs.
//
// Every method is a single blocking request (or a fixed series of them); callers drive pagination through the Next cursor.
type SpotifyAPI interface {
	// CurrentUser returns the profile of the authenticated user.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)

	// UserPlaylists returns one page of the playlists visible on a user's profile.
	UserPlaylists(ctx context.Context, userID string, limit, offset int) (*Paging[SpotifySimplePlaylist], error)

	// PlaylistTracks returns the first page of a playlist's tracks.
	PlaylistTracks(ctx context.Context, playlistID string) (*Paging[SpotifyPlaylistTrack], error)

	// NextPlaylistTracks fetches the page a Next cursor points at.
	NextPlaylistTracks(ctx context.Context, next string) (*Paging[SpotifyPlaylistTrack], error)

	// SearchTracks searches the catalog and returns results in API order.
	SearchTracks(ctx context.Context, query string, limit int) ([]SpotifyTrack, error)

	// Track returns a single track by ID.
	Track(ctx context.Context, trackID string) (*SpotifyTrack, error)

	// AddTracksToPlaylist appends tracks to a playlist. This is the only write.
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) (string, error)

	// Name returns the name of the service
	Name() string
}

var _ SpotifyAPI = (*SpotifyService)(nil)
