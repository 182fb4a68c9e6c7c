// Package tasks composes Spotify API calls into the playlist operations plman exposes.
//
// # Core Operations
//
// [PlaylistManager] operates on the playlists owned by a single user:
//
//  1. [PlaylistManager.ListOwnedPlaylists] : playlists on the user's profile owned by the user
//     - Reads a single page of 50 playlists
//     - Logs a warning when the API reports more
//
//  2. [PlaylistManager.ListPlaylistTracks] : every track of a playlist, looked up by name
//     - Name lookup ignores case, first match wins
//     - Follows the next cursor until the last page
//
//  3. [PlaylistManager.FindDuplicates] : tracks of playlist B whose name also appears in playlist A
//     - Names compared upper-cased
//     - Reports every matching B track, never A's
//
//  4. [PlaylistManager.FindRepeats] : tracks whose exact name occurs earlier in the same playlist
//
//  5. [PlaylistManager.AddMissingTracks] : two phases, plan then apply
//     - [PlaylistManager.PlanAdditions] skips queries whose name is a substring of an existing track name
//     - Remaining queries are resolved through [PlaylistManager.ResolveTrack]
//     - [PlaylistManager.ApplyAdditions] writes only when asked to
//
// # Track Resolution
//
// [PlaylistManager.ResolveTrack] searches "track:{name}" with a limit of 50 and accepts the first result,
// in API order, whose first artist equals the wanted artist ignoring case.
// A search without a match is reported through the ok result, not an error.
//
// # Progress Reporting
//
// # Additions report progress on an optional channel
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
