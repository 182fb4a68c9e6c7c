// Package models defines the transient domain entities plman works with.
//
// Nothing here is persisted: every value is rebuilt from API responses (or an input file) on each invocation.
//   - [Playlist] : playlist metadata owned by the authenticated user
//   - [Track] : song metadata with comma-joined artist names
//   - [DuplicateRecord] : a track found in both of two compared playlists, tagged with where it was found
//   - [TrackQuery] : an externally described track (artist/album/name) awaiting resolution
//   - [AdditionPlan] and [AdditionResult] : the two phases of adding missing tracks to a playlist
//   - [RepeatReport] : tracks repeated by name within a single playlist
package models
