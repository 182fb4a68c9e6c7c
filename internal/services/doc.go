// Package services wraps the Spotify Web API behind the [SpotifyAPI] interface and owns the authenticated [Session].
//
// # Session
//
// A [Session] is built once per process from a stored or freshly exchanged [oauth2.Token].
// Authorization URLs, code exchange and the scope set come from the zmb3/spotify auth helper ([NewAuthenticator]);
// token refresh is handled by the [oauth2.Transport] underneath [Session.Client]. Refreshed tokens are handed to a
// callback so the CLI can write them back to config.toml, and [Session.Close] marks the end of the session's life.
//
// # Spotify Implementation
//
// [SpotifyService] is a thin typed client. Responses decode into explicit structs and are validated at the
// decode boundary, so a missing track, owner or artist fails with [shared.ErrSchemaMismatch] instead of
// surfacing later as a zero value.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrTokenExpired] : the API answered 401
//   - [shared.ErrAPIRequest] : transport failure or any other non-2xx status
//   - [shared.ErrSchemaMismatch] : the response did not have the expected shape
//   - [shared.ErrNotAuthenticated] : a session was requested without a token
//
// # Pagination
//
// [Paging] mirrors the API paging object. Playlist track listings are followed through [Paging.Next] by the caller;
// the playlist listing endpoint is only ever read one page at a time.
package services
